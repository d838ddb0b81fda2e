package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

// Transcript shows a chat conversation in a scrollable pane. It follows
// new messages until the user scrolls up, and resumes at the bottom.
type Transcript struct {
	pane     follower
	width    int
	history  []domain.Message
	footer   string
	markdown *glamour.TermRenderer
	replies  map[string]string // rendered assistant replies by ID and content
}

// NewTranscript returns an empty transcript. SetSize must run before View.
func NewTranscript() Transcript {
	return Transcript{pane: newFollower(), replies: map[string]string{}}
}

// SetSize resizes the pane. A width change drops rendered markdown.
func (t *Transcript) SetSize(w, h int) {
	t.pane.resize(w, h)
	if w != t.width {
		t.width = w
		t.markdown = nil
		t.replies = map[string]string{}
	}
	t.pane.show(t.Content(), false)
}

// Sync shows history with footer (the typing line) under it.
func (t *Transcript) Sync(history []domain.Message, footer string) {
	grew := len(history) != len(t.history) || footer != t.footer
	t.history, t.footer = history, footer
	t.pane.show(t.Content(), grew)
}

// Len is the number of messages shown.
func (t Transcript) Len() int { return len(t.history) }

// Update scrolls the pane.
func (t Transcript) Update(msg tea.Msg) (Transcript, tea.Cmd) {
	cmd := t.pane.update(msg)
	return t, cmd
}

// View draws the visible part of the conversation.
func (t Transcript) View() string {
	return t.pane.view("  Initializing...")
}

// Content renders the whole conversation regardless of scroll position.
func (t *Transcript) Content() string {
	if len(t.history) == 0 {
		return theme.TextMuted.Render("  No messages yet. Start a conversation!")
	}
	width := ContentWidth(t.width)
	blocks := make([]string, 0, len(t.history)+1)
	for _, m := range t.history {
		blocks = append(blocks, t.message(m, width))
	}
	if t.footer != "" {
		blocks = append(blocks, t.footer)
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) message(m domain.Message, width int) string {
	header := speaker(m.Role)
	if !m.Timestamp.IsZero() {
		header += " " + theme.Timestamp.Render(humanize.Time(m.Timestamp))
	}

	body := Wrap(m.Content, width)
	if m.Role == domain.RoleAssistant {
		body = t.reply(m, width)
	}
	if strings.TrimSpace(body) == "" {
		return header
	}
	return header + "\n" + body
}

// reply renders an assistant message as markdown, falling back to plain
// wrapped text when glamour cannot.
func (t *Transcript) reply(m domain.Message, width int) string {
	key := m.ID + "\x00" + m.Content
	if r, ok := t.replies[key]; ok {
		return r
	}
	if t.markdown == nil {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return Wrap(m.Content, width)
		}
		t.markdown = r
	}
	out, err := t.markdown.Render(m.Content)
	if err != nil {
		return Wrap(m.Content, width)
	}
	out = strings.TrimSpace(out)
	t.replies[key] = out
	return out
}

func speaker(role string) string {
	switch role {
	case domain.RoleUser:
		return theme.UserLabel.Render(theme.SymbolUser)
	case domain.RoleAssistant:
		return theme.BotLabel.Render(theme.SymbolBot)
	}
	return theme.TextMuted.Render(role)
}
