package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/adapter/tui/uxerror"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

// chatInputHeight is the height of the message box.
const chatInputHeight = 2

type chatPage struct {
	env   pageEnv
	desc  domain.ToolDescriptor
	tool  *tools.ChatAssistant
	view  components.Transcript
	input components.Editor
	unsub func()
	width int
}

func newChatPage(env pageEnv, d domain.ToolDescriptor, c *tools.ChatAssistant) *chatPage {
	p := &chatPage{
		env:   env,
		desc:  d,
		tool:  c,
		view:  components.NewTranscript(),
		input: components.NewEditor("Type your message...", chatInputHeight),
	}
	p.unsub = watch(c.Controller(), d.ID, env.notify)
	return p
}

func (p *chatPage) Descriptor() domain.ToolDescriptor { return p.desc }

func (p *chatPage) Status() domain.Status { return p.tool.Controller().Snapshot().Status }

func (p *chatPage) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: p.desc.Action},
		{Key: "Alt+1-6", Desc: "Suggestion"},
		{Key: "PgUp/PgDn", Desc: "Scroll"},
		{Key: "Ctrl+R", Desc: "Clear"},
		{Key: "Esc", Desc: "Back"},
	}
}

func (p *chatPage) SetSize(w, h int) {
	p.width = w
	// title, divider, input and suggestion line
	viewH := h - chatInputHeight - 4
	if viewH < 5 {
		viewH = 5
	}
	p.view.SetSize(w, viewH)
	p.input.Resize(w)
	p.sync("")
}

func (p *chatPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		if _, ok := p.tool.Send(); ok {
			p.input.Sync(p.tool.Controller().Snapshot().Input)
		}
		return nil
	case tea.KeyMsg:
		switch s := msg.String(); s {
		case "ctrl+r":
			p.tool.Clear()
			return nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			p.view, cmd = p.view.Update(msg)
			return cmd
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
			if err := p.tool.UseSuggestion(int(s[len(s)-1] - '1')); err != nil {
				return done("", err)
			}
			p.input.Sync(p.tool.Controller().Snapshot().Input)
			return nil
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		p.view, cmd = p.view.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if v := p.input.Value(); v != p.tool.Controller().Snapshot().Input {
		p.tool.SetDraft(v)
	}
	return cmd
}

// sync pushes the conversation into the view. footer is the typing line.
func (p *chatPage) sync(footer string) {
	p.view.Sync(p.tool.History(), footer)
}

func (p *chatPage) View(spin string) string {
	snap := p.tool.Controller().Snapshot()

	footer := ""
	switch {
	case snap.Busy():
		footer = spin + " " + theme.TextMuted.Render(theme.SymbolBot+" is "+strings.ToLower(p.desc.Busy))
	case snap.Status == domain.StatusFailed && snap.Err != nil:
		footer = theme.ErrorLabel.Render(theme.SymbolError+" ") + uxerror.Explain(snap.Err).Render()
	}
	p.sync(footer)

	var suggestions string
	if len(p.tool.History()) == 1 {
		var parts []string
		for i, s := range tools.Suggestions() {
			parts = append(parts, fmt.Sprintf("%s %s", theme.StatusKey.Render(fmt.Sprintf("Alt+%d", i+1)), s))
		}
		suggestions = theme.TextMuted.Render("  Try: ") + strings.Join(parts, theme.Dim.Render("  |  "))
	}

	parts := []string{theme.Accent(p.desc.Accent).Render(p.desc.Heading), p.view.View()}
	if suggestions != "" {
		parts = append(parts, lipgloss.NewStyle().Width(p.width).Render(suggestions))
	}
	parts = append(parts, components.Divider(p.width), p.input.View())
	return strings.Join(parts, "\n")
}

func (p *chatPage) Close() {
	p.unsub()
	p.tool.Dispose()
}
