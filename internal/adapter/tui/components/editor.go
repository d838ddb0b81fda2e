package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
)

// SubmitMsg carries the trimmed editor text when the submit key is pressed.
type SubmitMsg struct {
	Text string
}

var (
	submitKey  = key.NewBinding(key.WithKeys("enter"))
	newlineKey = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
)

// Editor is the text field of a tool page. Enter submits, Alt+Enter or
// Ctrl+J breaks the line. An inactive editor ignores input.
type Editor struct {
	area     textarea.Model
	inactive bool
}

// NewEditor returns a focused editor showing rows lines.
func NewEditor(placeholder string, rows int) Editor {
	area := textarea.New()
	area.Placeholder = placeholder
	area.Prompt = "> "
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetHeight(rows)
	area.KeyMap.InsertNewline = newlineKey
	area.FocusedStyle.CursorLine = lipgloss.NewStyle()
	area.FocusedStyle.Prompt = theme.InputPrompt
	area.FocusedStyle.Placeholder = theme.InputPlaceholder
	area.BlurredStyle.Prompt = theme.TextMuted
	area.Focus()
	return Editor{area: area}
}

// Resize fits the editor to width columns, leaving room for the prompt.
func (e *Editor) Resize(width int) { e.area.SetWidth(width - 2) }

// Activate focuses or blurs the editor.
func (e *Editor) Activate(on bool) {
	e.inactive = !on
	if on {
		e.area.Focus()
		return
	}
	e.area.Blur()
}

// Active reports whether the editor takes input.
func (e Editor) Active() bool { return !e.inactive }

// Sync mirrors text into the editor. Equal text leaves the cursor alone.
func (e *Editor) Sync(text string) {
	if e.area.Value() == text {
		return
	}
	e.area.SetValue(text)
	e.area.CursorEnd()
}

// Value returns the raw editor text.
func (e Editor) Value() string { return e.area.Value() }

// Update feeds msg to the textarea. The submit key emits SubmitMsg and
// keeps the text; the page decides whether to clear it.
func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	if e.inactive {
		return e, nil
	}
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return e, nil
	case tea.KeyMsg:
		if key.Matches(msg, submitKey) {
			text := strings.TrimSpace(e.area.Value())
			return e, func() tea.Msg { return SubmitMsg{Text: text} }
		}
	}
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return e, cmd
}

func (e Editor) View() string { return e.area.View() }
