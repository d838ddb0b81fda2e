package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
)

// Border and padding eat this many cells on each axis.
const overlayChrome = 4

var (
	overlayDismiss = key.NewBinding(key.WithKeys("esc", "q"))
	overlayDown    = key.NewBinding(key.WithKeys("j", "down"))
	overlayUp      = key.NewBinding(key.WithKeys("k", "up"))
)

// Overlay covers the screen with scrollable text: a full result or the
// key reference.
type Overlay struct {
	view   viewport.Model
	title  string
	shown  bool
	width  int
	height int
}

// Show fills the screen of size w x h with body.
func (o *Overlay) Show(title, body string, w, h int) {
	o.title, o.shown = title, true
	o.width, o.height = w, h
	o.view = viewport.New(max(w-overlayChrome, 20), max(h-overlayChrome, 5))
	o.view.MouseWheelEnabled = true
	o.view.SetContent(body)
}

// Resize follows terminal size changes while shown.
func (o *Overlay) Resize(w, h int) {
	o.width, o.height = w, h
	if o.shown {
		o.view.Width = max(w-overlayChrome, 20)
		o.view.Height = max(h-overlayChrome, 5)
	}
}

// Shown reports whether the overlay owns the screen.
func (o Overlay) Shown() bool { return o.shown }

// Title is the heading of the current content.
func (o Overlay) Title() string { return o.title }

// Update scrolls or dismisses the overlay.
func (o Overlay) Update(msg tea.Msg) (Overlay, tea.Cmd) {
	if !o.shown {
		return o, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, overlayDismiss):
			o.shown = false
			return o, nil
		case key.Matches(k, overlayDown):
			o.view.LineDown(3)
			return o, nil
		case key.Matches(k, overlayUp):
			o.view.LineUp(3)
			return o, nil
		}
	}
	var cmd tea.Cmd
	o.view, cmd = o.view.Update(msg)
	return o, cmd
}

// View draws the framed overlay, or nothing when hidden.
func (o Overlay) View() string {
	if !o.shown {
		return ""
	}
	heading := theme.Bold.Render("  " + o.title)
	position := theme.TextMuted.Render(fmt.Sprintf("%3.0f%%", o.view.ScrollPercent()*100))
	hint := theme.Dim.Render("  esc close · j/k scroll  ") + position

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorderActive).
		Padding(0, 1).
		Width(max(o.width-2, 0)).
		Height(max(o.height-2, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, heading, o.view.View(), hint))
}
