// Package components provides reusable Bubble Tea sub-models for the TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Generate"
}

// StatusBarModel renders the bottom line: key hints on the left, the open
// tool and its lifecycle status on the right.
type StatusBarModel struct {
	Hints  []KeyHint
	Tool   string
	Status domain.Status
	Extra  string // transient note, e.g. "Copied to clipboard"
	width  int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var parts []string
	if m.Extra != "" {
		parts = append(parts, theme.TextInfo.Render(m.Extra))
	}
	if m.Tool != "" {
		label := theme.TextMuted.Render(m.Tool)
		if m.Status != "" {
			label += theme.TextMuted.Render(" "+theme.SymbolBullet+" ") + theme.ForStatus(m.Status).Render(StatusLabel(m.Status))
		}
		parts = append(parts, label)
	}
	right := strings.Join(parts, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// StatusLabel is the short human name of a lifecycle status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusIdle:
		return "ready"
	case domain.StatusValidating:
		return "checking"
	case domain.StatusInFlight:
		return "working"
	case domain.StatusSucceeded:
		return "done"
	case domain.StatusFailed:
		return "failed"
	default:
		return string(s)
	}
}
