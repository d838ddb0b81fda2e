package components

import (
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
)

// Side names one of the two columns.
type Side int

const (
	Left Side = iota
	Right
)

// Columns places two panes side by side, separated by a rule that lights
// up when the right pane has focus. Below theme.MinSplitWidth the panes
// stack vertically and each gets the full width.
type Columns struct {
	share         float64
	focus         Side
	width, height int
}

// NewColumns gives the left pane share of the width. Values outside (0,1)
// mean an even split.
func NewColumns(share float64) Columns {
	if share <= 0 || share >= 1 {
		share = 0.5
	}
	return Columns{share: share}
}

func (c *Columns) SetSize(w, h int) { c.width, c.height = w, h }

// Stacked reports whether the terminal is too narrow for two columns.
func (c Columns) Stacked() bool { return c.width < theme.MinSplitWidth }

func (c Columns) Focus() Side { return c.focus }

// Toggle moves focus to the other pane.
func (c *Columns) Toggle() { c.focus = 1 - c.focus }

// Widths returns the content width of each pane. The rule takes one column.
func (c Columns) Widths() (left, right int) {
	if c.Stacked() {
		return c.width, c.width
	}
	left = int(float64(c.width-1) * c.share)
	return left, c.width - 1 - left
}

// Height returns the rows each pane may use.
func (c Columns) Height() int {
	if c.Stacked() {
		return c.height / 2
	}
	return c.height
}

// Join lays the rendered panes out.
func (c Columns) Join(left, right string) string {
	if c.Stacked() {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	rule := theme.ColorBorder
	if c.focus == Right {
		rule = theme.ColorBorderActive
	}
	right = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(rule).
		Height(max(lipgloss.Height(left), lipgloss.Height(right))).
		Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
