// Package theme holds the colors, styles and symbols of the terminal UI.
// Colors adapt to light and dark backgrounds; lipgloss drops them when
// NO_COLOR is set.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/domain"
)

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorGreen  = adaptive("#2e7d32", "#66bb6a")
	colorRed    = adaptive("#c62828", "#ef5350")
	colorAmber  = adaptive("#e65100", "#ffa726")
	colorPurple = adaptive("#6a1b9a", "#ce93d8")
	colorGrey   = adaptive("#757575", "#9e9e9e")
	colorFaint  = adaptive("#9e9e9e", "#757575")
	colorPanel  = adaptive("#f5f5f5", "#2d2d2d")

	ColorInfo         = adaptive("#0277bd", "#4fc3f7")
	ColorBorder       = adaptive("#bdbdbd", "#616161")
	ColorBorderActive = adaptive("#1565c0", "#42a5f5")
)

func fg(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Text styles.
var (
	Bold        = lipgloss.NewStyle().Bold(true)
	Dim         = lipgloss.NewStyle().Faint(true)
	TextSuccess = fg(colorGreen).Bold(true)
	TextError   = fg(colorRed).Bold(true)
	TextInfo    = fg(ColorInfo)
	TextAccent  = fg(colorPurple)
	TextMuted   = fg(colorGrey)
	PaneTitle   = fg(colorGrey).Bold(true)
	Timestamp   = fg(colorFaint).Faint(true)
)

// Conversation labels.
var (
	UserLabel  = fg(ColorInfo).Bold(true)
	BotLabel   = fg(colorPurple).Bold(true)
	ErrorLabel = fg(colorRed).Bold(true)
)

// Catalog, status bar and input.
var (
	CatalogTitle     = fg(colorPurple).Bold(true).PaddingBottom(1)
	CatalogItem      = lipgloss.NewStyle().Padding(0, 2)
	CatalogSelected  = lipgloss.NewStyle().Border(lipgloss.ThickBorder(), false, false, false, true).Padding(0, 1)
	StatusBar        = fg(colorFaint).Background(colorPanel).Padding(0, 1)
	StatusKey        = fg(ColorInfo).Bold(true)
	InputPrompt      = fg(ColorInfo).Bold(true)
	InputPlaceholder = fg(colorFaint)
)

// ForStatus colors a lifecycle status label.
func ForStatus(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusValidating, domain.StatusInFlight:
		return fg(colorAmber)
	case domain.StatusSucceeded:
		return fg(colorGreen)
	case domain.StatusFailed:
		return fg(colorRed)
	}
	return TextMuted
}

// Accent is the bold text style of a tool. Terminals cannot draw the
// tool's gradient, so text takes its first stop.
func Accent(g domain.Gradient) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(g.From)).Bold(true)
}

// AccentBorder frames a tool panel in the gradient's last stop.
func AccentBorder(g domain.Gradient) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(g.To)).
		Padding(0, 1)
}

const (
	// MaxContentWidth caps the width of readable text.
	MaxContentWidth = 100
	// MinSplitWidth is the narrowest terminal that shows panes side by side.
	MinSplitWidth = 100
)

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
