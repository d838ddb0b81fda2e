package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
)

// indent prefixes every wrapped line of pane text.
const indent = "  "

// Wrap word-wraps free text for a pane of the given width.
func Wrap(s string, width int) string {
	return indent + wrapText(s, width-len(indent))
}

// wrapText breaks s into lines of at most width runes. Explicit newlines
// survive and every line after the first is indented.
func wrapText(s string, width int) string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph(para, width)...)
	}
	return strings.Join(lines, "\n"+indent)
}

func wrapParagraph(p string, width int) []string {
	if width <= 0 || len([]rune(p)) <= width {
		return []string{p}
	}
	var (
		lines []string
		line  []rune
	)
	for _, word := range strings.Fields(p) {
		w := []rune(word)
		for len(w) > width {
			if len(line) > 0 {
				lines, line = append(lines, string(line)), nil
			}
			lines, w = append(lines, string(w[:width])), w[width:]
		}
		switch {
		case len(line) == 0:
			line = w
		case len(line)+1+len(w) <= width:
			line = append(append(line, ' '), w...)
		default:
			lines, line = append(lines, string(line)), w
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// TruncatePath elides the middle directories of path to fit maxLen, e.g.
// "/home/user/very/deep/nested/path/memo.wav" becomes "/…/path/memo.wav".
func TruncatePath(path string, maxLen int) string {
	if len(path) <= maxLen || maxLen < 10 {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		short := parts[0] + "/" + theme.SymbolEllipsis + "/" + strings.Join(parts[len(parts)-2:], "/")
		if len(short) <= maxLen {
			return short
		}
	}
	return path[:maxLen-1] + theme.SymbolEllipsis
}

// ContentWidth is the readable text width inside a terminal of termWidth.
func ContentWidth(termWidth int) int {
	return theme.Clamp(termWidth-4, 40, theme.MaxContentWidth)
}

// Divider is a full-width horizontal rule.
func Divider(width int) string {
	return lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("─", max(width, 0)))
}
