package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

// catalogModel is the home screen listing every tool.
type catalogModel struct {
	tools  []domain.ToolDescriptor
	cursor int
	width  int
}

func newCatalog() catalogModel {
	return catalogModel{tools: domain.Catalog()}
}

func (c *catalogModel) up() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *catalogModel) down() {
	if c.cursor < len(c.tools)-1 {
		c.cursor++
	}
}

// pick moves the cursor to index i and reports whether it exists.
func (c *catalogModel) pick(i int) bool {
	if i < 0 || i >= len(c.tools) {
		return false
	}
	c.cursor = i
	return true
}

func (c catalogModel) selected() domain.ToolDescriptor {
	return c.tools[c.cursor]
}

func (c catalogModel) hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "Move"},
		{Key: "Enter", Desc: "Open"},
		{Key: "1-5", Desc: "Jump"},
		{Key: "Ctrl+E", Desc: "Activity"},
		{Key: "q", Desc: "Quit"},
	}
}

func (c catalogModel) View() string {
	width := components.ContentWidth(c.width)
	var sb strings.Builder
	sb.WriteString(theme.CatalogTitle.Render("Powerful AI Tools, All in One Place"))
	sb.WriteString("\n")
	sb.WriteString(theme.TextMuted.Render("From image generation to voice enhancement, pick a tool to get started."))
	sb.WriteString("\n\n")

	for i, d := range c.tools {
		title := theme.Accent(d.Accent).Render(d.Title)
		desc := theme.TextMuted.Render(components.Wrap(d.Description, width-4))
		entry := title + "\n" + desc
		if i == c.cursor {
			entry = theme.CatalogSelected.BorderForeground(lipgloss.Color(d.Accent.To)).Render(entry)
		} else {
			entry = theme.CatalogItem.Render(entry)
		}
		sb.WriteString(entry)
		sb.WriteString("\n\n")
	}
	return strings.TrimSuffix(sb.String(), "\n\n")
}
