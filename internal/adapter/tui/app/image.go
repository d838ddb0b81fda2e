package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

type imagePage struct {
	env    pageEnv
	desc   domain.ToolDescriptor
	tool   *tools.ImageGenerator
	prompt components.Editor
	unsub  func()
	width  int
}

func newImagePage(env pageEnv, d domain.ToolDescriptor, g *tools.ImageGenerator) *imagePage {
	p := &imagePage{
		env:    env,
		desc:   d,
		tool:   g,
		prompt: components.NewEditor("Describe the image you want to create... (e.g., 'A serene sunset over mountains with vibrant colors')", 4),
	}
	p.unsub = watch(g.Controller(), d.ID, env.notify)
	return p
}

func (p *imagePage) Descriptor() domain.ToolDescriptor { return p.desc }

func (p *imagePage) Status() domain.Status { return p.tool.Controller().Snapshot().Status }

func (p *imagePage) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: p.desc.Action},
		{Key: "Ctrl+D", Desc: "Download"},
		{Key: "Ctrl+R", Desc: "Reset"},
		{Key: "Esc", Desc: "Back"},
	}
}

func (p *imagePage) SetSize(w, _ int) {
	p.width = w
	p.prompt.Resize(theme.Clamp(w-4, 20, theme.MaxContentWidth-2))
}

func (p *imagePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		p.tool.Generate()
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+d":
			return savedCmd(p.env.ctx, func(ctx context.Context) (string, error) {
				return p.tool.Download(ctx, p.env.downloadDir)
			})
		case "ctrl+r":
			p.tool.Reset()
			return nil
		}
	}
	var cmd tea.Cmd
	p.prompt, cmd = p.prompt.Update(msg)
	if v := p.prompt.Value(); v != p.tool.Controller().Snapshot().Input {
		p.tool.SetPrompt(v)
	}
	return cmd
}

func (p *imagePage) View(spin string) string {
	snap := p.tool.Controller().Snapshot()
	result := outcome(snap, p.desc, spin, func(r domain.ImageResult) string {
		return theme.TextSuccess.Render(theme.SymbolSuccess+" Generated Image") + "\n" +
			"  " + theme.TextInfo.Render(r.URL) + "\n" +
			theme.TextMuted.Render(components.Wrap("Prompt: "+r.Prompt, components.ContentWidth(p.width))) + "\n" +
			theme.Dim.Render("  Ctrl+D to download")
	})
	if result == "" {
		result = theme.TextMuted.Render("  Your generated image will appear here")
	}
	return joinSections(
		header(p.desc, p.width),
		panel(p.desc, p.desc.Heading, p.prompt.View(), p.width),
		panel(p.desc, "Generated Image", result, p.width),
	)
}

func (p *imagePage) Close() {
	p.unsub()
	p.tool.Dispose()
}
