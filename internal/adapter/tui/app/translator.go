package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

type translatorPage struct {
	env   pageEnv
	desc  domain.ToolDescriptor
	tool  *tools.Translator
	text  components.Editor
	split components.Columns
	unsub func()
	width int
}

func newTranslatorPage(env pageEnv, d domain.ToolDescriptor, t *tools.Translator) *translatorPage {
	p := &translatorPage{
		env:   env,
		desc:  d,
		tool:  t,
		text:  components.NewEditor("Enter text to translate...", 6),
		split: components.NewColumns(0.5),
	}
	p.unsub = watch(t.Controller(), d.ID, env.notify)
	return p
}

func (p *translatorPage) Descriptor() domain.ToolDescriptor { return p.desc }

func (p *translatorPage) Status() domain.Status { return p.tool.Controller().Snapshot().Status }

func (p *translatorPage) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: p.desc.Action},
		{Key: "Ctrl+O/T", Desc: "From/To"},
		{Key: "Ctrl+S", Desc: "Swap"},
		{Key: "Tab", Desc: "Pane"},
		{Key: "Ctrl+Y", Desc: "Copy"},
		{Key: "Ctrl+K", Desc: "Speak"},
		{Key: "Esc", Desc: "Back"},
	}
}

func (p *translatorPage) SetSize(w, h int) {
	p.width = w
	p.split.SetSize(theme.Clamp(w, 40, 2*theme.MaxContentWidth), h)
	left, _ := p.split.Widths()
	p.text.Resize(theme.Clamp(left-4, 20, theme.MaxContentWidth))
}

func (p *translatorPage) side() tools.Side {
	if p.split.Focus() == components.Right {
		return tools.TargetSide
	}
	return tools.SourceSide
}

func (p *translatorPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		p.tool.Translate()
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			p.split.Toggle()
			p.text.Activate(p.split.Focus() == components.Left)
			return nil
		case "ctrl+o":
			in := p.tool.Controller().Snapshot().Input
			return done("", p.tool.SetSource(cycleLanguage(domain.SourceLanguages(), in.Source)))
		case "ctrl+t":
			in := p.tool.Controller().Snapshot().Input
			return done("", p.tool.SetTarget(cycleLanguage(domain.TargetLanguages(), in.Target)))
		case "ctrl+s":
			if err := p.tool.Swap(); err != nil {
				return done("", err)
			}
			p.text.Sync(p.tool.Controller().Snapshot().Input.Text)
			return nil
		case "ctrl+y":
			return done("Copied to clipboard", p.tool.Copy(p.side()))
		case "ctrl+k":
			side := p.side()
			return actionCmd(p.env.ctx, "Finished speaking", func(ctx context.Context) error {
				return p.tool.Speak(ctx, side)
			})
		case "ctrl+r":
			p.tool.Reset()
			return nil
		}
	}
	var cmd tea.Cmd
	p.text, cmd = p.text.Update(msg)
	if v := p.text.Value(); v != p.tool.Controller().Snapshot().Input.Text {
		p.tool.SetText(v)
	}
	return cmd
}

// cycleLanguage returns the language after cur in langs, wrapping around.
func cycleLanguage(langs []domain.Language, cur string) string {
	for i, l := range langs {
		if l.Code == cur {
			return langs[(i+1)%len(langs)].Code
		}
	}
	return langs[0].Code
}

func (p *translatorPage) View(spin string) string {
	snap := p.tool.Controller().Snapshot()
	srcStats, dstStats := p.tool.Stats()

	swap := theme.TextAccent.Render("⇄")
	if !p.tool.CanSwap() {
		swap = theme.Dim.Render("⇄")
	}
	langs := "  " + theme.Bold.Render(domain.LanguageName(snap.Input.Source)) + "  " + swap + "  " +
		theme.Bold.Render(domain.LanguageName(snap.Input.Target))

	leftW, rightW := p.split.Widths()
	left := p.text.View() + "\n" + statsLine(srcStats)
	right := outcome(snap, p.desc, spin, func(r string) string {
		return components.Wrap(r, rightW-6) + "\n" + statsLine(dstStats)
	})
	if right == "" {
		right = theme.TextMuted.Render("  Translation will appear here...")
	}

	leftTitle, rightTitle := "Source", "Translation"
	if p.split.Focus() == components.Left {
		leftTitle = theme.SymbolArrowR + " " + leftTitle
	} else {
		rightTitle = theme.SymbolArrowR + " " + rightTitle
	}
	panes := p.split.Join(
		panel(p.desc, leftTitle, left, leftW),
		panel(p.desc, rightTitle, right, rightW),
	)
	return joinSections(header(p.desc, p.width), langs, panes)
}

func (p *translatorPage) Close() {
	p.unsub()
	p.tool.Dispose()
}
