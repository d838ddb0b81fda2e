package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

var summaryLengths = []domain.SummaryLength{domain.SummaryShort, domain.SummaryMedium, domain.SummaryDetailed}

type summarizerPage struct {
	env   pageEnv
	desc  domain.ToolDescriptor
	tool  *tools.TextSummarizer
	text  components.Editor
	unsub func()
	width int
}

func newSummarizerPage(env pageEnv, d domain.ToolDescriptor, s *tools.TextSummarizer) *summarizerPage {
	p := &summarizerPage{
		env:  env,
		desc: d,
		tool: s,
		text: components.NewEditor("Paste your text here to summarize...", 8),
	}
	p.unsub = watch(s.Controller(), d.ID, env.notify)
	return p
}

func (p *summarizerPage) Descriptor() domain.ToolDescriptor { return p.desc }

func (p *summarizerPage) Status() domain.Status { return p.tool.Controller().Snapshot().Status }

func (p *summarizerPage) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: p.desc.Action},
		{Key: "Ctrl+L", Desc: "Length"},
		{Key: "Ctrl+Y", Desc: "Copy"},
		{Key: "Ctrl+F", Desc: "Full view"},
		{Key: "Ctrl+R", Desc: "Reset"},
		{Key: "Esc", Desc: "Back"},
	}
}

func (p *summarizerPage) SetSize(w, _ int) {
	p.width = w
	p.text.Resize(theme.Clamp(w-4, 20, theme.MaxContentWidth-2))
}

func (p *summarizerPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		p.tool.Summarize()
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+l":
			p.tool.SetLength(nextLength(p.tool.Controller().Snapshot().Input.Length))
			return nil
		case "ctrl+y":
			return done("Summary copied to clipboard", p.tool.Copy())
		case "ctrl+f":
			snap := p.tool.Controller().Snapshot()
			if snap.Result == "" {
				return nil
			}
			return showOverlay("Summary", components.Wrap(snap.Result, components.ContentWidth(p.width)))
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

func nextLength(cur domain.SummaryLength) domain.SummaryLength {
	for i, l := range summaryLengths {
		if l == cur {
			return summaryLengths[(i+1)%len(summaryLengths)]
		}
	}
	return domain.SummaryMedium
}

func lengthPicker(cur domain.SummaryLength) string {
	var parts []string
	for _, l := range summaryLengths {
		label := strings.ToUpper(string(l[:1])) + string(l[1:]) + " (" + l.Ratio() + ")"
		if l == cur {
			parts = append(parts, theme.TextAccent.Bold(true).Render("["+label+"]"))
		} else {
			parts = append(parts, theme.TextMuted.Render(" "+label+" "))
		}
	}
	return "  Summary length: " + strings.Join(parts, " ")
}

func (p *summarizerPage) View(spin string) string {
	snap := p.tool.Controller().Snapshot()
	input := p.text.View() + "\n" + statsLine(p.tool.Stats()) + "\n" + lengthPicker(snap.Input.Length)

	result := outcome(snap, p.desc, spin, func(r string) string {
		return components.Wrap(r, components.ContentWidth(p.width)-2) + "\n" +
			statsLine(domain.StatsOf(r)) + theme.Dim.Render("  Ctrl+Y to copy")
	})
	if result == "" {
		result = theme.TextMuted.Render("  Your summary will appear here")
	}
	return joinSections(
		header(p.desc, p.width),
		panel(p.desc, p.desc.Heading, input, p.width),
		panel(p.desc, "Summary", result, p.width),
	)
}

func (p *summarizerPage) Close() {
	p.unsub()
	p.tool.Dispose()
}
