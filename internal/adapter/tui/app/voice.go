package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/adapter/tui/uxerror"
	"aitools/internal/domain"
	"aitools/internal/usecase/tools"
)

type voiceFocus int

const (
	focusPath voiceFocus = iota
	focusOptions
)

var voiceOptions = []struct {
	option tools.VoiceOption
	label  string
	hint   string
}{
	{tools.NoiseReduction, "Noise Reduction", "Remove background noise"},
	{tools.VoiceClarity, "Voice Clarity", "Enhance speech clarity"},
	{tools.EchoRemoval, "Echo Removal", "Remove echo and reverb"},
	{tools.VolumeNormalization, "Volume Normalization", "Balance volume levels"},
}

type voicePage struct {
	env       pageEnv
	desc      domain.ToolDescriptor
	tool      *tools.VoiceEnhancer
	path      components.Editor
	focus     voiceFocus
	cursor    int
	selectErr error
	unsub     func()
	width     int
}

func newVoicePage(env pageEnv, d domain.ToolDescriptor, v *tools.VoiceEnhancer) *voicePage {
	p := &voicePage{
		env:  env,
		desc: d,
		tool: v,
		path: components.NewEditor("Path to an audio file (MP3, WAV, M4A...)", 1),
	}
	p.unsub = watch(v.Controller(), d.ID, env.notify)
	return p
}

func (p *voicePage) Descriptor() domain.ToolDescriptor { return p.desc }

func (p *voicePage) Status() domain.Status { return p.tool.Controller().Snapshot().Status }

func (p *voicePage) Hints() []components.KeyHint {
	if p.focus == focusPath {
		return []components.KeyHint{
			{Key: "Enter", Desc: "Select file"},
			{Key: "Tab", Desc: "Options"},
			{Key: "Ctrl+P", Desc: "Play/Pause"},
			{Key: "Ctrl+D", Desc: "Download"},
			{Key: "Esc", Desc: "Back"},
		}
	}
	return []components.KeyHint{
		{Key: "Enter", Desc: p.desc.Action},
		{Key: "Space", Desc: "Toggle"},
		{Key: "Tab", Desc: "File"},
		{Key: "Ctrl+P", Desc: "Play/Pause"},
		{Key: "Ctrl+R", Desc: "Reset"},
		{Key: "Esc", Desc: "Back"},
	}
}

func (p *voicePage) SetSize(w, _ int) {
	p.width = w
	p.path.Resize(theme.Clamp(w-4, 20, theme.MaxContentWidth-2))
}

func (p *voicePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case components.SubmitMsg:
		p.selectErr = p.tool.SelectFile(msg.Text)
		if p.selectErr == nil {
			p.setFocus(focusOptions)
		}
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			if p.focus == focusPath {
				p.setFocus(focusOptions)
			} else {
				p.setFocus(focusPath)
			}
			return nil
		case "ctrl+p":
			playing, err := p.tool.TogglePlayback()
			note := "Paused"
			if playing {
				note = "Playing enhanced audio"
			}
			return done(note, err)
		case "ctrl+d":
			return savedCmd(p.env.ctx, func(ctx context.Context) (string, error) {
				return p.tool.Download(ctx, p.env.downloadDir)
			})
		case "ctrl+r":
			p.tool.Reset()
			return nil
		}
		if p.focus == focusOptions {
			p.updateOptions(msg)
			return nil
		}
	}
	var cmd tea.Cmd
	p.path, cmd = p.path.Update(msg)
	return cmd
}

func (p *voicePage) updateOptions(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(voiceOptions)-1 {
			p.cursor++
		}
	case " ", "x":
		p.tool.ToggleOption(voiceOptions[p.cursor].option)
	case "enter":
		p.tool.Enhance()
	}
}

func (p *voicePage) setFocus(f voiceFocus) {
	p.focus = f
	p.path.Activate(f == focusPath)
}

func (p *voicePage) View(spin string) string {
	snap := p.tool.Controller().Snapshot()

	file := theme.TextMuted.Render("  No file selected")
	if summary := p.tool.FileSummary(); summary != "" {
		file = "  " + theme.TextSuccess.Render(theme.SymbolSuccess) + " " + summary
	}
	if p.selectErr != nil {
		file += "\n" + theme.ErrorLabel.Render(theme.SymbolError+" ") + uxerror.Explain(p.selectErr).Render()
	}
	upload := p.path.View() + "\n" + file

	opts := optionValues(snap.Input.Options)
	var sb strings.Builder
	for i, o := range voiceOptions {
		box := theme.SymbolUncheck
		if opts[i] {
			box = theme.SymbolCheck
		}
		line := fmt.Sprintf("%s %-21s %s", box, o.label, theme.TextMuted.Render(o.hint))
		if p.focus == focusOptions && i == p.cursor {
			line = theme.CatalogSelected.Render(line)
		} else {
			line = theme.CatalogItem.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	result := outcome(snap, p.desc, spin, func(r domain.EnhancedAudio) string {
		state := theme.SymbolPlay + " Ctrl+P to play"
		if p.tool.Playing() {
			state = theme.SymbolPause + " Playing " + theme.SymbolBullet + " Ctrl+P to pause"
		}
		return theme.TextSuccess.Render(theme.SymbolSuccess+" Enhanced Audio") + "\n" +
			"  " + components.TruncatePath(r.Path, components.ContentWidth(p.width)-2) + "\n" +
			"  " + theme.TextInfo.Render(state) + "\n" +
			theme.Dim.Render("  Ctrl+D to download")
	})
	if result == "" {
		result = theme.TextMuted.Render("  Your enhanced audio will appear here")
	}

	return joinSections(
		header(p.desc, p.width),
		panel(p.desc, p.desc.Heading, upload, p.width),
		panel(p.desc, "Enhancement Options", strings.TrimSuffix(sb.String(), "\n"), p.width),
		panel(p.desc, "Result", result, p.width),
	)
}

func optionValues(o domain.VoiceOptions) [4]bool {
	return [4]bool{o.NoiseReduction, o.VoiceClarity, o.EchoRemoval, o.VolumeNormalization}
}

func (p *voicePage) Close() {
	p.unsub()
	p.tool.Dispose()
}
