package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"aitools/internal/adapter/tui/components"
	"aitools/internal/adapter/tui/theme"
	"aitools/internal/adapter/tui/uxerror"
	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// page is one open tool. Pages are pointers; the root model owns at most
// one and closes it when the user leaves.
type page interface {
	Descriptor() domain.ToolDescriptor
	Status() domain.Status
	Hints() []components.KeyHint
	SetSize(w, h int)
	// Update handles a message the root model did not consume.
	Update(msg tea.Msg) tea.Cmd
	// View renders the page body. spin is the current spinner frame.
	View(spin string) string
	// Close unsubscribes and disposes the binding.
	Close()
}

// pageEnv carries what pages need beyond their binding.
type pageEnv struct {
	ctx         context.Context
	downloadDir string
	notify      func(tea.Msg)
}

// watch forwards every snapshot of ctrl to the program as a snapshotMsg.
func watch[I, R any](ctrl *invocation.Controller[I, R], tool domain.ToolID, notify func(tea.Msg)) func() {
	if notify == nil {
		return func() {}
	}
	return ctrl.Subscribe(func(domain.Snapshot[I, R]) {
		notify(snapshotMsg{Tool: tool})
	})
}

// outcome renders the lifecycle part of a snapshot: a spinner while in
// flight, the humanized error after a failure, otherwise the result.
func outcome[I, R any](snap domain.Snapshot[I, R], d domain.ToolDescriptor, spin string, result func(R) string) string {
	switch {
	case snap.Status == domain.StatusInFlight:
		return spin + " " + theme.TextInfo.Render(d.Busy)
	case snap.Status == domain.StatusFailed && snap.Err != nil:
		return theme.ErrorLabel.Render(theme.SymbolError+" ") + uxerror.Explain(snap.Err).Render()
	case snap.HasResult:
		out := result(snap.Result)
		if took := elapsed(snap.SubmittedAt, snap.FinishedAt); took != "" {
			out += "\n" + theme.Timestamp.Render("  finished in "+took)
		}
		return out
	}
	return ""
}

func elapsed(from, to time.Time) string {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return ""
	}
	return to.Sub(from).Round(100 * time.Millisecond).String()
}

// header renders the accent title, description and section heading.
func header(d domain.ToolDescriptor, width int) string {
	title := theme.Accent(d.Accent).Render(d.Title)
	desc := theme.TextMuted.Render(components.Wrap(d.Description, components.ContentWidth(width)))
	return title + "\n" + desc
}

// panel draws content in the tool's accent border.
func panel(d domain.ToolDescriptor, heading, content string, width int) string {
	body := content
	if heading != "" {
		body = theme.PaneTitle.Render(heading) + "\n" + content
	}
	return theme.AccentBorder(d.Accent).Width(theme.Clamp(width-2, 20, theme.MaxContentWidth)).Render(body)
}

// statsLine renders "N characters · M words".
func statsLine(s domain.TextStats) string {
	return theme.TextMuted.Render(fmt.Sprintf("%d characters %s %d words", s.Characters, theme.SymbolBullet, s.Words))
}

// helpText lists hints as a key reference for the help overlay.
func helpText(hints []components.KeyHint) string {
	var sb strings.Builder
	for _, h := range hints {
		fmt.Fprintf(&sb, "  %-12s %s\n", h.Key, h.Desc)
	}
	return sb.String()
}

func joinSections(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
