package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// noteTTL is how long a status bar note stays visible.
const noteTTL = 4 * time.Second

// actionTimeout bounds side effects started from a page.
const actionTimeout = 2 * time.Minute

// actionCmd runs fn off the update loop and reports its outcome.
func actionCmd(ctx context.Context, note string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return actionDoneMsg{Err: err}
		}
		return actionDoneMsg{Note: note}
	}
}

// savedCmd runs a download and reports the written path.
func savedCmd(ctx context.Context, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		path, err := fn(ctx)
		if err != nil {
			return actionDoneMsg{Err: err}
		}
		return actionDoneMsg{Note: "Saved " + path}
	}
}

// done reports an action that already completed on the update loop.
func done(note string, err error) tea.Cmd {
	return func() tea.Msg { return actionDoneMsg{Note: note, Err: err} }
}

func clearNoteCmd(seq int) tea.Cmd {
	return tea.Tick(noteTTL, func(time.Time) tea.Msg { return clearNoteMsg{Seq: seq} })
}

func showOverlay(title, content string) tea.Cmd {
	return func() tea.Msg { return showOverlayMsg{Title: title, Content: content} }
}
