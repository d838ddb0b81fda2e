// Package app implements the Bubble Tea program: a catalog of tools and one
// page per tool, each driven by its binding's invocation controller.
package app

import (
	"aitools/internal/domain"
)

// snapshotMsg signals that a page's controller published a new snapshot.
type snapshotMsg struct {
	Tool domain.ToolID
}

// eventMsg forwards a bus event to the activity pane.
type eventMsg struct {
	Event domain.Event
}

// actionDoneMsg reports the outcome of a side effect (copy, speak,
// download, playback) started from a page.
type actionDoneMsg struct {
	Note string
	Err  error
}

// showOverlayMsg asks the root model to show long content in an overlay.
type showOverlayMsg struct {
	Title   string
	Content string
}

// clearNoteMsg expires the status bar note with the matching sequence.
type clearNoteMsg struct {
	Seq int
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
