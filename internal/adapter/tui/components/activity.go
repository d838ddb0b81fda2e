package components

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

// activityLimit bounds the lines kept by the activity pane.
const activityLimit = 500

// ActivityLog is the pane that tails lifecycle and side-effect events.
type ActivityLog struct {
	pane  follower
	lines []string
}

// NewActivityLog returns an empty pane.
func NewActivityLog() ActivityLog {
	return ActivityLog{pane: newFollower()}
}

// SetSize resizes the pane.
func (a *ActivityLog) SetSize(w, h int) {
	a.pane.resize(w, h)
	a.pane.show(a.content(), false)
}

// Append formats evt and adds it, forgetting the oldest line past the limit.
func (a *ActivityLog) Append(evt domain.Event) {
	a.lines = append(a.lines, FormatEvent(evt))
	if over := len(a.lines) - activityLimit; over > 0 {
		a.lines = append(a.lines[:0], a.lines[over:]...)
	}
	a.pane.show(a.content(), true)
}

// Len is the number of retained lines.
func (a ActivityLog) Len() int { return len(a.lines) }

// Update scrolls the pane.
func (a ActivityLog) Update(msg tea.Msg) (ActivityLog, tea.Cmd) {
	cmd := a.pane.update(msg)
	return a, cmd
}

// View draws the visible lines.
func (a ActivityLog) View() string { return a.pane.view("") }

func (a ActivityLog) content() string {
	if len(a.lines) == 0 {
		return theme.TextMuted.Render("  Waiting for events...")
	}
	return strings.Join(a.lines, "\n")
}

// FormatEvent renders evt as one log line: time, type, tool, then the
// token tail and error code of invocation events.
func FormatEvent(evt domain.Event) string {
	kind := eventStyle(evt.Type).Render(fmt.Sprintf("%-22s", evt.Type))
	line := fmt.Sprintf("  %s  %s  %-16s", theme.Dim.Render(evt.Timestamp.Format("15:04:05")), kind, evt.Tool)

	if !strings.HasPrefix(string(evt.Type), "invocation.") {
		return line
	}
	var p domain.InvocationPayload
	if json.Unmarshal(evt.Payload, &p) != nil {
		return line
	}
	if !p.Token.None() {
		line += theme.TextMuted.Render(" " + tokenTail(p.Token))
	}
	if p.ErrorCode != "" {
		line += " " + theme.TextError.Render(string(p.ErrorCode))
	}
	return line
}

func eventStyle(t domain.EventType) lipgloss.Style {
	switch {
	case t == domain.EventInvocationSucceeded:
		return theme.TextSuccess
	case t == domain.EventInvocationFailed:
		return theme.TextError
	case t == domain.EventInvocationSubmitted:
		return theme.TextInfo
	case strings.HasPrefix(string(t), "sideeffect."):
		return theme.TextAccent
	}
	return theme.TextMuted
}

// tokenTail keeps the random end of a ULID token. Tokens minted in the
// same millisecond differ only there.
func tokenTail(t domain.Token) string {
	s := string(t)
	return s[max(len(s)-8, 0):]
}
