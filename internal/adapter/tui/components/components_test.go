package components

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

func TestStatusBarShowsToolAndStatus(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(120)
	sb.Hints = []KeyHint{{Key: "Enter", Desc: "Generate"}}
	sb.Tool = "AI Image Generator"
	sb.Status = domain.StatusInFlight

	out := sb.View()
	assert.Contains(t, out, "Generate")
	assert.Contains(t, out, "AI Image Generator")
	assert.Contains(t, out, "working")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "ready", StatusLabel(domain.StatusIdle))
	assert.Equal(t, "failed", StatusLabel(domain.StatusFailed))
	assert.Equal(t, "other", StatusLabel(domain.Status("other")))
}

func TestWrapTextKeepsLineBreaks(t *testing.T) {
	out := wrapText("first line\nsecond line that is long", 10)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "first line", lines[0])
	for _, l := range lines[1:] {
		assert.True(t, strings.HasPrefix(l, "  "), "continuation %q should be indented", l)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	out := wrapText("abcdefghijkl mn", 5)
	assert.Equal(t, "abcde\n  fghij\n  kl mn", out)
	assert.Equal(t, "short", wrapText("short", 0))
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/a/b.wav", TruncatePath("/a/b.wav", 40))
	out := TruncatePath("/home/user/very/deep/nested/path/memo.wav", 30)
	assert.LessOrEqual(t, len(out), 30+len(theme.SymbolEllipsis))
	assert.True(t, strings.HasSuffix(out, "path/memo.wav"))
}

func TestTranscriptRendersRolesAndFooter(t *testing.T) {
	tr := NewTranscript()
	assert.Equal(t, "  Initializing...", tr.View())
	assert.Contains(t, tr.Content(), "No messages yet")

	tr.SetSize(80, 10)
	tr.Sync([]domain.Message{
		{ID: "1", Role: domain.RoleUser, Content: "hello there", Timestamp: time.Now()},
	}, "typing")
	out := tr.Content()
	assert.Equal(t, 1, tr.Len())
	assert.Contains(t, out, theme.SymbolUser)
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "now")
	assert.True(t, strings.HasSuffix(out, "typing"))
}

func TestEditorSubmitKeepsText(t *testing.T) {
	ed := NewEditor("Type...", 3)
	ed.Resize(60)
	ed.Sync("  hi  ")

	ed, cmd := ed.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "  hi  ", ed.Value())
}

func TestEditorInactiveIgnoresKeys(t *testing.T) {
	ed := NewEditor("", 1)
	ed.Activate(false)
	assert.False(t, ed.Active())
	_, cmd := ed.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestColumnsLayout(t *testing.T) {
	c := NewColumns(0)
	c.SetSize(60, 20)
	require.True(t, c.Stacked())
	l, r := c.Widths()
	assert.Equal(t, []int{60, 60, 10}, []int{l, r, c.Height()})

	c.SetSize(121, 20)
	require.False(t, c.Stacked())
	l, r = c.Widths()
	assert.Equal(t, []int{60, 60, 20}, []int{l, r, c.Height()})

	assert.Equal(t, Left, c.Focus())
	c.Toggle()
	assert.Equal(t, Right, c.Focus())
	c.Toggle()
	assert.Equal(t, Left, c.Focus())

	joined := c.Join("a\nb\nc", "x")
	assert.Equal(t, 3, lipgloss.Height(joined))
	assert.Contains(t, joined, "│")
}

func TestFormatEvent(t *testing.T) {
	payload, err := json.Marshal(domain.InvocationPayload{
		Token:     "01HZX0000000000000ABCDEFGH",
		Status:    domain.StatusFailed,
		ErrorCode: domain.CodeImageTimeout,
	})
	require.NoError(t, err)

	line := FormatEvent(domain.Event{
		Type:      domain.EventInvocationFailed,
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Tool:      domain.ToolImageGenerator,
		Payload:   payload,
	})
	assert.Contains(t, line, "15:04:05")
	assert.Contains(t, line, "image-generator")
	assert.Contains(t, line, "ABCDEFGH")
	assert.Contains(t, line, "IMAGE_TIMEOUT")
}

func TestActivityLogKeepsNewestLines(t *testing.T) {
	a := NewActivityLog()
	assert.Empty(t, a.View())
	a.SetSize(80, 10)
	assert.Contains(t, a.View(), "Waiting for events")

	for i := 0; i < activityLimit+10; i++ {
		a.Append(domain.Event{Type: domain.EventSpeechStarted, Timestamp: time.Now()})
	}
	a.Append(domain.Event{Type: domain.EventInvocationSubmitted, Tool: domain.ToolTranslator, Timestamp: time.Now()})
	assert.Equal(t, activityLimit, a.Len())
	assert.Contains(t, a.View(), "translator")
}

func TestOverlayShowAndDismiss(t *testing.T) {
	var o Overlay
	assert.Empty(t, o.View())

	o.Show("Keys", "Enter  run", 80, 24)
	assert.True(t, o.Shown())
	assert.Equal(t, "Keys", o.Title())
	assert.Contains(t, o.View(), "Keys")

	o.Resize(100, 30)
	o, _ = o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, o.Shown())
	assert.Empty(t, o.View())
}
