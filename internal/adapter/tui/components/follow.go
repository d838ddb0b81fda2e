package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// follower is a viewport that sticks to the bottom as content grows until
// the user scrolls away, and sticks again once they return.
type follower struct {
	vp     viewport.Model
	sized  bool
	follow bool
}

func newFollower() follower { return follower{follow: true} }

func (f *follower) resize(w, h int) {
	if !f.sized {
		f.vp = viewport.New(w, h)
		f.vp.MouseWheelEnabled = true
		f.vp.MouseWheelDelta = 3
		f.sized = true
		return
	}
	f.vp.Width, f.vp.Height = w, h
}

// show replaces the content. grew moves to the bottom when following.
func (f *follower) show(content string, grew bool) {
	if !f.sized {
		return
	}
	f.vp.SetContent(content)
	if grew && f.follow {
		f.vp.GotoBottom()
	}
}

func (f *follower) update(msg tea.Msg) tea.Cmd {
	if !f.sized {
		return nil
	}
	var cmd tea.Cmd
	f.vp, cmd = f.vp.Update(msg)
	f.follow = f.vp.AtBottom()
	return cmd
}

func (f follower) view(unsized string) string {
	if !f.sized {
		return unsized
	}
	return f.vp.View()
}
