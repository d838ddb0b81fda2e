package tools

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"aitools/internal/domain"
)

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func (c *fakeClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

type spoken struct {
	text string
	lang string
}

type fakeSpeaker struct {
	mu  sync.Mutex
	got []spoken
}

func (s *fakeSpeaker) Speak(_ context.Context, text, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, spoken{text: text, lang: lang})
	return nil
}

type fakePlayer struct {
	mu      sync.Mutex
	path    string
	done    func()
	stopped int
	err     error
}

func (p *fakePlayer) Play(path string, done func()) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.path = path
	p.done = done
	return func() {
		p.mu.Lock()
		p.stopped++
		p.mu.Unlock()
	}, nil
}

func (p *fakePlayer) finish() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	done()
}

type fakeFetcher struct {
	mu  sync.Mutex
	src string
}

func (f *fakeFetcher) Fetch(_ context.Context, src, dir string) (string, error) {
	if src == "" {
		return "", errors.New("empty source")
	}
	f.mu.Lock()
	f.src = src
	f.mu.Unlock()
	return filepath.Join(dir, "download"), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(typ domain.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// value returns a capability that immediately yields r.
func value[I, R any](r R) domain.Capability[I, R] {
	return func(context.Context, I) (R, error) { return r, nil }
}

// gated returns a capability that blocks until release is closed.
func gated[I, R any](release <-chan struct{}, r R) domain.Capability[I, R] {
	return func(context.Context, I) (R, error) {
		<-release
		return r, nil
	}
}
