// Package eventbus fans invocation lifecycle and side-effect events out to
// in-process subscribers such as the history recorder and the activity pane.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"aitools/internal/domain"
)

// Filter selects the events a subscriber receives.
type Filter func(domain.Event) bool

// OfType matches one event type.
func OfType(t domain.EventType) Filter {
	return func(e domain.Event) bool { return e.Type == t }
}

// OfTool matches every event raised by one tool.
func OfTool(id domain.ToolID) Filter {
	return func(e domain.Event) bool { return e.Tool == id }
}

// Any matches every event.
func Any(domain.Event) bool { return true }

type subscriber struct {
	filter  Filter
	handler domain.EventHandler
}

// Bus delivers every event to each matching subscriber on its own
// goroutine. Handlers see no ordering guarantee across events.
type Bus struct {
	logger *slog.Logger

	// mu guards subs and closed. Publish holds the read lock while it
	// registers deliveries so Close cannot start waiting in between.
	mu     sync.RWMutex
	subs   map[uint64]subscriber
	seq    uint64
	closed bool

	inflight  sync.WaitGroup
	published atomic.Uint64
	dropped   atomic.Uint64
}

var _ domain.EventBus = (*Bus)(nil)

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger, subs: make(map[uint64]subscriber)}
}

// Publish hands event to every matching subscriber. A closed bus counts
// the event as dropped.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	b.published.Add(1)
	for _, s := range b.subs {
		if s.filter(event) {
			b.inflight.Go(func() { b.deliver(ctx, event, s.handler) })
		}
	}
}

func (b *Bus) deliver(ctx context.Context, event domain.Event, h domain.EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(event.Type),
				"tool", string(event.Tool),
				"panic", r,
			)
		}
	}()
	h(ctx, event)
}

// Subscribe registers handler for one event type and returns its
// unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	return b.SubscribeFunc(OfType(eventType), handler)
}

// SubscribeTool registers handler for every event of one tool.
func (b *Bus) SubscribeTool(tool domain.ToolID, handler domain.EventHandler) func() {
	return b.SubscribeFunc(OfTool(tool), handler)
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	return b.SubscribeFunc(Any, handler)
}

// SubscribeFunc registers handler for the events filter accepts. The
// returned function removes it and may be called more than once.
func (b *Bus) SubscribeFunc(filter Filter, handler domain.EventHandler) func() {
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = subscriber{filter: filter, handler: handler}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Stats returns the number of events accepted and dropped after Close.
func (b *Bus) Stats() (published, dropped uint64) {
	return b.published.Load(), b.dropped.Load()
}

// Close rejects further events and waits for running handlers. It is
// idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.inflight.Wait()
}
