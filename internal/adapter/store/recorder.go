package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"aitools/internal/domain"
)

// writeTimeout bounds each history write.
const writeTimeout = 5 * time.Second

// Recorder writes invocation events from the bus into a store.
// Write failures are logged, never surfaced to the tools.
type Recorder struct {
	store  domain.InvocationStore
	logger *slog.Logger
}

// NewRecorder creates a recorder over store.
func NewRecorder(store domain.InvocationStore, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Attach subscribes the recorder to bus and returns the unsubscribe function.
func (r *Recorder) Attach(bus domain.EventBus) func() {
	return bus.SubscribeAll(r.Handle)
}

// Handle records one event. Non-invocation events are ignored.
func (r *Recorder) Handle(ctx context.Context, event domain.Event) {
	switch event.Type {
	case domain.EventInvocationSubmitted, domain.EventInvocationSucceeded, domain.EventInvocationFailed,
		domain.EventInvocationReset, domain.EventInvocationDisposed:
	default:
		return
	}

	var p domain.InvocationPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		r.logger.Warn("history: malformed invocation payload", "event", string(event.Type), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var err error
	switch event.Type {
	case domain.EventInvocationSubmitted:
		err = r.store.Begin(ctx, domain.InvocationRecord{
			Token:       p.Token,
			Tool:        event.Tool,
			Status:      p.Status,
			SubmittedAt: p.SubmittedAt,
		})
		if err == nil && !p.Superseded.None() {
			err = r.discard(ctx, p.Superseded, event)
		}
	case domain.EventInvocationSucceeded, domain.EventInvocationFailed:
		err = r.store.Finish(ctx, domain.InvocationRecord{
			Token:       p.Token,
			Tool:        event.Tool,
			Status:      p.Status,
			ErrorCode:   p.ErrorCode,
			Error:       p.Error,
			SubmittedAt: p.SubmittedAt,
			FinishedAt:  p.FinishedAt,
		})
	default:
		if !p.Token.None() {
			err = r.discard(ctx, p.Token, event)
		}
	}
	if err != nil {
		r.logger.Warn("history write failed", "event", string(event.Type), "token", string(p.Token), "error", err)
	}
}

func (r *Recorder) discard(ctx context.Context, token domain.Token, event domain.Event) error {
	return r.store.Finish(ctx, domain.InvocationRecord{
		Token:      token,
		Tool:       event.Tool,
		Status:     StatusDiscarded,
		FinishedAt: event.Timestamp,
	})
}
