package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventInvocationSubmitted EventType = "invocation.submitted"
	EventInvocationSucceeded EventType = "invocation.succeeded"
	EventInvocationFailed    EventType = "invocation.failed"
	EventInvocationReset     EventType = "invocation.reset"
	EventInvocationDisposed  EventType = "invocation.disposed"

	// Auxiliary side effects triggered from presentation state.
	EventClipboardCopied EventType = "sideeffect.clipboard"
	EventSpeechStarted   EventType = "sideeffect.speech"
	EventPlaybackToggled EventType = "sideeffect.playback"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Tool      ToolID          `json:"tool,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// InvocationPayload is the payload of invocation.* events. On reset and
// disposed events Token is the in-flight submission that was disowned, if any.
type InvocationPayload struct {
	Token       Token     `json:"token,omitempty"`
	Superseded  Token     `json:"superseded,omitempty"` // submission disowned by this one
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ErrorCode   ErrorCode `json:"error_code,omitempty"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventPublisher is the publishing half of the bus.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	EventPublisher
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
