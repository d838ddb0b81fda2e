// Package tools binds each catalog tool to an invocation controller and its
// auxiliary side effects.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Speaker reads text aloud. lang may be empty for the default voice.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// Player plays an audio file. done is called once when playback ends on its
// own; it is not called after stop.
type Player interface {
	Play(path string, done func()) (stop func(), err error)
}

// Fetcher saves the resource at src (URL or local path) into dir and
// returns the written path.
type Fetcher interface {
	Fetch(ctx context.Context, src, dir string) (string, error)
}

// Env carries the collaborators shared by every tool binding. Nil side
// effects make the corresponding action fail with domain.ErrSideEffect.
type Env struct {
	Logger    *slog.Logger
	Events    domain.EventPublisher
	Busy      domain.BusyPolicy
	Clipboard Clipboard
	Speaker   Speaker
	Player    Player
	Fetcher   Fetcher
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func options[I, R any](env Env, tool domain.ToolID, validate domain.Validator[I]) invocation.Options[I, R] {
	return invocation.Options[I, R]{
		Tool:     tool,
		Validate: validate,
		Busy:     env.Busy,
		Logger:   env.logger(),
		Events:   env.Events,
	}
}

// emit publishes a side-effect event. Failures to marshal are logged only.
func (e Env) emit(tool domain.ToolID, typ domain.EventType, payload any) {
	if e.Events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger().Error("marshal side-effect event", "tool", string(tool), "error", err)
		return
	}
	e.Events.Publish(context.Background(), domain.Event{
		Type:      typ,
		Timestamp: time.Now(),
		Tool:      tool,
		Payload:   data,
	})
}

func (e Env) copy(tool domain.ToolID, op, text string) error {
	if text == "" {
		return domain.NewDomainError(op, domain.ErrNoResult, "nothing to copy")
	}
	if e.Clipboard == nil {
		return domain.NewDomainError(op, domain.ErrSideEffect, "clipboard not configured")
	}
	if err := e.Clipboard.WriteAll(text); err != nil {
		return domain.WrapOp(op, fmt.Errorf("%w: %v", domain.ErrSideEffect, err))
	}
	e.emit(tool, domain.EventClipboardCopied, map[string]int{"characters": domain.StatsOf(text).Characters})
	return nil
}

func (e Env) speak(ctx context.Context, tool domain.ToolID, op, text, lang string) error {
	if text == "" {
		return domain.NewDomainError(op, domain.ErrNoResult, "nothing to speak")
	}
	if e.Speaker == nil {
		return domain.NewDomainError(op, domain.ErrSideEffect, "speech not configured")
	}
	e.emit(tool, domain.EventSpeechStarted, map[string]string{"lang": lang})
	if err := e.Speaker.Speak(ctx, text, lang); err != nil {
		return domain.WrapOp(op, fmt.Errorf("%w: %v", domain.ErrSideEffect, err))
	}
	return nil
}
