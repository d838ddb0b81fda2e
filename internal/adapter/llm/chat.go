package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"aitools/internal/domain"
	"aitools/internal/infra/tracer"
)

// StatusSentinel maps an API status code onto the domain sentinel that
// drives retry, circuit breaking and failover. Unknown codes map to nil.
func StatusSentinel(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return domain.ErrRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.ErrAuthInvalid
	case status == http.StatusBadRequest, status == http.StatusRequestEntityTooLarge:
		return domain.ErrInvalidInput
	case status >= http.StatusInternalServerError:
		return domain.ErrProviderError
	}
	return nil
}

// StatusError builds the error for a failed API call.
func StatusError(status int, detail string) error {
	msg := fmt.Sprintf("status %d: %s", status, strings.TrimSpace(detail))
	if sentinel := StatusSentinel(status); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return errors.New(msg)
}

// withDefaults fills the model and token budget a request left empty.
func withDefaults(req domain.ChatRequest, model string, maxTokens int) domain.ChatRequest {
	if req.Model == "" {
		req.Model = model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = maxTokens
	}
	return req
}

// chatCall brackets one provider round trip with a span and a debug record.
type chatCall struct {
	provider string
	start    time.Time
	span     trace.Span
	logger   *slog.Logger
}

func beginChat(ctx context.Context, logger *slog.Logger, provider string, req domain.ChatRequest) (context.Context, *chatCall) {
	ctx, span := tracer.Start(ctx, "llm.chat", tracer.Provider(provider), tracer.Model(req.Model))
	return ctx, &chatCall{provider: provider, start: time.Now(), span: span, logger: logger}
}

func (c *chatCall) fail(err error) (*domain.ChatResponse, error) {
	tracer.End(c.span, err)
	return nil, err
}

func (c *chatCall) done(resp *domain.ChatResponse) (*domain.ChatResponse, error) {
	c.span.SetAttributes(tracer.Usage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)...)
	tracer.End(c.span, nil)
	c.logger.Debug("llm chat completed",
		"provider", c.provider,
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(c.start),
	)
	return resp, nil
}

// turn is one side of a conversation after adjacent messages of the same
// role were merged.
type turn struct {
	role  string
	texts []string
}

// conversation splits req into system prompts and alternating turns that
// open with the user, the shape Anthropic and Bedrock both require.
func conversation(req domain.ChatRequest) (system []string, turns []turn) {
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
			continue
		case domain.RoleAssistant:
			if len(turns) == 0 {
				continue
			}
		case domain.RoleUser:
		default:
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].role == m.Role {
			turns[n-1].texts = append(turns[n-1].texts, m.Content)
			continue
		}
		turns = append(turns, turn{role: m.Role, texts: []string{m.Content}})
	}
	return system, turns
}
