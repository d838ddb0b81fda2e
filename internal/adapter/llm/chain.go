package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"aitools/internal/domain"
)

var _ domain.LLMProvider = (*Chain)(nil)

// Chain asks each provider in turn until one answers. Invalid requests and
// disowned calls stop the walk since another provider cannot fix them.
type Chain struct {
	providers []domain.LLMProvider
	logger    *slog.Logger
}

// NewChain returns a chain over providers, the first being the primary.
func NewChain(logger *slog.Logger, providers ...domain.LLMProvider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// Chat implements domain.LLMProvider.
func (c *Chain) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	var errs []error
	for i, p := range c.providers {
		resp, err := p.Chat(ctx, req)
		if err == nil {
			if i > 0 {
				c.logger.Info("llm fallback answered", "provider", p.Name(), "attempt", i+1)
			}
			return resp, nil
		}
		if ctx.Err() != nil || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		c.logger.Warn("llm provider failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, fmt.Errorf("%w: every provider failed: %w", domain.ErrProviderError, errors.Join(errs...))
}

// Name lists the chain in call order, e.g. "openai>local".
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}
