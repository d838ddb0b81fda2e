package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

var _ domain.LLMProvider = (*AnthropicProvider)(nil)

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider implements domain.LLMProvider for the Anthropic Messages API.
type AnthropicProvider struct {
	name      string
	model     string
	maxTokens int
	client    anthropic.Client
	logger    *slog.Logger
}

// NewAnthropicProvider creates a provider for the Anthropic Messages API.
// SDK retries are disabled; the capability middleware owns failure policy.
func NewAnthropicProvider(cfg config.ProviderConfig, logger *slog.Logger) *AnthropicProvider {
	clientOpts := []option.RequestOption{
		option.WithHTTPClient(NewHTTPClient(cfg)),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	return &AnthropicProvider{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    anthropic.NewClient(clientOpts...),
		logger:    logger,
	}
}

// Chat implements domain.LLMProvider.
func (p *AnthropicProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req = withDefaults(req, p.model, p.maxTokens)
	ctx, call := beginChat(ctx, p.logger, p.name, req)

	msg, err := p.client.Messages.New(ctx, toAnthropicParams(req))
	if err != nil {
		return call.fail(mapAnthropicError(err))
	}
	return call.done(fromAnthropicMessage(msg))
}

// Name implements domain.LLMProvider.
func (p *AnthropicProvider) Name() string { return p.name }

// toAnthropicParams converts a chat request. System messages become the
// system prompt.
func toAnthropicParams(req domain.ChatRequest) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	system, turns := conversation(req)
	for _, text := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: text})
	}
	for _, t := range turns {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(t.texts))
		for _, text := range t.texts {
			blocks = append(blocks, anthropic.NewTextBlock(text))
		}
		if t.role == domain.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		}
	}
	return params
}

func fromAnthropicMessage(msg *anthropic.Message) *domain.ChatResponse {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	now := time.Now()
	prompt := int(msg.Usage.InputTokens)
	completion := int(msg.Usage.OutputTokens)
	return &domain.ChatResponse{
		ID:    msg.ID,
		Model: string(msg.Model),
		Message: domain.Message{
			Role:      domain.RoleAssistant,
			Content:   text.String(),
			Timestamp: now,
		},
		Usage: domain.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
		CreatedAt: now,
	}
}

// mapAnthropicError classifies SDK API errors by status.
func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return StatusError(apiErr.StatusCode, apiErr.Error())
	}
	return fmt.Errorf("anthropic request: %w", err)
}
