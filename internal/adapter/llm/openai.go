package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

var _ domain.LLMProvider = (*OpenAIProvider)(nil)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	name      string
	model     string
	maxTokens int
	client    openai.Client
	logger    *slog.Logger
}

// NewOpenAIProvider creates a provider with pooled transport. SDK retries
// are off; the capability middleware decides what to retry.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL + "/"),
		option.WithHTTPClient(NewHTTPClient(cfg)),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &OpenAIProvider{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    openai.NewClient(opts...),
		logger:    logger,
	}
}

// Chat implements domain.LLMProvider.
func (p *OpenAIProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req = withDefaults(req, p.model, p.maxTokens)
	ctx, call := beginChat(ctx, p.logger, p.name, req)

	completion, err := p.client.Chat.Completions.New(ctx, toOpenAIParams(req))
	if err != nil {
		return call.fail(mapOpenAIError(err))
	}
	if len(completion.Choices) == 0 {
		return call.fail(fmt.Errorf("%w: completion has no choices", domain.ErrProviderError))
	}
	return call.done(fromOpenAICompletion(completion))
}

// Name implements domain.LLMProvider.
func (p *OpenAIProvider) Name() string { return p.name }

func toOpenAIParams(req domain.ChatRequest) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{Messages: msgs}
	params.Model = req.Model
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	return params
}

func fromOpenAICompletion(c *openai.ChatCompletion) *domain.ChatResponse {
	created := time.Unix(c.Created, 0)
	return &domain.ChatResponse{
		ID:    c.ID,
		Model: c.Model,
		Message: domain.Message{
			Role:      domain.RoleAssistant,
			Content:   c.Choices[0].Message.Content,
			Timestamp: created,
		},
		Usage: domain.Usage{
			PromptTokens:     int(c.Usage.PromptTokens),
			CompletionTokens: int(c.Usage.CompletionTokens),
			TotalTokens:      int(c.Usage.TotalTokens),
		},
		CreatedAt: created,
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return StatusError(apiErr.StatusCode, apiErr.Error())
	}
	return fmt.Errorf("openai request: %w", err)
}
