package capability

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aitools/internal/adapter/llm"
	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

// DefaultImageModel is used when the backend config names no model.
const DefaultImageModel = "dall-e-3"

// OpenAIImageGenerator renders prompts with the OpenAI images API.
type OpenAIImageGenerator struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIImageGenerator creates a generator from an openai-type provider
// config. Retries are left to the caller's resilience middleware.
func NewOpenAIImageGenerator(cfg config.ProviderConfig, model string, logger *slog.Logger) *OpenAIImageGenerator {
	if model == "" {
		model = DefaultImageModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(llm.NewHTTPClient(cfg)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// Capability adapts the generator to the image tool.
func (g *OpenAIImageGenerator) Capability() domain.Capability[string, domain.ImageResult] {
	return g.Generate
}

// Generate renders one 1024x1024 image and returns its URL.
func (g *OpenAIImageGenerator) Generate(ctx context.Context, prompt string) (domain.ImageResult, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return domain.ImageResult{}, mapImageError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return domain.ImageResult{}, domain.NewSubSystemError("image", "OpenAIImageGenerator.Generate", domain.ErrProviderError, "response carried no image")
	}
	g.logger.Debug("image generated", "model", g.model, "prompt_len", len(prompt))
	return domain.ImageResult{URL: resp.Data[0].URL, Prompt: prompt}, nil
}

func mapImageError(err error) error {
	const op = "OpenAIImageGenerator.Generate"
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if sentinel := llm.StatusSentinel(apiErr.StatusCode); sentinel != nil {
			return domain.NewSubSystemError("image", op, sentinel, apiErr.Error())
		}
	}
	return domain.WrapOp(op, err)
}
