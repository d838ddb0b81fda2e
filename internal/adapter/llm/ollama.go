package llm

import (
	"log/slog"
	"strings"
	"time"

	"aitools/internal/infra/config"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

// Local servers connect fast but may load a model before answering.
const (
	ollamaDefaultConnTimeout = 5 * time.Second
	ollamaDefaultRespTimeout = 300 * time.Second
)

// NewOllamaProvider talks to a local Ollama server through its
// OpenAI-compatible /v1 endpoint. No API key is required.
func NewOllamaProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	return NewOpenAIProvider(ollamaConfig(cfg), logger)
}

func ollamaConfig(cfg config.ProviderConfig) config.ProviderConfig {
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = ollamaDefaultConnTimeout
	}
	if cfg.RespTimeout == 0 {
		cfg.RespTimeout = ollamaDefaultRespTimeout
	}
	base := strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/v1")
	if base == "" {
		base = ollamaDefaultBaseURL
	}
	cfg.BaseURL = base + "/v1"
	return cfg
}
