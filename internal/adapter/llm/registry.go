package llm

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

// Registry holds named LLM providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]domain.LLMProvider
	fallbacks []string
	logger    *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]domain.LLMProvider),
		logger:    slog.Default(),
	}
}

// NewProvider builds the provider described by cfg. An empty type means an
// OpenAI-compatible endpoint.
func NewProvider(cfg config.ProviderConfig, logger *slog.Logger) (domain.LLMProvider, error) {
	switch cfg.Type {
	case "", "openai":
		return NewOpenAIProvider(cfg, logger), nil
	case "anthropic":
		return NewAnthropicProvider(cfg, logger), nil
	case "ollama":
		return NewOllamaProvider(cfg, logger), nil
	case "bedrock":
		return NewBedrockProvider(cfg, logger)
	default:
		return nil, domain.NewDomainError("llm.NewProvider", domain.ErrInvalidInput, fmt.Sprintf("unknown provider type %q", cfg.Type))
	}
}

// NewRegistryFromConfig builds and registers every configured provider.
func NewRegistryFromConfig(cfg config.LLMConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry()
	r.logger = logger
	for _, pc := range cfg.Providers {
		p, err := NewProvider(pc, logger)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", pc.Name, err)
		}
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	if cfg.Failover.Enabled {
		r.fallbacks = append([]string(nil), cfg.Failover.Fallbacks...)
	}
	return r, nil
}

// Register adds a provider. Returns error if name already registered.
func (r *Registry) Register(provider domain.LLMProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return domain.NewDomainError("Registry.Register", domain.ErrDuplicate, name)
	}
	r.providers[name] = provider
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (domain.LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrProviderNotFound, name)
	}
	return p, nil
}

// Resolve returns the named provider wrapped with the configured fallbacks.
// The primary is never its own fallback.
func (r *Registry) Resolve(name string) (domain.LLMProvider, error) {
	primary, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	names := r.fallbacks
	r.mu.RUnlock()

	chain := []domain.LLMProvider{primary}
	for _, fb := range names {
		if fb == name {
			continue
		}
		p, err := r.Get(fb)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	}
	if len(chain) == 1 {
		return primary, nil
	}
	return NewChain(r.logger, chain...), nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.providers))
}
