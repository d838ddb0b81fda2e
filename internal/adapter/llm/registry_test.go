package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(replying("b", "")))
	require.NoError(t, r.Register(replying("a", "")))

	err := r.Register(replying("a", ""))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	p, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name())

	_, err = r.Get("missing")
	assert.True(t, errors.Is(err, domain.ErrProviderNotFound))
	assert.Equal(t, domain.CodeProviderNotFound, domain.ErrorCodeOf(err))

	assert.Equal(t, []string{"a", "b"}, r.List())
}

func TestNewProviderByType(t *testing.T) {
	tests := []struct {
		typ  string
		want any
	}{
		{"", &OpenAIProvider{}},
		{"openai", &OpenAIProvider{}},
		{"anthropic", &AnthropicProvider{}},
		{"ollama", &OpenAIProvider{}},
	}
	for _, tt := range tests {
		p, err := NewProvider(config.ProviderConfig{Name: "p", Type: tt.typ, APIKey: "k"}, newTestLogger())
		require.NoError(t, err, tt.typ)
		assert.IsType(t, tt.want, p, tt.typ)
	}

	_, err := NewProvider(config.ProviderConfig{Name: "p", Type: "gemini"}, newTestLogger())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRegistryFromConfigResolvesFailover(t *testing.T) {
	r, err := NewRegistryFromConfig(config.LLMConfig{
		DefaultProvider: "main",
		Providers: []config.ProviderConfig{
			{Name: "main", Type: "openai", APIKey: "k"},
			{Name: "backup", Type: "ollama"},
		},
		Failover: config.FailoverConfig{Enabled: true, Fallbacks: []string{"main", "backup"}},
	}, newTestLogger())
	require.NoError(t, err)

	p, err := r.Resolve("main")
	require.NoError(t, err)
	chain, ok := p.(*Chain)
	require.True(t, ok, "expected chain, got %T", p)
	assert.Len(t, chain.providers, 2)
	assert.Equal(t, "main>backup", p.Name())

	p, err = r.Resolve("backup")
	require.NoError(t, err)
	assert.Equal(t, "backup>main", p.Name())
}

func TestRegistryResolveWithoutFailover(t *testing.T) {
	r, err := NewRegistryFromConfig(config.LLMConfig{
		Providers: []config.ProviderConfig{{Name: "main", APIKey: "k"}},
	}, newTestLogger())
	require.NoError(t, err)

	p, err := r.Resolve("main")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	_, err = r.Resolve("nope")
	assert.True(t, errors.Is(err, domain.ErrProviderNotFound))
}

func TestRegistryFromConfigDuplicate(t *testing.T) {
	_, err := NewRegistryFromConfig(config.LLMConfig{
		Providers: []config.ProviderConfig{{Name: "x", APIKey: "k"}, {Name: "x", APIKey: "k"}},
	}, newTestLogger())
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}
