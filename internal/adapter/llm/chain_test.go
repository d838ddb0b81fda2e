package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

type mockProvider struct {
	name  string
	calls int
	chat  func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error)
}

func (m *mockProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.calls++
	return m.chat(ctx, req)
}
func (m *mockProvider) Name() string { return m.name }

func replying(name, content string) *mockProvider {
	return &mockProvider{name: name, chat: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
		return &domain.ChatResponse{Message: domain.Message{Role: domain.RoleAssistant, Content: content}}, nil
	}}
}

func failing(name string, err error) *mockProvider {
	return &mockProvider{name: name, chat: func(context.Context, domain.ChatRequest) (*domain.ChatResponse, error) {
		return nil, err
	}}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainPrimaryAnswers(t *testing.T) {
	backup := replying("backup", "unused")
	c := NewChain(newTestLogger(), replying("main", "hola"), backup)

	resp, err := c.Chat(context.Background(), domain.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hola", resp.Message.Content)
	assert.Zero(t, backup.calls)
}

func TestChainFallsBackOnProviderFailure(t *testing.T) {
	main := failing("main", domain.ErrRateLimit)
	c := NewChain(newTestLogger(), main, replying("backup", "bonjour"))

	resp, err := c.Chat(context.Background(), domain.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", resp.Message.Content)
	assert.Equal(t, 1, main.calls)
}

func TestChainJoinsEveryFailure(t *testing.T) {
	c := NewChain(newTestLogger(),
		failing("main", domain.ErrRateLimit),
		failing("backup", errors.New("connection refused")),
	)

	_, err := c.Chat(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.ErrorIs(t, err, domain.ErrRateLimit)
	assert.Contains(t, err.Error(), "main: rate limit exceeded")
	assert.Contains(t, err.Error(), "backup: connection refused")
}

func TestChainStopsOnInvalidInput(t *testing.T) {
	backup := replying("backup", "unused")
	c := NewChain(newTestLogger(), failing("main", StatusError(400, "prompt too long")), backup)

	_, err := c.Chat(context.Background(), domain.ChatRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrProviderError)
	assert.Zero(t, backup.calls)
}

func TestChainStopsWhenDisowned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	main := &mockProvider{name: "main", chat: func(ctx context.Context, _ domain.ChatRequest) (*domain.ChatResponse, error) {
		cancel()
		return nil, ctx.Err()
	}}
	backup := replying("backup", "unused")

	_, err := NewChain(newTestLogger(), main, backup).Chat(ctx, domain.ChatRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, backup.calls)
}

func TestChainName(t *testing.T) {
	assert.Equal(t, "openai>local", NewChain(newTestLogger(), replying("openai", ""), replying("local", "")).Name())
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{429, domain.ErrRateLimit},
		{401, domain.ErrAuthInvalid},
		{403, domain.ErrAuthInvalid},
		{400, domain.ErrInvalidInput},
		{413, domain.ErrInvalidInput},
		{500, domain.ErrProviderError},
		{503, domain.ErrProviderError},
	}
	for _, tt := range tests {
		err := StatusError(tt.status, " overloaded \n")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		assert.Contains(t, err.Error(), "overloaded")
	}

	err := StatusError(418, "teapot")
	assert.EqualError(t, err, "status 418: teapot")
	assert.Nil(t, StatusSentinel(418))
}
