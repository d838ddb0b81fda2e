package capability

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

func newImageServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *map[string]any) {
	t.Helper()
	var calls atomic.Int32
	got := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &got
}

func imageGenerator(url string) *OpenAIImageGenerator {
	cfg := config.ProviderConfig{Name: "openai", Type: "openai", APIKey: "sk-test", BaseURL: url}
	return NewOpenAIImageGenerator(cfg, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOpenAIImageGenerate(t *testing.T) {
	srv, calls, got := newImageServer(t, http.StatusOK, `{"created":1700000000,"data":[{"url":"https://img.example/fox.png"}]}`)

	res, err := imageGenerator(srv.URL).Generate(context.Background(), "a fox")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/fox.png", res.URL)
	assert.Equal(t, "a fox", res.Prompt)
	assert.Equal(t, int32(1), calls.Load())

	body := *got
	assert.Equal(t, "a fox", body["prompt"])
	assert.Equal(t, DefaultImageModel, body["model"])
	assert.Equal(t, "1024x1024", body["size"])
	assert.Equal(t, "url", body["response_format"])
}

func TestOpenAIImageEmptyData(t *testing.T) {
	srv, _, _ := newImageServer(t, http.StatusOK, `{"created":1700000000,"data":[]}`)
	_, err := imageGenerator(srv.URL).Generate(context.Background(), "a fox")
	assert.True(t, errors.Is(err, domain.ErrProviderError))
}

func TestOpenAIImageErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimit},
		{http.StatusUnauthorized, domain.ErrAuthInvalid},
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusInternalServerError, domain.ErrProviderError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, calls, _ := newImageServer(t, tt.status, `{"error":{"message":"nope","type":"x"}}`)
			_, err := imageGenerator(srv.URL).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, int32(1), calls.Load(), "retries must be disabled")
		})
	}
}
