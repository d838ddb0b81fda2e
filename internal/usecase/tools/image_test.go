package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

func TestImageGenerate(t *testing.T) {
	var got string
	backend := func(_ context.Context, prompt string) (domain.ImageResult, error) {
		got = prompt
		return domain.ImageResult{URL: "https://example.test/cat.jpg", Prompt: prompt}, nil
	}
	g := NewImageGenerator(Env{}, backend)

	_, ok := g.Generate()
	assert.False(t, ok, "blank prompt is a no-op")

	g.SetPrompt("a cat on a skateboard")
	_, ok = g.Generate()
	require.True(t, ok)
	g.Controller().Wait()

	snap := g.Controller().Snapshot()
	assert.Equal(t, domain.StatusSucceeded, snap.Status)
	assert.Equal(t, "https://example.test/cat.jpg", snap.Result.URL)
	assert.Equal(t, "a cat on a skateboard", got)
}

func TestImageDownload(t *testing.T) {
	fetcher := &fakeFetcher{}
	g := NewImageGenerator(Env{Fetcher: fetcher}, value[string](domain.ImageResult{URL: "https://example.test/a.jpg"}))

	_, err := g.Download(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoResult)

	g.SetPrompt("sunset")
	_, ok := g.Generate()
	require.True(t, ok)
	g.Controller().Wait()

	dir := t.TempDir()
	path, err := g.Download(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "download"), path)
	assert.Equal(t, "https://example.test/a.jpg", fetcher.src)
}

func TestImageDownloadWithoutFetcher(t *testing.T) {
	g := NewImageGenerator(Env{}, value[string](domain.ImageResult{URL: "https://example.test/a.jpg"}))
	g.SetPrompt("sunset")
	_, ok := g.Generate()
	require.True(t, ok)
	g.Controller().Wait()

	_, err := g.Download(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrSideEffect)
}

func TestImageDisposeIgnoresLateResult(t *testing.T) {
	release := make(chan struct{})
	g := NewImageGenerator(Env{}, gated[string](release, domain.ImageResult{URL: "late"}))
	g.SetPrompt("sunset")
	_, ok := g.Generate()
	require.True(t, ok)

	g.Dispose()
	close(release)
	g.Controller().Wait()

	snap := g.Controller().Snapshot()
	assert.Equal(t, domain.StatusIdle, snap.Status)
	assert.False(t, snap.HasResult)
}
