package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

func TestKitBuildsIndependentBindings(t *testing.T) {
	kit := NewKit(Env{}, Backends{
		Image:      value[string](domain.ImageResult{URL: "https://img/1"}),
		Summarizer: value[domain.SummaryInput]("short"),
		Translator: value[domain.TranslationInput]("hola"),
		Chat:       value[[]domain.Message]("hi"),
	})

	first := kit.ImageGenerator()
	second := kit.ImageGenerator()
	require.NotSame(t, first.Controller(), second.Controller())

	first.SetPrompt("a cat")
	token, ok := first.Generate()
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := first.Controller().Await(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, snap.Status)
	assert.Equal(t, domain.StatusIdle, second.Controller().Snapshot().Status)

	first.Dispose()
	assert.False(t, second.Controller().Disposed())
	second.Dispose()
}

func TestKitCoversEveryTool(t *testing.T) {
	kit := NewKit(Env{}, Backends{})
	assert.Equal(t, domain.ToolImageGenerator, kit.ImageGenerator().Controller().Snapshot().Tool)
	assert.Equal(t, domain.ToolVoiceEnhancer, kit.VoiceEnhancer().Controller().Snapshot().Tool)
	assert.Equal(t, domain.ToolTextSummarizer, kit.TextSummarizer().Controller().Snapshot().Tool)
	assert.Equal(t, domain.ToolTranslator, kit.Translator().Controller().Snapshot().Tool)
	assert.Equal(t, domain.ToolChatAssistant, kit.ChatAssistant().Controller().Snapshot().Tool)
}
