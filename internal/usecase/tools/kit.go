package tools

import (
	"aitools/internal/domain"
)

// Backends holds one capability per tool.
type Backends struct {
	Image      domain.Capability[string, domain.ImageResult]
	Voice      domain.Capability[domain.VoiceInput, domain.EnhancedAudio]
	Summarizer domain.Capability[domain.SummaryInput, string]
	Translator domain.Capability[domain.TranslationInput, string]
	Chat       domain.Capability[[]domain.Message, string]
}

// Kit builds fresh tool bindings. Every call returns a binding with its own
// controller; the caller disposes it when the tool page closes.
type Kit struct {
	Env      Env
	Backends Backends
}

// NewKit creates a kit sharing env across all bindings.
func NewKit(env Env, backends Backends) *Kit {
	return &Kit{Env: env, Backends: backends}
}

func (k *Kit) ImageGenerator() *ImageGenerator {
	return NewImageGenerator(k.Env, k.Backends.Image)
}

func (k *Kit) VoiceEnhancer() *VoiceEnhancer {
	return NewVoiceEnhancer(k.Env, k.Backends.Voice)
}

func (k *Kit) TextSummarizer() *TextSummarizer {
	return NewTextSummarizer(k.Env, k.Backends.Summarizer)
}

func (k *Kit) Translator() *Translator {
	return NewTranslator(k.Env, k.Backends.Translator)
}

func (k *Kit) ChatAssistant() *ChatAssistant {
	return NewChatAssistant(k.Env, k.Backends.Chat)
}
