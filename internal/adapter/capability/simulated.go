// Package capability provides the backends tool bindings delegate to and the
// middleware that wraps them.
package capability

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

// SimulatedImageURL is the placeholder the simulated image backend returns.
const SimulatedImageURL = "https://images.pexels.com/photos/1103970/pexels-photo-1103970.jpeg?auto=compress&cs=tinysrgb&w=512&h=512&fit=crop"

const simulatedSummary = `This is a summarized version of your text. The AI has identified the key points and condensed the content while preserving the essential information. The summary maintains the original context and meaning while being significantly shorter than the original text.

Key points covered:
• Main topic and central theme
• Important supporting details
• Conclusion and implications

This summary represents approximately %s of the original text length.`

const simulatedTranslationFallback = "This is a simulated translation of your text. The AI system has processed the content and converted it to the selected target language while preserving the original meaning and context."

var simulatedTranslations = map[string]string{
	"es": "Esta es una traducción simulada de su texto. El sistema de IA ha procesado el contenido y lo ha convertido al idioma de destino seleccionado manteniendo el significado y contexto originales.",
	"fr": "Ceci est une traduction simulée de votre texte. Le système IA a traité le contenu et l'a converti dans la langue cible sélectionnée tout en préservant le sens et le contexte originaux.",
	"de": "Dies ist eine simulierte Übersetzung Ihres Textes. Das KI-System hat den Inhalt verarbeitet und in die ausgewählte Zielsprache konvertiert, wobei die ursprüngliche Bedeutung und der Kontext erhalten bleiben.",
	"ja": "これはあなたのテキストのシミュレートされた翻訳です。AIシステムがコンテンツを処理し、元の意味とコンテキストを保持しながら選択されたターゲット言語に変換しました。",
	"zh": "这是您文本的模拟翻译。AI系统已处理内容并将其转换为所选目标语言，同时保持原始含义和上下文。",
}

var simulatedReplies = []string{
	"That's a great question! Let me help you with that. Based on what you've shared, I can suggest several approaches that might work well for your situation.",
	"I understand what you're looking for. Here are some ideas that could help you move forward with this project.",
	"Interesting perspective! I can definitely assist you with this. Let me break down some potential solutions for you.",
	"Thanks for sharing that with me. I have some thoughts that might be useful for your specific needs.",
	"That's exactly the kind of challenge I can help with. Let me provide you with some actionable insights.",
}

// Simulated builds the offline backends. Each waits its configured delay and
// returns a canned result; cancelling the context ends the wait early.
type Simulated struct {
	delays config.SimulatedConfig
	pick   func(n int) int
}

// NewSimulated creates the simulated backends with the given delays.
func NewSimulated(delays config.SimulatedConfig) *Simulated {
	return &Simulated{delays: delays, pick: rand.IntN}
}

// Image returns the placeholder image for any prompt.
func (s *Simulated) Image() domain.Capability[string, domain.ImageResult] {
	return func(ctx context.Context, prompt string) (domain.ImageResult, error) {
		if err := wait(ctx, s.delays.ImageDelay); err != nil {
			return domain.ImageResult{}, err
		}
		return domain.ImageResult{URL: SimulatedImageURL, Prompt: prompt}, nil
	}
}

// Voice hands the selected file back unchanged as the enhanced audio.
func (s *Simulated) Voice() domain.Capability[domain.VoiceInput, domain.EnhancedAudio] {
	return func(ctx context.Context, in domain.VoiceInput) (domain.EnhancedAudio, error) {
		if in.File == nil {
			return domain.EnhancedAudio{}, domain.NewSubSystemError("voice", "Simulated.Voice", domain.ErrInvalidInput, "no file selected")
		}
		if err := wait(ctx, s.delays.VoiceDelay); err != nil {
			return domain.EnhancedAudio{}, err
		}
		return domain.EnhancedAudio{Path: in.File.Path, Source: *in.File, Options: in.Options}, nil
	}
}

// Summary returns the canned summary quoting the length ratio.
func (s *Simulated) Summary() domain.Capability[domain.SummaryInput, string] {
	return func(ctx context.Context, in domain.SummaryInput) (string, error) {
		if err := wait(ctx, s.delays.SummaryDelay); err != nil {
			return "", err
		}
		return fmt.Sprintf(simulatedSummary, in.Length.Ratio()), nil
	}
}

// Translation returns the canned text for the target language, falling back
// to English.
func (s *Simulated) Translation() domain.Capability[domain.TranslationInput, string] {
	return func(ctx context.Context, in domain.TranslationInput) (string, error) {
		if err := wait(ctx, s.delays.TranslationDelay); err != nil {
			return "", err
		}
		if text, ok := simulatedTranslations[in.Target]; ok {
			return text, nil
		}
		return simulatedTranslationFallback, nil
	}
}

// Chat returns one of the canned replies at random.
func (s *Simulated) Chat() domain.Capability[[]domain.Message, string] {
	return func(ctx context.Context, _ []domain.Message) (string, error) {
		if err := wait(ctx, s.delays.ChatDelay); err != nil {
			return "", err
		}
		return simulatedReplies[s.pick(len(simulatedReplies))], nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
