package capability

import (
	"context"
	"fmt"
	"strings"

	"aitools/internal/domain"
)

const (
	summarizePrompt = "You condense documents. Reply with the summary only. Keep roughly %s of the original length and preserve its key points."
	translatePrompt = "You are a translator. Translate the user's text from %s to %s. Reply with the translation only."
	detectPrompt    = "You are a translator. Detect the language of the user's text and translate it to %s. Reply with the translation only."
	chatPrompt      = "You are a helpful assistant for writing, brainstorming, answering questions and solving problems. Keep replies concise."
)

// LLMText builds the text tool backends on top of a chat model.
type LLMText struct {
	provider  domain.LLMProvider
	model     string
	maxTokens int
}

// NewLLMText creates text backends over provider. An empty model lets the
// provider use its configured default.
func NewLLMText(provider domain.LLMProvider, model string, maxTokens int) *LLMText {
	return &LLMText{provider: provider, model: model, maxTokens: maxTokens}
}

// Summary condenses text to the requested length.
func (l *LLMText) Summary() domain.Capability[domain.SummaryInput, string] {
	return func(ctx context.Context, in domain.SummaryInput) (string, error) {
		return l.complete(ctx, "LLMText.Summary", domain.Instruction(fmt.Sprintf(summarizePrompt, in.Length.Ratio()), in.Text))
	}
}

// Translation translates between the selected languages. An auto source asks
// the model to detect the language.
func (l *LLMText) Translation() domain.Capability[domain.TranslationInput, string] {
	return func(ctx context.Context, in domain.TranslationInput) (string, error) {
		target := languageLabel(in.Target)
		system := fmt.Sprintf(detectPrompt, target)
		if in.Source != "" && in.Source != domain.LanguageAuto {
			system = fmt.Sprintf(translatePrompt, languageLabel(in.Source), target)
		}
		return l.complete(ctx, "LLMText.Translation", domain.Instruction(system, in.Text))
	}
}

// Chat answers the last user message given the whole conversation.
func (l *LLMText) Chat() domain.Capability[[]domain.Message, string] {
	return func(ctx context.Context, history []domain.Message) (string, error) {
		return l.complete(ctx, "LLMText.Chat", domain.WithSystem(chatPrompt, history))
	}
}

func (l *LLMText) complete(ctx context.Context, op string, msgs []domain.Message) (string, error) {
	resp, err := l.provider.Chat(ctx, domain.ChatRequest{
		Model:     l.model,
		Messages:  msgs,
		MaxTokens: l.maxTokens,
	})
	if err != nil {
		return "", domain.WrapOp(op, err)
	}
	out := strings.TrimSpace(resp.Message.Content)
	if out == "" {
		return "", domain.NewDomainError(op, domain.ErrProviderError, l.provider.Name()+" returned an empty reply")
	}
	return out, nil
}

func languageLabel(code string) string {
	if name := domain.LanguageName(code); name != "" {
		return name
	}
	return code
}
