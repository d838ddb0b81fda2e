package tools

import (
	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// TextSummarizer condenses text to a chosen length.
type TextSummarizer struct {
	env     Env
	backend domain.Capability[domain.SummaryInput, string]
	ctrl    *invocation.Controller[domain.SummaryInput, string]
}

// NewTextSummarizer creates the summarizer with medium length selected.
func NewTextSummarizer(env Env, backend domain.Capability[domain.SummaryInput, string]) *TextSummarizer {
	valid := func(in domain.SummaryInput) bool { return domain.NonBlank(in.Text) }
	return &TextSummarizer{
		env:     env,
		backend: backend,
		ctrl: invocation.New(
			domain.SummaryInput{Length: domain.SummaryMedium},
			options[domain.SummaryInput, string](env, domain.ToolTextSummarizer, valid),
		),
	}
}

// Controller exposes the lifecycle for presentation.
func (s *TextSummarizer) Controller() *invocation.Controller[domain.SummaryInput, string] {
	return s.ctrl
}

// SetText updates the text to summarize.
func (s *TextSummarizer) SetText(text string) {
	s.ctrl.UpdateInput(func(in domain.SummaryInput) domain.SummaryInput {
		in.Text = text
		return in
	})
}

// SetLength selects the summary length. Unknown lengths are ignored.
func (s *TextSummarizer) SetLength(length domain.SummaryLength) {
	if !length.Valid() {
		return
	}
	s.ctrl.UpdateInput(func(in domain.SummaryInput) domain.SummaryInput {
		in.Length = length
		return in
	})
}

// Summarize submits the current text.
func (s *TextSummarizer) Summarize() (domain.Token, bool) {
	return s.ctrl.Submit(s.backend)
}

// Stats counts the input text.
func (s *TextSummarizer) Stats() domain.TextStats {
	return domain.StatsOf(s.ctrl.Snapshot().Input.Text)
}

// Copy writes the current summary to the clipboard.
func (s *TextSummarizer) Copy() error {
	return s.env.copy(domain.ToolTextSummarizer, "TextSummarizer.Copy", s.ctrl.Snapshot().Result)
}

// Dispose tears the tool down.
func (s *TextSummarizer) Dispose() { s.ctrl.Dispose() }

// Reset discards the summary and any pending request. The text is kept.
func (s *TextSummarizer) Reset() { s.ctrl.Reset() }
