package tools

import (
	"context"

	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// Side selects one pane of the translator.
type Side int

const (
	SourceSide Side = iota
	TargetSide
)

// Translator converts text between languages.
type Translator struct {
	env     Env
	backend domain.Capability[domain.TranslationInput, string]
	ctrl    *invocation.Controller[domain.TranslationInput, string]
}

// NewTranslator creates the translator translating from auto-detect to Spanish.
func NewTranslator(env Env, backend domain.Capability[domain.TranslationInput, string]) *Translator {
	valid := func(in domain.TranslationInput) bool { return domain.NonBlank(in.Text) }
	return &Translator{
		env:     env,
		backend: backend,
		ctrl: invocation.New(
			domain.TranslationInput{Source: domain.LanguageAuto, Target: "es"},
			options[domain.TranslationInput, string](env, domain.ToolTranslator, valid),
		),
	}
}

// Controller exposes the lifecycle for presentation.
func (t *Translator) Controller() *invocation.Controller[domain.TranslationInput, string] {
	return t.ctrl
}

// SetText updates the source text.
func (t *Translator) SetText(text string) {
	t.ctrl.UpdateInput(func(in domain.TranslationInput) domain.TranslationInput {
		in.Text = text
		return in
	})
}

// SetSource selects the source language; auto-detect is allowed.
func (t *Translator) SetSource(code string) error {
	if !domain.IsLanguage(code) {
		return domain.NewSubSystemError("translator", "Translator.SetSource", domain.ErrInvalidInput, code)
	}
	t.ctrl.UpdateInput(func(in domain.TranslationInput) domain.TranslationInput {
		in.Source = code
		return in
	})
	return nil
}

// SetTarget selects the target language; auto-detect is rejected.
func (t *Translator) SetTarget(code string) error {
	if code == domain.LanguageAuto || !domain.IsLanguage(code) {
		return domain.NewSubSystemError("translator", "Translator.SetTarget", domain.ErrInvalidInput, code)
	}
	t.ctrl.UpdateInput(func(in domain.TranslationInput) domain.TranslationInput {
		in.Target = code
		return in
	})
	return nil
}

// Translate submits the current text.
func (t *Translator) Translate() (domain.Token, bool) {
	return t.ctrl.Submit(t.backend)
}

// CanSwap reports whether Swap would currently succeed.
func (t *Translator) CanSwap() bool {
	snap := t.ctrl.Snapshot()
	return snap.Input.Source != domain.LanguageAuto && !snap.Busy()
}

// Swap exchanges the languages and the two panes in one transition.
// It fails with domain.ErrSwapUnavailable while the source is auto-detect
// or a translation is in flight.
func (t *Translator) Swap() error {
	autoSource := false
	swapped := t.ctrl.Exchange(func(in domain.TranslationInput, out string, has bool) (domain.TranslationInput, string, bool) {
		if in.Source == domain.LanguageAuto {
			autoSource = true
			return in, out, has
		}
		next := domain.TranslationInput{Text: out, Source: in.Target, Target: in.Source}
		return next, in.Text, in.Text != ""
	})
	switch {
	case !swapped:
		return domain.NewDomainError("Translator.Swap", domain.ErrSwapUnavailable, "translation in progress")
	case autoSource:
		return domain.NewDomainError("Translator.Swap", domain.ErrSwapUnavailable, "source language is auto-detect")
	}
	return nil
}

// Stats counts both panes.
func (t *Translator) Stats() (source, target domain.TextStats) {
	snap := t.ctrl.Snapshot()
	return domain.StatsOf(snap.Input.Text), domain.StatsOf(snap.Result)
}

// Speak reads one pane aloud in its language.
func (t *Translator) Speak(ctx context.Context, side Side) error {
	text, lang := t.pane(side)
	return t.env.speak(ctx, domain.ToolTranslator, "Translator.Speak", text, lang)
}

// Copy writes one pane to the clipboard.
func (t *Translator) Copy(side Side) error {
	text, _ := t.pane(side)
	return t.env.copy(domain.ToolTranslator, "Translator.Copy", text)
}

func (t *Translator) pane(side Side) (text, lang string) {
	snap := t.ctrl.Snapshot()
	if side == TargetSide {
		return snap.Result, snap.Input.Target
	}
	lang = snap.Input.Source
	if lang == domain.LanguageAuto {
		lang = ""
	}
	return snap.Input.Text, lang
}

// Dispose tears the tool down.
func (t *Translator) Dispose() { t.ctrl.Dispose() }

// Reset discards the translation and any pending request.
func (t *Translator) Reset() { t.ctrl.Reset() }
