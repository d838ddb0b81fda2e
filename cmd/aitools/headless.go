package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"aitools/internal/adapter/capability"
	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
	"aitools/internal/usecase/tools"
)

// runTool submits raw to one tool, waits for the outcome and prints the
// result. Structured tools accept either their JSON payload or plain text
// for the main field.
func runTool(ctx context.Context, kit *tools.Kit, id domain.ToolID, raw string, w io.Writer) error {
	d, err := domain.LookupTool(id)
	if err != nil {
		return err
	}
	validator, err := capability.NewPayloadValidator(d)
	if err != nil {
		return err
	}

	switch id {
	case domain.ToolImageGenerator:
		g := kit.ImageGenerator()
		defer g.Dispose()
		g.SetPrompt(raw)
		token, ok := g.Generate()
		res, err := await(ctx, g.Controller(), token, ok)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.URL)

	case domain.ToolVoiceEnhancer:
		p := voicePayload{VoiceOptions: domain.DefaultVoiceOptions()}
		if err := decodeInto(validator, raw, "path", &p); err != nil {
			return err
		}
		v := kit.VoiceEnhancer()
		defer v.Dispose()
		if err := v.SelectFile(p.Path); err != nil {
			return err
		}
		v.SetOptions(p.VoiceOptions)
		token, ok := v.Enhance()
		res, err := await(ctx, v.Controller(), token, ok)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res.Path)

	case domain.ToolTextSummarizer:
		p := domain.SummaryInput{Length: domain.SummaryMedium}
		if err := decodeInto(validator, raw, "text", &p); err != nil {
			return err
		}
		s := kit.TextSummarizer()
		defer s.Dispose()
		s.SetText(p.Text)
		s.SetLength(p.Length)
		token, ok := s.Summarize()
		res, err := await(ctx, s.Controller(), token, ok)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res)

	case domain.ToolTranslator:
		var p domain.TranslationInput
		if err := decodeInto(validator, raw, "text", &p); err != nil {
			return err
		}
		t := kit.Translator()
		defer t.Dispose()
		t.SetText(p.Text)
		if p.Source != "" {
			if err := t.SetSource(p.Source); err != nil {
				return err
			}
		}
		if p.Target != "" {
			if err := t.SetTarget(p.Target); err != nil {
				return err
			}
		}
		token, ok := t.Translate()
		res, err := await(ctx, t.Controller(), token, ok)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res)

	case domain.ToolChatAssistant:
		c := kit.ChatAssistant()
		defer c.Dispose()
		c.SetDraft(raw)
		token, ok := c.Send()
		res, err := await(ctx, c.Controller(), token, ok)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, res)

	default:
		return domain.NewDomainError("runTool", domain.ErrNotFound, string(id))
	}
	return nil
}

type voicePayload struct {
	Path string `json:"path"`
	domain.VoiceOptions
}

// decodeInto fills out from raw. A JSON object is validated against the
// tool schema; anything else becomes the value of field.
func decodeInto(v *capability.PayloadValidator, raw, field string, out any) error {
	data := []byte(raw)
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		wrapped, err := json.Marshal(map[string]string{field: raw})
		if err != nil {
			return err
		}
		data = wrapped
	}
	if err := v.Validate(data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewDomainError("decodeInto", domain.ErrInvalidInput, err.Error())
	}
	return nil
}

// await waits for token to settle and returns its result. A refused
// submission is reported as invalid input.
func await[I, R any](ctx context.Context, ctrl *invocation.Controller[I, R], token domain.Token, accepted bool) (R, error) {
	var zero R
	if !accepted {
		return zero, domain.NewDomainError("await", domain.ErrInvalidInput, "nothing to submit")
	}
	snap, err := ctrl.Await(ctx, token)
	if err != nil {
		return zero, err
	}
	switch {
	case snap.Status == domain.StatusFailed:
		return zero, snap.Err
	case !snap.HasResult || snap.Token != token:
		return zero, domain.NewDomainError("await", domain.ErrNoResult, string(token))
	}
	return snap.Result, nil
}
