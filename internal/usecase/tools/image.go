package tools

import (
	"context"
	"fmt"

	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// ImageGenerator turns a text prompt into an image.
type ImageGenerator struct {
	env     Env
	backend domain.Capability[string, domain.ImageResult]
	ctrl    *invocation.Controller[string, domain.ImageResult]
}

// NewImageGenerator creates the image tool with an empty prompt.
func NewImageGenerator(env Env, backend domain.Capability[string, domain.ImageResult]) *ImageGenerator {
	return &ImageGenerator{
		env:     env,
		backend: backend,
		ctrl:    invocation.New("", options[string, domain.ImageResult](env, domain.ToolImageGenerator, domain.NonBlank)),
	}
}

// Controller exposes the lifecycle for presentation.
func (g *ImageGenerator) Controller() *invocation.Controller[string, domain.ImageResult] {
	return g.ctrl
}

// SetPrompt updates the prompt.
func (g *ImageGenerator) SetPrompt(prompt string) { g.ctrl.SetInput(prompt) }

// Generate submits the current prompt.
func (g *ImageGenerator) Generate() (domain.Token, bool) {
	return g.ctrl.Submit(g.backend)
}

// Download saves the current image into dir.
func (g *ImageGenerator) Download(ctx context.Context, dir string) (string, error) {
	snap := g.ctrl.Snapshot()
	if !snap.HasResult || snap.Result.URL == "" {
		return "", domain.NewDomainError("ImageGenerator.Download", domain.ErrNoResult, "")
	}
	if g.env.Fetcher == nil {
		return "", domain.NewDomainError("ImageGenerator.Download", domain.ErrSideEffect, "downloads not configured")
	}
	path, err := g.env.Fetcher.Fetch(ctx, snap.Result.URL, dir)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	return path, nil
}

// Dispose tears the tool down.
func (g *ImageGenerator) Dispose() { g.ctrl.Dispose() }

// Reset discards the image and any pending generation. The prompt is kept.
func (g *ImageGenerator) Reset() { g.ctrl.Reset() }
