package capability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"aitools/internal/domain"
)

// DefaultFFmpegCommand is the binary used when the backend config names none.
const DefaultFFmpegCommand = "ffmpeg"

const (
	filterNoise       = "afftdn=nf=-25"
	filterClarity     = "highpass=f=80,equalizer=f=3000:t=q:w=1:g=3"
	filterEcho        = "agate=threshold=0.02:ratio=2"
	filterLoudness    = "loudnorm=I=-16:TP=-1.5:LRA=11"
	filterPassthrough = "anull"
)

// FFmpegEnhancer runs the selected enhancements through an ffmpeg filter chain.
type FFmpegEnhancer struct {
	command string
	outDir  string
	logger  *slog.Logger
}

// NewFFmpegEnhancer creates an enhancer writing its output into outDir.
func NewFFmpegEnhancer(command, outDir string, logger *slog.Logger) *FFmpegEnhancer {
	if command == "" {
		command = DefaultFFmpegCommand
	}
	return &FFmpegEnhancer{command: command, outDir: outDir, logger: logger}
}

// Capability adapts the enhancer to the voice tool.
func (f *FFmpegEnhancer) Capability() domain.Capability[domain.VoiceInput, domain.EnhancedAudio] {
	return f.Enhance
}

// Enhance processes in.File and returns the path of the enhanced copy.
func (f *FFmpegEnhancer) Enhance(ctx context.Context, in domain.VoiceInput) (domain.EnhancedAudio, error) {
	const op = "FFmpegEnhancer.Enhance"
	if in.File == nil {
		return domain.EnhancedAudio{}, domain.NewSubSystemError("voice", op, domain.ErrInvalidInput, "no file selected")
	}
	if _, err := os.Stat(in.File.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.EnhancedAudio{}, domain.NewSubSystemError("voice", op, domain.ErrNotFound, in.File.Path)
		}
		return domain.EnhancedAudio{}, domain.WrapOp(op, err)
	}
	if err := os.MkdirAll(f.outDir, 0o700); err != nil {
		return domain.EnhancedAudio{}, domain.WrapOp(op, err)
	}

	out := filepath.Join(f.outDir, enhancedName(in.File.Path))
	args := []string{"-y", "-hide_banner", "-loglevel", "error",
		"-i", in.File.Path, "-af", FilterChain(in.Options), out}

	cmd := exec.CommandContext(ctx, f.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return domain.EnhancedAudio{}, ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return domain.EnhancedAudio{}, domain.NewSubSystemError("voice", op, domain.ErrProviderError, detail)
	}
	f.logger.Debug("audio enhanced", "source", in.File.Path, "output", out)
	return domain.EnhancedAudio{Path: out, Source: *in.File, Options: in.Options}, nil
}

// FilterChain renders opts as an ffmpeg -af argument.
func FilterChain(opts domain.VoiceOptions) string {
	var filters []string
	if opts.NoiseReduction {
		filters = append(filters, filterNoise)
	}
	if opts.VoiceClarity {
		filters = append(filters, filterClarity)
	}
	if opts.EchoRemoval {
		filters = append(filters, filterEcho)
	}
	if opts.VolumeNormalization {
		filters = append(filters, filterLoudness)
	}
	if len(filters) == 0 {
		return filterPassthrough
	}
	return strings.Join(filters, ",")
}

func enhancedName(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return fmt.Sprintf("%s-enhanced%s", base, ext)
}
