package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// VoiceOption names one enhancement toggle.
type VoiceOption int

const (
	NoiseReduction VoiceOption = iota
	VoiceClarity
	EchoRemoval
	VolumeNormalization
)

// audioTypes covers extensions the platform mime table often lacks.
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".weba": "audio/webm",
	".aiff": "audio/aiff",
}

// VoiceEnhancer cleans up a recorded audio file.
type VoiceEnhancer struct {
	env     Env
	backend domain.Capability[domain.VoiceInput, domain.EnhancedAudio]
	ctrl    *invocation.Controller[domain.VoiceInput, domain.EnhancedAudio]

	mu      sync.Mutex
	playing bool
	stop    func()
	playGen uint64
}

// NewVoiceEnhancer creates the voice tool with no file selected.
func NewVoiceEnhancer(env Env, backend domain.Capability[domain.VoiceInput, domain.EnhancedAudio]) *VoiceEnhancer {
	valid := func(in domain.VoiceInput) bool { return domain.Present(in.File) }
	return &VoiceEnhancer{
		env:     env,
		backend: backend,
		ctrl: invocation.New(
			domain.VoiceInput{Options: domain.DefaultVoiceOptions()},
			options[domain.VoiceInput, domain.EnhancedAudio](env, domain.ToolVoiceEnhancer, valid),
		),
	}
}

// Controller exposes the lifecycle for presentation.
func (v *VoiceEnhancer) Controller() *invocation.Controller[domain.VoiceInput, domain.EnhancedAudio] {
	return v.ctrl
}

// SelectFile picks the audio file to enhance. Only audio/* files are
// accepted. Choosing a file discards the previous enhancement.
func (v *VoiceEnhancer) SelectFile(path string) error {
	const op = "VoiceEnhancer.SelectFile"

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewSubSystemError("voice", op, domain.ErrNotFound, path)
		}
		return domain.WrapOp(op, err)
	}
	if info.IsDir() {
		return domain.NewSubSystemError("voice", op, domain.ErrUnsupportedAudio, path)
	}
	mimeType, err := detectAudioType(path)
	if err != nil {
		return domain.WrapOp(op, err)
	}
	if !strings.HasPrefix(mimeType, "audio/") {
		return domain.NewSubSystemError("voice", op, domain.ErrUnsupportedAudio, fmt.Sprintf("%s is %s", filepath.Base(path), mimeType))
	}

	file := &domain.AudioFile{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mimeType,
	}
	v.stopPlayback()
	v.ctrl.Reset()
	v.ctrl.UpdateInput(func(in domain.VoiceInput) domain.VoiceInput {
		in.File = file
		return in
	})
	return nil
}

func detectAudioType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return "application/octet-stream", nil
	}
	return mediaType, nil
}

// ToggleOption flips one enhancement toggle.
func (v *VoiceEnhancer) ToggleOption(o VoiceOption) {
	v.ctrl.UpdateInput(func(in domain.VoiceInput) domain.VoiceInput {
		switch o {
		case NoiseReduction:
			in.Options.NoiseReduction = !in.Options.NoiseReduction
		case VoiceClarity:
			in.Options.VoiceClarity = !in.Options.VoiceClarity
		case EchoRemoval:
			in.Options.EchoRemoval = !in.Options.EchoRemoval
		case VolumeNormalization:
			in.Options.VolumeNormalization = !in.Options.VolumeNormalization
		}
		return in
	})
}

// SetOptions replaces every enhancement toggle.
func (v *VoiceEnhancer) SetOptions(opts domain.VoiceOptions) {
	v.ctrl.UpdateInput(func(in domain.VoiceInput) domain.VoiceInput {
		in.Options = opts
		return in
	})
}

// FileSummary describes the selected file, e.g. "memo.wav (2.1 MB)".
func (v *VoiceEnhancer) FileSummary() string {
	f := v.ctrl.Snapshot().Input.File
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", f.Name, humanize.Bytes(uint64(f.Size)))
}

// Enhance submits the selected file.
func (v *VoiceEnhancer) Enhance() (domain.Token, bool) {
	return v.ctrl.Submit(v.backend)
}

// Playing reports whether the enhanced audio is playing.
func (v *VoiceEnhancer) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// TogglePlayback starts or stops playback of the enhanced audio and
// returns the new playing state.
func (v *VoiceEnhancer) TogglePlayback() (bool, error) {
	const op = "VoiceEnhancer.TogglePlayback"

	snap := v.ctrl.Snapshot()
	if !snap.HasResult {
		return false, domain.NewDomainError(op, domain.ErrNoResult, "")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		v.stopLocked()
		v.env.emit(domain.ToolVoiceEnhancer, domain.EventPlaybackToggled, map[string]bool{"playing": false})
		return false, nil
	}
	if v.env.Player == nil {
		return false, domain.NewDomainError(op, domain.ErrSideEffect, "audio player not configured")
	}

	v.playGen++
	gen := v.playGen
	stop, err := v.env.Player.Play(snap.Result.Path, func() { go v.ended(gen) })
	if err != nil {
		return false, domain.WrapOp(op, fmt.Errorf("%w: %v", domain.ErrSideEffect, err))
	}
	v.playing = true
	v.stop = stop
	v.env.emit(domain.ToolVoiceEnhancer, domain.EventPlaybackToggled, map[string]bool{"playing": true})
	return true, nil
}

func (v *VoiceEnhancer) ended(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.playGen || !v.playing {
		return
	}
	v.playing = false
	v.stop = nil
}

func (v *VoiceEnhancer) stopPlayback() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLocked()
}

func (v *VoiceEnhancer) stopLocked() {
	if v.stop != nil {
		v.stop()
	}
	v.playGen++
	v.playing = false
	v.stop = nil
}

// Download saves the enhanced audio into dir.
func (v *VoiceEnhancer) Download(ctx context.Context, dir string) (string, error) {
	snap := v.ctrl.Snapshot()
	if !snap.HasResult || snap.Result.Path == "" {
		return "", domain.NewDomainError("VoiceEnhancer.Download", domain.ErrNoResult, "")
	}
	if v.env.Fetcher == nil {
		return "", domain.NewDomainError("VoiceEnhancer.Download", domain.ErrSideEffect, "downloads not configured")
	}
	path, err := v.env.Fetcher.Fetch(ctx, snap.Result.Path, dir)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}
	return path, nil
}

// Reset stops playback and clears the enhancement. The selection is kept.
func (v *VoiceEnhancer) Reset() {
	v.stopPlayback()
	v.ctrl.Reset()
}

// Dispose tears the tool down.
func (v *VoiceEnhancer) Dispose() {
	v.stopPlayback()
	v.ctrl.Dispose()
}
