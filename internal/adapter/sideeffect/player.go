package sideeffect

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"

	"aitools/internal/domain"
)

var playerDefaults = map[string][]string{
	"darwin":  {"afplay"},
	"linux":   {"ffplay -nodisp -autoexit -loglevel quiet", "paplay", "aplay -q"},
	"freebsd": {"ffplay -nodisp -autoexit -loglevel quiet"},
}

// CommandPlayer plays audio files through an external player process.
type CommandPlayer struct {
	command string
	logger  *slog.Logger
}

// NewCommandPlayer creates a player. An empty command picks a platform
// default at call time.
func NewCommandPlayer(command string, logger *slog.Logger) *CommandPlayer {
	return &CommandPlayer{command: command, logger: logger}
}

// Play starts playback of path and returns at once. done runs when the
// player exits on its own; calling stop kills the player and suppresses done.
func (p *CommandPlayer) Play(path string, done func()) (func(), error) {
	bin, args, err := resolve("CommandPlayer.Play", p.command, playerDefaults)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, bin, append(args, path)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, domain.NewDomainError("CommandPlayer.Play", domain.ErrSideEffect, err.Error())
	}
	p.logger.Debug("playback started", "command", bin, "path", path)

	var (
		mu      sync.Mutex
		stopped bool
	)
	go func() {
		err := cmd.Wait()
		cancel()
		mu.Lock()
		natural := !stopped
		mu.Unlock()
		if !natural {
			return
		}
		if err != nil {
			p.logger.Warn("player exited with error", "command", bin, "error", err)
		}
		if done != nil {
			done()
		}
	}()

	stop := func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		cancel()
	}
	return stop, nil
}
