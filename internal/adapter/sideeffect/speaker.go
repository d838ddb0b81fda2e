package sideeffect

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"aitools/internal/domain"
)

var speechDefaults = map[string][]string{
	"darwin":  {"say"},
	"linux":   {"espeak-ng", "espeak", "spd-say --wait"},
	"freebsd": {"espeak"},
}

// CommandSpeaker reads text aloud through a text-to-speech command. The text
// is passed as the last argument.
type CommandSpeaker struct {
	command string
	logger  *slog.Logger
}

// NewCommandSpeaker creates a speaker. An empty command picks a platform
// default at call time.
func NewCommandSpeaker(command string, logger *slog.Logger) *CommandSpeaker {
	return &CommandSpeaker{command: command, logger: logger}
}

// Speak blocks until the text has been spoken or ctx is done.
func (s *CommandSpeaker) Speak(ctx context.Context, text, lang string) error {
	bin, args, err := resolve("CommandSpeaker.Speak", s.command, speechDefaults)
	if err != nil {
		return err
	}
	args = append(args, voiceArgs(commandName(bin), lang)...)
	args = append(args, text)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	s.logger.Debug("speaking", "command", bin, "lang", lang, "characters", domain.StatsOf(text).Characters)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.NewDomainError("CommandSpeaker.Speak", domain.ErrSideEffect,
			fmt.Sprintf("%s: %v %s", bin, err, strings.TrimSpace(stderr.String())))
	}
	return nil
}

// voiceArgs selects a voice for lang on engines that take a language code.
func voiceArgs(engine, lang string) []string {
	if lang == "" || lang == domain.LanguageAuto {
		return nil
	}
	switch engine {
	case "espeak", "espeak-ng":
		return []string{"-v", lang}
	case "spd-say":
		return []string{"-l", lang}
	}
	return nil
}
