package sideeffect

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"aitools/internal/domain"
)

// resolve splits a configured command line into binary and leading args,
// falling back to the first platform default found on PATH.
func resolve(op, configured string, defaults map[string][]string) (string, []string, error) {
	if fields := strings.Fields(configured); len(fields) > 0 {
		return fields[0], fields[1:], nil
	}
	for _, candidate := range defaults[runtime.GOOS] {
		fields := strings.Fields(candidate)
		if _, err := exec.LookPath(fields[0]); err == nil {
			return fields[0], fields[1:], nil
		}
	}
	return "", nil, domain.NewDomainError(op, domain.ErrSideEffect, "no command available on "+runtime.GOOS)
}

func commandName(bin string) string {
	return strings.TrimSuffix(filepath.Base(bin), filepath.Ext(bin))
}

// SpeechCommand reports the speech binary that would run for configured.
func SpeechCommand(configured string) (string, error) {
	bin, _, err := resolve("sideeffect.SpeechCommand", configured, speechDefaults)
	return bin, err
}

// PlayerCommand reports the playback binary that would run for configured.
func PlayerCommand(configured string) (string, error) {
	bin, _, err := resolve("sideeffect.PlayerCommand", configured, playerDefaults)
	return bin, err
}
