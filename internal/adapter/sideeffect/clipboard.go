// Package sideeffect implements the auxiliary actions tool pages trigger:
// clipboard copy, speech, audio playback and downloads.
package sideeffect

import (
	"github.com/atotto/clipboard"

	"aitools/internal/domain"
)

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return domain.NewDomainError("SystemClipboard.WriteAll", domain.ErrSideEffect, "no clipboard utility found")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return domain.WrapOp("SystemClipboard.WriteAll", err)
	}
	return nil
}

// Available reports whether a clipboard utility was found.
func (SystemClipboard) Available() bool { return !clipboard.Unsupported }
