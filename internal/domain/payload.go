package domain

import (
	"strings"
	"unicode/utf8"
)

// ImageResult is the outcome of an image generation.
type ImageResult struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// AudioFile is a user-selected audio file.
type AudioFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// VoiceOptions are the enhancement toggles of the voice tool.
type VoiceOptions struct {
	NoiseReduction      bool `json:"noise_reduction"`
	VoiceClarity        bool `json:"voice_clarity"`
	EchoRemoval         bool `json:"echo_removal"`
	VolumeNormalization bool `json:"volume_normalization"`
}

// DefaultVoiceOptions has noise reduction and voice clarity on.
func DefaultVoiceOptions() VoiceOptions {
	return VoiceOptions{NoiseReduction: true, VoiceClarity: true}
}

// VoiceInput is the payload submitted by the voice tool.
// File is nil until the user selects one.
type VoiceInput struct {
	File    *AudioFile   `json:"file,omitempty"`
	Options VoiceOptions `json:"options"`
}

// EnhancedAudio is the outcome of a voice enhancement.
type EnhancedAudio struct {
	Path    string       `json:"path"` // local path or URL of the processed audio
	Source  AudioFile    `json:"source"`
	Options VoiceOptions `json:"options"`
}

// SummaryLength selects how aggressively text is condensed.
type SummaryLength string

const (
	SummaryShort    SummaryLength = "short"
	SummaryMedium   SummaryLength = "medium"
	SummaryDetailed SummaryLength = "detailed"
)

// Ratio is the approximate share of the original text a summary keeps.
func (l SummaryLength) Ratio() string {
	switch l {
	case SummaryShort:
		return "25%"
	case SummaryDetailed:
		return "60%"
	default:
		return "40%"
	}
}

// Valid reports whether l is one of the known lengths.
func (l SummaryLength) Valid() bool {
	return l == SummaryShort || l == SummaryMedium || l == SummaryDetailed
}

// SummaryInput is the payload submitted by the summarizer.
type SummaryInput struct {
	Text   string        `json:"text"`
	Length SummaryLength `json:"length"`
}

// TranslationInput is the payload submitted by the translator.
type TranslationInput struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TextStats are the counters displayed under text panes.
type TextStats struct {
	Characters int
	Words      int
}

// StatsOf counts characters and whitespace-separated words in s.
func StatsOf(s string) TextStats {
	return TextStats{
		Characters: utf8.RuneCountInString(s),
		Words:      len(strings.Fields(s)),
	}
}
