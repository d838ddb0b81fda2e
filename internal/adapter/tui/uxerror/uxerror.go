// Package uxerror turns errors into short notices with recovery hints.
package uxerror

import (
	"errors"
	"strings"

	"aitools/internal/adapter/tui/theme"
	"aitools/internal/domain"
)

// Notice is an error as shown to the user.
type Notice struct {
	Title   string
	Message string
	Hints   []string
	Code    domain.ErrorCode
	Raw     string
}

// Summary is the one-line form used in the status bar.
func (n Notice) Summary() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

// Render is the multi-line form shown under a tool page.
func (n Notice) Render() string {
	lines := []string{n.Title}
	if n.Message != "" {
		lines = append(lines, "  "+n.Message)
	}
	if len(n.Hints) > 0 {
		lines = append(lines, "  Suggestions:")
		for _, h := range n.Hints {
			lines = append(lines, "    "+theme.SymbolBullet+" "+h)
		}
	}
	return strings.Join(lines, "\n")
}

type advice struct {
	title, message string
	hints          []string
}

// bySentinel is checked in order, so specific sentinels precede categories.
var bySentinel = []struct {
	target error
	advice
}{
	{domain.ErrCircuitOpen, advice{"Service Paused", "The backend failed repeatedly and is cooling down.",
		[]string{"Wait about 30 seconds and try again", "Check the backend configuration with 'aitools doctor'"}}},
	{domain.ErrRateLimit, advice{"Rate Limited", "Too many requests were sent to the provider.",
		[]string{"Wait a moment before retrying", "Lower resilience.rate_limit.per_second"}}},
	{domain.ErrAuthInvalid, advice{"Authentication Failed", "The API key or credentials were rejected.",
		[]string{"Check AITOOLS_LLM_PROVIDER_<NAME>_API_KEY", "Seal a fresh key with 'aitools encrypt'"}}},
	{domain.ErrTimeout, advice{"Request Timed Out", "The tool took too long to respond.",
		[]string{"Try again with a shorter input", "Increase resilience.timeout in config"}}},
	{domain.ErrUnsupportedAudio, advice{"Unsupported File", "The selected file is not an audio file.",
		[]string{"Choose an MP3, WAV, OGG, FLAC or M4A file"}}},
	{domain.ErrSwapUnavailable, advice{"Cannot Swap Languages", "Auto-detect cannot become the target language.",
		[]string{"Pick an explicit source language first"}}},
	{domain.ErrSideEffect, advice{"Action Unavailable", "The system command behind this action is missing or failed.",
		[]string{"Run 'aitools doctor' to check speech, playback and clipboard support", "Set side_effects.speech_command or side_effects.player_command in config"}}},
	{domain.ErrNoResult, advice{"Nothing Yet", "There is no result to act on.",
		[]string{"Run the tool first"}}},
	{domain.ErrCapabilityPanic, advice{"Internal Error", "The tool crashed while processing your request.",
		[]string{"Try again", "Run with AITOOLS_LOGGER_LEVEL=debug and report the log"}}},
	{domain.ErrProviderError, advice{"Provider Error", "The AI service returned an error.",
		[]string{"Try again in a moment", "Configure llm.failover to fall back to another provider"}}},
}

// byText covers errors raised outside the domain, matched on lower-cased text.
var byText = []struct {
	needles []string
	advice
}{
	{[]string{"connection refused", "dial tcp", "no such host"}, advice{"Connection Failed", "Could not reach the remote service.",
		[]string{"Check your internet connection", "Verify the provider base_url in config"}}},
	{[]string{"deadline exceeded"}, advice{"Request Timed Out", "The request took too long to complete.",
		[]string{"Try again", "Check your network connection"}}},
	{[]string{"402", "quota", "billing", "insufficient"}, advice{"Quota Exceeded", "Your API quota or billing limit has been reached.",
		[]string{"Check your provider billing dashboard"}}},
}

// Explain maps err to the first matching advice.
func Explain(err error) Notice {
	if err == nil {
		return Notice{Title: "Unknown Error", Raw: "nil"}
	}
	n := Notice{Code: domain.ErrorCodeOf(err), Raw: err.Error()}
	if a, ok := lookup(err); ok {
		n.Title, n.Message, n.Hints = a.title, a.message, a.hints
		return n
	}
	n.Title = "Something Went Wrong"
	n.Message = err.Error()
	n.Hints = []string{"Try again", "Run with AITOOLS_LOGGER_LEVEL=debug for more details"}
	return n
}

func lookup(err error) (advice, bool) {
	for _, s := range bySentinel {
		if errors.Is(err, s.target) {
			return s.advice, true
		}
	}
	text := strings.ToLower(err.Error())
	for _, t := range byText {
		for _, needle := range t.needles {
			if strings.Contains(text, needle) {
				return t.advice, true
			}
		}
	}
	return advice{}, false
}
