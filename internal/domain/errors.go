package domain

import (
	"errors"
	"fmt"
)

// Category sentinels, refined per subsystem by NewSubSystemError.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate")
	ErrTimeout       = errors.New("operation timed out")
	ErrInvalidInput  = errors.New("invalid input")
	ErrProviderError = errors.New("provider error")
)

var (
	ErrProviderNotFound = errors.New("llm provider not found")

	// Invocation lifecycle.
	ErrCapabilityFailure = errors.New("capability failed")
	ErrCapabilityPanic   = errors.New("capability panicked")
	ErrCircuitOpen       = errors.New("capability circuit open")
	ErrNoResult          = errors.New("no result available")

	// Tool actions.
	ErrUnsupportedAudio = errors.New("file is not an audio file")
	ErrSwapUnavailable  = errors.New("swap unavailable")
	ErrSideEffect       = errors.New("side effect unavailable")

	// Provider responses.
	ErrRateLimit   = errors.New("rate limit exceeded")
	ErrAuthInvalid = errors.New("authentication failed")

	ErrStoreWrite = errors.New("history store write failed")
)

// DomainError attaches an operation, optional detail and optional
// subsystem to a sentinel.
type DomainError struct {
	Op        string // e.g. "Translator.Swap"
	Err       error
	Detail    string
	SubSystem string // e.g. "voice", refines Code
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// NewSubSystemError is NewDomainError with a subsystem tag.
func NewSubSystemError(subsystem, op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail, SubSystem: subsystem}
}

// WrapOp prefixes err with op. A nil err stays nil.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is transient.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrCircuitOpen)
}

// ErrorCode is the stable error category stored in history records and
// carried on failure events.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeProviderNotFound  ErrorCode = "PROVIDER_NOT_FOUND"
	CodeCapabilityFailure ErrorCode = "CAPABILITY_FAILURE"
	CodeCapabilityPanic   ErrorCode = "CAPABILITY_PANIC"
	CodeCircuitOpen       ErrorCode = "CIRCUIT_OPEN"
	CodeNoResult          ErrorCode = "NO_RESULT"
	CodeUnsupportedAudio  ErrorCode = "UNSUPPORTED_AUDIO"
	CodeSwapUnavailable   ErrorCode = "SWAP_UNAVAILABLE"
	CodeSideEffect        ErrorCode = "SIDE_EFFECT"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid       ErrorCode = "AUTH_INVALID"
	CodeStoreWrite        ErrorCode = "STORE_WRITE"

	CodeImageTimeout    ErrorCode = "IMAGE_TIMEOUT"
	CodeVoiceTimeout    ErrorCode = "VOICE_TIMEOUT"
	CodeVoiceNotFound   ErrorCode = "VOICE_FILE_NOT_FOUND"
	CodeToolNotFound    ErrorCode = "TOOL_NOT_FOUND"
	CodeLanguageInvalid ErrorCode = "LANGUAGE_INVALID"
	CodeImageProvider   ErrorCode = "IMAGE_PROVIDER"
	CodeVoiceProvider   ErrorCode = "VOICE_PROVIDER"

	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeDuplicate     ErrorCode = "DUPLICATE"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
)

type codeRule struct {
	sentinel    error
	code        ErrorCode
	bySubsystem map[string]ErrorCode
}

// codeRules is searched in order: an error chain holding both a specific
// sentinel and a category gets the specific code.
var codeRules = []codeRule{
	{sentinel: ErrCapabilityPanic, code: CodeCapabilityPanic},
	{sentinel: ErrCircuitOpen, code: CodeCircuitOpen},
	{sentinel: ErrRateLimit, code: CodeRateLimit},
	{sentinel: ErrAuthInvalid, code: CodeAuthInvalid},
	{sentinel: ErrUnsupportedAudio, code: CodeUnsupportedAudio},
	{sentinel: ErrSwapUnavailable, code: CodeSwapUnavailable},
	{sentinel: ErrSideEffect, code: CodeSideEffect},
	{sentinel: ErrNoResult, code: CodeNoResult},
	{sentinel: ErrProviderNotFound, code: CodeProviderNotFound},
	{sentinel: ErrStoreWrite, code: CodeStoreWrite},
	{sentinel: ErrCapabilityFailure, code: CodeCapabilityFailure},

	{sentinel: ErrNotFound, code: CodeNotFound, bySubsystem: map[string]ErrorCode{
		"tool": CodeToolNotFound, "voice": CodeVoiceNotFound,
	}},
	{sentinel: ErrTimeout, code: CodeTimeout, bySubsystem: map[string]ErrorCode{
		"image": CodeImageTimeout, "voice": CodeVoiceTimeout,
	}},
	{sentinel: ErrInvalidInput, code: CodeInvalidInput, bySubsystem: map[string]ErrorCode{
		"translator": CodeLanguageInvalid,
	}},
	{sentinel: ErrProviderError, code: CodeProviderError, bySubsystem: map[string]ErrorCode{
		"image": CodeImageProvider, "voice": CodeVoiceProvider,
	}},
	{sentinel: ErrDuplicate, code: CodeDuplicate},
}

// ErrorCodeOf classifies err. The outermost DomainError's subsystem
// refines category codes.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code()
	}
	return classify(err, "")
}

// Code classifies e.Err using e.SubSystem.
func (e *DomainError) Code() ErrorCode { return classify(e.Err, e.SubSystem) }

func classify(err error, subsystem string) ErrorCode {
	for _, r := range codeRules {
		if !errors.Is(err, r.sentinel) {
			continue
		}
		if code, ok := r.bySubsystem[subsystem]; ok {
			return code
		}
		return r.code
	}
	return CodeUnknown
}
