package domain

import (
	"context"
	"strings"
	"time"
)

// Status is the lifecycle state of one tool invocation controller.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusInFlight   Status = "in_flight"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether s is a settled outcome.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Token identifies a single submission. The zero value means "no submission".
type Token string

// None reports whether t is the zero token.
func (t Token) None() bool { return t == "" }

// Capability is an opaque long-running operation a tool page delegates to.
// The context is cancelled when the submission is superseded, reset or
// disposed; honoring it is optional.
type Capability[I, R any] func(ctx context.Context, input I) (R, error)

// ToolRequest describes one accepted submission.
type ToolRequest[I any] struct {
	Token       Token
	Input       I
	SubmittedAt time.Time
}

// Snapshot is a consistent read of a controller's presentation state.
type Snapshot[I, R any] struct {
	Tool        ToolID
	Status      Status
	Input       I
	Result      R
	HasResult   bool
	Err         error
	Token       Token // active token while in flight, last accepted token otherwise
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// Busy reports whether an authoritative submission is in flight.
func (s Snapshot[I, R]) Busy() bool { return s.Status == StatusInFlight }

// BusyPolicy decides what Submit does while a submission is in flight.
type BusyPolicy int

const (
	// RejectWhileBusy ignores resubmission until the current one settles.
	RejectWhileBusy BusyPolicy = iota
	// SupersedeWhileBusy disowns the in-flight submission and starts a new one.
	SupersedeWhileBusy
)

// Validator reports whether an input may be submitted.
type Validator[I any] func(input I) bool

// NonBlank is the validator for text payloads.
func NonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Present is the validator for pointer payloads such as selected files.
func Present[T any](v *T) bool {
	return v != nil
}
