package domain

import (
	"context"
	"time"
)

// InvocationRecord is the persisted outcome of one submission.
type InvocationRecord struct {
	Token       Token
	Tool        ToolID
	Status      Status
	ErrorCode   ErrorCode
	Error       string
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// Duration returns how long the submission took, or 0 while unfinished.
func (r InvocationRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.SubmittedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.SubmittedAt)
}

// InvocationStore persists invocation history.
type InvocationStore interface {
	// Begin records a submission that has just gone in flight.
	Begin(ctx context.Context, rec InvocationRecord) error
	// Finish updates the record for rec.Token with its settled outcome.
	Finish(ctx context.Context, rec InvocationRecord) error
	// Recent returns the newest records first, at most limit entries.
	Recent(ctx context.Context, limit int) ([]InvocationRecord, error)
	Close() error
}
