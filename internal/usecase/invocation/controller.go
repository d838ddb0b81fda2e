// Package invocation implements the asynchronous tool-invocation lifecycle:
// a single-flight orchestrator that validates input, runs an opaque
// capability, and keeps only the authoritative outcome.
package invocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"aitools/internal/domain"
	"aitools/internal/infra/tracer"
)

// Options configures a Controller.
type Options[I, R any] struct {
	Tool     domain.ToolID
	Validate domain.Validator[I] // nil accepts every input
	Busy     domain.BusyPolicy
	Logger   *slog.Logger
	Events   domain.EventPublisher // optional
	Tokens   TokenSource           // defaults to NewTokenSource()
	Now      func() time.Time

	// Consume, if set, replaces the input when a submission is committed,
	// e.g. clearing a chat box once its text has been sent.
	Consume func(input I) I

	// Hooks run inside the controller's critical section, atomically with the
	// transition they belong to. They must not call back into the controller.
	OnSubmit func(req domain.ToolRequest[I])
	OnAccept func(token domain.Token, result R)
	OnReset  func()
}

// Controller owns the lifecycle state of one tool instance.
// All methods are safe for concurrent use.
type Controller[I, R any] struct {
	opts   Options[I, R]
	logger *slog.Logger

	mu          sync.Mutex
	status      domain.Status
	input       I
	result      R
	hasResult   bool
	err         error
	active      domain.Token
	last        domain.Token
	submittedAt time.Time
	finishedAt  time.Time
	cancel      context.CancelFunc
	changed     chan struct{} // closed and replaced on every transition
	version     uint64

	disposed atomic.Bool

	obsMu     sync.Mutex
	observers map[uint64]func(domain.Snapshot[I, R])
	nextObs   uint64
	delivered uint64

	wg sync.WaitGroup
}

// New creates an idle controller holding initial as its input.
func New[I, R any](initial I, opts Options[I, R]) *Controller[I, R] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tokens == nil {
		opts.Tokens = NewTokenSource()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller[I, R]{
		opts:      opts,
		logger:    opts.Logger.With("tool", string(opts.Tool)),
		status:    domain.StatusIdle,
		input:     initial,
		changed:   make(chan struct{}),
		observers: make(map[uint64]func(domain.Snapshot[I, R])),
	}
}

// Snapshot returns a consistent copy of the presentation state.
func (c *Controller[I, R]) Snapshot() domain.Snapshot[I, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every transition.
// Snapshots arrive in transition order; a slow observer may skip
// intermediate states but never sees an older state after a newer one.
// Returns an unsubscribe function.
func (c *Controller[I, R]) Subscribe(fn func(domain.Snapshot[I, R])) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	if c.disposed.Load() {
		return func() {}
	}
	c.nextObs++
	id := c.nextObs
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// SetInput replaces the current input. Editing dismisses a prior failure:
// the error is cleared and the controller returns to Idle.
func (c *Controller[I, R]) SetInput(value I) {
	c.UpdateInput(func(I) I { return value })
}

// UpdateInput applies fn to the current input atomically.
func (c *Controller[I, R]) UpdateInput(fn func(I) I) {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return
	}
	c.input = fn(c.input)
	if c.status == domain.StatusFailed {
		c.err = nil
		c.status = domain.StatusIdle
	}
	snap := c.transitionLocked()
	c.mu.Unlock()

	c.deliver(snap)
}

// Submit validates the current input and, if it passes, starts capability
// on its own goroutine. It reports the minted token and whether a
// submission was started. Invalid input, a disposed controller, and (under
// RejectWhileBusy) an in-flight submission are silent no-ops.
//
// A nil capability is a programming error and panics.
func (c *Controller[I, R]) Submit(capability domain.Capability[I, R]) (domain.Token, bool) {
	if capability == nil {
		panic("invocation: Submit called with nil capability")
	}

	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return "", false
	}
	prev := c.status
	if prev == domain.StatusInFlight && c.opts.Busy == domain.RejectWhileBusy {
		c.mu.Unlock()
		c.logger.Debug("submission ignored while busy", "active", string(c.active))
		return "", false
	}

	c.status = domain.StatusValidating
	if c.opts.Validate != nil && !c.opts.Validate(c.input) {
		c.status = prev
		c.mu.Unlock()
		return "", false
	}

	superseded := c.active
	if c.cancel != nil {
		c.logger.Debug("superseding in-flight submission", "token", string(c.active))
		c.cancel()
	}

	now := c.opts.Now()
	token := c.opts.Tokens.Next()
	ctx, cancel := context.WithCancel(context.Background())

	c.status = domain.StatusInFlight
	c.active = token
	c.err = nil
	c.submittedAt = now
	c.finishedAt = time.Time{}
	c.cancel = cancel
	input := c.input
	if c.opts.Consume != nil {
		c.input = c.opts.Consume(input)
	}
	if c.opts.OnSubmit != nil {
		c.opts.OnSubmit(domain.ToolRequest[I]{Token: token, Input: input, SubmittedAt: now})
	}
	snap := c.transitionLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("invocation submitted", "token", string(token))
	c.publish(domain.EventInvocationSubmitted, domain.InvocationPayload{
		Token:       token,
		Status:      domain.StatusInFlight,
		SubmittedAt: now,
		Superseded:  superseded,
	})
	c.deliver(snap)

	go c.run(ctx, token, input, capability)
	return token, true
}

// Reset disowns any in-flight submission, clears result and error and
// returns to Idle. The input is left untouched. Reset is idempotent.
func (c *Controller[I, R]) Reset() {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return
	}
	disowned := c.active
	c.resetLocked()
	snap := c.transitionLocked()
	c.mu.Unlock()

	c.publish(domain.EventInvocationReset, domain.InvocationPayload{Token: disowned, Status: domain.StatusIdle})
	c.deliver(snap)
}

// Dispose resets the controller and makes it permanently inert: later
// completions, edits, submissions and resets change nothing and notify
// no one.
func (c *Controller[I, R]) Dispose() {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return
	}
	disowned := c.active
	c.resetLocked()
	c.disposed.Store(true)
	c.transitionLocked()
	c.mu.Unlock()

	c.obsMu.Lock()
	c.observers = make(map[uint64]func(domain.Snapshot[I, R]))
	c.obsMu.Unlock()

	c.logger.Debug("controller disposed")
	c.publish(domain.EventInvocationDisposed, domain.InvocationPayload{Token: disowned, Status: domain.StatusIdle})
}

// Disposed reports whether Dispose has been called.
func (c *Controller[I, R]) Disposed() bool {
	return c.disposed.Load()
}

// Exchange applies fn to input and result in one critical section. It is
// refused (returns false) while a submission is in flight or after Dispose,
// since an in-flight outcome would overwrite the exchanged result.
func (c *Controller[I, R]) Exchange(fn func(input I, result R, hasResult bool) (I, R, bool)) bool {
	c.mu.Lock()
	if c.disposed.Load() || c.status == domain.StatusInFlight {
		c.mu.Unlock()
		return false
	}
	c.input, c.result, c.hasResult = fn(c.input, c.result, c.hasResult)
	snap := c.transitionLocked()
	c.mu.Unlock()

	c.deliver(snap)
	return true
}

// Await blocks until the submission identified by token is no longer in
// flight (settled, superseded, reset or disposed) or ctx is done.
func (c *Controller[I, R]) Await(ctx context.Context, token domain.Token) (domain.Snapshot[I, R], error) {
	for {
		c.mu.Lock()
		snap := c.snapshotLocked()
		pending := c.active == token && !token.None()
		changed := c.changed
		c.mu.Unlock()

		if !pending {
			return snap, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Wait blocks until every capability goroutine started by this controller
// has returned. Outcomes may still have been discarded.
func (c *Controller[I, R]) Wait() {
	c.wg.Wait()
}

func (c *Controller[I, R]) run(ctx context.Context, token domain.Token, input I, capability domain.Capability[I, R]) {
	defer c.wg.Done()

	ctx, span := tracer.Start(ctx, "invocation.submit", tracer.Tool(string(c.opts.Tool)), tracer.Token(string(token)))

	result, err := call(ctx, input, capability)
	if !c.settle(token, result, err) {
		span.SetAttributes(tracer.Stale(true))
	}
	tracer.End(span, err)
}

// call invokes capability, converting a panic into a failure.
func call[I, R any](ctx context.Context, input I, capability domain.Capability[I, R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrCapabilityPanic, r)
		}
	}()
	return capability(ctx, input)
}

// settle applies an outcome if token is still authoritative.
func (c *Controller[I, R]) settle(token domain.Token, result R, err error) bool {
	c.mu.Lock()
	if c.disposed.Load() || token != c.active {
		c.mu.Unlock()
		c.logger.Debug("stale completion discarded", "token", string(token), "failed", err != nil)
		return false
	}

	now := c.opts.Now()
	c.active = ""
	c.last = token
	c.finishedAt = now
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if err != nil {
		c.status = domain.StatusFailed
		c.err = err
	} else {
		c.status = domain.StatusSucceeded
		c.result = result
		c.hasResult = true
		c.err = nil
		if c.opts.OnAccept != nil {
			c.opts.OnAccept(token, result)
		}
	}
	submittedAt := c.submittedAt
	snap := c.transitionLocked()
	c.mu.Unlock()

	payload := domain.InvocationPayload{
		Token:       token,
		Status:      snap.snap.Status,
		SubmittedAt: submittedAt,
		FinishedAt:  now,
	}
	if err != nil {
		c.logger.Warn("invocation failed", "token", string(token), "error", err)
		payload.Error = err.Error()
		payload.ErrorCode = domain.ErrorCodeOf(err)
		if payload.ErrorCode == domain.CodeUnknown {
			payload.ErrorCode = domain.CodeCapabilityFailure
		}
		c.publish(domain.EventInvocationFailed, payload)
	} else {
		c.logger.Debug("invocation succeeded", "token", string(token), "duration", now.Sub(submittedAt))
		c.publish(domain.EventInvocationSucceeded, payload)
	}
	c.deliver(snap)
	return true
}

func (c *Controller[I, R]) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var zero R
	c.active = ""
	c.last = ""
	c.result = zero
	c.hasResult = false
	c.err = nil
	c.status = domain.StatusIdle
	c.submittedAt = time.Time{}
	c.finishedAt = time.Time{}
	if c.opts.OnReset != nil {
		c.opts.OnReset()
	}
}

// transitionLocked wakes Await callers and returns the versioned snapshot
// to deliver once the lock is released.
func (c *Controller[I, R]) transitionLocked() versioned[I, R] {
	close(c.changed)
	c.changed = make(chan struct{})
	c.version++
	return versioned[I, R]{version: c.version, snap: c.snapshotLocked()}
}

func (c *Controller[I, R]) snapshotLocked() domain.Snapshot[I, R] {
	token := c.last
	if !c.active.None() {
		token = c.active
	}
	return domain.Snapshot[I, R]{
		Tool:        c.opts.Tool,
		Status:      c.status,
		Input:       c.input,
		Result:      c.result,
		HasResult:   c.hasResult,
		Err:         c.err,
		Token:       token,
		SubmittedAt: c.submittedAt,
		FinishedAt:  c.finishedAt,
	}
}

type versioned[I, R any] struct {
	version uint64
	snap    domain.Snapshot[I, R]
}

func (c *Controller[I, R]) deliver(v versioned[I, R]) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	if c.disposed.Load() || v.version <= c.delivered {
		return
	}
	c.delivered = v.version
	for _, fn := range c.observers {
		fn(v.snap)
	}
}

func (c *Controller[I, R]) publish(typ domain.EventType, payload domain.InvocationPayload) {
	if c.opts.Events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal invocation event", "error", err)
		return
	}
	c.opts.Events.Publish(context.Background(), domain.Event{
		Type:      typ,
		Timestamp: c.opts.Now(),
		Tool:      c.opts.Tool,
		Payload:   data,
	})
}
