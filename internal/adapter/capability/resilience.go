package capability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
	"aitools/internal/infra/tracer"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// Wrap composes the configured middleware around c. From the outside in:
// tracing, timeout, rate limit, circuit breaker. subsystem tags the errors
// the middleware produces.
func Wrap[I, R any](subsystem string, cfg config.ResilienceConfig, logger *slog.Logger, c domain.Capability[I, R]) domain.Capability[I, R] {
	if cfg.CircuitBreaker.Enabled {
		c = WithCircuitBreaker(subsystem, cfg.CircuitBreaker, logger, c)
	}
	if cfg.RateLimit.Enabled {
		c = WithRateLimit(subsystem, rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst), c)
	}
	c = WithTimeout(subsystem, cfg.Timeout, c)
	return WithTracing(subsystem, logger, c)
}

// WithCircuitBreaker fails fast with ErrCircuitOpen once c has failed
// MaxFailures times in a row. Cancellation does not count as a failure.
func WithCircuitBreaker[I, R any](subsystem string, cfg config.CircuitBreakerConfig, logger *slog.Logger, c domain.Capability[I, R]) domain.Capability[I, R] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[R](gobreaker.Settings{
		Name:        "capability:" + subsystem,
		MaxRequests: 1, // one probe in half-open
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return func(ctx context.Context, in I) (R, error) {
		out, err := cb.Execute(func() (R, error) {
			return c(ctx, in)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			var zero R
			return zero, domain.NewSubSystemError(subsystem, "capability."+subsystem, domain.ErrCircuitOpen, err.Error())
		}
		return out, err
	}
}

// WithRateLimit waits for limiter before calling c. A wait that cannot be
// satisfied before the context deadline fails with ErrRateLimit.
func WithRateLimit[I, R any](subsystem string, limiter *rate.Limiter, c domain.Capability[I, R]) domain.Capability[I, R] {
	return func(ctx context.Context, in I) (R, error) {
		if err := limiter.Wait(ctx); err != nil {
			var zero R
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, domain.NewSubSystemError(subsystem, "capability."+subsystem, domain.ErrRateLimit, err.Error())
		}
		return c(ctx, in)
	}
}

// WithTimeout bounds each call by d. Zero disables the bound. Expiry surfaces
// as ErrTimeout; cancellation by the caller is returned unchanged.
func WithTimeout[I, R any](subsystem string, d time.Duration, c domain.Capability[I, R]) domain.Capability[I, R] {
	if d <= 0 {
		return c
	}
	return func(ctx context.Context, in I) (R, error) {
		tctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		out, err := c(tctx, in)
		if err != nil && ctx.Err() == nil && tctx.Err() == context.DeadlineExceeded {
			return out, domain.NewSubSystemError(subsystem, "capability."+subsystem, domain.ErrTimeout, d.String())
		}
		return out, err
	}
}

// WithTracing runs each call inside a capability.<subsystem> span.
func WithTracing[I, R any](subsystem string, logger *slog.Logger, c domain.Capability[I, R]) domain.Capability[I, R] {
	spanName := "capability." + subsystem
	return func(ctx context.Context, in I) (R, error) {
		ctx, span := tracer.Start(ctx, spanName, tracer.Capability(subsystem))

		start := time.Now()
		out, err := c(ctx, in)
		if err != nil {
			span.SetAttributes(tracer.Retryable(domain.IsRetryableError(err)))
			tracer.End(span, err)
			if ctx.Err() == nil {
				logger.Warn(spanName+" failed", "error", err, "code", domain.ErrorCodeOf(err))
			}
			return out, err
		}
		tracer.End(span, nil)
		logger.Debug(spanName+" completed", "duration", time.Since(start))
		return out, nil
	}
}
