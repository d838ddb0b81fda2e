package capability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counting(calls *atomic.Int32, err error) domain.Capability[string, string] {
	return func(_ context.Context, in string) (string, error) {
		calls.Add(1)
		if err != nil {
			return "", err
		}
		return "ok:" + in, nil
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	c := WithCircuitBreaker("image", config.CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute}, quietLogger(),
		counting(&calls, errors.New("down")))

	for i := 0; i < 3; i++ {
		_, err := c(context.Background(), "p")
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrCircuitOpen))
	}

	_, err := c(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircuitOpen))
	assert.Equal(t, domain.CodeCircuitOpen, domain.ErrorCodeOf(err))
	assert.Equal(t, int32(3), calls.Load(), "open circuit must not reach the backend")
}

func TestCircuitBreakerRecovers(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c := WithCircuitBreaker("chat", config.CircuitBreakerConfig{MaxFailures: 2, Timeout: 50 * time.Millisecond}, quietLogger(),
		func(_ context.Context, in string) (string, error) {
			if fail.Load() {
				return "", errors.New("down")
			}
			return "recovered", nil
		})

	for i := 0; i < 2; i++ {
		_, _ = c(context.Background(), "x")
	}
	_, err := c(context.Background(), "x")
	require.True(t, errors.Is(err, domain.ErrCircuitOpen))

	time.Sleep(100 * time.Millisecond)
	fail.Store(false)
	out, err := c(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	var calls atomic.Int32
	c := WithCircuitBreaker("chat", config.CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Minute}, quietLogger(),
		counting(&calls, context.Canceled))

	for i := 0; i < 3; i++ {
		_, err := c(context.Background(), "x")
		assert.True(t, errors.Is(err, context.Canceled))
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitRejectsUnsatisfiableWait(t *testing.T) {
	var calls atomic.Int32
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := WithRateLimit("summarizer", limiter, counting(&calls, nil))

	out, err := c(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok:a", out)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c(ctx, "b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimit))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimitCancelled(t *testing.T) {
	var calls atomic.Int32
	c := WithRateLimit("summarizer", rate.NewLimiter(rate.Every(time.Hour), 1), counting(&calls, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c(ctx, "a")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, calls.Load())
}

func TestWithTimeout(t *testing.T) {
	slow := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	_, err := WithTimeout("image", 20*time.Millisecond, slow)(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.Equal(t, domain.CodeImageTimeout, domain.ErrorCodeOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithTimeout("image", time.Minute, slow)(ctx, "p")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrTimeout))
}

func TestWithTimeoutZeroIsPassthrough(t *testing.T) {
	var calls atomic.Int32
	out, err := WithTimeout("chat", 0, counting(&calls, nil))(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok:x", out)
}

func TestWithTracingPassesThrough(t *testing.T) {
	var calls atomic.Int32
	sentinel := errors.New("boom")
	_, err := WithTracing("voice", quietLogger(), counting(&calls, sentinel))(context.Background(), "x")
	assert.Equal(t, sentinel, err)

	out, err := WithTracing("voice", quietLogger(), counting(&calls, nil))(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, "ok:y", out)
}

func TestWrapComposes(t *testing.T) {
	cfg := config.Defaults().Resilience
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, PerSecond: 100, Burst: 10}

	var calls atomic.Int32
	c := Wrap("translator", cfg, quietLogger(), counting(&calls, errors.New("down")))
	_, err := c(context.Background(), "x")
	require.Error(t, err)
	_, err = c(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrCircuitOpen))
	assert.Equal(t, int32(1), calls.Load())
}
