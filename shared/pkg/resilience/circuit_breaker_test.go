package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []gobreaker.State
	cfg := DefaultCircuitBreakerConfig("test")
	cfg.FailureThreshold = 2
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) }
	cb := NewCircuitBreaker(cfg, nil)

	ctx := context.Background()
	fail := func(context.Context) error { return errBoom }

	assert.ErrorIs(t, cb.Do(ctx, fail), errBoom)
	assert.ErrorIs(t, cb.Do(ctx, fail), errBoom)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.ErrorIs(t, cb.Do(ctx, fail), ErrCircuitOpen)
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestCircuitBreaker_IsSuccessfulKeepsCircuitClosed(t *testing.T) {
	notFound := errors.New("not found")
	cfg := DefaultCircuitBreakerConfig("lookup")
	cfg.FailureThreshold = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, notFound) }
	cb := NewCircuitBreaker(cfg, nil)

	for i := 0; i < 3; i++ {
		_, err := Execute(context.Background(), cb, func(context.Context) (int, error) { return 0, notFound })
		assert.ErrorIs(t, err, notFound)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	v, err := Execute(context.Background(), cb, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRetry(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}

	calls := 0
	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)

	calls = 0
	cfg.Retryable = func(error) bool { return false }
	_ = Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		return errBoom
	})
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, DefaultRetryConfig(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
