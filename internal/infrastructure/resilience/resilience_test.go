package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilpunky/manaja2/internal/infrastructure/resilience"
)

func TestRetryWithBackoff(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	t.Run("succeeds first time", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("temporary error")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts retries", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return errors.New("persistent error")
		})
		assert.EqualError(t, err, "persistent error")
		assert.Equal(t, 4, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		cause := errors.New("bad request")
		calls := 0
		err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return resilience.Permanent(cause)
		})
		assert.Same(t, cause, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
			calls++
			return errors.New("error")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})

	t.Run("zero backoff does not panic", func(t *testing.T) {
		err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 2}, func() error {
			return errors.New("error")
		})
		assert.Error(t, err)
	})
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, resilience.Permanent(nil))
	cause := errors.New("nope")
	err := resilience.Permanent(cause)
	assert.True(t, resilience.IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, resilience.IsPermanent(cause))
}

func TestCircuitBreaker_TripsAfterFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("ekyc", nil, nil)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (any, error) { return "unreachable", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_IgnoresSuccessfulErrors(t *testing.T) {
	rejected := errors.New("rejected")
	cb := resilience.NewCircuitBreaker("ekyc", nil, func(err error) bool {
		return err == nil || errors.Is(err, rejected)
	})

	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, rejected })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBulkhead(t *testing.T) {
	b := resilience.NewBulkhead(1)
	require.NoError(t, b.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Acquire(ctx), context.DeadlineExceeded)

	b.Release()
	require.NoError(t, b.Acquire(context.Background()))
	b.Release()

	unbounded := resilience.NewBulkhead(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, unbounded.Acquire(context.Background()))
	}
	unbounded.Release()
}
