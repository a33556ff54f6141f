package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEndpoint = errors.New("endpoint down")

func newTestBreaker(maxFailures int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	cb := New("test", maxFailures, reset)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return current }
	return cb, &current
}

func fail(context.Context) error    { return errEndpoint }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	ctx := context.Background()

	for range 3 {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errEndpoint)
	}
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsCircuitBreakerError(err))
	assert.True(t, IsCircuitBreakerError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, called)

	stats := cb.GetStats()
	assert.Equal(t, 3, stats.Requests)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, "OPEN", stats.State)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.GetState())

	*now = now.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, cb.GetState())

	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, StateHalfOpen, cb.GetState())
	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(1, time.Minute)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	*now = now.Add(2 * time.Minute)

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_CancellationNotCounted(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)

	err := cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
