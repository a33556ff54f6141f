package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"recruitdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(attempts int) *Backoff {
	return NewBackoff(BackoffConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  attempts,
	})
}

func TestBackoff_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	err := fastBackoff(3).Retry(context.Background(), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	err := fastBackoff(3).Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestBackoff_ReturnsLastError(t *testing.T) {
	attempts := 0
	err := fastBackoff(2).Retry(context.Background(), func() error {
		attempts++
		return errors.New("still failing")
	})

	require.EqualError(t, err, "still failing")
	assert.Equal(t, 2, attempts)
}

func TestBackoff_NonRetryableStopsImmediately(t *testing.T) {
	permanent := errors.New("permanent")
	attempts := 0
	err := fastBackoff(5).RetryWithPredicate(context.Background(), func() error {
		attempts++
		return permanent
	}, func(err error) bool { return !errors.Is(err, permanent) })

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := fastBackoff(3).Retry(ctx, func() error {
		attempts++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestBackoff_DelayCapped(t *testing.T) {
	b := NewBackoff(BackoffConfig{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   3.0,
		MaxAttempts:  10,
	})

	assert.Equal(t, 10*time.Millisecond, b.delay(1))
	assert.Equal(t, 30*time.Millisecond, b.delay(2))
	assert.Equal(t, 50*time.Millisecond, b.delay(5))
}

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(models.RetryConfig{InitialBackoffMs: 200, MaxBackoffMs: 1000, MaxAttempts: 4})
	assert.Equal(t, 200*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, time.Second, cfg.MaxDelay)
	assert.Equal(t, 4, cfg.MaxAttempts)

	defaults := FromRetryConfig(models.RetryConfig{})
	assert.Equal(t, DefaultBackoffConfig().MaxAttempts, defaults.MaxAttempts)
}
