package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"recruitdesk/internal/models"
)

// BackoffConfig contains configuration for exponential backoff
type BackoffConfig struct {
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
	MaxAttempts  int           `json:"max_attempts"`
	Jitter       bool          `json:"jitter"`
}

// DefaultBackoffConfig returns a sensible default configuration
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  3,
		Jitter:       true,
	}
}

// FromRetryConfig builds a jittered backoff from the file configuration
func FromRetryConfig(rc models.RetryConfig) BackoffConfig {
	cfg := DefaultBackoffConfig()
	if rc.InitialBackoffMs > 0 {
		cfg.InitialDelay = time.Duration(rc.InitialBackoffMs) * time.Millisecond
	}
	if rc.MaxBackoffMs > 0 {
		cfg.MaxDelay = time.Duration(rc.MaxBackoffMs) * time.Millisecond
	}
	if rc.MaxAttempts > 0 {
		cfg.MaxAttempts = rc.MaxAttempts
	}
	return cfg
}

// Backoff implements exponential backoff with optional jitter
type Backoff struct {
	config BackoffConfig
}

// NewBackoff creates a new exponential backoff instance
func NewBackoff(config BackoffConfig) *Backoff {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	return &Backoff{
		config: config,
	}
}

// Retry executes the operation until it succeeds or attempts run out
func (b *Backoff) Retry(ctx context.Context, operation func() error) error {
	return b.RetryWithPredicate(ctx, operation, func(error) bool { return true })
}

// RetryWithPredicate retries only while isRetryable reports true for the last error
func (b *Backoff) RetryWithPredicate(ctx context.Context, operation func() error, isRetryable func(error) bool) error {
	var lastErr error

	for attempt := 1; attempt <= b.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == b.config.MaxAttempts {
			break
		}

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// delay computes the wait after the given attempt, capped at MaxDelay
func (b *Backoff) delay(attempt int) time.Duration {
	d := float64(b.config.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= b.config.Multiplier
	}
	if d > float64(b.config.MaxDelay) {
		d = float64(b.config.MaxDelay)
	}

	if b.config.Jitter {
		// +/-25%
		d += (rand.Float64() - 0.5) * 0.5 * d
		if d > float64(b.config.MaxDelay) {
			d = float64(b.config.MaxDelay)
		}
	}

	return time.Duration(d)
}
