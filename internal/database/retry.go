package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recruitdesk/internal/constants"
	"recruitdesk/internal/retry"
)

func dbBackoff() *retry.Backoff {
	return retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(constants.DefaultRetryBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(constants.DefaultMaxBackoffMs) * time.Millisecond,
		Multiplier:   2,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})
}

// retryableDBOperationNoReturn executes a database operation that returns only an error with retry logic
func retryableDBOperationNoReturn(ctx context.Context, operation func() error, operationName string) error {
	attempts := 0
	err := dbBackoff().RetryWithPredicate(ctx, func() error {
		attempts++
		return operation()
	}, isRetryableDBError)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if !isRetryableDBError(err) {
		return fmt.Errorf("%s failed (non-retryable): %w", operationName, err)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}

// isRetryableDBError determines if a database error is worth retrying
func isRetryableDBError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()

	// Busy writers and transient disk errors
	if strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "disk I/O error") {
		return true
	}

	// Constraint and schema errors fall through as non-retryable
	return false
}
