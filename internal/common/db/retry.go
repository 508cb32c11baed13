package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     500 * time.Millisecond,
	Multiplier:   2.0,
}

// IsRetryableError reports connection loss, serialization failures,
// deadlocks and lock timeouts. Everything else is returned to the caller.
func IsRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
			return true
		case "40001", "40P01":
			return true
		case "55P03":
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}

// Retry runs op until it succeeds, fails with a non-retryable error or the
// attempts are used up. Only single-statement operations should be retried.
func Retry(ctx context.Context, operation string, config RetryConfig, op func(context.Context) error) error {
	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryableError(err) || attempt == config.MaxAttempts {
			break
		}

		metrics.DBOperationRetries.WithLabelValues(operation).Inc()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: context done during retry: %w", operation, ctx.Err())
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return lastErr
}
