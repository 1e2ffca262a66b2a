package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// WithRetry invokes op up to attempts times, sleeping a growing multiple of
// delay between attempts. It never returns an error: exhaustion yields the
// zero value and false, and the caller skips that unit of work. A per-product
// failure must not take down a whole department run.
func WithRetry[T any](ctx context.Context, logger *slog.Logger, attempts int, delay time.Duration, op func() (T, error)) (T, bool) {
	var zero T

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("retry aborted by context", "attempt", i+1)
				return zero, false
			case <-time.After(time.Duration(i) * delay):
			}
		}

		result, err := op()
		if err == nil {
			return result, true
		}

		logger.Error("attempt failed", "attempt", i+1, "max_attempts", attempts, "error", err)
	}

	logger.Error("failed after retries", "attempts", attempts)
	return zero, false
}
