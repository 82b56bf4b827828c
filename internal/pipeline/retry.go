package pipeline

import (
	"context"
	"time"
)

// WithRetry invokes op up to maxAttempts times, sleeping with exponential
// backoff (1s, 2s, 4s, ...) between failed attempts. The last error is
// returned when every attempt fails. The sleep is context-aware; a
// cancelled context aborts the remaining attempts.
//
// Retrying is deliberately separate from WithFallback: wrap the primary in
// WithRetry first when both behaviors are wanted.
func WithRetry(ctx context.Context, rc *Context, maxAttempts int, op Operation, args Args) (any, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rc.Debug("attempt", "n", attempt, "max", maxAttempts)

		value, err := op(ctx, rc, args)
		if err == nil {
			rc.Debug("attempt succeeded", "n", attempt)
			return value, nil
		}

		lastErr = err
		rc.Error("attempt failed", "n", attempt, "error", err)

		if attempt == maxAttempts {
			break
		}

		backoff := time.Duration(1<<(attempt-1)) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, lastErr
}
