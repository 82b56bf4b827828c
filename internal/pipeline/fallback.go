package pipeline

import "context"

// Operation is a standalone callable used by the fallback, retry, and cache
// combinators. Unlike StepFunc it sees no prior results.
type Operation func(ctx context.Context, rc *Context, args Args) (any, error)

// WithFallback invokes primary and returns its value on success. On any
// primary error the secondary runs; if the secondary also fails, its error
// propagates unchanged. There is no further degradation and primary is
// never retried here.
func WithFallback(ctx context.Context, rc *Context, primary, fallback Operation, args Args) (any, error) {
	rc.Info("attempting primary operation")

	value, err := primary(ctx, rc, args)
	if err == nil {
		rc.Info("primary operation succeeded")
		return value, nil
	}

	rc.Error("primary operation failed", "error", err)
	rc.Info("falling back to secondary operation")

	value, err = fallback(ctx, rc, args)
	if err != nil {
		rc.Error("fallback operation failed", "error", err)
		return nil, err
	}

	rc.Info("fallback operation succeeded")
	return value, nil
}
