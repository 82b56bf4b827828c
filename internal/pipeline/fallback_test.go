package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFallback_PrimarySucceedsSkipsFallback(t *testing.T) {
	fallbackCalls := 0

	v, err := WithFallback(context.Background(), nil,
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			return "primary", nil
		},
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			fallbackCalls++
			return "fallback", nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, "primary", v)
	assert.Zero(t, fallbackCalls)
}

func TestWithFallback_PrimaryFailsFallbackRuns(t *testing.T) {
	logger := &recordLogger{}
	rc := NewContext(logger, nil, nil)

	v, err := WithFallback(context.Background(), rc,
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			return nil, errors.New("rag unavailable")
		},
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			return "plain search", nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, "plain search", v)
	assert.Equal(t, 1, logger.count("error: primary operation failed"))
	assert.Equal(t, 1, logger.count("info: falling back to secondary operation"))
}

func TestWithFallback_BothFailPropagatesFallbackError(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")

	_, err := WithFallback(context.Background(), nil,
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			return nil, primaryErr
		},
		func(ctx context.Context, rc *Context, args Args) (any, error) {
			return nil, fallbackErr
		}, nil)

	require.ErrorIs(t, err, fallbackErr)
	assert.NotErrorIs(t, err, primaryErr)
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	v, err := WithRetry(context.Background(), nil, 3, func(ctx context.Context, rc *Context, args Args) (any, error) {
		calls++
		return "ok", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0

	v, err := WithRetry(context.Background(), nil, 3, func(ctx context.Context, rc *Context, args Args) (any, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ExhaustedReturnsLastError(t *testing.T) {
	calls := 0
	lastErr := errors.New("attempt 1 failed")

	_, err := WithRetry(context.Background(), nil, 1, func(ctx context.Context, rc *Context, args Args) (any, error) {
		calls++
		return nil, lastErr
	}, nil)

	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	calls := 0

	_, err := WithRetry(ctx, nil, 5, func(ctx context.Context, rc *Context, args Args) (any, error) {
		calls++
		return nil, errors.New("transient")
	}, nil)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls, "backoff must not outlive the context")
}
