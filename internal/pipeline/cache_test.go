package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingOp(calls *int, value any) Operation {
	return func(ctx context.Context, rc *Context, args Args) (any, error) {
		*calls++
		return value, nil
	}
}

func TestCache_SecondCallWithinTTLHits(t *testing.T) {
	cache := NewCache()
	calls := 0

	v1, err := cache.Do(context.Background(), nil, "search:go", time.Minute, countingOp(&calls, "results"), nil)
	require.NoError(t, err)
	v2, err := cache.Do(context.Background(), nil, "search:go", time.Minute, countingOp(&calls, "other"), nil)
	require.NoError(t, err)

	assert.Equal(t, "results", v1)
	assert.Equal(t, "results", v2, "hit must return the stored value")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ExpiredEntryRecomputesAndEvicts(t *testing.T) {
	cache := NewCache()
	now := time.Now()
	cache.now = func() time.Time { return now }
	calls := 0

	_, err := cache.Do(context.Background(), nil, "k", 5*time.Minute, countingOp(&calls, "v1"), nil)
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)

	v, err := cache.Do(context.Background(), nil, "k", 5*time.Minute, countingOp(&calls, "v2"), nil)
	require.NoError(t, err)

	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, cache.Len(), "expired entry is replaced, not accumulated")
}

func TestCache_DistinctKeysAreIndependent(t *testing.T) {
	cache := NewCache()
	calls := 0

	_, err := cache.Do(context.Background(), nil, "a", time.Minute, countingOp(&calls, 1), nil)
	require.NoError(t, err)
	_, err = cache.Do(context.Background(), nil, "b", time.Minute, countingOp(&calls, 2), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ErrorsAreNeverCached(t *testing.T) {
	cache := NewCache()
	boom := errors.New("backend down")
	calls := 0

	op := func(ctx context.Context, rc *Context, args Args) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "recovered", nil
	}

	_, err := cache.Do(context.Background(), nil, "k", time.Minute, op, nil)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, cache.Len(), "a failing miss must leave no entry")

	v, err := cache.Do(context.Background(), nil, "k", time.Minute, op, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 2, calls)
}
