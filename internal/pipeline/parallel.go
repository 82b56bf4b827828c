package pipeline

import (
	"context"
	"sync"
)

// Worker processes one fan-out item, identified by its input index.
type Worker[T, R any] func(ctx context.Context, item T, index int) (R, error)

// ItemResult is the tagged outcome of a single fan-out item.
type ItemResult[R any] struct {
	Index int
	Value R
	Err   error
}

// RunAllTagged runs one worker per item concurrently and waits for all of
// them. The returned slice has one entry per input item, aligned by index
// regardless of completion order.
func RunAllTagged[T, R any](ctx context.Context, rc *Context, items []T, worker Worker[T, R]) []ItemResult[R] {
	out := make([]ItemResult[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			value, err := worker(ctx, item, i)
			out[i] = ItemResult[R]{Index: i, Value: value, Err: err}
		}(i, item)
	}
	wg.Wait()

	return out
}

// RunAll runs one worker per item concurrently, isolating per-item
// failures: a failing item is logged and dropped from the returned slice,
// which keeps the surviving results in input order. Callers that need to
// know which indices failed should use RunAllTagged instead.
func RunAll[T, R any](ctx context.Context, rc *Context, items []T, worker Worker[T, R]) []R {
	rc.Info("fan-out start", "items", len(items))

	tagged := RunAllTagged(ctx, rc, items, worker)

	results := make([]R, 0, len(items))
	for _, ir := range tagged {
		if ir.Err != nil {
			rc.Error("fan-out item failed", "index", ir.Index, "error", ir.Err)
			continue
		}
		results = append(results, ir.Value)
	}

	rc.Info("fan-out complete", "succeeded", len(results), "total", len(items))
	return results
}
