package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordLogger captures log calls so tests can assert on emitted events.
// It is safe for concurrent use by fan-out workers.
type recordLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *recordLogger) Debug(msg string, args ...any) { l.log("debug", msg) }
func (l *recordLogger) Info(msg string, args ...any)  { l.log("info", msg) }
func (l *recordLogger) Error(msg string, args ...any) { l.log("error", msg) }

func (l *recordLogger) count(entry string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e == entry {
			n++
		}
	}
	return n
}

func constStep(value any) StepFunc {
	return func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
		return value, nil
	}
}

func TestPipeline_AllStepsRunInDeclarationOrder(t *testing.T) {
	p := New(nil).
		Step("a", constStep(1), nil).
		Step("b", constStep(2), nil).
		Step("c", constStep(3), nil)

	results, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, results.Len())
	assert.Equal(t, []string{"a", "b", "c"}, results.Names())

	v, ok := results.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestPipeline_StepsReceivePreviousResults(t *testing.T) {
	// The end-to-end fetch/transform/report scenario.
	p := New(nil).
		Step("fetch", constStep(map[string]int{"x": 1}), nil).
		Step("transform", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			fetched, ok := prev.Get("fetch")
			require.True(t, ok)
			return map[string]int{"x": fetched.(map[string]int)["x"] + 1}, nil
		}, nil).
		Step("report", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			transformed, ok := prev.Get("transform")
			require.True(t, ok)
			return fmt.Sprintf("x=%d", transformed.(map[string]int)["x"]), nil
		}, nil)

	results, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"fetch", "transform", "report"}, results.Names())
	report, _ := results.Get("report")
	assert.Equal(t, "x=2", report)
}

func TestPipeline_DuplicateNameFailsAtRegistration(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddStep("fetch", constStep(1), nil))

	err := p.AddStep("fetch", constStep(2), nil)
	require.Error(t, err)

	var dup *DuplicateStepError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "fetch", dup.Name)

	assert.Panics(t, func() { p.Step("fetch", constStep(3), nil) })
}

func TestPipeline_FailFastAbortsAndWrapsStepName(t *testing.T) {
	boom := errors.New("boom")
	var laterRan bool

	p := New(nil).
		Step("ok", constStep("fine"), nil).
		Step("explode", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			return nil, boom
		}, nil).
		Step("later", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			laterRan = true
			return nil, nil
		}, nil)

	results, err := p.Execute(context.Background())
	require.Error(t, err)

	// No partial results surface; the error names the failing step and
	// keeps the cause.
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), `"explode"`)
	assert.ErrorIs(t, err, boom)
	assert.False(t, laterRan, "steps after the failure must not run")
}

func TestPipeline_ProgressAdvancesPerStep(t *testing.T) {
	var updates [][2]int
	rc := NewContext(nil, func(current, total int) {
		updates = append(updates, [2]int{current, total})
	}, nil)

	_, err := New(rc).
		Step("a", constStep(1), nil).
		Step("b", constStep(2), nil).
		Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 2}, {1, 2}, {2, 2}}, updates)
}

func TestPipeline_ArgsArePassedThrough(t *testing.T) {
	p := New(nil).Step("echo", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
		return args["query"], nil
	}, Args{"query": "machine learning"})

	results, err := p.Execute(context.Background())
	require.NoError(t, err)
	v, _ := results.Get("echo")
	assert.Equal(t, "machine learning", v)
}

func TestConditionalPipeline_SkipOmitsResultAndOperationNeverRuns(t *testing.T) {
	calls := 0
	var updates [][2]int
	rc := NewContext(&recordLogger{}, func(current, total int) {
		updates = append(updates, [2]int{current, total})
	}, nil)

	p := NewConditional(rc).
		Step("search", constStep(map[string]any{"results": []any{}}), nil, nil).
		Step("analyze", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			calls++
			return "analysis", nil
		}, func(results *Results) bool {
			search, ok := results.Get("search")
			if !ok {
				return false
			}
			return len(search.(map[string]any)["results"].([]any)) > 0
		}, nil).
		Step("report", func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error) {
			// A skipped dependency reads as "not present", not an error.
			_, ok := prev.Get("analyze")
			return ok, nil
		}, nil, nil)

	results, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, calls, "skipped operation must never be invoked")
	_, ok := results.Get("analyze")
	assert.False(t, ok)
	assert.Equal(t, []string{"search", "report"}, results.Names())

	sawAnalyze, _ := results.Get("report")
	assert.Equal(t, false, sawAnalyze)

	// Skipped steps still advance progress by one unit.
	assert.Equal(t, [][2]int{{0, 3}, {1, 3}, {2, 3}, {3, 3}}, updates)
}

func TestConditionalPipeline_ConditionTrueRuns(t *testing.T) {
	p := NewConditional(nil).
		Step("search", constStep("hit"), nil, nil).
		Step("analyze", constStep("analysis"), func(results *Results) bool {
			_, ok := results.Get("search")
			return ok
		}, nil)

	results, err := p.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "analyze"}, results.Names())
}

func TestPipeline_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Step("a", constStep(1), nil).Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
