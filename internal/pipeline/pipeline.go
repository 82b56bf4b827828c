package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StepFunc is a single pipeline step. The executor always passes the run
// Context and the Results accumulated so far; both may be nil/empty and
// steps that need neither simply ignore them.
type StepFunc func(ctx context.Context, rc *Context, args Args, prev *Results) (any, error)

// Condition decides whether a conditional step runs, given the results
// accumulated so far.
type Condition func(results *Results) bool

// DuplicateStepError reports a step name registered twice on one pipeline.
// It is raised at registration time, never during execution.
type DuplicateStepError struct {
	Name string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("pipeline: duplicate step name %q", e.Name)
}

type step struct {
	name      string
	fn        StepFunc
	args      Args
	condition Condition
}

// Pipeline runs named steps strictly in declaration order, threading the
// shared Results mapping forward. Execution is fail-fast: the first step
// error aborts the run and no partial Results are returned.
type Pipeline struct {
	rc    *Context
	runID string
	steps []step
	names map[string]struct{}
}

// New creates a Pipeline bound to the given run Context (may be nil).
func New(rc *Context) *Pipeline {
	return &Pipeline{
		rc:    rc,
		runID: uuid.New().String(),
		names: make(map[string]struct{}),
	}
}

// AddStep registers a step. It returns a *DuplicateStepError if the name is
// already taken.
func (p *Pipeline) AddStep(name string, fn StepFunc, args Args) error {
	return p.add(step{name: name, fn: fn, args: args})
}

// Step is the chainable form of AddStep. Registering a duplicate name is a
// programming error and panics, mirroring MustRegister-style builders.
func (p *Pipeline) Step(name string, fn StepFunc, args Args) *Pipeline {
	if err := p.AddStep(name, fn, args); err != nil {
		panic(err)
	}
	return p
}

// Execute runs all steps in order and returns the completed Results.
func (p *Pipeline) Execute(ctx context.Context) (*Results, error) {
	return run(ctx, p.rc, p.runID, p.steps)
}

func (p *Pipeline) add(s step) error {
	if _, exists := p.names[s.name]; exists {
		return &DuplicateStepError{Name: s.name}
	}
	p.names[s.name] = struct{}{}
	p.steps = append(p.steps, s)
	return nil
}

// ConditionalPipeline is a Pipeline whose steps may carry a predicate over
// the accumulated results. A false predicate skips the step: its operation
// is never invoked, no Results entry appears under its name, and progress
// still advances by one unit.
type ConditionalPipeline struct {
	inner Pipeline
}

// NewConditional creates a ConditionalPipeline bound to the given run
// Context (may be nil).
func NewConditional(rc *Context) *ConditionalPipeline {
	return &ConditionalPipeline{inner: *New(rc)}
}

// AddStep registers a step with an optional condition (nil means always
// run). It returns a *DuplicateStepError if the name is already taken.
func (p *ConditionalPipeline) AddStep(name string, fn StepFunc, cond Condition, args Args) error {
	return p.inner.add(step{name: name, fn: fn, args: args, condition: cond})
}

// Step is the chainable form of AddStep; it panics on a duplicate name.
func (p *ConditionalPipeline) Step(name string, fn StepFunc, cond Condition, args Args) *ConditionalPipeline {
	if err := p.AddStep(name, fn, cond, args); err != nil {
		panic(err)
	}
	return p
}

// Execute runs all non-skipped steps in order and returns the completed
// Results.
func (p *ConditionalPipeline) Execute(ctx context.Context) (*Results, error) {
	return run(ctx, p.inner.rc, p.inner.runID, p.inner.steps)
}

// run is the executor shared by both pipeline kinds. Steps run strictly
// sequentially: a step's full call graph resolves before the next starts.
func run(ctx context.Context, rc *Context, runID string, steps []step) (*Results, error) {
	total := len(steps)
	results := NewResults()

	rc.Info("starting pipeline", "run_id", runID, "steps", total)
	rc.ReportProgress(0, total)

	for idx, s := range steps {
		if err := ctx.Err(); err != nil {
			rc.Error("pipeline cancelled", "run_id", runID, "step", s.name, "error", err)
			return nil, fmt.Errorf("step %q: %w", s.name, err)
		}

		if s.condition != nil && !s.condition(results) {
			rc.Info("skipping step (condition not met)", "run_id", runID, "step", s.name)
			rc.ReportProgress(idx+1, total)
			continue
		}

		rc.Info("executing step", "run_id", runID, "step", s.name, "index", idx+1, "total", total)

		value, err := s.fn(ctx, rc, s.args, results)
		if err != nil {
			rc.Error("step failed", "run_id", runID, "step", s.name, "error", err)
			return nil, fmt.Errorf("step %q: %w", s.name, err)
		}

		results.set(s.name, value)
		rc.ReportProgress(idx+1, total)
		rc.Debug("step complete", "run_id", runID, "step", s.name)
	}

	rc.Info("pipeline complete", "run_id", runID, "results", results.Len())
	return results, nil
}
