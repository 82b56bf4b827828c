package pipeline

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Args carries the declared arguments of a step.
type Args map[string]any

// Results maps step names to their return values, ordered by execution (a
// skipped step leaves no entry). Steps receive the accumulated Results as a
// read-only view; only the executor writes to it during a run.
type Results struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewResults creates an empty Results.
func NewResults() *Results {
	return &Results{om: orderedmap.New[string, any]()}
}

// Get returns the value recorded for a step name. A skipped or not-yet-run
// step yields (nil, false); later steps must tolerate that, the executor
// does not enforce dependencies.
func (r *Results) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return r.om.Get(name)
}

// Len returns the number of recorded step results.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return r.om.Len()
}

// Names returns the recorded step names in execution order.
func (r *Results) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, r.om.Len())
	for pair := r.om.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// MarshalJSON serializes the mapping preserving execution order.
func (r *Results) MarshalJSON() ([]byte, error) {
	return r.om.MarshalJSON()
}

func (r *Results) set(name string, value any) {
	r.om.Set(name, value)
}
