// Package pipeline implements the step orchestration used by the MCP tools
// and the CLI: linear and conditional pipelines, a parallel fan-out runner,
// fallback and retry combinators, and a TTL cache. Steps are plain functions
// with a fixed signature; the executor injects the run context and the
// results accumulated so far instead of inspecting what a step accepts.
package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSampler is returned by Context.Sample when no completion backend is
// attached, e.g. when a step runs from the CLI instead of an MCP session.
var ErrNoSampler = errors.New("pipeline: no sampler attached to context")

// Logger is the subset of the application logger the pipeline needs.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ProgressFunc receives progress updates as (current, total) pairs.
type ProgressFunc func(current, total int)

// SampleRequest asks the attached completion backend for generated text.
type SampleRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Sampler generates a completion for a prompt. In the MCP server this is
// backed by client-side sampling; tests use stubs.
type Sampler interface {
	Sample(ctx context.Context, req SampleRequest) (string, error)
}

// Context is the request-scoped environment handed to every step: log
// sinks, a progress sink, and an optional Sampler. A nil *Context is valid
// everywhere; all methods degrade to no-ops (Sample returns ErrNoSampler).
//
// One Context may be shared by concurrent fan-out workers, so sink calls
// are serialized internally.
type Context struct {
	mu       sync.Mutex
	logger   Logger
	progress ProgressFunc
	sampler  Sampler
}

// NewContext creates a Context. Any argument may be nil.
func NewContext(logger Logger, progress ProgressFunc, sampler Sampler) *Context {
	return &Context{logger: logger, progress: progress, sampler: sampler}
}

// Info logs at info level.
func (c *Context) Info(msg string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

// Debug logs at debug level.
func (c *Context) Debug(msg string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Error logs at error level.
func (c *Context) Error(msg string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}

// ReportProgress forwards a progress update to the progress sink.
func (c *Context) ReportProgress(current, total int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress != nil {
		c.progress(current, total)
	}
}

// Sample requests a completion from the attached Sampler. The sampler call
// itself is not held under the mutex; samplers must be safe for concurrent
// use.
func (c *Context) Sample(ctx context.Context, req SampleRequest) (string, error) {
	if c == nil {
		return "", ErrNoSampler
	}
	c.mu.Lock()
	sampler := c.sampler
	c.mu.Unlock()
	if sampler == nil {
		return "", ErrNoSampler
	}
	return sampler.Sample(ctx, req)
}
