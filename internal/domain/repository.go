// Package domain provides the record model and the source abstraction the
// list core reads from.
package domain

import (
	"context"
)

// --- Sources ---

// RecordSource supplies the full record set of one screen.
// Implementations are read-only: the list core never writes back.
type RecordSource interface {
	Load(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a plain function to RecordSource.
type SourceFunc func(ctx context.Context) ([]Record, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) ([]Record, error) {
	return f(ctx)
}

// Describer is implemented by sources that can say where they read from.
type Describer interface {
	Describe() string
}

// DescribeSource returns a human label for logs.
func DescribeSource(src RecordSource) string {
	if d, ok := src.(Describer); ok {
		return d.Describe()
	}
	return "custom"
}

// --- Hooks ---

// HookEvent represents a source lifecycle event.
type HookEvent string

const (
	BeforeLoad HookEvent = "before_load"
	AfterLoad  HookEvent = "after_load"
)

// Hook runs at a lifecycle point and may replace the payload.
type Hook[T any] func(ctx context.Context, payload T) (T, error)

// HookRegistry stores lifecycle hooks for a payload type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event in registration order,
// threading the payload through them.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, payload T) (T, error) {
	for _, hook := range r.hooks[event] {
		var err error
		if payload, err = hook(ctx, payload); err != nil {
			return payload, err
		}
	}
	return payload, nil
}

// OnAfterLoad registers a hook to run on freshly loaded records.
func (r *HookRegistry[T]) OnAfterLoad(hook Hook[T]) {
	r.On(AfterLoad, hook)
}
