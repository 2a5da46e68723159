package framework

import (
	"context"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background tasks.
// A task owns exactly one consumption loop and returns only when
// the context is done or the task hits an unrecoverable error.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// LoopAdder provides specific logic to add tasks to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}
