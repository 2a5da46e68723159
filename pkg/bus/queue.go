package bus

import (
	"context"
	"time"
)

// Forever disables the deadline of a timed wait.
const Forever time.Duration = -1

// Queue is a bounded FIFO. Senders block while it is full, so no
// message is ever dropped.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a Queue holding at most capacity messages.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Send enqueues v, blocking while the queue is full.
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
	}
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues v only if there is room.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Receive dequeues the oldest message, blocking while the queue is empty.
func (q *Queue[T]) Receive(ctx context.Context) (v T, err error) {
	v, _, err = q.ReceiveTimeout(ctx, Forever)
	return
}

// ReceiveTimeout waits up to d for a message. ok is false when the
// deadline elapsed first, in which case nothing is dequeued.
// A negative d waits without deadline.
func (q *Queue[T]) ReceiveTimeout(ctx context.Context, d time.Duration) (v T, ok bool, err error) {
	select {
	case v = <-q.ch:
		return v, true, nil
	default:
	}
	var timeout <-chan time.Time
	if d >= 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case v = <-q.ch:
		return v, true, nil
	case <-timeout:
		return
	case <-ctx.Done():
		err = ctx.Err()
		return
	}
}

// Len returns the number of queued messages.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
