package bus

import (
	"context"
	"sync"
	"time"
)

// Signal is a single-slot mailbox. A write overwrites any unread value,
// so a waiter only ever observes the latest write.
type Signal[T any] struct {
	lock   sync.Mutex
	value  T
	set    bool
	notify chan struct{}
}

// NewSignal creates an empty Signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{notify: make(chan struct{}, 1)}
}

// Signal stores v and wakes a waiter. It never blocks.
func (s *Signal[T]) Signal(v T) {
	s.lock.Lock()
	s.value, s.set = v, true
	s.lock.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryTake takes the pending value if any.
func (s *Signal[T]) TryTake() (v T, ok bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.set {
		v, ok = s.value, true
		var zero T
		s.value, s.set = zero, false
	}
	return
}

// Signaled tells whether an unread value is pending.
func (s *Signal[T]) Signaled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.set
}

// Wait blocks until a value is written and takes it.
func (s *Signal[T]) Wait(ctx context.Context) (v T, err error) {
	v, _, err = s.WaitTimeout(ctx, Forever)
	return
}

// WaitTimeout waits up to d for a value. ok is false when the deadline
// elapsed first; the slot is left untouched in that case.
// A negative d waits without deadline.
func (s *Signal[T]) WaitTimeout(ctx context.Context, d time.Duration) (v T, ok bool, err error) {
	var timeout <-chan time.Time
	if d >= 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		if v, ok = s.TryTake(); ok {
			return
		}
		// notify may carry a token for a value already taken,
		// hence the loop.
		select {
		case <-s.notify:
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
