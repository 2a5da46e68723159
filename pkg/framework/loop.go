package framework

import (
	"context"
	"errors"
	"log"

	"github.com/golang/glog"
)

// Loop is the set of cooperating tasks making up the firmware.
// Each task is an independent control loop; the Loop only starts
// them together and tears all of them down when one fails.
type Loop struct {
	runners []Runnable
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Runnables returns the registered tasks.
func (l *Loop) Runnables() []Runnable {
	return l.runners
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := NewRunnerWith(ctx)
	for _, r := range l.runners {
		runner.Go(&failFast{Runnable: r, cancel: cancel})
	}
	err := runner.Wait()
	if err == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// RunOrFail is intended to be used in main to simply run the loop.
// SIGINT/SIGTERM stop the loop gracefully.
func (l *Loop) RunOrFail() {
	if err := NewRunner().HandleSignals().Go(NamedRun("loop", l)).Wait(); err != nil {
		log.Fatalln(err)
	}
}

type failFast struct {
	Runnable
	cancel func()
}

func (f *failFast) Name() string {
	return NameOf(f.Runnable)
}

func (f *failFast) Run(ctx context.Context) error {
	err := f.Runnable.Run(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil
	}
	if err != nil {
		glog.Errorf("task %q failed: %v", f.Name(), err)
		f.cancel()
	}
	return err
}
