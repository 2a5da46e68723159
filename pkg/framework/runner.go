package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// NameOf returns the name of a Named runnable, or "".
func NameOf(runnable Runnable) string {
	if named, ok := runnable.(Named); ok {
		return named.Name()
	}
	return ""
}

// ErrForcedExit is returned by Wait when stop is requested twice.
var ErrForcedExit = errors.New("forced exit")

// TaskError is the failure of one task.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

// Unwrap returns the task failure.
func (e *TaskError) Unwrap() error {
	return e.Err
}

type taskExit struct {
	name string
	err  error
}

// Runner runs tasks in their own goroutines and collects their errors.
type Runner struct {
	Context context.Context
	Tasks   []string

	exitCh  chan taskExit
	forceCh chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		exitCh:  make(chan taskExit),
		forceCh: make(chan struct{}),
	}
}

// HandleSignals turns the first SIGINT/SIGTERM into cancellation of the
// runner context. A second one makes Wait return ErrForcedExit.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	r.Context = ctx
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stop requested", sig)
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		signal.Stop(sigCh)
		close(r.forceCh)
	}()
	return r
}

// Go spawns Runnables with default context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith spawns Runnables with a specified context.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := NameOf(runner)
		if name == "" {
			name = strconv.Itoa(len(r.Tasks))
		}
		r.Tasks = append(r.Tasks, name)
		go func(runner Runnable, name string) {
			glog.V(4).Infof("task %s started", name)
			err := runner.Run(ctx)
			glog.V(4).Infof("task %s stopped: %v", name, err)
			r.exitCh <- taskExit{name: name, err: err}
		}(runner, name)
	}
	return r
}

// Wait waits until all tasks stop. Failures other than cancellation are
// aggregated as TaskErrors.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for range r.Tasks {
		select {
		case <-r.forceCh:
			return ErrForcedExit
		case exit := <-r.exitCh:
			if exit.err != nil && !errors.Is(exit.err, context.Canceled) {
				errs.Add(&TaskError{Task: exit.name, Err: exit.err})
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context.
// onCancel must make fn return; it is called only when ctx is done
// before fn returns.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// RunWithContextCloser closes closer on cancel or when fn returns,
// whichever comes first. It unblocks readers which don't accept a
// context, e.g. a net.Conn or a listener.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	canceled := false
	err := RunWithContextCancel(ctx, func() {
		canceled = true
		closer.Close()
	}, fn)
	if !canceled {
		closer.Close()
	}
	return err
}
