package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestLoopFailingTaskStopsOthers(t *testing.T) {
	errBoom := errors.New("boom")
	stopped := make(chan struct{})
	loop := NewLoop().AddRunnable(
		NamedRun("blocker", RunFunc(func(ctx context.Context) error {
			defer close(stopped)
			return blockUntilDone(ctx)
		})),
		NamedRun("failer", RunFunc(func(ctx context.Context) error {
			return errBoom
		})),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()

	select {
	case err := <-errCh:
		require.Error(t, err)
		require.True(t, errors.Is(err, errBoom))
		var taskErr *TaskError
		require.ErrorAs(t, err, &taskErr)
		require.Equal(t, "failer", taskErr.Task)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	select {
	case <-stopped:
	default:
		t.Fatal("blocker still running")
	}
}

func TestLoopCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop().AddRunnable(RunFunc(blockUntilDone), RunFunc(blockUntilDone))
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoopDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewLoop().AddRunnable(RunFunc(blockUntilDone)).Run(ctx)
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	errA, errB := errors.New("a"), errors.New("b")
	require.Equal(t, "a", errs.Add(errA).Aggregate().Error())
	err := errs.Add(errB).Aggregate()
	require.Equal(t, "Multiple errors:\na\nb", err.Error())
	require.True(t, errors.Is(err, errB))
}

type closeCounter struct {
	closed chan struct{}
	count  int
}

func (c *closeCounter) Close() error {
	c.count++
	if c.count == 1 {
		close(c.closed)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	// canceled: Close unblocks fn
	c := &closeCounter{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.closed
		return errors.New("use of closed connection")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.count)

	// fn returns first: closed once on exit
	c = &closeCounter{closed: make(chan struct{})}
	errDone := errors.New("eof")
	err = RunWithContextCloser(context.Background(), c, func() error { return errDone })
	require.Equal(t, errDone, err)
	require.Equal(t, 1, c.count)
}
