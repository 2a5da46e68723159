package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/protocol"
)

func TestQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](3)
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Send(ctx, i))
	}
	require.Equal(t, 3, q.Len())
	require.False(t, q.TrySend(4))
	for i := 1; i <= 3; i++ {
		v, err := q.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestQueueBackpressure(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](1)
	require.NoError(t, q.Send(ctx, 1))

	sent := make(chan error, 1)
	go func() { sent <- q.Send(ctx, 2) }()

	select {
	case <-sent:
		t.Fatal("send on a full queue must block")
	case <-time.After(50 * time.Millisecond):
	}

	v, err := q.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was not released")
	}
	v, err = q.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v, "no message dropped")
}

func TestQueueSendCanceled(t *testing.T) {
	q := NewQueue[int](1)
	require.True(t, q.TrySend(1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, q.Send(ctx, 2))
	require.Equal(t, 1, q.Len())
}

func TestQueueReceiveTimeout(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[string](2)

	start := time.Now()
	_, ok, err := q.ReceiveTimeout(ctx, 30*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, time.Since(start) >= 30*time.Millisecond)

	// losing the race leaves nothing pending: a later message is
	// delivered to the next wait.
	require.NoError(t, q.Send(ctx, "later"))
	v, ok, err := q.ReceiveTimeout(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "later", v)
}

func TestQueueReceiveArrivesBeforeDeadline(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Send(ctx, 7)
	}()
	start := time.Now()
	v, ok, err := q.ReceiveTimeout(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 7, v)
	require.True(t, time.Since(start) < 500*time.Millisecond)
}

func TestSignalCoalesces(t *testing.T) {
	s := NewSignal[protocol.LedCmd]()
	s.Signal(protocol.LedOn{})
	s.Signal(protocol.LedOff{})
	s.Signal(protocol.Blink(10 * time.Millisecond))

	v, err := s.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, protocol.Blink(10*time.Millisecond), v)

	_, ok, err := s.WaitTimeout(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok, "only the latest value is observed")
	require.False(t, s.Signaled())
}

func TestSignalWakesWaiter(t *testing.T) {
	s := NewSignal[int]()
	got := make(chan int, 1)
	go func() {
		v, err := s.Wait(context.Background())
		if err == nil {
			got <- v
		}
	}()
	time.Sleep(10 * time.Millisecond)
	s.Signal(42)
	select {
	case v := <-got:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestSignalTimeoutLeavesSlot(t *testing.T) {
	s := NewSignal[int]()
	_, ok, err := s.WaitTimeout(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
	s.Signal(1)
	require.True(t, s.Signaled())
	v, ok := s.TryTake()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestSignalWaitCanceled(t *testing.T) {
	s := NewSignal[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	require.Equal(t, context.Canceled, err)
}

func TestNewBus(t *testing.T) {
	b := New(0)
	require.Equal(t, DefaultCapacity, b.Errors.Cap())
	require.Equal(t, DefaultCapacity, b.SensorCmds.Cap())
	require.Equal(t, DefaultCapacity, b.Telemetry.Cap())
	b = New(3)
	require.Equal(t, 3, b.Telemetry.Cap())
}
