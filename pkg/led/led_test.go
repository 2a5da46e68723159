package led

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/bus"
	"github.com/robotalks/rover.go/pkg/protocol"
)

type ledEvent struct {
	on bool
	at time.Duration
}

type recorder struct {
	start time.Time
	ch    chan ledEvent
}

func newRecorder() *recorder {
	return &recorder{start: time.Now(), ch: make(chan ledEvent, 64)}
}

func (r *recorder) On()  { r.ch <- ledEvent{on: true, at: time.Since(r.start)} }
func (r *recorder) Off() { r.ch <- ledEvent{on: false, at: time.Since(r.start)} }

func (r *recorder) next(t *testing.T) ledEvent {
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no LED event")
	}
	return ledEvent{}
}

type ledTestEnv struct {
	rec    *recorder
	sig    *bus.Signal[protocol.LedCmd]
	cancel func()
	done   chan error
}

func startTask(t *testing.T) *ledTestEnv {
	env := &ledTestEnv{
		rec:  newRecorder(),
		sig:  bus.NewSignal[protocol.LedCmd](),
		done: make(chan error, 1),
	}
	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel
	go func() { env.done <- NewTask(env.rec, env.sig).Run(ctx) }()
	require.False(t, env.rec.next(t).on, "initial state is Off")
	t.Cleanup(func() {
		cancel()
		<-env.done
	})
	return env
}

func TestOnOff(t *testing.T) {
	env := startTask(t)
	env.sig.Signal(protocol.LedOn{})
	require.True(t, env.rec.next(t).on)
	env.sig.Signal(protocol.LedOff{})
	require.False(t, env.rec.next(t).on)
}

func TestBlinkSquareWave(t *testing.T) {
	const interval = 100 * time.Millisecond
	env := startTask(t)
	env.sig.Signal(protocol.Blink(interval))
	first := env.rec.next(t)
	require.True(t, first.on)

	expectOn := false
	for i := 1; i <= 4; i++ {
		ev := env.rec.next(t)
		require.Equal(t, expectOn, ev.on, "edge %d", i)
		elapsed := ev.at - first.at
		earliest := time.Duration(i) * interval
		latest := earliest + interval/2
		require.True(t, elapsed >= earliest && elapsed < latest,
			"edge %d at %v, expected in [%v, %v)", i, elapsed, earliest, latest)
		expectOn = !expectOn
	}
}

func TestBlinkPreemptedImmediately(t *testing.T) {
	env := startTask(t)
	env.sig.Signal(protocol.Blink(time.Hour))
	require.True(t, env.rec.next(t).on)

	sent := time.Since(env.rec.start)
	env.sig.Signal(protocol.LedOff{})
	ev := env.rec.next(t)
	require.False(t, ev.on)
	require.True(t, ev.at-sent < 200*time.Millisecond, "transition is not delayed by the blink interval")

	env.sig.Signal(protocol.Blink(time.Hour))
	require.True(t, env.rec.next(t).on)
	env.sig.Signal(protocol.LedOn{})
	require.True(t, env.rec.next(t).on)
}

func TestInvalidBlinkTurnsOn(t *testing.T) {
	env := startTask(t)
	env.sig.Signal(protocol.Blink(0))
	require.True(t, env.rec.next(t).on)
	select {
	case ev := <-env.rec.ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}
}
