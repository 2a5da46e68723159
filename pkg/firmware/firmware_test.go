package firmware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/protocol"
	"github.com/robotalks/rover.go/pkg/sim"
)

type command struct {
	msg   msgs.Message
	reply chan msgs.Message
}

func (c *command) Msg() msgs.Message { return c.msg }

func (c *command) Done(reply msgs.Message) error {
	c.reply <- reply
	return nil
}

type link struct {
	events  chan msgs.Message
	handler l1.CommandHandler
}

func (l *link) SendEvent(ctx context.Context, msg msgs.Message) error {
	select {
	case l.events <- msg:
	default:
	}
	return nil
}

func (l *link) SetCommandHandler(h l1.CommandHandler) {
	l.handler = h
}

func (l *link) do(t *testing.T, msg msgs.Message) msgs.Message {
	cmd := &command{msg: msg, reply: make(chan msgs.Message, 1)}
	l.handler.HandleCommand(context.Background(), cmd)
	select {
	case reply := <-cmd.reply:
		return reply
	case <-time.After(5 * time.Second):
		t.Fatalf("no reply to %v", msg)
	}
	return nil
}

func (l *link) waitEvent(t *testing.T, match func(msgs.Message) bool) {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-l.events:
			if match(ev) {
				return
			}
		case <-timeout:
			t.Fatal("expected event not received")
		}
	}
}

func TestFirmware(t *testing.T) {
	hw := sim.NewConfig().NewHardware()
	lnk := &link{events: make(chan msgs.Message, 1024)}
	conf := NewConfig()
	f := conf.New(Hardware{LED: hw.LED, Left: hw.Left, Right: hw.Right, I2C: hw.I2C}, lnk)
	require.NotNil(t, lnk.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fx.NewLoop().Add(f).Run(ctx) }()

	// boot pattern
	require.Eventually(t, func() bool {
		_, toggles := hw.LED.State()
		return toggles >= 3
	}, 5*time.Second, 10*time.Millisecond)

	require.IsType(t, &msgs.CommandOK{}, lnk.do(t, &msgs.SensorSubscribe{Sensor: msgs.SensorDistance, PollIntervalMs: 20}))
	lnk.waitEvent(t, func(ev msgs.Message) bool {
		te, ok := ev.(*msgs.TelemetryEvent)
		return ok && te.Position == msgs.PositionFront && te.Mm == sim.DefaultFrontMM
	})
	lnk.waitEvent(t, func(ev msgs.Message) bool {
		te, ok := ev.(*msgs.TelemetryEvent)
		return ok && te.Position == msgs.PositionBack && te.Mm == sim.DefaultBackMM
	})
	require.IsType(t, &msgs.CommandErr{}, lnk.do(t, &msgs.SensorSubscribe{Sensor: msgs.SensorCliff, PollIntervalMs: 20}))

	require.IsType(t, &msgs.CommandOK{}, lnk.do(t, &msgs.MoveSet{Left: 1.5, Right: -2}))
	require.Eventually(t, func() bool {
		lf, lr := hw.Left.Duty()
		rf, rr := hw.Right.Duty()
		return lf == 1000 && lr == 0 && rf == 0 && rr == 1000
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, f.Bus.Errors.Send(ctx, protocol.SensorError{Kind: protocol.Cliff}))
	lnk.waitEvent(t, func(ev msgs.Message) bool {
		rs, ok := ev.(*msgs.ReflexStatusEvent)
		return ok && rs.Stopped
	})
	require.True(t, f.Reflex.Stopped())
	require.Equal(t, &msgs.StatusReply{
		Stopped:            true,
		Cause:              "SensorError(Cliff)",
		DistanceIntervalMs: 20,
	}, lnk.do(t, &msgs.StatusQuery{}))
	lf, lr := hw.Left.Duty()
	rf, rr := hw.Right.Duty()
	require.Zero(t, lf+lr+rf+rr)

	// latched: motion is overridden
	require.IsType(t, &msgs.CommandOK{}, lnk.do(t, &msgs.MoveSet{Left: 1, Right: 1}))
	require.Never(t, func() bool {
		lf, _ := hw.Left.Duty()
		return lf != 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	require.IsType(t, &msgs.CommandOK{}, lnk.do(t, &msgs.EmergencyClear{}))
	lnk.waitEvent(t, func(ev msgs.Message) bool {
		rs, ok := ev.(*msgs.ReflexStatusEvent)
		return ok && !rs.Stopped
	})
	require.Eventually(t, func() bool {
		on, _ := hw.LED.State()
		return !on
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestOffline(t *testing.T) {
	hw := sim.NewConfig().NewHardware()
	conf := NewConfig()
	conf.DistanceInterval = 10 * time.Millisecond
	f := conf.New(Hardware{LED: hw.LED, Left: hw.Left, Right: hw.Right, I2C: hw.I2C}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	// telemetry is drained without a host, so the poller keeps running
	// until the deadline.
	err := fx.NewLoop().Add(f).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
