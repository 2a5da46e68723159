// Package led drives the status LED from commands on the bus.
package led

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// Gateway is the LED output.
type Gateway interface {
	On()
	Off()
}

// Task is the LED state machine. It starts in Off and runs until the
// context ends.
type Task struct {
	Gateway Gateway
	Signal  *bus.Signal[protocol.LedCmd]
}

// NewTask creates the LED task.
func NewTask(gw Gateway, sig *bus.Signal[protocol.LedCmd]) *Task {
	return &Task{Gateway: gw, Signal: sig}
}

// Name implements Named.
func (t *Task) Name() string {
	return "led"
}

// AddToLoop implements LoopAdder.
func (t *Task) AddToLoop(l *fx.Loop) {
	l.AddRunnable(t)
}

// Run implements Runnable.
func (t *Task) Run(ctx context.Context) (err error) {
	var state protocol.LedCmd = protocol.LedOff{}
	for {
		glog.V(2).Infof("led: %s", state)
		switch cmd := state.(type) {
		case protocol.LedOn:
			t.Gateway.On()
			state, err = t.Signal.Wait(ctx)
		case protocol.LedOff:
			t.Gateway.Off()
			state, err = t.Signal.Wait(ctx)
		case protocol.LedBlink:
			state, err = t.blink(ctx, cmd.Interval)
		default:
			glog.Warningf("led: unknown command %v, turning off", cmd)
			state = protocol.LedOff{}
		}
		if err != nil {
			return err
		}
	}
}

// blink runs the square wave until a new command arrives, which is
// returned right away whichever edge is pending.
func (t *Task) blink(ctx context.Context, interval time.Duration) (protocol.LedCmd, error) {
	if interval <= 0 {
		glog.Warningf("led: invalid blink interval %v, turning on", interval)
		return protocol.LedOn{}, nil
	}
	for {
		t.Gateway.On()
		if cmd, ok, err := t.Signal.WaitTimeout(ctx, interval); err != nil || ok {
			return cmd, err
		}
		t.Gateway.Off()
		if cmd, ok, err := t.Signal.WaitTimeout(ctx, interval); err != nil || ok {
			return cmd, err
		}
	}
}
