// Package movement passes the latest movement command to the chassis.
package movement

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// Interlock vetoes motion, e.g. while an emergency stop is latched.
type Interlock interface {
	// Guard runs drive unless motion is vetoed and tells whether it ran.
	// A veto raised concurrently takes effect either before drive is
	// considered or after it returns, never in between.
	Guard(drive func()) bool
}

// Task waits on the movement signal and drives the actuator. Commands
// written faster than they are consumed collapse into the latest one.
type Task struct {
	Actuator  Actuator
	Signal    *bus.Signal[protocol.MoveCmd]
	Interlock Interlock
}

// NewTask creates the movement task.
func NewTask(act Actuator, sig *bus.Signal[protocol.MoveCmd]) *Task {
	return &Task{Actuator: act, Signal: sig}
}

// WithInterlock sets the Interlock.
func (t *Task) WithInterlock(il Interlock) *Task {
	t.Interlock = il
	return t
}

// Name implements Named.
func (t *Task) Name() string {
	return "movement"
}

// AddToLoop implements LoopAdder.
func (t *Task) AddToLoop(l *fx.Loop) {
	l.AddRunnable(t)
}

// Run implements Runnable.
func (t *Task) Run(ctx context.Context) error {
	for {
		cmd, err := t.Signal.Wait(ctx)
		if err != nil {
			return err
		}
		t.apply(cmd)
	}
}

func (t *Task) apply(cmd protocol.MoveCmd) {
	drive := func() {
		glog.V(2).Infof("movement: left=%.3f right=%.3f", cmd.Left, cmd.Right)
		t.Actuator.SetSpeed(cmd.Left, cmd.Right)
	}
	il := t.Interlock
	if il == nil {
		drive()
		return
	}
	if !il.Guard(drive) {
		if cmd != protocol.StopCmd() {
			glog.Warningf("movement: emergency stop latched, ignoring %+v", cmd)
		}
		t.Actuator.Stop()
	}
}
