// Package safety classifies system errors and owns the emergency stop.
package safety

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// DefaultFastBlink is the LED pattern signaling an emergency stop.
const DefaultFastBlink = 10 * time.Millisecond

// State is the state of the reflex.
type State int

// States
const (
	Normal State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event drives the reflex. One of EmergencyStop, Clear.
type Event interface {
	event()
}

// EmergencyStop latches the reflex.
type EmergencyStop struct {
	Cause error
}

// Clear releases a latched reflex.
type Clear struct{}

func (EmergencyStop) event() {}
func (Clear) event()         {}

// Transition returns the state after ev. An EmergencyStop while Stopped
// stays Stopped; Clear always returns to Normal.
func Transition(s State, ev Event) State {
	switch ev.(type) {
	case EmergencyStop:
		return Stopped
	case Clear:
		return Normal
	}
	return s
}

// Stopper halts the actuator.
type Stopper interface {
	Stop()
}

// Reflex is the emergency stop machine. Its methods never block, so it
// can be invoked inline by the error handler.
type Reflex struct {
	LED       *bus.Signal[protocol.LedCmd]
	Actuator  Stopper
	FastBlink time.Duration
	Reporter  Reporter

	lock  sync.Mutex
	state State
	cause error
}

// NewReflex creates a Reflex in Normal state.
func NewReflex(led *bus.Signal[protocol.LedCmd], act Stopper) *Reflex {
	return &Reflex{LED: led, Actuator: act, FastBlink: DefaultFastBlink}
}

// State returns the current state.
func (r *Reflex) State() State {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state
}

// Status returns whether the reflex is latched and the error which
// latched it last.
func (r *Reflex) Status() (stopped bool, cause error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state == Stopped, r.cause
}

// Stopped tells whether the reflex is latched.
func (r *Reflex) Stopped() bool {
	return r.State() == Stopped
}

// Guard runs drive only while Normal. The reflex cannot latch while drive
// runs, so an emergency stop always lands after the last motion it races
// with. drive must not call back into the Reflex.
func (r *Reflex) Guard(drive func()) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.state == Stopped {
		return false
	}
	drive()
	return true
}

// EmergencyStop raises the visual alarm and halts the actuator.
// The actions are applied on every call, latched or not.
func (r *Reflex) EmergencyStop(cause error) {
	r.apply(EmergencyStop{Cause: cause})
}

// Clear returns to Normal and turns the LED off.
func (r *Reflex) Clear() {
	r.apply(Clear{})
}

func (r *Reflex) apply(ev Event) {
	r.lock.Lock()
	prev := r.state
	r.state = Transition(prev, ev)
	state := r.state
	switch e := ev.(type) {
	case EmergencyStop:
		glog.Errorf("EMERGENCY STOP: %v", e.Cause)
		r.cause = e.Cause
		r.LED.Signal(protocol.Blink(r.fastBlink()))
		if r.Actuator != nil {
			r.Actuator.Stop()
		}
	case Clear:
		r.cause = nil
		if prev == Stopped {
			glog.Infof("emergency stop cleared")
			r.LED.Signal(protocol.LedOff{})
		}
	}
	r.lock.Unlock()

	if r.Reporter != nil && (state != prev || state == Stopped) {
		var cause error
		if e, ok := ev.(EmergencyStop); ok {
			cause = e.Cause
		}
		r.Reporter.ReportReflex(state, cause)
	}
}

func (r *Reflex) fastBlink() time.Duration {
	if r.FastBlink > 0 {
		return r.FastBlink
	}
	return DefaultFastBlink
}
