// Package protocol defines the in-process messages exchanged over the
// firmware bus. Variants are sealed interfaces: only types in this package
// implement them, and consumers switch over the concrete types.
package protocol

import (
	"fmt"
	"time"
)

// LedCmd controls the status LED. One of LedOn, LedOff, LedBlink.
type LedCmd interface {
	fmt.Stringer
	ledCmd()
}

// LedOn keeps the LED lit.
type LedOn struct{}

// LedOff keeps the LED dark.
type LedOff struct{}

// LedBlink toggles the LED every Interval, starting lit.
type LedBlink struct {
	Interval time.Duration
}

func (LedOn) ledCmd()    {}
func (LedOff) ledCmd()   {}
func (LedBlink) ledCmd() {}

func (LedOn) String() string  { return "On" }
func (LedOff) String() string { return "Off" }

func (c LedBlink) String() string { return fmt.Sprintf("Blink(%v)", c.Interval) }

// Blink is a shortcut for LedBlink.
func Blink(interval time.Duration) LedCmd {
	return LedBlink{Interval: interval}
}

// MoveCmd sets the speed of both sides of a skid-steer chassis.
// Values are nominally in [-1, 1]; clamping happens at the actuator,
// so out-of-range values are accepted here.
type MoveCmd struct {
	Left  float32
	Right float32
}

// StopCmd returns the command halting both sides.
func StopCmd() MoveCmd {
	return MoveCmd{}
}

// SensorCmd is a request to the sensor polling task.
type SensorCmd interface {
	sensorCmd()
}

// SubscribeTo sets the poll interval of all sensors of a kind.
// A zero interval disables polling.
type SubscribeTo struct {
	Sensor       SensorKind
	PollInterval time.Duration
}

func (SubscribeTo) sensorCmd() {}

func (c SubscribeTo) String() string {
	return fmt.Sprintf("SubscribeTo(%s, %v)", c.Sensor, c.PollInterval)
}
