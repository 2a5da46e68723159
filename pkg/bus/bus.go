// Package bus provides the transport between firmware tasks: bounded
// queues with backpressure and latest-value signals.
//
// A Bus is created once at startup and handed to every task, instead of
// process-wide globals, so tests can build private buses.
package bus

import (
	"github.com/robotalks/rover.go/pkg/protocol"
)

// DefaultCapacity is the capacity of each bounded queue on the Bus.
const DefaultCapacity = 10

// Bus groups the channels connecting the firmware tasks.
type Bus struct {
	// Errors carries internal faults to the error handler.
	Errors *Queue[protocol.SystemError]
	// SensorCmds carries subscription requests to the sensor poller.
	SensorCmds *Queue[protocol.SensorCmd]
	// Telemetry carries sensor readings to the host link.
	Telemetry *Queue[protocol.Telemetry]
	// LED holds the latest LED command.
	LED *Signal[protocol.LedCmd]
	// Move holds the latest movement command.
	Move *Signal[protocol.MoveCmd]
}

// New creates a Bus whose queues hold capacity messages each.
func New(capacity int) *Bus {
	return &Bus{
		Errors:     NewQueue[protocol.SystemError](capacity),
		SensorCmds: NewQueue[protocol.SensorCmd](capacity),
		Telemetry:  NewQueue[protocol.Telemetry](capacity),
		LED:        NewSignal[protocol.LedCmd](),
		Move:       NewSignal[protocol.MoveCmd](),
	}
}
