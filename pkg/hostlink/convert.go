package hostlink

import (
	"fmt"
	"math"
	"time"

	"github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/protocol"
	"github.com/robotalks/rover.go/pkg/safety"
)

// LedCmdFrom converts a LedSet into a LED command.
func LedCmdFrom(m *msgs.LedSet) (protocol.LedCmd, error) {
	switch m.Mode {
	case msgs.LedModeOff:
		return protocol.LedOff{}, nil
	case msgs.LedModeOn:
		return protocol.LedOn{}, nil
	case msgs.LedModeBlink:
		if m.IntervalMs == 0 {
			return nil, fmt.Errorf("blink interval must be positive")
		}
		return protocol.Blink(msDuration(m.IntervalMs)), nil
	}
	return nil, fmt.Errorf("unknown LED mode %d", m.Mode)
}

// SensorKindFrom converts a wire sensor kind.
func SensorKindFrom(kind uint32) (protocol.SensorKind, error) {
	switch kind {
	case msgs.SensorDistance:
		return protocol.Distance, nil
	case msgs.SensorCliff:
		return protocol.Cliff, nil
	case msgs.SensorImu:
		return protocol.Imu, nil
	}
	return 0, fmt.Errorf("unknown sensor kind %d", kind)
}

// SensorKindMsg converts a sensor kind to the wire.
func SensorKindMsg(kind protocol.SensorKind) uint32 {
	switch kind {
	case protocol.Cliff:
		return msgs.SensorCliff
	case protocol.Imu:
		return msgs.SensorImu
	}
	return msgs.SensorDistance
}

// TelemetryMsg converts a reading into its event.
func TelemetryMsg(t protocol.Telemetry) *msgs.TelemetryEvent {
	switch v := t.(type) {
	case protocol.DistanceFront:
		return &msgs.TelemetryEvent{Position: msgs.PositionFront, Mm: uint32(v.MM)}
	case protocol.DistanceBack:
		return &msgs.TelemetryEvent{Position: msgs.PositionBack, Mm: uint32(v.MM)}
	}
	panic(fmt.Sprintf("unknown telemetry %T", t))
}

// SystemErrorMsg converts a classified system error into its event.
func SystemErrorMsg(err protocol.SystemError, severity safety.Severity) *msgs.SystemErrorEvent {
	ev := &msgs.SystemErrorEvent{Message: err.Error()}
	if se, ok := err.(protocol.SensorError); ok {
		ev.Sensor = SensorKindMsg(se.Kind)
	}
	if severity == safety.Critical {
		ev.Severity = msgs.SeverityCritical
	}
	return ev
}

// msDuration converts milliseconds from the wire, saturating instead of
// overflowing.
func msDuration(ms uint64) time.Duration {
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
