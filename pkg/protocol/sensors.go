package protocol

import (
	"fmt"
	"strings"
)

// SensorKind enumerates the sensor families on the robot.
type SensorKind int

// Sensor kinds.
const (
	Distance SensorKind = iota
	Cliff
	Imu
)

// SensorKinds lists every defined kind. Classification sites iterate it
// in tests so a new kind cannot slip through unassigned.
var SensorKinds = []SensorKind{Distance, Cliff, Imu}

func (k SensorKind) String() string {
	switch k {
	case Distance:
		return "Distance"
	case Cliff:
		return "Cliff"
	case Imu:
		return "Imu"
	}
	return fmt.Sprintf("SensorKind(%d)", int(k))
}

// ParseSensorKind converts a lower or title case name into SensorKind.
func ParseSensorKind(name string) (SensorKind, error) {
	for _, k := range SensorKinds {
		if s := k.String(); s == name || strings.ToLower(s) == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown sensor kind %q", name)
}

// Telemetry is a sensor reading sent upstream.
// One of DistanceFront, DistanceBack.
type Telemetry interface {
	telemetry()
}

// DistanceFront is a range reading from the front distance sensor.
type DistanceFront struct {
	MM uint16
}

// DistanceBack is a range reading from the rear distance sensor.
type DistanceBack struct {
	MM uint16
}

func (DistanceFront) telemetry() {}
func (DistanceBack) telemetry()  {}

func (t DistanceFront) String() string { return fmt.Sprintf("DistanceFront{%dmm}", t.MM) }
func (t DistanceBack) String() string  { return fmt.Sprintf("DistanceBack{%dmm}", t.MM) }

// SystemError is an internal fault routed to the error handler.
type SystemError interface {
	error
	systemError()
}

// SensorError reports a sensor which failed to respond.
type SensorError struct {
	Kind SensorKind
}

func (SensorError) systemError() {}

// Error implements error.
func (e SensorError) Error() string {
	return fmt.Sprintf("SensorError(%s)", e.Kind)
}
