package sensors

import (
	"fmt"
	"time"

	"github.com/robotalks/rover.go/pkg/protocol"
)

// DistanceSensor is a polled range sensor with its own schedule.
type DistanceSensor interface {
	Name() string
	Kind() protocol.SensorKind
	Ready(now time.Time) bool
	ReadDistanceMM() (uint16, error)
	SetPollInterval(interval time.Duration, now time.Time)
	UpdateNextPollAt(now time.Time) time.Time
	NextPollAt() (time.Time, bool)
	// Telemetry wraps a reading in the variant for this sensor.
	Telemetry(mm uint16) protocol.Telemetry
}

// RangeReader performs a single range measurement.
type RangeReader interface {
	ReadRangeMM() (uint16, error)
}

// RangeReaderFunc is the func form of RangeReader.
type RangeReaderFunc func() (uint16, error)

// ReadRangeMM implements RangeReader.
func (f RangeReaderFunc) ReadRangeMM() (uint16, error) {
	return f()
}

// Position is where a distance sensor is mounted.
type Position int

// Positions
const (
	Front Position = iota
	Back
)

func (p Position) String() string {
	switch p {
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Distance implements DistanceSensor over a RangeReader.
type Distance struct {
	PollState

	name     string
	position Position
	reader   RangeReader
}

// NewDistance creates a Distance sensor. Polling is disabled until
// SetPollInterval is called.
func NewDistance(name string, pos Position, reader RangeReader) *Distance {
	return &Distance{name: name, position: pos, reader: reader}
}

// Name implements DistanceSensor.
func (d *Distance) Name() string {
	return d.name
}

// Kind implements DistanceSensor.
func (d *Distance) Kind() protocol.SensorKind {
	return protocol.Distance
}

// Position returns the mount position.
func (d *Distance) Position() Position {
	return d.position
}

// ReadDistanceMM implements DistanceSensor.
func (d *Distance) ReadDistanceMM() (uint16, error) {
	mm, err := d.reader.ReadRangeMM()
	if err != nil {
		return 0, &ReadError{Sensor: d.name, Err: Classify(err)}
	}
	return mm, nil
}

// Telemetry implements DistanceSensor.
func (d *Distance) Telemetry(mm uint16) protocol.Telemetry {
	if d.position == Back {
		return protocol.DistanceBack{MM: mm}
	}
	return protocol.DistanceFront{MM: mm}
}
