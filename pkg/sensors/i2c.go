package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/robotalks/rover.go/pkg/protocol"
)

var (
	// ErrInvalidDevice indicates no device or the wrong device
	// answered at the address.
	ErrInvalidDevice = errors.New("invalid device or address")
	// ErrUnavailable indicates a bus error or a timeout.
	ErrUnavailable = errors.New("sensor is unavailable")
)

// ReadError is a failed sensor read. Err is one of ErrInvalidDevice
// or ErrUnavailable.
type ReadError struct {
	Sensor string
	Err    error
}

// Error implements error.
func (e *ReadError) Error() string {
	return fmt.Sprintf("sensor %s: %v", e.Sensor, e.Err)
}

// Unwrap returns the classified failure.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Classify collapses a driver error into ErrInvalidDevice or
// ErrUnavailable. The detail matters for logging only.
func Classify(err error) error {
	if errors.Is(err, ErrInvalidDevice) {
		return ErrInvalidDevice
	}
	return ErrUnavailable
}

// UnsupportedSensorError is returned for subscriptions to a sensor kind
// the poller has no driver for.
type UnsupportedSensorError struct {
	Kind protocol.SensorKind
}

// Error implements error.
func (e *UnsupportedSensorError) Error() string {
	return fmt.Sprintf("%s sensor subscription not implemented", e.Kind)
}

// Supported tells whether subscriptions to kind are implemented.
func Supported(kind protocol.SensorKind) bool {
	return kind == protocol.Distance
}

// I2C is a bus transaction primitive: write w, then read len(r) bytes
// from the device at addr.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// SharedBus serializes transactions from multiple sensor handles on a
// single physical bus.
type SharedBus struct {
	bus  I2C
	lock sync.Mutex
}

// NewSharedBus wraps a bus.
func NewSharedBus(bus I2C) *SharedBus {
	return &SharedBus{bus: bus}
}

// Tx implements I2C.
func (b *SharedBus) Tx(addr uint16, w, r []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.bus.Tx(addr, w, r)
}

// RegResultRange is the register holding the last range result in mm
// (big endian, 16 bit) on VL53L0X style sensors.
const RegResultRange byte = 0x1e

// I2CRangeReader reads the range register of a device on an I2C bus.
type I2CRangeReader struct {
	Bus  I2C
	Addr uint16
}

// ReadRangeMM implements RangeReader.
func (r *I2CRangeReader) ReadRangeMM() (uint16, error) {
	buf := make([]byte, 2)
	if err := r.Bus.Tx(r.Addr, []byte{RegResultRange}, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// Default addresses of the distance sensors.
const (
	FrontAddr uint16 = 0x30
	BackAddr  uint16 = 0x31
)
