// Package sim simulates the rover hardware: a LED, two motor drivers and
// an I2C bus with a distance sensor at each end, driving along a
// corridor between two walls.
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/sensors"
)

// Sensor addresses on the simulated bus.
const (
	FrontAddr = sensors.FrontAddr
	BackAddr  = sensors.BackAddr
)

// MaxRangeMM is the farthest reading of the simulated sensors.
const MaxRangeMM = 8190

// ErrBusTimeout is returned by injected bus failures.
var ErrBusTimeout = errors.New("i2c: timeout")

// Hardware bundles the simulated devices.
type Hardware struct {
	World *Corridor
	LED   *LED
	Left  *Motor
	Right *Motor
	I2C   *I2C
}

// Corridor is a one dimensional world: the rover moves between a wall
// behind it and a wall ahead. Position is integrated from the speed
// since the last change.
type Corridor struct {
	length   float64
	pos      float64
	speedMax float64
	now      func() time.Time

	lock       sync.Mutex
	left       float64
	right      float64
	lastUpdate time.Time
}

// NewCorridor creates a Corridor with the rover back mm from the wall
// behind and front mm from the wall ahead.
func NewCorridor(back, front, speedMax float64, now func() time.Time) *Corridor {
	return &Corridor{
		length:     back + front,
		pos:        back,
		speedMax:   speedMax,
		now:        now,
		lastUpdate: now(),
	}
}

// SetDrive sets the signed duty fraction of one side.
func (c *Corridor) SetDrive(side string, fraction float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.update()
	if side == "left" {
		c.left = fraction
	} else {
		c.right = fraction
	}
}

// Speed is the forward speed in mm/s. Turning in place does not move.
func (c *Corridor) Speed() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.speed()
}

// FrontMM is the distance to the wall ahead.
func (c *Corridor) FrontMM() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.update()
	return c.length - c.pos
}

// BackMM is the distance to the wall behind.
func (c *Corridor) BackMM() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.update()
	return c.pos
}

func (c *Corridor) speed() float64 {
	return (c.left + c.right) / 2 * c.speedMax
}

func (c *Corridor) update() {
	now := c.now()
	c.pos += c.speed() * now.Sub(c.lastUpdate).Seconds()
	c.pos = math.Max(0, math.Min(c.length, c.pos))
	c.lastUpdate = now
}

// LED implements led.Gateway.
type LED struct {
	lock    sync.Mutex
	on      bool
	toggles int
}

// On implements led.Gateway.
func (l *LED) On() {
	l.set(true)
}

// Off implements led.Gateway.
func (l *LED) Off() {
	l.set(false)
}

func (l *LED) set(on bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.on != on {
		l.toggles++
		glog.V(3).Infof("sim: LED on=%v", on)
	}
	l.on = on
}

// State returns whether the LED is lit and how many times it toggled.
func (l *LED) State() (on bool, toggles int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on, l.toggles
}

// Motor implements movement.MotorDriver.
type Motor struct {
	Name  string
	Max   uint16
	World *Corridor

	lock             sync.Mutex
	forward, reverse uint16
}

// MaxDuty implements movement.MotorDriver.
func (m *Motor) MaxDuty() uint16 {
	return m.Max
}

// SetDuty implements movement.MotorDriver.
func (m *Motor) SetDuty(forward, reverse uint16) {
	m.lock.Lock()
	m.forward, m.reverse = forward, reverse
	m.lock.Unlock()
	glog.V(2).Infof("sim: motor %s fwd=%d rev=%d", m.Name, forward, reverse)
	if m.World != nil && m.Max > 0 {
		m.World.SetDrive(m.Name, (float64(forward)-float64(reverse))/float64(m.Max))
	}
}

// Duty returns the current duty cycles.
func (m *Motor) Duty() (forward, reverse uint16) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.forward, m.reverse
}

// Device answers I2C transactions at one address.
type Device interface {
	Tx(w, r []byte) error
}

// RangeDevice is a VL53L0X style range sensor reporting a distance in
// its result register.
type RangeDevice struct {
	Range   func() float64
	NoiseMM uint
}

// Tx implements Device.
func (d *RangeDevice) Tx(w, r []byte) error {
	if len(w) == 0 || w[0] != sensors.RegResultRange || len(r) < 2 {
		return fmt.Errorf("unsupported register access %x", w)
	}
	mm := d.Range()
	if d.NoiseMM > 0 {
		mm += float64(rand.Intn(int(2*d.NoiseMM+1))) - float64(d.NoiseMM)
	}
	mm = math.Max(0, math.Min(MaxRangeMM, mm))
	binary.BigEndian.PutUint16(r, uint16(mm))
	return nil
}

// I2C implements sensors.I2C with devices attached by address.
type I2C struct {
	FailEvery uint

	lock    sync.Mutex
	devices map[uint16]Device
	count   uint
}

// NewI2C creates an I2C bus failing every failEvery transactions.
func NewI2C(failEvery uint) *I2C {
	return &I2C{FailEvery: failEvery, devices: make(map[uint16]Device)}
}

// Attach puts a device at addr.
func (b *I2C) Attach(addr uint16, dev Device) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.devices[addr] = dev
}

// Tx implements sensors.I2C.
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	b.lock.Lock()
	b.count++
	failed := b.FailEvery > 0 && b.count%b.FailEvery == 0
	dev := b.devices[addr]
	b.lock.Unlock()
	if dev == nil {
		return fmt.Errorf("i2c: no ack from 0x%02x: %w", addr, sensors.ErrInvalidDevice)
	}
	if failed {
		return ErrBusTimeout
	}
	return dev.Tx(w, r)
}
