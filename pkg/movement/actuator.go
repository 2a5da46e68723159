package movement

import (
	"math"
	"sync"
)

// Actuator drives the chassis.
type Actuator interface {
	// SetSpeed sets both sides, each clamped to [-1, 1].
	SetSpeed(left, right float32)
	// Stop is equivalent to SetSpeed(0, 0).
	Stop()
}

// MotorDriver is one side of an H-bridge (e.g. BTS7960) with separate
// forward and reverse PWM outputs.
type MotorDriver interface {
	MaxDuty() uint16
	SetDuty(forward, reverse uint16)
}

// SkidSteer is a chassis whose left and right wheels are driven by one
// MotorDriver per side. It is safe for concurrent use: the movement task
// and the reflex may both drive it.
type SkidSteer struct {
	Left  MotorDriver
	Right MotorDriver

	lock sync.Mutex
}

// NewSkidSteer creates a SkidSteer.
func NewSkidSteer(left, right MotorDriver) *SkidSteer {
	return &SkidSteer{Left: left, Right: right}
}

// SetSpeed implements Actuator.
func (s *SkidSteer) SetSpeed(left, right float32) {
	s.lock.Lock()
	defer s.lock.Unlock()
	drive(s.Left, left)
	drive(s.Right, right)
}

// Stop implements Actuator.
func (s *SkidSteer) Stop() {
	s.SetSpeed(0, 0)
}

// Clamp limits speed to [-1, 1]. NaN is treated as 0.
func Clamp(speed float32) float32 {
	switch {
	case math.IsNaN(float64(speed)):
		return 0
	case speed > 1:
		return 1
	case speed < -1:
		return -1
	}
	return speed
}

// Duty maps a speed to forward and reverse duty cycles: the sign picks
// the output, the magnitude scales maxDuty.
func Duty(speed float32, maxDuty uint16) (forward, reverse uint16) {
	speed = Clamp(speed)
	duty := uint16(math.Abs(float64(speed)) * float64(maxDuty))
	if speed >= 0 {
		return duty, 0
	}
	return 0, duty
}

func drive(m MotorDriver, speed float32) {
	m.SetDuty(Duty(speed, m.MaxDuty()))
}
