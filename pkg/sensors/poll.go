package sensors

import (
	"math"
	"time"
)

// Never is the poll interval of a disabled sensor.
const Never time.Duration = math.MaxInt64

// PollState schedules the reads of one sensor. The zero value is
// disabled, which is the state until the first subscription.
// It is owned by the polling task and not safe for concurrent use.
type PollState struct {
	interval time.Duration
	next     time.Time
	enabled  bool
}

// Ready tells whether the sensor is due at now.
func (s *PollState) Ready(now time.Time) bool {
	return s.enabled && !now.Before(s.next)
}

// SetPollInterval changes the interval and makes the sensor due at now.
// A non-positive interval disables polling.
func (s *PollState) SetPollInterval(interval time.Duration, now time.Time) {
	if interval <= 0 || interval == Never {
		*s = PollState{}
		return
	}
	s.interval, s.next, s.enabled = interval, now, true
}

// PollInterval returns the interval, Never if disabled.
func (s *PollState) PollInterval() time.Duration {
	if !s.enabled {
		return Never
	}
	return s.interval
}

// UpdateNextPollAt schedules the next read one interval after now.
func (s *PollState) UpdateNextPollAt(now time.Time) time.Time {
	if s.enabled {
		s.next = now.Add(s.interval)
	}
	return s.next
}

// NextPollAt returns the next scheduled read; ok is false if disabled.
func (s *PollState) NextPollAt() (at time.Time, ok bool) {
	return s.next, s.enabled
}
