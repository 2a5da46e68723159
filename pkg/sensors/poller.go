// Package sensors schedules distance sensor reads on one task.
//
// Each sensor keeps its own interval and next due time. After reading the
// due sensors, the poller sleeps until the earliest next due time, or
// until a subscription command arrives, whichever comes first.
package sensors

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// Poller is the sensor polling task.
type Poller struct {
	Sensors []DistanceSensor
	Bus     *bus.Bus
	// Now defaults to time.Now.
	Now func() time.Time

	lock      sync.Mutex
	intervals map[protocol.SensorKind]time.Duration
}

// NewPoller creates a Poller.
func NewPoller(b *bus.Bus, sensors ...DistanceSensor) *Poller {
	return &Poller{Sensors: sensors, Bus: b, Now: time.Now}
}

// Name implements Named.
func (p *Poller) Name() string {
	return "sensors"
}

// AddToLoop implements LoopAdder.
func (p *Poller) AddToLoop(l *fx.Loop) {
	l.AddRunnable(p)
}

// Run implements Runnable. It returns *UnsupportedSensorError when asked
// to subscribe a sensor kind without a driver.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := p.poll(ctx, p.now()); err != nil {
			return err
		}
		wait := bus.Forever
		if deadline, ok := p.Deadline(); ok {
			if wait = deadline.Sub(p.now()); wait < 0 {
				wait = 0
			}
		}
		cmd, ok, err := p.Bus.SensorCmds.ReceiveTimeout(ctx, wait)
		if err != nil {
			return err
		}
		if ok {
			if err = p.Handle(cmd, p.now()); err != nil {
				return err
			}
		}
	}
}

// Deadline returns the earliest next poll time; ok is false when all
// sensors are disabled.
func (p *Poller) Deadline() (deadline time.Time, ok bool) {
	for _, s := range p.Sensors {
		at, enabled := s.NextPollAt()
		if !enabled {
			continue
		}
		if !ok || at.Before(deadline) {
			deadline, ok = at, true
		}
	}
	return
}

// Handle applies a sensor command.
func (p *Poller) Handle(cmd protocol.SensorCmd, now time.Time) error {
	switch c := cmd.(type) {
	case protocol.SubscribeTo:
		if !Supported(c.Sensor) {
			return &UnsupportedSensorError{Kind: c.Sensor}
		}
		glog.Infof("sensors: %s poll interval %v", c.Sensor, c.PollInterval)
		p.lock.Lock()
		if p.intervals == nil {
			p.intervals = make(map[protocol.SensorKind]time.Duration)
		}
		if c.PollInterval > 0 && c.PollInterval != Never {
			p.intervals[c.Sensor] = c.PollInterval
		} else {
			delete(p.intervals, c.Sensor)
		}
		p.lock.Unlock()
		for _, s := range p.Sensors {
			if s.Kind() == c.Sensor {
				s.SetPollInterval(c.PollInterval, now)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown sensor command %T", cmd)
}

// PollInterval returns the subscribed interval of a sensor kind; ok is
// false while the kind is not polled. Safe to call from any goroutine.
func (p *Poller) PollInterval(kind protocol.SensorKind) (d time.Duration, ok bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	d, ok = p.intervals[kind]
	return
}

// poll reads every sensor due at now and reschedules it, failed or not,
// so a broken sensor is retried at its regular interval only.
func (p *Poller) poll(ctx context.Context, now time.Time) error {
	for _, s := range p.Sensors {
		if !s.Ready(now) {
			continue
		}
		mm, err := s.ReadDistanceMM()
		if err != nil {
			glog.Warningf("sensors: %v", err)
			err = p.Bus.Errors.Send(ctx, protocol.SensorError{Kind: s.Kind()})
		} else {
			tm := s.Telemetry(mm)
			glog.V(2).Infof("sensors: %v", tm)
			err = p.Bus.Telemetry.Send(ctx, tm)
		}
		if err != nil {
			return err
		}
		s.UpdateNextPollAt(now)
	}
	return nil
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
