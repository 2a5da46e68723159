// Package firmware assembles the rover tasks around one bus.
package firmware

import (
	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/hostlink"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/led"
	"github.com/robotalks/rover.go/pkg/movement"
	"github.com/robotalks/rover.go/pkg/protocol"
	"github.com/robotalks/rover.go/pkg/safety"
	"github.com/robotalks/rover.go/pkg/sensors"
)

// Hardware is the set of gateways the firmware drives.
type Hardware struct {
	LED   led.Gateway
	Left  movement.MotorDriver
	Right movement.MotorDriver
	I2C   sensors.I2C
}

// Firmware is the assembled set of tasks.
type Firmware struct {
	Config   Config
	Bus      *bus.Bus
	Actuator *movement.SkidSteer
	LED      *led.Task
	Movement *movement.Task
	Sensors  *sensors.Poller
	Reflex   *safety.Reflex
	Errors   *safety.Handler
	Link     *hostlink.Bridge
}

// New assembles the firmware. reg may be nil to run without a host.
// If reg accepts commands, host commands are handled by the firmware.
func (c *Config) New(hw Hardware, reg l1.Registrar) *Firmware {
	if reg == nil {
		reg = &comm.RegistrarMux{}
	}
	b := bus.New(c.QueueCapacity)
	i2c := sensors.NewSharedBus(hw.I2C)

	f := &Firmware{Config: *c, Bus: b}
	f.Actuator = movement.NewSkidSteer(hw.Left, hw.Right)
	f.Reflex = safety.NewReflex(b.LED, f.Actuator)
	f.Reflex.FastBlink = c.FastBlink
	f.LED = led.NewTask(hw.LED, b.LED)
	f.Movement = movement.NewTask(f.Actuator, b.Move).WithInterlock(f.Reflex)
	f.Sensors = sensors.NewPoller(b,
		sensors.NewDistance("front", sensors.Front, &sensors.I2CRangeReader{Bus: i2c, Addr: uint16(c.FrontAddr)}),
		sensors.NewDistance("back", sensors.Back, &sensors.I2CRangeReader{Bus: i2c, Addr: uint16(c.BackAddr)}),
	)
	f.Errors = safety.NewHandler(b.Errors, f.Reflex)
	f.Link = hostlink.New(b, reg, f.Reflex)
	f.Link.Sensors = f.Sensors
	f.Reflex.Reporter = f.Link
	f.Errors.Reporter = f.Link
	if recv, ok := reg.(l1.CommandReceiver); ok {
		recv.SetCommandHandler(f.Link)
	}
	return f
}

// AddToLoop implements LoopAdder. It also shows the boot pattern and
// queues the initial subscription, so it must be called once.
func (f *Firmware) AddToLoop(l *fx.Loop) {
	if f.Config.BootBlink > 0 {
		f.Bus.LED.Signal(protocol.Blink(f.Config.BootBlink))
	}
	if f.Config.DistanceInterval > 0 {
		f.Bus.SensorCmds.TrySend(protocol.SubscribeTo{
			Sensor:       protocol.Distance,
			PollInterval: f.Config.DistanceInterval,
		})
	}
	glog.Infof("firmware: front=0x%02x back=0x%02x queue=%d", f.Config.FrontAddr, f.Config.BackAddr, f.Bus.Errors.Cap())
	l.Add(f.LED, f.Movement, f.Sensors, f.Errors, f.Link)
}
