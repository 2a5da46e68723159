// Package hostlink bridges the host link and the firmware bus: host
// commands become bus writes, telemetry and safety events go upstream.
package hostlink

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rover.go/pkg/bus"
	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/protocol"
	"github.com/robotalks/rover.go/pkg/safety"
	"github.com/robotalks/rover.go/pkg/sensors"
)

// EventsBacklog is the number of safety events buffered for the host.
const EventsBacklog = 32

// Reflex is the part of the emergency stop exposed to the host.
type Reflex interface {
	Clear()
	Status() (stopped bool, cause error)
}

// Subscriptions tells the poll interval of a sensor kind.
type Subscriptions interface {
	PollInterval(kind protocol.SensorKind) (time.Duration, bool)
}

// Bridge implements l1.CommandHandler and safety.Reporter.
type Bridge struct {
	Bus       *bus.Bus
	Registrar l1.Registrar
	Reflex    Reflex
	Sensors   Subscriptions

	events chan msgs.Message
}

// New creates a Bridge.
func New(b *bus.Bus, reg l1.Registrar, reflex Reflex) *Bridge {
	return &Bridge{
		Bus:       b,
		Registrar: reg,
		Reflex:    reflex,
		events:    make(chan msgs.Message, EventsBacklog),
	}
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "hostlink"
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(l *fx.Loop) {
	l.AddRunnable(b, fx.NamedRun("hostlink-events", fx.RunFunc(b.forwardEvents)))
}

// Run implements Runnable. It forwards telemetry to the host.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		t, err := b.Bus.Telemetry.Receive(ctx)
		if err != nil {
			return err
		}
		b.send(ctx, TelemetryMsg(t))
	}
}

func (b *Bridge) forwardEvents(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-b.events:
			b.send(ctx, msg)
		}
	}
}

func (b *Bridge) send(ctx context.Context, msg msgs.Message) {
	if err := b.Registrar.SendEvent(ctx, msg); err != nil {
		glog.Warningf("hostlink: send %v: %v", msg, err)
	}
}

// HandleCommand implements CommandHandler.
func (b *Bridge) HandleCommand(ctx context.Context, cmd l1.Command) {
	var reply msgs.Message
	if q, ok := cmd.Msg().(*msgs.StatusQuery); ok {
		reply = b.status(q)
	} else if err := b.apply(ctx, cmd.Msg()); err != nil {
		glog.Warningf("hostlink: command %v rejected: %v", cmd.Msg(), err)
		reply = msgs.NewCommandErr(err)
	} else {
		reply = msgs.NewCommandOK()
	}
	if err := cmd.Done(reply); err != nil {
		glog.Warningf("hostlink: reply: %v", err)
	}
}

func (b *Bridge) apply(ctx context.Context, msg msgs.Message) error {
	switch m := msg.(type) {
	case *msgs.LedSet:
		led, err := LedCmdFrom(m)
		if err != nil {
			return err
		}
		b.Bus.LED.Signal(led)
	case *msgs.MoveSet:
		b.Bus.Move.Signal(protocol.MoveCmd{Left: m.Left, Right: m.Right})
	case *msgs.SensorSubscribe:
		kind, err := SensorKindFrom(m.Sensor)
		if err != nil {
			return err
		}
		if !sensors.Supported(kind) {
			return &sensors.UnsupportedSensorError{Kind: kind}
		}
		return b.Bus.SensorCmds.Send(ctx, protocol.SubscribeTo{
			Sensor:       kind,
			PollInterval: msDuration(m.PollIntervalMs),
		})
	case *msgs.EmergencyClear:
		if b.Reflex == nil {
			return msgs.ErrUnsupportedCommand
		}
		b.Reflex.Clear()
	default:
		return msgs.ErrUnsupportedCommand
	}
	return nil
}

func (b *Bridge) status(*msgs.StatusQuery) *msgs.StatusReply {
	var reply msgs.StatusReply
	if b.Reflex != nil {
		stopped, cause := b.Reflex.Status()
		reply.Stopped = stopped
		if cause != nil {
			reply.Cause = cause.Error()
		}
	}
	if b.Sensors != nil {
		if d, ok := b.Sensors.PollInterval(protocol.Distance); ok {
			reply.DistanceIntervalMs = uint64(d / time.Millisecond)
		}
	}
	return &reply
}

// ReportError implements safety.Reporter.
func (b *Bridge) ReportError(err protocol.SystemError, severity safety.Severity) {
	b.post(SystemErrorMsg(err, severity))
}

// ReportReflex implements safety.Reporter.
func (b *Bridge) ReportReflex(state safety.State, cause error) {
	ev := &msgs.ReflexStatusEvent{Stopped: state == safety.Stopped}
	if cause != nil {
		ev.Cause = cause.Error()
	}
	b.post(ev)
}

// post never blocks: it runs on the safety path.
func (b *Bridge) post(msg msgs.Message) {
	select {
	case b.events <- msg:
	default:
		glog.Warningf("hostlink: event backlog full, dropped %v", msg)
	}
}
