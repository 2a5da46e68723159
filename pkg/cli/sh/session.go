package sh

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// EventsBacklog is the number of events kept for the watch command.
const EventsBacklog = 256

// CommandTimeout bounds the wait for a command reply.
const CommandTimeout = 2 * time.Second

// Session is a live connection to one rover. It follows the reflex
// events so the console always knows whether an emergency stop is
// latched.
type Session struct {
	Ref  l1.ControllerRef
	Conn l1.ControllerConn

	ctx     context.Context
	cancel  func()
	events  chan msgs.Message
	stopped atomic.Bool
}

// NewSession starts the loop serving conn and tracking its events.
func NewSession(ref l1.ControllerRef, conn l1.ControllerConn) *Session {
	s := &Session{
		Ref:    ref,
		Conn:   conn,
		events: make(chan msgs.Message, EventsBacklog),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	loop := fx.NewLoop()
	if adder, ok := conn.(fx.LoopAdder); ok {
		loop.Add(adder)
	}
	loop.AddRunnable(fx.NamedRun("session", fx.RunFunc(s.track)))
	go loop.Run(s.ctx)
	return s
}

// Close stops the session.
func (s *Session) Close() {
	s.cancel()
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Stopped tells whether the rover reported a latched emergency stop.
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

// Events delivers the events received since the last call, oldest
// first. Events are dropped when nobody watches for long.
func (s *Session) Events() <-chan msgs.Message {
	return s.events
}

// Do runs a command and waits for its reply.
func (s *Session) Do(msg msgs.Message) (msgs.Message, error) {
	select {
	case res := <-s.Conn.DoCommand(msg).ResultChan():
		if res.Err != nil {
			return nil, res.Err
		}
		s.observe(res.Msg)
		return res.Msg, nil
	case <-time.After(CommandTimeout):
		return nil, context.DeadlineExceeded
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
}

// Status queries the safety and subscription state.
func (s *Session) Status() (*msgs.StatusReply, error) {
	reply, err := s.Do(&msgs.StatusQuery{})
	if err != nil {
		return nil, err
	}
	status, ok := reply.(*msgs.StatusReply)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %s", FormatMsg(reply))
	}
	return status, nil
}

// Prompt is the shell prompt for the session.
func (s *Session) Prompt() string {
	if s == nil {
		return unconnectedPrompt
	}
	if s.Stopped() {
		return s.Ref.Name() + " [ESTOP] > "
	}
	return s.Ref.Name() + " > "
}

func (s *Session) track(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.Conn.Events():
			s.observe(ev)
			select {
			case s.events <- ev:
			default:
				// keep the latest: drop the oldest
				select {
				case <-s.events:
				default:
				}
				s.events <- ev
			}
		}
	}
}

func (s *Session) observe(msg msgs.Message) {
	switch m := msg.(type) {
	case *msgs.ReflexStatusEvent:
		s.stopped.Store(m.Stopped)
	case *msgs.StatusReply:
		s.stopped.Store(m.Stopped)
	}
}

// FormatStatus describes a StatusReply for humans.
func FormatStatus(st *msgs.StatusReply) string {
	safety := "running"
	if st.Stopped {
		safety = "EMERGENCY STOP"
		if st.Cause != "" {
			safety += " (" + st.Cause + ")"
		}
	}
	distance := "off"
	if st.DistanceIntervalMs > 0 {
		distance = fmt.Sprintf("every %dms", st.DistanceIntervalMs)
	}
	return fmt.Sprintf("%s, distance polling %s", safety, distance)
}
