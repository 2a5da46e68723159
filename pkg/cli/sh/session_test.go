package sh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

type result chan l1.Result

func (r result) ResultChan() <-chan l1.Result { return r }

// fakeConn answers every command with reply, or never when reply and
// err are both nil.
type fakeConn struct {
	events chan msgs.Message
	reply  msgs.Message
	err    error
	sent   []msgs.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan msgs.Message)}
}

func (c *fakeConn) DoCommand(msg msgs.Message) l1.CommandFuture {
	c.sent = append(c.sent, msg)
	r := make(result, 1)
	if c.reply != nil || c.err != nil {
		r <- l1.Result{Msg: c.reply, Err: c.err}
	}
	return r
}

func (c *fakeConn) Events() <-chan msgs.Message {
	return c.events
}

var testRef = l1.ControllerRef{Type: "rover", ID: "r1"}

func TestSessionPromptFollowsReflex(t *testing.T) {
	conn := newFakeConn()
	s := NewSession(testRef, conn)
	defer s.Close()

	require.Equal(t, "rover/r1 > ", s.Prompt())

	conn.events <- &msgs.ReflexStatusEvent{Stopped: true, Cause: "SensorError(Cliff)"}
	select {
	case ev := <-s.Events():
		require.Equal(t, &msgs.ReflexStatusEvent{Stopped: true, Cause: "SensorError(Cliff)"}, ev)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
	require.True(t, s.Stopped())
	require.Equal(t, "rover/r1 [ESTOP] > ", s.Prompt())

	conn.events <- &msgs.ReflexStatusEvent{}
	<-s.Events()
	require.False(t, s.Stopped())
	require.Equal(t, "rover/r1 > ", s.Prompt())

	var none *Session
	require.Equal(t, unconnectedPrompt, none.Prompt())
}

func TestSessionStatus(t *testing.T) {
	conn := newFakeConn()
	conn.reply = &msgs.StatusReply{Stopped: true, Cause: "SensorError(Cliff)", DistanceIntervalMs: 20}
	s := NewSession(testRef, conn)
	defer s.Close()

	st, err := s.Status()
	require.NoError(t, err)
	require.Equal(t, &msgs.StatusQuery{}, conn.sent[0])
	require.True(t, s.Stopped())
	require.Equal(t, "EMERGENCY STOP (SensorError(Cliff)), distance polling every 20ms", FormatStatus(st))
	require.Equal(t, "running, distance polling off", FormatStatus(&msgs.StatusReply{}))

	conn.reply = &msgs.CommandOK{}
	_, err = s.Status()
	require.Error(t, err)
}

func TestSessionDoErrors(t *testing.T) {
	conn := newFakeConn()
	conn.err = errors.New("rejected")
	s := NewSession(testRef, conn)

	_, err := s.Do(&msgs.EmergencyClear{})
	require.EqualError(t, err, "rejected")

	conn.err = nil
	s.Close()
	<-s.Done()
	_, err = s.Do(&msgs.EmergencyClear{})
	require.Equal(t, context.Canceled, err)
}

func TestSessionEventsKeepLatest(t *testing.T) {
	conn := newFakeConn()
	s := NewSession(testRef, conn)
	defer s.Close()

	total := EventsBacklog + 10
	for i := 0; i < total; i++ {
		conn.events <- &msgs.TelemetryEvent{Mm: uint32(i)}
	}
	conn.events <- &msgs.ReflexStatusEvent{}

	var seen []uint32
	for done := false; !done; {
		select {
		case ev := <-s.Events():
			if m, ok := ev.(*msgs.TelemetryEvent); ok {
				seen = append(seen, m.Mm)
			} else {
				done = true
			}
		case <-time.After(time.Second):
			t.Fatal("events not forwarded")
		}
	}
	require.NotEmpty(t, seen)
	require.True(t, seen[0] >= 10, "oldest events dropped")
	require.Equal(t, uint32(total-1), seen[len(seen)-1])
	for n := 1; n < len(seen); n++ {
		require.Equal(t, seen[n-1]+1, seen[n])
	}
}

func TestFormatEvent(t *testing.T) {
	require.Equal(t, "distance front 11mm", FormatEvent(&msgs.TelemetryEvent{Mm: 11}))
	require.Equal(t, "distance back 5mm", FormatEvent(&msgs.TelemetryEvent{Position: msgs.PositionBack, Mm: 5}))
	require.Equal(t, "EMERGENCY STOP: SensorError(Cliff)", FormatEvent(&msgs.ReflexStatusEvent{Stopped: true, Cause: "SensorError(Cliff)"}))
	require.Equal(t, "emergency stop cleared", FormatEvent(&msgs.ReflexStatusEvent{}))
	require.Equal(t, "critical error: bus fault", FormatEvent(&msgs.SystemErrorEvent{Severity: msgs.SeverityCritical, Message: "bus fault"}))
}
