package sh

import (
	"context"
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

var (
	// DiscoverCmd lists reachable rovers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			list, err := s.Discover(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if list == nil {
				list = []l1.ControllerInfo{}
			}
			if s.OutputJSON {
				s.Print(c, list, "")
				return
			}
			if len(list) == 0 {
				c.Println("No rovers found")
			}
			for _, info := range list {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a rover and shows its status.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref l1.ControllerRef
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else {
				var filter func(l1.ControllerInfo) bool
				if len(c.Args) == 1 {
					filter = func(info l1.ControllerInfo) bool { return info.Ref.Type == c.Args[0] }
				}
				info, err := s.Choose(filter)
				if err != nil {
					c.Err(err)
					return
				}
				ref = info.Ref
			}
			status, err := s.Connect(ref)
			if s.Session == nil {
				c.Err(err)
				return
			}
			s.printStatus(status, err)
		},
	}

	// DisconnectCmd closes the session.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StatusCmd shows the emergency stop and polling state.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			status, err := s.Session.Status()
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, status, FormatStatus(status))
		}),
	}

	// WatchCmd prints events from the rover for a while.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[DURATION]",
		Func: MustBeConnected(func(c *ishell.Context) {
			dur := 5 * time.Second
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid DURATION: %v", err))
					return
				}
				dur = d
			}
			s := ShellFrom(c)
			timeout := time.After(dur)
			for {
				select {
				case ev := <-s.Session.Events():
					s.Print(c, ev, FormatEvent(ev))
				case <-timeout:
					return
				case <-s.Session.Done():
					return
				}
			}
		}),
	}
)

// FormatEvent describes a rover event for humans.
func FormatEvent(ev msgs.Message) string {
	switch m := ev.(type) {
	case *msgs.TelemetryEvent:
		pos := "front"
		if m.Position == msgs.PositionBack {
			pos = "back"
		}
		return fmt.Sprintf("distance %s %dmm", pos, m.Mm)
	case *msgs.ReflexStatusEvent:
		if m.Stopped {
			return "EMERGENCY STOP: " + m.Cause
		}
		return "emergency stop cleared"
	case *msgs.SystemErrorEvent:
		severity := "recoverable"
		if m.Severity == msgs.SeverityCritical {
			severity = "critical"
		}
		return fmt.Sprintf("%s error: %s", severity, m.Message)
	}
	return FormatMsg(ev)
}
