// Package rover exposes the rover commands in the shell.
package rover

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rover.go/pkg/cli/sh"
	"github.com/robotalks/rover.go/pkg/hostlink"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
	"github.com/robotalks/rover.go/pkg/protocol"
)

// ParseLed builds a LedSet from on|off|blink MS.
func ParseLed(args []string) (*msgs.LedSet, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("MODE expected")
	}
	switch args[0] {
	case "on":
		return &msgs.LedSet{Mode: msgs.LedModeOn}, nil
	case "off":
		return &msgs.LedSet{Mode: msgs.LedModeOff}, nil
	case "blink":
		if len(args) < 2 {
			return nil, fmt.Errorf("blink MS expected")
		}
		ms, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil || ms == 0 {
			return nil, fmt.Errorf("invalid MS %q", args[1])
		}
		return &msgs.LedSet{Mode: msgs.LedModeBlink, IntervalMs: ms}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", args[0])
}

// ParseMove builds a MoveSet from LEFT RIGHT in [-1, 1].
func ParseMove(args []string) (*msgs.MoveSet, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("LEFT RIGHT expected")
	}
	var vals [2]float32
	for n := range vals {
		v, err := strconv.ParseFloat(args[n], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid speed %q", args[n])
		}
		vals[n] = float32(v)
	}
	return &msgs.MoveSet{Left: vals[0], Right: vals[1]}, nil
}

// ParseSubscribe builds a SensorSubscribe from KIND MS.
func ParseSubscribe(args []string) (*msgs.SensorSubscribe, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("KIND MS expected")
	}
	kind, err := protocol.ParseSensorKind(args[0])
	if err != nil {
		return nil, err
	}
	msg := msgs.SensorSubscribe{Sensor: hostlink.SensorKindMsg(kind)}
	ms, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MS %q", args[1])
	}
	msg.PollIntervalMs = ms
	return &msg, nil
}

func parsed[T msgs.Message](parse func([]string) (T, error)) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		msg, err := parse(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.DoCommand(c, msg)
	})
}

var (
	// LedCmd sets the LED.
	LedCmd = ishell.Cmd{
		Name: "led",
		Help: "on|off|blink MS",
		Func: parsed(ParseLed),
	}

	// MoveCmd sets wheel speeds.
	MoveCmd = ishell.Cmd{
		Name:    "move",
		Aliases: []string{"m"},
		Help:    "LEFT RIGHT",
		Func:    parsed(ParseMove),
	}

	// StopCmd sets both wheels to zero.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.MoveSet{})
		}),
	}

	// SubscribeCmd changes the poll interval of a sensor kind.
	SubscribeCmd = ishell.Cmd{
		Name:    "subscribe",
		Aliases: []string{"sub"},
		Help:    "distance|cliff|imu MS",
		Func:    parsed(ParseSubscribe),
	}

	// ClearCmd releases a latched emergency stop.
	ClearCmd = ishell.Cmd{
		Name: "estop.clear",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.EmergencyClear{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&LedCmd,
		&MoveCmd,
		&StopCmd,
		&SubscribeCmd,
		&ClearCmd,
	)
}
