// Package sh is the interactive rover console.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"sort"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rover.go/pkg/l1"
	env "github.com/robotalks/rover.go/pkg/l1/env/connector"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers commands; call it from init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// Shell is the rover console.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// New creates a Shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// WithAutoConnect connects the configured rover on Run.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requiring a session. The prompt is
// refreshed afterwards, as the command may have changed the rover state.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
		s.Shell.SetPrompt(s.Session.Prompt())
	}
}

// Print prints a value as JSON or with the provided text.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// FormatMsg prints a message as "TypeName {fields}".
func FormatMsg(msg msgs.Message) string {
	return fmt.Sprintf("%s {%s}", reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
}

// FormatInfo describes a discovered rover.
func FormatInfo(info l1.ControllerInfo) string {
	if info.Meta.Description == "" {
		return info.Ref.Name()
	}
	return info.Ref.Name() + ": " + info.Meta.Description
}

// DoCommand runs a command in the current session and prints the reply.
func DoCommand(c *ishell.Context, msg msgs.Message) error {
	s := ShellFrom(c)
	if s.Session == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	reply, err := s.Session.Do(msg)
	if err != nil {
		c.Err(err)
		return err
	}
	text := FormatMsg(reply)
	if _, ok := reply.(*msgs.CommandOK); ok {
		text = "OK"
	}
	s.Print(c, reply, text)
	return nil
}

// Discover lists the reachable rovers matching filter, sorted by name.
func (s *Shell) Discover(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := contextWithTimeout(5 * time.Second)
	defer cancel()
	found, err := connector.Discover(ctx)
	if err != nil {
		return nil, err
	}
	list := found[:0]
	for _, info := range found {
		if filter == nil || filter(info) {
			list = append(list, info)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Ref.Name() < list[j].Ref.Name() })
	return list, nil
}

// Choose discovers rovers and picks one, asking when several are found.
func (s *Shell) Choose(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	list, err := s.Discover(filter)
	switch {
	case err != nil:
		return nil, err
	case len(list) == 0:
		return nil, fmt.Errorf("no rover discovered")
	case len(list) == 1:
		return &list[0], nil
	case !s.Interactive:
		return nil, fmt.Errorf("%d rovers discovered, specify one", len(list))
	}
	items := make([]string, len(list))
	for n, info := range list {
		items[n] = FormatInfo(info)
	}
	return &list[s.Shell.MultiChoice(items, "Which rover?")], nil
}

// Connect opens a session with ref and reports the rover status. A rover
// which does not answer the status query is still connected.
func (s *Shell) Connect(ref l1.ControllerRef) (*msgs.StatusReply, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := contextWithTimeout(5 * time.Second)
	defer cancel()
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.Disconnect()
	s.Session = NewSession(ref, conn)
	status, err := s.Session.Status()
	s.Shell.SetPrompt(s.Session.Prompt())
	return status, err
}

// Disconnect closes the current session.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
	}
	s.Shell.SetPrompt(unconnectedPrompt)
}

// Run runs the shell: the command in args, or the interactive loop.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		status, err := s.Connect(s.Config.Ref)
		if s.Session == nil {
			log.Fatalf("connect %s failed: %v", s.Config.Ref.Name(), err)
		}
		if s.Interactive {
			s.printStatus(status, err)
		}
	}
	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		log.Fatalln("command expected")
	}
}

func (s *Shell) printStatus(status *msgs.StatusReply, err error) {
	if err != nil {
		s.Shell.Printf("%s: status unavailable: %v\n", s.Session.Ref.Name(), err)
		return
	}
	s.Shell.Printf("%s: %s\n", s.Session.Ref.Name(), FormatStatus(status))
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
