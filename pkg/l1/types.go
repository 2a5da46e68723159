// Package l1 defines the host link between the rover firmware (the L1
// controller) and host side tools.
package l1

import (
	"context"

	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// Registrar registers a robot (L1 controller) to a registry.
type Registrar interface {
	// SendEvent sends an event to the host.
	SendEvent(context.Context, msgs.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() msgs.Message
	Done(msgs.Message) error
}

// CommandHandler processes commands received by a Registrar.
// Every command must be completed with Done.
type CommandHandler interface {
	HandleCommand(context.Context, Command)
}

// CommandHandlerFunc is the func form of CommandHandler.
type CommandHandlerFunc func(context.Context, Command)

// HandleCommand implements CommandHandler.
func (f CommandHandlerFunc) HandleCommand(ctx context.Context, cmd Command) {
	f(ctx, cmd)
}

// CommandReceiver is a Registrar which accepts commands.
type CommandReceiver interface {
	SetCommandHandler(CommandHandler)
}

// ControllerRef is a reference to an L1 controller.
type ControllerRef struct {
	// Type is controller type (robot type).
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta provides metadata for L1 controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of an L1 controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by host tools to connect to an L1 controller.
type Connector interface {
	// Discover enumerates registered controllers.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified controller.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand executes a command.
	DoCommand(msgs.Message) CommandFuture
	// Events delivers events sent by the controller.
	Events() <-chan msgs.Message
}

// Result represents result of a command.
type Result struct {
	Msg msgs.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
