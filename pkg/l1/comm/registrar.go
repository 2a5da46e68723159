package comm

import (
	"context"
	"sync"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

// UnsupportedCommands replies every command as unsupported. It is the
// handler of a Registrar until SetCommandHandler is called.
var UnsupportedCommands = l1.CommandHandlerFunc(func(_ context.Context, cmd l1.Command) {
	cmd.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
})

// Registrar implements Registrar over a single Pipe.
type Registrar struct {
	pipe    Pipe
	handler handlerRef
}

// Init initializes the Registrar with defaults.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = dispatchCommands(&r.pipe, &r.handler)
}

// SetCommandHandler implements CommandReceiver.
func (r *Registrar) SetCommandHandler(h l1.CommandHandler) {
	r.handler.set(h)
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg msgs.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// PeerRegistrar implements Registrar for links where the host dials in,
// e.g. a websocket or TCP listener. One peer is served at a time; a new
// peer replaces the previous one. Events sent while no peer is
// connected are dropped.
type PeerRegistrar struct {
	handler handlerRef
	lock    sync.Mutex
	peer    *Pipe
}

// SetCommandHandler implements CommandReceiver.
func (r *PeerRegistrar) SetCommandHandler(h l1.CommandHandler) {
	r.handler.set(h)
}

// Serve runs the pipe with a connected peer until it disconnects, a newer
// peer replaces it, or ctx is done.
func (r *PeerRegistrar) Serve(ctx context.Context, conn PacketConn) error {
	pipe := NewPipe(conn)
	pipe.Handler = dispatchCommands(pipe, &r.handler)
	r.lock.Lock()
	prev := r.peer
	r.peer = pipe
	r.lock.Unlock()
	if prev != nil {
		prev.Close()
	}
	defer func() {
		r.lock.Lock()
		if r.peer == pipe {
			r.peer = nil
		}
		r.lock.Unlock()
	}()
	return pipe.Run(ctx)
}

// Connected tells whether a peer is connected.
func (r *PeerRegistrar) Connected() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.peer != nil
}

// SendEvent implements Registrar.
func (r *PeerRegistrar) SendEvent(ctx context.Context, msg msgs.Message) error {
	r.lock.Lock()
	peer := r.peer
	r.lock.Unlock()
	if peer == nil {
		return nil
	}
	return peer.SendEventMsg(msg)
}

// RegistrarMux registers L1 controller with multiple Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg msgs.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// SetCommandHandler implements CommandReceiver.
func (r *RegistrarMux) SetCommandHandler(h l1.CommandHandler) {
	for _, reg := range r.Registrars {
		if recv, ok := reg.(l1.CommandReceiver); ok {
			recv.SetCommandHandler(h)
		}
	}
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

type handlerRef struct {
	lock    sync.RWMutex
	handler l1.CommandHandler
}

func (r *handlerRef) set(h l1.CommandHandler) {
	r.lock.Lock()
	r.handler = h
	r.lock.Unlock()
}

func (r *handlerRef) get() l1.CommandHandler {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.handler == nil {
		return UnsupportedCommands
	}
	return r.handler
}

// dispatchCommands hands commands to the handler; events from the host
// are ignored.
func dispatchCommands(pipe *Pipe, ref *handlerRef) msgs.TypedMsgHandler {
	return msgs.HandleTypedMsgFunc(func(ctx context.Context, msg msgs.Message, typed *msgs.Typed) error {
		if typed.IsCommand() {
			ref.get().HandleCommand(ctx, &command{seq: typed.Sequence, msg: msg, pipe: pipe})
		}
		return nil
	})
}

type command struct {
	seq  uint32
	msg  msgs.Message
	pipe *Pipe
}

func (c *command) Msg() msgs.Message {
	return c.msg
}

func (c *command) Done(msg msgs.Message) error {
	return c.pipe.SendCommandMsg(msg, c.seq)
}
