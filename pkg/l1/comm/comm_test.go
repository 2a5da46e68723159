package comm_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/l1/comm/stream"
	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

func ledOnly(ctx context.Context, cmd l1.Command) {
	if _, ok := cmd.Msg().(*msgs.LedSet); ok {
		cmd.Done(msgs.NewCommandOK())
		return
	}
	comm.UnsupportedCommands.HandleCommand(ctx, cmd)
}

func result(t *testing.T, f l1.CommandFuture) l1.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("command timeout")
	}
	return l1.Result{}
}

func connect(reg fx.LoopAdder, host net.Conn, expiration time.Duration) (*comm.ControllerConn, func()) {
	var conn comm.ControllerConn
	conn.Init(stream.New(host))
	if expiration > 0 {
		conn.Expiration = expiration
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fx.NewLoop().Add(reg, &conn).Run(ctx)
		close(done)
	}()
	return &conn, func() {
		cancel()
		<-done
	}
}

func TestRegistrarCommands(t *testing.T) {
	a, b := net.Pipe()
	var reg comm.Registrar
	reg.Init(stream.New(a))
	reg.SetCommandHandler(l1.CommandHandlerFunc(ledOnly))
	conn, stop := connect(&reg, b, 0)
	defer stop()

	res := result(t, conn.DoCommand(&msgs.LedSet{Mode: msgs.LedModeOn}))
	require.NoError(t, res.Err)
	require.IsType(t, &msgs.CommandOK{}, res.Msg)

	res = result(t, conn.DoCommand(&msgs.SensorSubscribe{Sensor: msgs.SensorCliff}))
	require.Error(t, res.Err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())

	require.NoError(t, reg.SendEvent(context.Background(), &msgs.TelemetryEvent{Mm: 250}))
	select {
	case ev := <-conn.Events():
		require.Equal(t, &msgs.TelemetryEvent{Mm: 250}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRegistrarDefaultHandler(t *testing.T) {
	a, b := net.Pipe()
	var reg comm.Registrar
	reg.Init(stream.New(a))
	conn, stop := connect(&reg, b, 0)
	defer stop()

	res := result(t, conn.DoCommand(&msgs.LedSet{}))
	require.Error(t, res.Err)
}

func TestCommandExpiration(t *testing.T) {
	a, b := net.Pipe()
	var reg comm.Registrar
	reg.Init(stream.New(a))
	reg.SetCommandHandler(l1.CommandHandlerFunc(func(context.Context, l1.Command) {}))
	conn, stop := connect(&reg, b, 40*time.Millisecond)
	defer stop()

	res := result(t, conn.DoCommand(&msgs.EmergencyClear{}))
	require.Equal(t, context.DeadlineExceeded, res.Err)
}

func TestPeerRegistrar(t *testing.T) {
	var reg comm.PeerRegistrar
	reg.SetCommandHandler(l1.CommandHandlerFunc(ledOnly))
	require.False(t, reg.Connected())
	require.NoError(t, reg.SendEvent(context.Background(), &msgs.TelemetryEvent{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := net.Pipe()
	served := make(chan error, 1)
	go func() { served <- reg.Serve(ctx, stream.New(a)) }()

	var conn comm.ControllerConn
	conn.Init(stream.New(b))
	go fx.NewLoop().Add(&conn).Run(ctx)

	res := result(t, conn.DoCommand(&msgs.LedSet{Mode: msgs.LedModeBlink, IntervalMs: 50}))
	require.NoError(t, res.Err)
	require.True(t, reg.Connected())

	// a new peer replaces the current one
	c, d := net.Pipe()
	go reg.Serve(ctx, stream.New(c))
	select {
	case err := <-served:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("previous peer not closed")
	}
	var conn2 comm.ControllerConn
	conn2.Init(stream.New(d))
	go fx.NewLoop().Add(&conn2).Run(ctx)
	res = result(t, conn2.DoCommand(&msgs.LedSet{}))
	require.NoError(t, res.Err)
}

func TestPipeDropsMalformedPackets(t *testing.T) {
	a, b := net.Pipe()
	var reg comm.Registrar
	reg.Init(stream.New(a))
	reg.SetCommandHandler(l1.CommandHandlerFunc(ledOnly))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fx.NewLoop().Add(&reg).Run(ctx)

	host := stream.New(b)
	require.NoError(t, host.WritePacket([]byte{0xff, 0xff, 0xff}))

	typed, err := msgs.TypedFrom(&msgs.LedSet{Mode: msgs.LedModeOn})
	require.NoError(t, err)
	typed.Sequence = 7
	pkt, err := typed.Encode()
	require.NoError(t, err)
	require.NoError(t, host.WritePacket(pkt))

	pkt, err = host.ReadPacket()
	require.NoError(t, err)
	reply, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, uint32(7), reply.Sequence)
	msg, err := reply.Decode()
	require.NoError(t, err)
	require.IsType(t, &msgs.CommandOK{}, msg)
}
