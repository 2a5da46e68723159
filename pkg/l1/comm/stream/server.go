package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1/comm"
)

// Server accepts host connections over TCP and serves them with the
// PeerRegistrar.
type Server struct {
	Addr      string
	Registrar *comm.PeerRegistrar
}

// NewServer creates a Server.
func NewServer(addr string, reg *comm.PeerRegistrar) *Server {
	return &Server{Addr: addr, Registrar: reg}
}

// Name implements Named.
func (s *Server) Name() string {
	return "tcp:" + s.Addr
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("host link listening on tcp://%s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("host connected from %s", conn.RemoteAddr())
			go func() {
				err := s.Registrar.Serve(ctx, New(conn))
				glog.Infof("host %s disconnected: %v", conn.RemoteAddr(), err)
			}()
		}
	})
}

// Dial connects to a Server.
func Dial(ctx context.Context, addr string) (comm.PacketReadWriter, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
