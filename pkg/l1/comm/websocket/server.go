package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1/comm"
)

// DefaultPath is the HTTP path of the host link endpoint.
const DefaultPath = "/link"

// Server accepts host connections over websocket and serves them with
// the PeerRegistrar.
type Server struct {
	Addr      string
	Path      string
	Registrar *comm.PeerRegistrar
}

// NewServer creates a Server.
func NewServer(addr, path string, reg *comm.PeerRegistrar) *Server {
	if path == "" {
		path = DefaultPath
	}
	return &Server{Addr: addr, Path: path, Registrar: reg}
}

// Name implements Named.
func (s *Server) Name() string {
	return "ws:" + s.Addr
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

// Handler returns the websocket handler for the host link.
func (s *Server) Handler(ctx context.Context) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		glog.Infof("host connected from %s", conn.Request().RemoteAddr)
		err := s.Registrar.Serve(ctx, New(conn))
		glog.Infof("host %s disconnected: %v", conn.Request().RemoteAddr, err)
	})
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler(ctx))
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("host link listening on ws://%s%s", s.Addr, s.Path)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}

// Dial connects to a Server at a ws:// URL.
func Dial(url string) (comm.PacketReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return New(conn), nil
}
