package remote

import (
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ezrec/m65/cpu"
	"github.com/ezrec/m65/io"
)

// WS_PATH is the default WebSocket endpoint.
const WS_PATH = "/m65"

var wsUpgrader = websocket.Upgrader{} // use default options

// Server creates a Session for every client.
type Server struct {
	Verbose bool       // If set, sessions log every command.
	Quirks  cpu.Quirks // Quirks of every session CPU.
	Images  []io.Image // Images loaded into every session CPU.
}

var _ http.Handler = (*Server)(nil)

// ServeConn serves a single client until it disconnects.
func (srv *Server) ServeConn(conn Conn) (err error) {
	sess := NewSession(conn, srv.Quirks, srv.Images...)
	sess.Verbose = srv.Verbose
	return sess.Serve()
}

// Serve accepts stream connections, and serves each one on its own goroutine.
// It returns when the listener is closed.
func (srv *Server) Serve(listener net.Listener) (err error) {
	log.Printf("Started TCP server at %s", listener.Addr())
	for {
		var conn net.Conn
		conn, err = listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			log.Printf("Failed to accept to connection -- %v", err)
			continue
		}
		log.Printf("New client connection from %s", conn.RemoteAddr())
		go srv.ServeConn(NewTCPConn(conn))
	}
}

// ServeHTTP upgrades a request to a WebSocket, and serves it.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("New client connection from %s", r.RemoteAddr)
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("websocket upgrade error:", err)
		return
	}

	srv.ServeConn(NewWSConn(conn))
}

// ListenAndServeWS serves WebSocket sessions at WS_PATH.
func (srv *Server) ListenAndServeWS(addr string) error {
	mux := http.NewServeMux()
	mux.Handle(WS_PATH, srv)
	log.Printf("Started HTTP(WebSocket) server at %s%s", addr, WS_PATH)
	return http.ListenAndServe(addr, mux)
}
