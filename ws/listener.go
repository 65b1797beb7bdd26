// Package ws wraps a fasthttp/websocket connection with the bookkeeping
// the relay session needs: a write mutex (websocket connections are not
// safe for concurrent writers) and the client's real remote address.
// Grounded on the teacher's protocol/ws.Listener.
package ws

import (
	"net/http"
	"strings"
	"sync"

	"github.com/fasthttp/websocket"
	"go.uber.org/atomic"
)

// Listener is a single relay-side websocket connection.
type Listener struct {
	mutex   sync.Mutex
	Conn    *websocket.Conn
	Request *http.Request
	remote  atomic.String
}

// NewListener wraps an already-upgraded connection.
func NewListener(conn *websocket.Conn, req *http.Request) (l *Listener) {
	l = &Listener{Conn: conn, Request: req}
	l.setRemoteFromReq(req)
	return
}

func (l *Listener) setRemoteFromReq(r *http.Request) {
	rr := r.Header.Get("X-Forwarded-For")
	if rr == "" {
		rr = r.Header.Get("X-Real-IP")
	}
	if rr == "" && l.Conn != nil && l.Conn.NetConn() != nil {
		rr = l.Conn.NetConn().RemoteAddr().String()
	}
	l.remote.Store(rr)
}

// Write sends a text frame. Connections close cleanly ("close sent") are
// reported as a successful write of the full payload, matching the
// teacher's tolerance for that specific race between our close and the
// peer's.
func (l *Listener) Write(p []byte) (n int, err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	err = l.Conn.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		n = len(p)
		if strings.Contains(err.Error(), "close sent") {
			_ = l.Conn.Close()
			return n, nil
		}
		return 0, err
	}
	return len(p), nil
}

// WriteJSON is a convenience wrapper for non-hot-path writes (e.g. HTTP
// upgrade failures before the protocol takes over).
func (l *Listener) WriteJSON(v any) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.Conn.WriteJSON(v)
}

// WriteMessage writes a raw websocket frame of the given type.
func (l *Listener) WriteMessage(t int, b []byte) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.Conn.WriteMessage(t, b)
}

// WritePing sends a ping control frame, for the session's keep-alive timer.
func (l *Listener) WritePing() error { return l.WriteMessage(websocket.PingMessage, nil) }

// RealRemote returns the client's observed remote address.
func (l *Listener) RealRemote() string { return l.remote.Load() }

// Req returns the originating HTTP upgrade request.
func (l *Listener) Req() *http.Request { return l.Request }

// Close closes the underlying connection.
func (l *Listener) Close() error { return l.Conn.Close() }
