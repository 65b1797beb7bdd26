// Package server is the HTTP transport around a Relay Session: a handler
// that passes WebSocket upgrades at "/" to the Relay Session machinery and
// everything else to a chi router carrying the NIP-11 relay information
// document via a huma-registered operation, wrapped in rs/cors. All of this is explicitly out of spec.md §1's core scope — the
// spec assumes a transport exists around the Relay Session — but a
// runnable relay needs it. Grounded on the teacher's app/realy.Server
// (ServeHTTP/Start/Shutdown) and server/handle-relayinfo.go.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	iface "beacon.dev/interfaces/relay"
	srviface "beacon.dev/interfaces/server"
	"beacon.dev/server/relayinfo"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/log"
)

// relayInfoOutput is the huma response envelope for the GET "/" operation.
type relayInfoOutput struct {
	Body *relayinfo.T
}

// Server is the HTTP entry point: it wires the chi router and huma API and
// delegates the protocol-level work to the relay.I/server.I composition
// root.
type Server struct {
	relay  iface.I
	ws     srviface.I
	router *chi.Mux
	http   *http.Server
}

// New builds a Server around a composition root implementing both
// interfaces/relay.I and interfaces/server.I (app/relay.Relay does both).
func New(rl iface.I, ws srviface.I, version string) *Server {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig(rl.Name(), version))
	huma.Register(
		api, huma.Operation{
			OperationID: "get-relay-info",
			Method:      http.MethodGet,
			Path:        "/",
			Summary:     "NIP-11 relay information document",
		}, func(ctx context.Context, _ *struct{}) (*relayInfoOutput, error) {
			doc := relayinfo.Build(rl.Name(), version, rl.Policy().Get())
			return &relayInfoOutput{Body: doc}, nil
		},
	)
	s := &Server{relay: rl, ws: ws, router: router}
	return s
}

// ServeHTTP implements http.Handler. A WebSocket upgrade request at "/" is
// handed to the Relay Session machinery directly; everything else
// (including the NIP-11 document) goes through the chi/huma router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" && r.Header.Get("Upgrade") == "websocket" {
		s.ws.ServeWS(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

// Start runs the HTTP server at host:port until Shutdown is called.
func (s *Server) Start(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	log.I.F("starting relay listener at %s", addr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.http = &http.Server{
		Handler:           cors.Default().Handler(s),
		Addr:              addr,
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	if err = s.http.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

// Shutdown stops accepting new connections, matching the teacher's
// `Server.Shutdown`. The caller is responsible for tearing down the
// composition root (store, broadcaster) via its own Shutdown.
func (s *Server) Shutdown(ctx context.Context) {
	if s.http == nil {
		return
	}
	chk.E(s.http.Shutdown(ctx))
}
