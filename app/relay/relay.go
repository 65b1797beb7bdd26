// Package relay is the composition root: it wires the Store, Subscription
// Index, Broadcaster, and runtime Policy together behind the
// interfaces/relay.I and interfaces/server.I shapes, and owns the WebSocket
// upgrade and NIP-11 information endpoints. Grounded on the teacher's
// app/realy package (Server/ServerParams/handleWebsocket/handleRelayinfo),
// restructured around this relay's per-connection actor Sessions rather
// than the teacher's shared socketapi.A.
package relay

import (
	"encoding/json"
	"net/http"

	"github.com/fasthttp/websocket"

	"beacon.dev/app/config"
	"beacon.dev/broadcast"
	"beacon.dev/interfaces/store"
	"beacon.dev/server/relayinfo"
	"beacon.dev/session"
	storeimpl "beacon.dev/store"
	"beacon.dev/subscription"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/context"
	"beacon.dev/utils/log"
	"beacon.dev/ws"
)

// version is this relay's software version string, reported in NIP-11.
const version = "0.1.0"

// Relay composes the core components into the shape `server` drives.
type Relay struct {
	Ctx    context.T
	Cancel context.F

	cfg    *config.C
	store  *storeimpl.D
	index  *subscription.Index
	bcast  *broadcast.B
	policy *config.Store

	upgrader websocket.Upgrader
}

// New opens the store and wires the index and broadcaster around it.
// Grounded on the teacher's `database.New` + `app.Relay` construction in
// main.go.
func New(ctx context.T, cancel context.F, cfg *config.C) (r *Relay, err error) {
	r = &Relay{Ctx: ctx, Cancel: cancel, cfg: cfg}
	if r.store, err = storeimpl.New(ctx, cancel, cfg.DataDir); chk.E(err) {
		return nil, err
	}
	r.index = subscription.New()
	r.policy = config.NewStore(config.FromConfig(cfg))
	r.bcast = broadcast.New(r.index, mailboxOf, 0)
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	return r, nil
}

// mailboxOf resolves a Subscription Index ConnId to its Mailbox. Sessions
// register themselves (their own *session.S pointer) as their ConnId, so a
// type assertion is the whole lookup — no separate session registry is
// needed, matching spec.md §9's "per-connection actor" framing.
func mailboxOf(c subscription.ConnId) broadcast.Mailbox {
	if mb, ok := c.(broadcast.Mailbox); ok {
		return mb
	}
	return nil
}

// Name implements interfaces/relay.I.
func (r *Relay) Name() string { return r.cfg.AppName }

// Init implements interfaces/relay.I. Nothing to warm up today; kept as the
// composition root's extension point, matching the teacher's `Relay.Init`.
func (r *Relay) Init() error { return nil }

// Storage implements interfaces/relay.I.
func (r *Relay) Storage() store.I { return r.store }

// Index implements interfaces/relay.I.
func (r *Relay) Index() *subscription.Index { return r.index }

// Broadcaster implements interfaces/relay.I.
func (r *Relay) Broadcaster() *broadcast.B { return r.bcast }

// Policy implements interfaces/relay.I.
func (r *Relay) Policy() *config.Store { return r.policy }

// ServeWS implements interfaces/server.I: upgrade the request and run a
// Relay Session over it until the connection closes.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if chk.E(err) {
		return
	}
	listener := ws.NewListener(conn, req)
	log.I.F("session opened: %s", listener.RealRemote())
	sess := session.New(listener, r.store, r.index, r.bcast, r.policy)
	sess.Run()
	log.I.F("session closed: %s", listener.RealRemote())
}

// RelayInfo implements interfaces/server.I by writing the NIP-11 document as
// plain JSON. `server.Server` does not route requests here; it serves the
// document through its own huma-registered operation at "/".
func (r *Relay) RelayInfo(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	doc := relayinfo.Build(r.cfg.AppName, version, r.policy.Get())
	if err := json.NewEncoder(w).Encode(doc); chk.E(err) {
	}
}

// Shutdown releases the store and stops the broadcaster, matching the
// teacher's `Server.Shutdown`.
func (r *Relay) Shutdown() {
	log.I.Ln("shutting down relay")
	r.Cancel()
	r.bcast.Stop()
	chk.E(r.store.Close())
}
