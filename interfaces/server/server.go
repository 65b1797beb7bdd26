// Package server is the HTTP-facing contract the transport layer needs
// from the composition root, grounded on the teacher's
// interfaces/server/server.go (Context/HandleRelayInfo/Storage/AddEvent),
// narrowed to the two HTTP entry points spec.md's Non-goals still require a
// running relay to expose: the WebSocket upgrade and the NIP-11 document.
package server

import "net/http"

// I is implemented by the composition root (`app/relay.Relay`).
type I interface {
	// ServeWS upgrades r and runs a Relay Session over the connection until
	// it closes.
	ServeWS(w http.ResponseWriter, r *http.Request)
	// RelayInfo writes the NIP-11 relay information document.
	RelayInfo(w http.ResponseWriter, r *http.Request)
}
