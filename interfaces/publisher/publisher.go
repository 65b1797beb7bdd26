// Package publisher names the fan-out collaborator shapes of spec.md §4.4's
// Broadcaster: session.S satisfies I and broadcast.B satisfies Broadcaster.
// No package in this module imports it; session, broadcast and app/relay
// refer to each other's concrete types and to broadcast.Mailbox. Grounded on the teacher's interfaces/publisher/publisher.go (Deliver/
// Receive over typer.T), trimmed to the one method this relay's mailbox
// model actually needs.
package publisher

import (
	"beacon.dev/encoders/event"
	"beacon.dev/subscription"
)

// I is the per-connection delivery target a Relay Session implements.
// Deliver must never block.
type I interface {
	Deliver(ev *event.E)
}

// Broadcaster is the single logical queue a Relay Session hands accepted
// events to.
type Broadcaster interface {
	Broadcast(ev *event.E, origin subscription.ConnId)
}
