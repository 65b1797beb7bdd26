// Package broadcast implements the Broadcaster of spec.md §4.4: a single
// logical queue that serializes event fan-out to the connections the
// Subscription Index names as candidates, without ever blocking the
// ingestion path on a slow or dead subscriber.
package broadcast

import (
	"beacon.dev/encoders/event"
	"beacon.dev/subscription"
	"beacon.dev/utils/log"
)

// Mailbox is the per-connection delivery target a session registers.
// Deliver must never block; a full or dead mailbox silently drops.
type Mailbox interface {
	Deliver(ev *event.E)
}

// job is one broadcast request queued for the dispatcher goroutine.
type job struct {
	ev     *event.E
	origin subscription.ConnId
}

// B is the Broadcaster: one dispatcher goroutine draining a buffered
// channel. Broadcast() never blocks the caller: a push onto a full queue
// drops the event, and per-mailbox delivery is non-blocking, so ingestion
// is never held up by a slow subscriber.
type B struct {
	index    *subscription.Index
	mailbox  func(conn subscription.ConnId) Mailbox
	jobs     chan job
	done     chan struct{}
}

// New starts a Broadcaster bound to idx, using lookup to resolve a
// candidate ConnId to its Mailbox (the session registry lives in the
// app/relay composition root, not here, to keep this package free of
// session-layer concerns).
func New(idx *subscription.Index, lookup func(conn subscription.ConnId) Mailbox, queueLen int) *B {
	if queueLen <= 0 {
		queueLen = 4096
	}
	b := &B{
		index:   idx,
		mailbox: lookup,
		jobs:    make(chan job, queueLen),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Broadcast implements spec.md §4.4 broadcast(event, origin_conn_id): it
// never blocks. The event is queued for the dispatcher, or, when the
// internal queue is full, dropped with a warning.
func (b *B) Broadcast(ev *event.E, origin subscription.ConnId) {
	select {
	case b.jobs <- job{ev: ev, origin: origin}:
	default:
		log.W.F("broadcast queue full, dropping event %s", ev.IdString())
	}
}

// Stop halts the dispatcher goroutine. Any jobs still queued are dropped.
func (b *B) Stop() { close(b.done) }

func (b *B) run() {
	for {
		select {
		case <-b.done:
			return
		case j := <-b.jobs:
			b.dispatch(j)
		}
	}
}

func (b *B) dispatch(j job) {
	for _, c := range b.index.Candidates(j.ev.PubkeyString()) {
		if c == j.origin {
			continue
		}
		mb := b.mailbox(c)
		if mb == nil {
			continue
		}
		mb.Deliver(j.ev)
	}
}
