// Package session implements the Relay Session of spec.md §4.5: the
// per-connection actor that owns the wire protocol state machine, the
// session's own subscription table, and its authentication challenge.
// Grounded on the teacher's protocol/socketapi package (handleEvent.go,
// handleReq.go, handleClose.go, handleAuth.go, handleMessage.go,
// challenge.go, socketapi.go's read loop and ping ticker), restructured as
// a single actor type per spec.md §5's "per-connection actor with a
// mailbox" model rather than the teacher's free functions over a shared *A.
package session

import (
	"sync"
	"time"

	"beacon.dev/app/config"
	"beacon.dev/broadcast"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/filter"
	"beacon.dev/encoders/hex"
	"beacon.dev/store"
	"beacon.dev/subscription"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/log"
	"beacon.dev/ws"
)

// AuthState is the Unauth/Authed half of spec.md §4.5's state diagram.
type AuthState int32

const (
	Unauth AuthState = iota
	Authed
)

// firstPingDelay and pingInterval implement the "every 30s, then every 50s
// thereafter" keep-alive cadence of spec.md §4.5.
const (
	firstPingDelay = 30 * time.Second
	pingInterval   = 50 * time.Second
	mailboxDepth   = 256
)

// S is one Relay Session: one live WebSocket connection.
type S struct {
	conn   *ws.Listener
	store  *store.D
	index  *subscription.Index
	bcast  *broadcast.B
	policy *config.Store

	mu            sync.Mutex
	state         AuthState
	authChallenge []byte
	authedPubkey  []byte
	subs          map[string]*reqSubscription

	mailbox chan *event.E
	closed  chan struct{}
	once    sync.Once
}

type reqSubscription struct {
	filters []*filter.F
}

// New constructs a session for an accepted connection. The caller is
// responsible for calling Run, which blocks until the connection closes.
func New(
	conn *ws.Listener, st *store.D, idx *subscription.Index, bc *broadcast.B,
	policy *config.Store,
) *S {
	return &S{
		conn:    conn,
		store:   st,
		index:   idx,
		bcast:   bc,
		policy:  policy,
		subs:    map[string]*reqSubscription{},
		mailbox: make(chan *event.E, mailboxDepth),
		closed:  make(chan struct{}),
	}
}

// Deliver implements broadcast.Mailbox: a non-blocking push into the
// session's own inbound queue, never the caller's (the Broadcaster's)
// responsibility to wait on a slow session.
func (s *S) Deliver(ev *event.E) {
	select {
	case s.mailbox <- ev:
	default:
		log.W.F("session %s mailbox full, dropping event %s", s.conn.RealRemote(), ev.IdString())
	}
}

// Run drives the session until the connection closes. A single goroutine
// (this one) funnels every incoming frame and every mailbox delivery
// through one select loop, so handleReq's historical replay and any
// concurrently-broadcast live event can never interleave: spec.md §5/§8's
// "historical replay completes before any live event for that sub_id"
// guarantee holds because only one of {handle a frame, deliver a live
// event, send a ping} ever runs at a time. The blocking network read lives
// in its own goroutine purely to feed this loop; it never touches session
// state itself. Run always ends by unregistering every subscription this
// session owned, including on abnormal termination (spec.md §4.5
// Termination).
func (s *S) Run() {
	defer s.terminate()
	frames := make(chan []byte)
	go s.readLoop(frames)
	s.dispatchLoop(frames)
}

// readLoop only blocks on the network and hands decoded frames to
// dispatchLoop; it holds no session state and makes no session calls.
func (s *S) readLoop(frames chan<- []byte) {
	for {
		_, msg, err := s.conn.Conn.ReadMessage()
		if err != nil {
			close(frames)
			return
		}
		select {
		case frames <- msg:
		case <-s.closed:
			return
		}
	}
}

func (s *S) dispatchLoop(frames <-chan []byte) {
	timer := time.NewTimer(firstPingDelay)
	defer timer.Stop()
	for {
		select {
		case <-s.closed:
			return
		case msg, ok := <-frames:
			if !ok {
				s.Close()
				return
			}
			s.HandleMessage(msg)
		case ev := <-s.mailbox:
			s.deliverLive(ev)
		case <-timer.C:
			if err := s.conn.WritePing(); chk.E(err) {
				s.Close()
				return
			}
			timer.Reset(pingInterval)
		}
	}
}

// deliverLive implements spec.md §4.5's live-delivery mailbox handler: it
// re-checks every local subscription's filters against ev (the
// Subscription Index is author-only coarse) and writes a match.
func (s *S) deliverLive(ev *event.E) {
	s.mu.Lock()
	matches := make([]string, 0, 1)
	for subId, sub := range s.subs {
		for _, f := range sub.filters {
			if f.Matches(ev) {
				matches = append(matches, subId)
				break
			}
		}
	}
	s.mu.Unlock()
	for _, subId := range matches {
		s.writeEvent(subId, ev)
	}
}

// Close closes the underlying connection, triggering Run's cleanup path.
func (s *S) Close() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}

func (s *S) terminate() {
	s.index.UnregisterAll(s)
}

func (s *S) isAuthed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Authed
}

func (s *S) authedPubkeyHex() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authedPubkey == nil {
		return ""
	}
	return hex.Enc(s.authedPubkey)
}
