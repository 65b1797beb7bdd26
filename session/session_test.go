package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/app/config"
	"beacon.dev/broadcast"
	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/eoseenvelope"
	"beacon.dev/encoders/envelopes/eventenvelope"
	"beacon.dev/encoders/envelopes/okenvelope"
	"beacon.dev/encoders/envelopes/reqenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/filter"
	"beacon.dev/encoders/hex"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
	"beacon.dev/session"
	"beacon.dev/store"
	"beacon.dev/subscription"
	"beacon.dev/utils/context"
	"beacon.dev/ws"
)

// mailboxOf mirrors app/relay.New's lookup callback: a session registers
// itself as its own subscription.ConnId and already implements
// broadcast.Mailbox, so no separate registry is needed.
func mailboxOf(c subscription.ConnId) broadcast.Mailbox {
	mb, ok := c.(broadcast.Mailbox)
	if !ok {
		return nil
	}
	return mb
}

type testRelay struct {
	store *store.D
	index *subscription.Index
	bcast *broadcast.B
	policy *config.Store
	server *httptest.Server
}

func newTestRelay(t *testing.T, policy *config.Policy) *testRelay {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	st, err := store.New(ctx, cancel, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = st.Close()
	})

	idx := subscription.New()
	bc := broadcast.New(idx, mailboxOf, 0)
	t.Cleanup(bc.Stop)

	ps := config.NewStore(policy)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/", func(w http.ResponseWriter, r *http.Request) {
			conn, upErr := upgrader.Upgrade(w, r, nil)
			if upErr != nil {
				return
			}
			listener := ws.NewListener(conn, r)
			sess := session.New(listener, st, idx, bc, ps)
			sess.Run()
		},
	)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testRelay{store: st, index: idx, bcast: bc, policy: ps, server: srv}
}

func (r *testRelay) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(r.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func signedEventFor(t *testing.T, signer *schnorr.Signer, k uint16, content string) *event.E {
	t.Helper()
	ev := &event.E{
		CreatedAt: timestamp.New(1700000000),
		Kind:      kind.New(k),
		Tags:      tag.NewS(),
		Content:   []byte(content),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
	return ev
}

func readFrame(t *testing.T, conn *websocket.Conn) (label string, rest []byte) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	label, rest, err = envelopes.Identify(msg)
	require.NoError(t, err)
	return label, rest
}

func TestEventSubmissionRoundTrip(t *testing.T) {
	rl := newTestRelay(t, &config.Policy{})
	conn := rl.dial(t)

	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := signedEventFor(t, signer, 1, "hello")

	sub := eventenvelope.NewSubmissionWith(ev).Marshal(nil)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, sub))

	label, rest := readFrame(t, conn)
	require.Equal(t, okenvelope.L, label)
	ok, rem, err := okenvelope.Parse(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.True(t, ok.OK)
	require.Equal(t, ev.Id, ok.EventId)
}

func TestHistoricalReplayPrecedesLiveDelivery(t *testing.T) {
	rl := newTestRelay(t, &config.Policy{})

	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	author := hex.Enc(signer.Pub())

	historical := signedEventFor(t, signer, 1, "historical")
	require.NoError(t, rl.store.PutRegular(historical))

	conn := rl.dial(t)

	// A standing dummy candidate lets the test detect, from the outside,
	// the moment the REQ below registers the real session in the
	// Subscription Index (candidate count goes from 1 to 2), without ever
	// observing whether handleReq's historical Query has returned yet.
	rl.index.Register("other-origin", "sub-x", []string{author})

	f := filter.New()
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(signer.Pub())
	req := reqenvelope.NewWith([]byte("sub-1"), f).Marshal(nil)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, req))

	deadline := time.Now().Add(2 * time.Second)
	for len(rl.index.Candidates(author)) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the session to register its REQ subscription")
		}
		time.Sleep(time.Microsecond)
	}

	// Broadcast a live event for the same author right as the REQ's
	// registration becomes visible, racing its still-possibly-in-flight
	// historical replay. The single dispatch-loop session model guarantees
	// this can never be delivered before EOSE, regardless of timing.
	live := signedEventFor(t, signer, 1, "live")
	rl.bcast.Broadcast(live, "other-origin")

	var gotHistorical, gotEose, gotLive bool
	for i := 0; i < 3; i++ {
		label, rest := readFrame(t, conn)
		switch label {
		case eventenvelope.L:
			result, rem, perr := eventenvelope.ParseResult(rest)
			require.NoError(t, perr)
			require.Empty(t, rem)
			if string(result.Event.Id) == string(historical.Id) {
				require.False(t, gotEose, "historical event arrived after EOSE")
				gotHistorical = true
			} else if string(result.Event.Id) == string(live.Id) {
				require.True(t, gotEose, "live event arrived before EOSE")
				gotLive = true
			}
		case eoseenvelope.L:
			require.True(t, gotHistorical, "EOSE arrived before historical replay")
			gotEose = true
		}
	}
	require.True(t, gotHistorical)
	require.True(t, gotEose)
	require.True(t, gotLive)
}

func TestRejectsReqWithoutAuthorsFilter(t *testing.T) {
	rl := newTestRelay(t, &config.Policy{})
	conn := rl.dial(t)

	req := reqenvelope.NewWith([]byte("sub-1"), filter.New()).Marshal(nil)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, req))

	label, _ := readFrame(t, conn)
	require.Equal(t, "NOTICE", label)
}

func TestAllowListBlocksUnlistedPubkey(t *testing.T) {
	allowed, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	other, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	policy := &config.Policy{
		AllowedPubkeys: map[string]struct{}{hex.Enc(allowed.Pub()): {}},
	}
	rl := newTestRelay(t, policy)
	conn := rl.dial(t)

	ev := signedEventFor(t, other, 1, "blocked")
	sub := eventenvelope.NewSubmissionWith(ev).Marshal(nil)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, sub))

	label, rest := readFrame(t, conn)
	require.Equal(t, okenvelope.L, label)
	ok, _, err := okenvelope.Parse(rest)
	require.NoError(t, err)
	require.False(t, ok.OK)
}
