package broadcast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/broadcast"
	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
	"beacon.dev/subscription"
)

type recordingMailbox struct {
	delivered chan *event.E
}

func newRecordingMailbox() *recordingMailbox {
	return &recordingMailbox{delivered: make(chan *event.E, 8)}
}

func (m *recordingMailbox) Deliver(ev *event.E) { m.delivered <- ev }

func signedEvent(t *testing.T) *event.E {
	t.Helper()
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := &event.E{
		CreatedAt: timestamp.New(1000),
		Kind:      kind.New(1),
		Tags:      tag.NewS(),
		Content:   []byte("x"),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
	return ev
}

func TestBroadcastDeliversToCandidatesExceptOrigin(t *testing.T) {
	idx := subscription.New()
	mailboxes := map[subscription.ConnId]*recordingMailbox{
		"origin": newRecordingMailbox(),
		"other":  newRecordingMailbox(),
	}

	ev := signedEvent(t)
	author := ev.PubkeyString()
	idx.Register("origin", "sub-1", []string{author})
	idx.Register("other", "sub-1", []string{author})

	b := broadcast.New(idx, func(c subscription.ConnId) broadcast.Mailbox {
		mb, ok := mailboxes[c]
		if !ok {
			return nil
		}
		return mb
	}, 0)
	defer b.Stop()

	b.Broadcast(ev, "origin")

	select {
	case got := <-mailboxes["other"].delivered:
		require.Equal(t, ev.Id, got.Id)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case <-mailboxes["origin"].delivered:
		t.Fatal("origin connection must not receive its own broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastSkipsUnknownMailbox(t *testing.T) {
	idx := subscription.New()
	ev := signedEvent(t)
	idx.Register("ghost", "sub-1", []string{ev.PubkeyString()})

	b := broadcast.New(idx, func(subscription.ConnId) broadcast.Mailbox { return nil }, 0)
	defer b.Stop()

	b.Broadcast(ev, "someone-else")
	time.Sleep(50 * time.Millisecond)
}

func TestBroadcastQueueFullDropsWithoutBlocking(t *testing.T) {
	idx := subscription.New()
	b := broadcast.New(idx, func(subscription.ConnId) broadcast.Mailbox { return nil }, 1)
	defer b.Stop()

	events := make([]*event.E, 100)
	for i := range events {
		events[i] = signedEvent(t)
	}

	done := make(chan struct{})
	go func() {
		for _, ev := range events {
			b.Broadcast(ev, "origin")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked instead of dropping on a full queue")
	}
}
