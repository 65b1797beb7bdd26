package eventenvelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/eventenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

func signedEvent(t *testing.T) *event.E {
	t.Helper()
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := &event.E{
		CreatedAt: timestamp.New(1000),
		Kind:      kind.New(1),
		Tags:      tag.NewS(),
		Content:   []byte("hello"),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
	return ev
}

func TestSubmissionRoundTrip(t *testing.T) {
	ev := signedEvent(t)
	en := eventenvelope.NewSubmissionWith(ev)
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, eventenvelope.L, label)

	got, rem, err := eventenvelope.ParseSubmission(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, ev.Id, got.Event.Id)
}

func TestResultRoundTrip(t *testing.T) {
	ev := signedEvent(t)
	en := eventenvelope.NewResultWith([]byte("sub-1"), ev)
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, eventenvelope.L, label)

	got, rem, err := eventenvelope.ParseResult(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, "sub-1", string(got.Subscription))
	require.Equal(t, ev.Id, got.Event.Id)
}
