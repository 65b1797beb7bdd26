package event_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

// signEvent fills in Id and Sig for ev using signer, matching the id
// computation and signature the Event Validator checks.
func signEvent(t *testing.T, signer *schnorr.Signer, ev *event.E) {
	t.Helper()
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
}

func newTestEvent(t *testing.T, signer *schnorr.Signer, k uint16, content string) *event.E {
	t.Helper()
	ev := &event.E{
		CreatedAt: timestamp.New(1700000000),
		Kind:      kind.New(k),
		Tags:      tag.NewS().Append(tag.New("t", "test")),
		Content:   []byte(content),
	}
	signEvent(t, signer, ev)
	return ev
}

func TestValidateRoundTrip(t *testing.T) {
	sec := frand.Bytes(32)
	signer, err := schnorr.NewSigner(sec)
	require.NoError(t, err)

	ev := newTestEvent(t, signer, 1, "hello")
	raw := ev.Serialize()

	got, err := event.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, ev.Id, got.Id)
	require.Equal(t, ev.Pubkey, got.Pubkey)
	require.Equal(t, "hello", string(got.Content))
}

func TestValidateRejectsTamperedContent(t *testing.T) {
	sec := frand.Bytes(32)
	signer, err := schnorr.NewSigner(sec)
	require.NoError(t, err)

	ev := newTestEvent(t, signer, 1, "hello")
	raw := ev.Serialize()
	tampered := []byte(strings.Replace(string(raw), `"hello"`, `"goodbye"`, 1))

	_, err = event.Validate(tampered)
	require.Error(t, err)
}

func TestIdMatchesDetectsMismatch(t *testing.T) {
	sec := frand.Bytes(32)
	signer, err := schnorr.NewSigner(sec)
	require.NoError(t, err)

	ev := newTestEvent(t, signer, 1, "hello")
	require.True(t, ev.IdMatches())
	ev.Content = []byte("tampered")
	require.False(t, ev.IdMatches())
}
