package authenvelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/authenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

func TestChallengeRoundTrip(t *testing.T) {
	en := authenvelope.NewChallengeWith("abc123")
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, authenvelope.L, label)

	got, rem, err := authenvelope.ParseChallenge(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, "abc123", string(got.Challenge))
}

func TestResponseRoundTrip(t *testing.T) {
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	ev := &event.E{
		CreatedAt: timestamp.New(1000),
		Kind:      kind.New(22242),
		Tags: tag.NewS().Append(
			tag.New("relay", "wss://relay.example"),
			tag.New("challenge", "abc123"),
		),
		Content: []byte(""),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig

	en := authenvelope.NewResponseWith(ev)
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, authenvelope.L, label)

	got, rem, err := authenvelope.ParseResponse(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, ev.Id, got.Event.Id)
	require.NotNil(t, got.Event.Tags.GetFirst("relay"))
}
