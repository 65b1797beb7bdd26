package okenvelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/okenvelope"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	id := frand.Bytes(32)
	en := okenvelope.NewWith(id, true, "")
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, okenvelope.L, label)

	got, rem, err := okenvelope.Parse(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, id, got.EventId)
	require.True(t, got.OK)
}

func TestMarshalUnmarshalRejectionWithMessage(t *testing.T) {
	id := frand.Bytes(32)
	en := okenvelope.NewWith(id, false, "invalid: bad signature")
	b := en.Marshal(nil)

	_, rest, err := envelopes.Identify(b)
	require.NoError(t, err)

	got, _, err := okenvelope.Parse(rest)
	require.NoError(t, err)
	require.False(t, got.OK)
	require.Equal(t, "invalid: bad signature", string(got.Message))
}
