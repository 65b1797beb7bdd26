package closeenvelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/closeenvelope"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	en := closeenvelope.NewWith([]byte("sub-1"))
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, closeenvelope.L, label)

	got, rem, err := closeenvelope.Parse(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, "sub-1", string(got.Subscription))
}
