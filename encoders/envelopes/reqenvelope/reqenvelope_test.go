package reqenvelope_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/reqenvelope"
	"beacon.dev/encoders/filter"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f := filter.New()
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(make([]byte, 32))
	f.Limit = 10

	en := reqenvelope.NewWith([]byte("sub-1"), f)
	b := en.Marshal(nil)

	label, rest, err := envelopes.Identify(b)
	require.NoError(t, err)
	require.Equal(t, reqenvelope.L, label)

	got, rem, err := reqenvelope.Parse(rest)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, "sub-1", string(got.Subscription))
	require.Len(t, got.Filters, 1)
	require.Equal(t, 10, got.Filters[0].Limit)
}

func TestUnmarshalRejectsNoFilters(t *testing.T) {
	en := reqenvelope.New()
	_, err := en.Unmarshal([]byte(`"sub-1"]`))
	require.Error(t, err)
}
