package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"beacon.dev/crypto/schnorr"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/filter"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

func signedEvent(t *testing.T, k uint16, createdAt int64) *event.E {
	t.Helper()
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := &event.E{
		CreatedAt: timestamp.New(createdAt),
		Kind:      kind.New(k),
		Tags:      tag.NewS().Append(tag.New("e", "deadbeef")),
		Content:   []byte("x"),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
	return ev
}

func TestMatchesAuthorAndKind(t *testing.T) {
	ev := signedEvent(t, 1, 1000)

	f := filter.New()
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(ev.Pubkey)
	f.Kinds = []*kind.T{kind.New(1)}
	require.True(t, f.Matches(ev))

	f.Kinds = []*kind.T{kind.New(2)}
	require.False(t, f.Matches(ev))
}

func TestMatchesSinceUntil(t *testing.T) {
	ev := signedEvent(t, 1, 1000)

	f := filter.New()
	f.Since = timestamp.New(500)
	f.Until = timestamp.New(1500)
	require.True(t, f.Matches(ev))

	f.Since = timestamp.New(1001)
	require.False(t, f.Matches(ev))
}

func TestMatchesTagFilter(t *testing.T) {
	ev := signedEvent(t, 1, 1000)

	f := filter.New()
	values := filter.NewByteSet(1)
	values.Append([]byte("deadbeef"))
	f.Tags = []*filter.TagFilter{{Name: 'e', Values: values}}
	require.True(t, f.Matches(ev))

	other := filter.NewByteSet(1)
	other.Append([]byte("cafebabe"))
	f.Tags = []*filter.TagFilter{{Name: 'e', Values: other}}
	require.False(t, f.Matches(ev))
}

func TestHasAuthors(t *testing.T) {
	f := filter.New()
	require.False(t, f.HasAuthors())
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(make([]byte, 32))
	require.True(t, f.HasAuthors())
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	ev := signedEvent(t, 1, 1000)

	f := filter.New()
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(ev.Pubkey)
	f.Kinds = []*kind.T{kind.New(1)}
	f.Since = timestamp.New(999)
	f.Limit = 10

	b := f.Marshal(nil)
	got, rem, err := filter.Unmarshal(b)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, f.Limit, got.Limit)
	require.True(t, got.HasAuthors())
	require.True(t, got.Matches(ev))
}
