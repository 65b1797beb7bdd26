package store_test

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
	"beacon.dev/store"
	"beacon.dev/utils/context"
)

func newStore(t *testing.T) *store.D {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	d, err := store.New(ctx, cancel, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = d.Close()
	})
	return d
}

func newSignedEvent(
	t *testing.T, signer *schnorr.Signer, k uint16, createdAt int64,
	tags *tag.S,
) *event.E {
	t.Helper()
	if tags == nil {
		tags = tag.NewS()
	}
	ev := &event.E{
		CreatedAt: timestamp.New(createdAt),
		Kind:      kind.New(k),
		Tags:      tags,
		Content:   []byte("x"),
	}
	ev.Pubkey = signer.Pub()
	ev.Id = ev.ComputeId()
	sig, err := signer.Sign(ev.Id)
	require.NoError(t, err)
	ev.Sig = sig
	return ev
}

func authorFilter(pubkey []byte) *filter.F {
	f := filter.New()
	f.Authors = filter.NewByteSet(1)
	f.Authors.Append(pubkey)
	return f
}

func TestPutRegularDuplicateIsNoOp(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := newSignedEvent(t, signer, 1, 1000, nil)

	require.NoError(t, d.PutRegular(ev))
	require.NoError(t, d.PutRegular(ev))

	got, err := d.Query([]*filter.F{authorFilter(ev.Pubkey)})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPutReplaceableKeepsLatest(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	older := newSignedEvent(t, signer, 0, 1000, nil)
	newer := newSignedEvent(t, signer, 0, 2000, nil)

	require.NoError(t, d.PutReplaceable(older))
	require.NoError(t, d.PutReplaceable(newer))

	got, err := d.Query([]*filter.F{authorFilter(signer.Pub())})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, newer.Id, got[0].Id)
}

func TestPutReplaceableIgnoresOlder(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	newer := newSignedEvent(t, signer, 0, 2000, nil)
	older := newSignedEvent(t, signer, 0, 1000, nil)

	require.NoError(t, d.PutReplaceable(newer))
	require.NoError(t, d.PutReplaceable(older))

	got, err := d.Query([]*filter.F{authorFilter(signer.Pub())})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, newer.Id, got[0].Id)
}

func TestPutParameterizedKeepsLatestPerDTag(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	a1 := newSignedEvent(t, signer, 30000, 1000, tag.NewS().Append(tag.New("d", "a")))
	a2 := newSignedEvent(t, signer, 30000, 2000, tag.NewS().Append(tag.New("d", "a")))
	b1 := newSignedEvent(t, signer, 30000, 1500, tag.NewS().Append(tag.New("d", "b")))

	require.NoError(t, d.PutParameterized(a1))
	require.NoError(t, d.PutParameterized(a2))
	require.NoError(t, d.PutParameterized(b1))

	got, err := d.Query([]*filter.F{authorFilter(signer.Pub())})
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := map[string]bool{}
	for _, ev := range got {
		ids[ev.IdString()] = true
	}
	require.True(t, ids[a2.IdString()])
	require.True(t, ids[b1.IdString()])
	require.False(t, ids[a1.IdString()])
}

func TestQueryOrderingAndLimit(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)

	e1 := newSignedEvent(t, signer, 1, 1000, nil)
	e2 := newSignedEvent(t, signer, 1, 2000, nil)
	e3 := newSignedEvent(t, signer, 1, 3000, nil)
	require.NoError(t, d.PutRegular(e1))
	require.NoError(t, d.PutRegular(e2))
	require.NoError(t, d.PutRegular(e3))

	f := authorFilter(signer.Pub())
	f.Limit = 2
	got, err := d.Query([]*filter.F{f})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, e3.Id, got[0].Id)
	require.Equal(t, e2.Id, got[1].Id)
}

func TestDeleteEvent(t *testing.T) {
	d := newStore(t)
	signer, err := schnorr.NewSigner(frand.Bytes(32))
	require.NoError(t, err)
	ev := newSignedEvent(t, signer, 1, 1000, nil)
	require.NoError(t, d.PutRegular(ev))

	require.NoError(t, d.DeleteEvent(ev.Id, false))

	got, err := d.Query([]*filter.F{authorFilter(ev.Pubkey)})
	require.NoError(t, err)
	require.Empty(t, got)
}
