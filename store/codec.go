package store

import (
	"github.com/vmihailenco/msgpack/v5"

	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

// record is the on-disk value shape for an event. The teacher hand-rolls a
// tight varint binary codec for this (event/binary.go); this store uses
// msgpack instead so the value format is self-describing and portable
// across index-scheme changes, at the cost of a few extra bytes per record.
type record struct {
	Id        []byte     `msgpack:"id"`
	Pubkey    []byte     `msgpack:"pubkey"`
	CreatedAt int64      `msgpack:"created_at"`
	Kind      uint16     `msgpack:"kind"`
	Tags      [][]string `msgpack:"tags"`
	Content   []byte     `msgpack:"content"`
	Sig       []byte     `msgpack:"sig"`
}

func toRecord(ev *event.E) *record {
	return &record{
		Id:        ev.Id,
		Pubkey:    ev.Pubkey,
		CreatedAt: ev.CreatedAt.I64(),
		Kind:      ev.Kind.K,
		Tags:      ev.Tags.ToStringsSlice(),
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
}

func (r *record) toEvent() *event.E {
	return &event.E{
		Id:        r.Id,
		Pubkey:    r.Pubkey,
		CreatedAt: timestamp.New(r.CreatedAt),
		Kind:      kind.New(r.Kind),
		Tags:      tag.FromStringsSlice(r.Tags),
		Content:   r.Content,
		Sig:       r.Sig,
	}
}

func encodeEvent(ev *event.E) ([]byte, error) {
	return msgpack.Marshal(toRecord(ev))
}

func decodeEvent(b []byte) (*event.E, error) {
	r := &record{}
	if err := msgpack.Unmarshal(b, r); err != nil {
		return nil, err
	}
	return r.toEvent(), nil
}
