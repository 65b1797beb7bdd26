// Package indexes builds the badger key-prefix scheme the store uses to
// answer the lookups spec.md §4.2 requires: by id, by (pubkey, kind), by
// (pubkey, kind, d_tag), and by pubkey alone ordered by created_at.
// Grounded on the teacher's database/indexes package, trimmed from its full
// multi-dimensional tag/kind index set to the four the spec actually names
// (tag and kind filtering is then applied in-memory over the
// author-restricted candidate set, per spec.md §4.2's own design note).
package indexes

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"
)

// 3-byte ASCII prefixes, in the teacher's style.
const (
	PrefixEvent          = "evt" // evt + serial(8)                         -> msgpack event
	PrefixId             = "eid" // eid + id(32)                            -> serial(8)
	PrefixPubkeyCreated  = "pca" // pca + pubkey(32) + revts(8) + serial(8) -> nil
	PrefixKindPubkey     = "kpk" // kpk + kind(2) + pubkey(32)              -> serial(8)
	PrefixKindPubkeyDTag = "kpd" // kpd + kind(2) + pubkey(32) + dhash(8)   -> serial(8)
	PrefixTombstone      = "tmb" // tmb + id(32)                            -> deleted_at (decimal text)
)

// Serial is the 8-byte big-endian monotonic record number badger's
// sequence lease hands out.
type Serial uint64

func (s Serial) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s))
	return b
}

func SerialFromBytes(b []byte) Serial { return Serial(binary.BigEndian.Uint64(b)) }

// EventKey is the primary record key.
func EventKey(ser Serial) []byte {
	k := make([]byte, 0, 3+8)
	k = append(k, PrefixEvent...)
	return append(k, ser.Bytes()...)
}

// IdKey maps a full 32-byte event id to its serial.
func IdKey(id []byte) []byte {
	k := make([]byte, 0, 3+32)
	k = append(k, PrefixId...)
	return append(k, id...)
}

// reverseCreatedAt encodes a created_at timestamp so that ascending
// lexicographic key order is descending chronological order (badger only
// iterates forward efficiently, and query results want newest-first).
func reverseCreatedAt(createdAt int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(^createdAt))
	return b
}

// PubkeyCreatedAtKey builds a (pubkey, created_at, serial) range-scan key.
func PubkeyCreatedAtKey(pubkey []byte, createdAt int64, ser Serial) []byte {
	k := make([]byte, 0, 3+32+8+8)
	k = append(k, PrefixPubkeyCreated...)
	k = append(k, pubkey...)
	k = append(k, reverseCreatedAt(createdAt)...)
	return append(k, ser.Bytes()...)
}

// PubkeyCreatedAtPrefix is the scan prefix fixing only the author, so every
// event by that author is visited in descending created_at order.
func PubkeyCreatedAtPrefix(pubkey []byte) []byte {
	k := make([]byte, 0, 3+32)
	k = append(k, PrefixPubkeyCreated...)
	return append(k, pubkey...)
}

// KindPubkeyKey is the replaceable-event lookup key (spec.md §4.2
// put_replaceable).
func KindPubkeyKey(kind uint16, pubkey []byte) []byte {
	k := make([]byte, 0, 3+2+32)
	k = append(k, PrefixKindPubkey...)
	k = binary.BigEndian.AppendUint16(k, kind)
	return append(k, pubkey...)
}

// dTagHash truncates a d_tag value to 8 bytes for fixed-width keys.
func dTagHash(dTag string) []byte {
	h := sha256.Sum256([]byte(dTag))
	return h[:8]
}

// KindPubkeyDTagKey is the parameterized-replaceable lookup key (spec.md
// §4.2 put_parameterized).
func KindPubkeyDTagKey(kind uint16, pubkey []byte, dTag string) []byte {
	k := make([]byte, 0, 3+2+32+8)
	k = append(k, PrefixKindPubkeyDTag...)
	k = binary.BigEndian.AppendUint16(k, kind)
	k = append(k, pubkey...)
	return append(k, dTagHash(dTag)...)
}

// TombstoneKey marks a deleted event id so re-submission can be refused (a
// supplementary, spec-silent behavior; see the Store package's doc comment).
func TombstoneKey(id []byte) []byte {
	k := make([]byte, 0, 3+32)
	k = append(k, PrefixTombstone...)
	return append(k, id...)
}
