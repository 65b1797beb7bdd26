// Package event is a codec for nostr events: the wire format (with id and
// signature), the canonical form that is hashed to produce the id, and JSON
// marshal/unmarshal for the wire representation. Grounded on the teacher's
// event package, trimmed to the fields spec.md §3 names.
package event

import (
	"bytes"

	"github.com/minio/sha256-simd"

	"beacon.dev/encoders/hex"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/timestamp"
)

// E is the primary nostr event datatype, per spec.md §3.
type E struct {
	// Id is the sha256 hash of the canonical encoding, 32 raw bytes.
	Id []byte
	// Pubkey is the author's public key, 32 raw bytes.
	Pubkey []byte
	// CreatedAt is the event's claimed creation time.
	CreatedAt *timestamp.T
	// Kind is the nostr event kind.
	Kind *kind.T
	// Tags are the event's tags.
	Tags *tag.S
	// Content is the arbitrary event body.
	Content []byte
	// Sig is the 64-byte Schnorr signature over Id.
	Sig []byte
}

// S is a slice of events.
type S []*E

func (s S) Len() int      { return len(s) }
func (s S) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Less orders events newest-first, with ties broken by the greater id —
// spec.md §3's "Latest" rule, reused here for query-result ordering
// (spec.md §4.2, §4.5: `created_at desc, id desc`).
func (s S) Less(i, j int) bool {
	if s[i].CreatedAt.I64() != s[j].CreatedAt.I64() {
		return s[i].CreatedAt.I64() > s[j].CreatedAt.I64()
	}
	return greaterId(s[i].Id, s[j].Id)
}

func greaterId(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

// C is a channel of events, used for the broadcast/delivery path.
type C chan *E

// New allocates a zero-valued event.
func New() *E { return &E{} }

// IdString returns the hex-encoded id.
func (ev *E) IdString() string { return hex.Enc(ev.Id) }

// PubkeyString returns the hex-encoded pubkey.
func (ev *E) PubkeyString() string { return hex.Enc(ev.Pubkey) }

// DTag returns the value of the first "d" tag, or "" if absent — the key
// used for parameterized-replaceable storage (spec.md §4.2).
func (ev *E) DTag() string {
	if t := ev.Tags.GetFirst("d"); t != nil {
		return string(t.Value())
	}
	return ""
}

// Hash returns the sha256 of in.
func Hash(in []byte) []byte {
	h := sha256.Sum256(in)
	return h[:]
}

// ComputeId returns the id that this event's canonical serialization hashes
// to, without checking it against ev.Id.
func (ev *E) ComputeId() []byte { return Hash(ev.CanonicalSerialize(nil)) }

// IdMatches reports whether ev.Id equals the hash of its canonical form —
// spec.md §3's core invariant.
func (ev *E) IdMatches() bool {
	return bytes.Equal(ev.Id, ev.ComputeId())
}
