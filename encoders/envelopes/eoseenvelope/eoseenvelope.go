// Package eoseenvelope implements the EOSE envelope: marks the end of
// stored-event replay for a subscription, after which only live matches
// follow (spec.md §4.5 step 4).
package eoseenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
)

// L is the envelope label.
const L = "EOSE"

// T is ["EOSE", <sub_id>].
type T struct {
	Subscription []byte
}

var _ envelopes.Envelope = (*T)(nil)

// New builds an empty EOSE envelope.
func New() *T { return &T{} }

// NewWith wraps a subscription id.
func NewWith(sub []byte) *T { return &T{Subscription: sub} }

func (en *T) Label() string { return L }

func (en *T) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *T) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			return text.AppendQuote(b, en.Subscription, text.NostrEscape)
		},
	)
}

func (en *T) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.Subscription, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// Parse parses an EOSE envelope from b (label already consumed).
func Parse(b []byte) (t *T, rem []byte, err error) {
	t = New()
	rem, err = t.Unmarshal(b)
	return
}
