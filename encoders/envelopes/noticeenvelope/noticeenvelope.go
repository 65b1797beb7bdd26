// Package noticeenvelope implements the NOTICE envelope: a free-text
// relay-to-client message, used for protocol errors such as malformed
// frames (spec.md §4.7).
package noticeenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
)

// L is the envelope label.
const L = "NOTICE"

// T is ["NOTICE", <message>].
type T struct {
	Message []byte
}

var _ envelopes.Envelope = (*T)(nil)

// New builds an empty NOTICE envelope.
func New() *T { return &T{} }

// NewWith wraps a message string.
func NewWith(msg string) *T { return &T{Message: []byte(msg)} }

func (en *T) Label() string { return L }

func (en *T) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *T) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			return text.AppendQuote(b, en.Message, text.NostrEscape)
		},
	)
}

func (en *T) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.Message, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// Parse parses a NOTICE envelope from b (label already consumed).
func Parse(b []byte) (t *T, rem []byte, err error) {
	t = New()
	rem, err = t.Unmarshal(b)
	return
}
