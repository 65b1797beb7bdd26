// Package okenvelope implements the OK envelope: the relay's
// accept/reject acknowledgement of a submitted event (spec.md §4.5 step 3,
// §7 error reporting).
package okenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
)

// L is the envelope label.
const L = "OK"

// T is ["OK", <event id>, <ok bool>, <message>].
type T struct {
	EventId []byte
	OK      bool
	Message []byte
}

var _ envelopes.Envelope = (*T)(nil)

// New builds an empty OK envelope.
func New() *T { return &T{} }

// NewWith builds an OK envelope from its fields.
func NewWith(id []byte, ok bool, msg string) *T {
	return &T{EventId: id, OK: ok, Message: []byte(msg)}
}

func (en *T) Label() string { return L }

func (en *T) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *T) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			b = text.AppendQuote(b, en.EventId, text.HexEscape)
			b = append(b, ',')
			if en.OK {
				b = append(b, "true"...)
			} else {
				b = append(b, "false"...)
			}
			b = append(b, ',')
			return text.AppendQuote(b, en.Message, text.NostrEscape)
		},
	)
}

func (en *T) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.EventId, r, err = text.UnmarshalHex(r); chk.E(err) {
		return b, err
	}
	r = skipComma(r)
	if len(r) >= 4 && string(r[:4]) == "true" {
		en.OK = true
		r = r[4:]
	} else if len(r) >= 5 && string(r[:5]) == "false" {
		en.OK = false
		r = r[5:]
	}
	r = skipComma(r)
	if en.Message, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// Parse parses an OK envelope from b (label already consumed).
func Parse(b []byte) (t *T, rem []byte, err error) {
	t = New()
	rem, err = t.Unmarshal(b)
	return
}

func skipComma(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r', ',':
			i++
		default:
			return b[i:]
		}
	}
	return b[i:]
}
