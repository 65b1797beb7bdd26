// Package reqenvelope implements the REQ envelope: a client's request to
// open a subscription, carrying one or more filters (spec.md §4.5).
package reqenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/filter"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/errorf"
)

// L is the envelope label.
const L = "REQ"

// T is ["REQ", <sub_id>, <filter>...].
type T struct {
	Subscription []byte
	Filters      []*filter.F
}

var _ envelopes.Envelope = (*T)(nil)

// New builds an empty REQ envelope.
func New() *T { return &T{} }

// NewWith builds a REQ envelope from a subscription id and filters.
func NewWith(sub []byte, filters ...*filter.F) *T {
	return &T{Subscription: sub, Filters: filters}
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
			b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
			for _, f := range en.Filters {
				b = append(b, ',')
				b = f.Marshal(b)
			}
			return b
		},
	)
}

func (en *T) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.Subscription, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	r = skipWS(r)
	for len(r) > 0 && r[0] == ',' {
		r = skipWS(r[1:])
		if len(r) > 0 && r[0] == ']' {
			break
		}
		var f *filter.F
		if f, r, err = filter.Unmarshal(r); chk.E(err) {
			return b, err
		}
		en.Filters = append(en.Filters, f)
		r = skipWS(r)
	}
	if len(en.Filters) == 0 {
		return b, errorf.E("req: at least one filter is required")
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// Parse parses a REQ envelope from b (label already consumed).
func Parse(b []byte) (t *T, rem []byte, err error) {
	t = New()
	rem, err = t.Unmarshal(b)
	return
}

func skipWS(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return b[i:]
}
