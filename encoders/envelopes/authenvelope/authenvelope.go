// Package authenvelope implements the AUTH envelope in both directions: the
// relay-issued challenge and the client's signed kind-22242 response
// (spec.md §4.6).
package authenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
)

// L is the envelope label.
const L = "AUTH"

// Challenge is the relay-to-client form: ["AUTH", <challenge string>].
type Challenge struct {
	Challenge []byte
}

var _ envelopes.Envelope = (*Challenge)(nil)

// NewChallenge builds an empty Challenge.
func NewChallenge() *Challenge { return &Challenge{} }

// NewChallengeWith wraps a challenge string.
func NewChallengeWith[V string | []byte](challenge V) *Challenge {
	return &Challenge{Challenge: []byte(challenge)}
}

func (en *Challenge) Label() string { return L }

func (en *Challenge) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *Challenge) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			return text.AppendQuote(b, en.Challenge, text.NostrEscape)
		},
	)
}

func (en *Challenge) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.Challenge, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// ParseChallenge parses a Challenge from b (label already consumed).
func ParseChallenge(b []byte) (t *Challenge, rem []byte, err error) {
	t = NewChallenge()
	rem, err = t.Unmarshal(b)
	return
}

// Response is the client-to-relay form: ["AUTH", <event>], a kind-22242
// event carrying "relay" and "challenge" tags (spec.md §4.6).
type Response struct {
	Event *event.E
}

var _ envelopes.Envelope = (*Response)(nil)

// NewResponse builds an empty Response.
func NewResponse() *Response { return &Response{Event: event.New()} }

// NewResponseWith wraps an existing event.
func NewResponseWith(ev *event.E) *Response { return &Response{Event: ev} }

func (en *Response) Label() string { return L }

func (en *Response) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *Response) Marshal(dst []byte) []byte {
	if en.Event == nil {
		return dst
	}
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			return en.Event.Marshal(b)
		},
	)
}

func (en *Response) Unmarshal(b []byte) (rem []byte, err error) {
	en.Event = event.New()
	if rem, err = en.Event.Unmarshal(b); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(rem); chk.E(err) {
		return b, err
	}
	return
}

// ParseResponse parses a Response from b (label already consumed).
func ParseResponse(b []byte) (t *Response, rem []byte, err error) {
	t = NewResponse()
	rem, err = t.Unmarshal(b)
	return
}
