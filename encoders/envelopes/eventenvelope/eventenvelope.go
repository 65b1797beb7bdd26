// Package eventenvelope implements the EVENT envelope in both directions:
// client-to-relay submission (spec.md §4.5 step 1) and relay-to-client
// delivery of a matched event against a live subscription (spec.md §4.5
// step 4).
package eventenvelope

import (
	"io"

	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/text"
	"beacon.dev/utils/chk"
)

// L is the envelope label.
const L = "EVENT"

// Submission is the client-to-relay form: ["EVENT", <event>].
type Submission struct {
	Event *event.E
}

var _ envelopes.Envelope = (*Submission)(nil)

// NewSubmission builds an empty Submission.
func NewSubmission() *Submission { return &Submission{Event: event.New()} }

// NewSubmissionWith wraps an existing event.
func NewSubmissionWith(ev *event.E) *Submission { return &Submission{Event: ev} }

func (en *Submission) Label() string { return L }

func (en *Submission) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *Submission) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			return en.Event.Marshal(b)
		},
	)
}

func (en *Submission) Unmarshal(b []byte) (rem []byte, err error) {
	en.Event = event.New()
	if rem, err = en.Event.Unmarshal(b); chk.E(err) {
		return
	}
	if rem, err = envelopes.SkipToTheEnd(rem); chk.E(err) {
		return
	}
	return
}

// ParseSubmission parses a Submission from a raw envelope (label already
// consumed by envelopes.Identify, b positioned at the event object).
func ParseSubmission(b []byte) (t *Submission, rem []byte, err error) {
	t = NewSubmission()
	rem, err = t.Unmarshal(b)
	return
}

// Result is the relay-to-client form: ["EVENT", <sub_id>, <event>], sent
// while a REQ subscription is live (spec.md §4.5 step 4).
type Result struct {
	Subscription []byte
	Event        *event.E
}

var _ envelopes.Envelope = (*Result)(nil)

// NewResult builds an empty Result.
func NewResult() *Result { return &Result{Event: event.New()} }

// NewResultWith builds a Result from a subscription id and event.
func NewResultWith(sub []byte, ev *event.E) *Result {
	return &Result{Subscription: sub, Event: ev}
}

func (en *Result) Label() string { return L }

func (en *Result) Write(w io.Writer) (err error) {
	_, err = w.Write(en.Marshal(nil))
	return
}

func (en *Result) Marshal(dst []byte) []byte {
	return envelopes.Marshal(
		dst, L, func(b []byte) []byte {
			b = append(b, ',')
			b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
			b = append(b, ',')
			return en.Event.Marshal(b)
		},
	)
}

func (en *Result) Unmarshal(b []byte) (rem []byte, err error) {
	r := b
	if en.Subscription, r, err = text.UnmarshalQuoted(r); chk.E(err) {
		return b, err
	}
	r = skipComma(r)
	en.Event = event.New()
	if r, err = en.Event.Unmarshal(r); chk.E(err) {
		return b, err
	}
	if rem, err = envelopes.SkipToTheEnd(r); chk.E(err) {
		return b, err
	}
	return
}

// ParseResult parses a Result from b (label already consumed).
func ParseResult(b []byte) (t *Result, rem []byte, err error) {
	t = NewResult()
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
