package event

import (
	"strings"

	"beacon.dev/crypto/schnorr"
)

// ErrKind classifies why validation failed, per spec.md §4.1 and §7.
type ErrKind int

const (
	MissingField ErrKind = iota
	MalformedField
	IdMismatch
	BadSignature
)

func (k ErrKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case MalformedField:
		return "malformed field"
	case IdMismatch:
		return "id mismatch"
	case BadSignature:
		return "bad signature"
	default:
		return "invalid"
	}
}

// ValidationError reports a classified event-validation failure.
type ValidationError struct {
	Kind ErrKind
	Msg  string
}

func (e *ValidationError) Error() string { return e.Kind.String() + ": " + e.Msg }

func fail(k ErrKind, msg string) error { return &ValidationError{Kind: k, Msg: msg} }

// Validate implements the Event Validator of spec.md §4.1: parse, check the
// id against the canonical-serialization hash, then check the Schnorr
// signature. It is a pure function — no I/O, no mutation of shared state.
func Validate(raw []byte) (ev *E, err error) {
	ev = New()
	if _, err = ev.Unmarshal(raw); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "missing field") {
			return nil, fail(MissingField, msg)
		}
		return nil, fail(MalformedField, msg)
	}
	if len(ev.Id) != 32 {
		return nil, fail(MalformedField, "id must be 32 bytes")
	}
	if len(ev.Pubkey) != schnorr.PubKeyBytesLen {
		return nil, fail(MalformedField, "pubkey must be 32 bytes")
	}
	if len(ev.Sig) != schnorr.SignatureSize {
		return nil, fail(MalformedField, "sig must be 64 bytes")
	}
	if !ev.IdMatches() {
		return nil, fail(IdMismatch, "computed id does not match provided id")
	}
	var ok bool
	if ok, err = schnorr.Verify(ev.Pubkey, ev.Id, ev.Sig); err != nil {
		return nil, fail(BadSignature, err.Error())
	}
	if !ok {
		return nil, fail(BadSignature, "signature does not verify")
	}
	return ev, nil
}
