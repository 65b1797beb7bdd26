package session

import (
	"bytes"

	"beacon.dev/encoders/envelopes/eventenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/hex"
	"beacon.dev/encoders/kind"
	"beacon.dev/utils/chk"
)

// handleEvent implements spec.md §4.5's `["EVENT", event]` handling.
func (s *S) handleEvent(env *eventenvelope.Submission) {
	raw := env.Event.Serialize()
	ev, err := event.Validate(raw)
	if err != nil {
		s.writeOK(env.Event.Id, false, "invalid: "+err.Error())
		return
	}

	policy := s.policy.Get()
	if policy.AuthRequired && !s.isAuthed() {
		s.issueChallenge()
		return
	}
	// spec.md §6: a non-empty allow-list restricts publish/subscribe
	// whenever it's configured, independent of whether AUTH is required.
	if !policy.Allowed(ev.PubkeyString()) {
		s.writeOK(ev.Id, false, "blocked: not authorized")
		return
	}

	if ev.Kind.Equal(kind.Deletion) {
		s.applyDeletions(ev)
	}

	class := ev.Kind.Classify()
	switch class {
	case kind.ClassAuthentication:
		s.writeOK(ev.Id, false, "AUTH events are not stored")
		return
	case kind.ClassEphemeral:
		s.writeOK(ev.Id, true, "")
		s.bcast.Broadcast(ev, s)
		return
	}

	var storeErr error
	switch class {
	case kind.ClassReplaceable:
		storeErr = s.store.PutReplaceable(ev)
	case kind.ClassParameterizedReplaceable:
		storeErr = s.store.PutParameterized(ev)
	default:
		storeErr = s.store.PutRegular(ev)
	}
	if chk.E(storeErr) {
		s.writeOK(ev.Id, false, "Something went wrong")
		return
	}
	s.writeOK(ev.Id, true, "")
	s.bcast.Broadcast(ev, s)
}

// applyDeletions implements the NIP-09 deletion supplement: for each "e"
// tag on a kind-5 event, delete the referenced event if it exists and was
// authored by the same pubkey as the deletion event. The deletion event
// itself is still stored as a regular event below, additive to spec.md.
func (s *S) applyDeletions(ev *event.E) {
	for _, t := range ev.Tags.GetAll("e") {
		id, err := hex.Dec(string(t.Value()))
		if err != nil {
			continue
		}
		target, err := s.store.GetById(id)
		if chk.E(err) || target == nil {
			continue
		}
		if !bytes.Equal(target.Pubkey, ev.Pubkey) {
			continue
		}
		chk.E(s.store.DeleteEvent(id, true))
	}
}

// issueChallenge implements spec.md §4.5's auth challenge issuance: a fresh
// 16-byte random value, hex-encoded, stored, and sent as ["AUTH", challenge].
func (s *S) issueChallenge() {
	challenge := newChallenge()
	s.mu.Lock()
	s.authChallenge = challenge
	s.mu.Unlock()
	s.writeAuthChallenge(challenge)
}
