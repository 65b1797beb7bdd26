package session

import (
	"bytes"

	"beacon.dev/encoders/envelopes/authenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
)

// handleAuth implements spec.md §4.5's `["AUTH", auth_event]` handling: a
// kind-22242 event signed by the client in response to a relay challenge.
func (s *S) handleAuth(env *authenvelope.Response) {
	raw := env.Event.Serialize()
	ev, err := event.Validate(raw)
	if err != nil {
		s.writeOK(env.Event.Id, false, "invalid: auth event validation failed")
		return
	}
	if ev.Kind.Classify() != kind.ClassAuthentication {
		s.writeOK(ev.Id, false, "invalid: auth event validation failed")
		return
	}

	// spec.md §6: a non-empty allow-list restricts publish/subscribe
	// whenever it's configured, independent of whether AUTH is required.
	policy := s.policy.Get()
	if !policy.Allowed(ev.PubkeyString()) {
		s.writeOK(ev.Id, false, "invalid: auth event validation failed")
		return
	}

	s.mu.Lock()
	challenge := s.authChallenge
	s.mu.Unlock()

	if challenge == nil || !hasChallengeTag(ev, challenge) || !hasRelayTag(ev) {
		s.writeOK(ev.Id, false, "invalid: auth event validation failed")
		return
	}

	s.mu.Lock()
	s.authedPubkey = ev.Pubkey
	s.authChallenge = nil
	s.state = Authed
	s.mu.Unlock()

	s.writeOK(ev.Id, true, "")
}

func hasChallengeTag(ev *event.E, challenge []byte) bool {
	for _, t := range ev.Tags.GetAll("challenge") {
		if bytes.Equal(t.Value(), challenge) {
			return true
		}
	}
	return false
}

func hasRelayTag(ev *event.E) bool {
	return ev.Tags.GetFirst("relay") != nil
}
