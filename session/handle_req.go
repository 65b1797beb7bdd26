package session

import (
	"beacon.dev/encoders/envelopes/reqenvelope"
	"beacon.dev/encoders/filter"
	"beacon.dev/encoders/hex"
	"beacon.dev/utils/chk"
)

// handleReq implements spec.md §4.5's `["REQ", sub_id, filter...]` handling.
func (s *S) handleReq(env *reqenvelope.T) {
	policy := s.policy.Get()
	if policy.AuthRequired && !s.isAuthed() {
		s.issueChallenge()
		return
	}
	// spec.md §6: a non-empty allow-list restricts subscribe regardless of
	// auth.required; since REQ carries no pubkey of its own, the session
	// must be authenticated for its identity to be checked against it.
	if len(policy.AllowedPubkeys) > 0 && !s.isAuthed() {
		s.issueChallenge()
		return
	}
	if !policy.Allowed(s.authedPubkeyHex()) {
		s.writeNotice("blocked: not authorized")
		return
	}
	for _, f := range env.Filters {
		if !f.HasAuthors() {
			s.writeNotice(
				"rejected: this relay requires an 'authors' filter for all subscriptions",
			)
			return
		}
	}

	subId := string(env.Subscription)

	s.mu.Lock()
	s.subs[subId] = &reqSubscription{filters: env.Filters}
	s.mu.Unlock()

	// Register with the index before running the historical query so any
	// event accepted concurrently with this REQ is queued into the mailbox
	// rather than missed — spec.md §5's ordering guarantee between
	// historical replay and live delivery.
	s.index.Register(s, subId, uniqueAuthorsHex(env.Filters))

	results, err := s.store.Query(env.Filters)
	if chk.E(err) {
		s.writeEose(subId)
		return
	}
	for _, ev := range results {
		s.writeEvent(subId, ev)
	}
	s.writeEose(subId)
}

// uniqueAuthorsHex collects the deduplicated set of hex-encoded pubkeys named
// across every filter's Authors field, for Subscription Index registration.
func uniqueAuthorsHex(filters []*filter.F) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range filters {
		for _, a := range f.Authors.ToSlice() {
			h := hex.Enc(a)
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
