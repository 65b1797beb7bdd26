package session

import (
	"beacon.dev/encoders/envelopes/closeenvelope"
)

// handleClose implements spec.md §4.5's `["CLOSE", sub_id]` handling.
func (s *S) handleClose(env *closeenvelope.T) {
	subId := string(env.Subscription)

	s.mu.Lock()
	delete(s.subs, subId)
	s.mu.Unlock()

	s.index.Unregister(s, subId)
	s.writeNotice("Closed sub_id: `" + subId + "`")
}
