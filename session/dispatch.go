package session

import (
	"beacon.dev/encoders/envelopes"
	"beacon.dev/encoders/envelopes/authenvelope"
	"beacon.dev/encoders/envelopes/closeenvelope"
	"beacon.dev/encoders/envelopes/eventenvelope"
	"beacon.dev/encoders/envelopes/reqenvelope"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/log"
)

// HandleMessage dispatches one inbound wire frame by its envelope label,
// per spec.md §4.5. A frame that isn't a well-formed labelled array is the
// MalformedFrame case of spec.md §7.
func (s *S) HandleMessage(raw []byte) {
	log.T.F("session %s: %s", s.conn.RealRemote(), raw)
	label, rem, err := envelopes.Identify(raw)
	if chk.T(err) {
		s.writeNotice("Invalid message")
		return
	}
	switch label {
	case eventenvelope.L:
		env := eventenvelope.NewSubmission()
		if _, err = env.Unmarshal(rem); chk.T(err) {
			// A missing or malformed event field is still an EVENT
			// submission, not a malformed frame: spec.md §4.1/§7 require
			// ["OK", id, false, "invalid: ..."], not a bare NOTICE.
			s.writeOK(env.Event.Id, false, "invalid: "+err.Error())
			return
		}
		s.handleEvent(env)
	case reqenvelope.L:
		env := reqenvelope.New()
		if _, err = env.Unmarshal(rem); chk.T(err) {
			s.writeNotice("Invalid message")
			return
		}
		s.handleReq(env)
	case closeenvelope.L:
		env := closeenvelope.New()
		if _, err = env.Unmarshal(rem); chk.T(err) {
			s.writeNotice("Invalid message")
			return
		}
		s.handleClose(env)
	case authenvelope.L:
		env := authenvelope.NewResponse()
		if _, err = env.Unmarshal(rem); chk.T(err) {
			s.writeNotice("Invalid message")
			return
		}
		s.handleAuth(env)
	default:
		s.writeNotice("Invalid message")
	}
}
