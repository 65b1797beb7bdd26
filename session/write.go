package session

import (
	"beacon.dev/encoders/envelopes/authenvelope"
	"beacon.dev/encoders/envelopes/eoseenvelope"
	"beacon.dev/encoders/envelopes/eventenvelope"
	"beacon.dev/encoders/envelopes/noticeenvelope"
	"beacon.dev/encoders/envelopes/okenvelope"
	"beacon.dev/encoders/event"
	"beacon.dev/utils/chk"
)

func (s *S) writeEvent(subId string, ev *event.E) {
	b := eventenvelope.NewResultWith([]byte(subId), ev).Marshal(nil)
	_, err := s.conn.Write(b)
	chk.E(err)
}

func (s *S) writeOK(id []byte, ok bool, msg string) {
	b := okenvelope.NewWith(id, ok, msg).Marshal(nil)
	_, err := s.conn.Write(b)
	chk.E(err)
}

func (s *S) writeEose(subId string) {
	b := eoseenvelope.NewWith([]byte(subId)).Marshal(nil)
	_, err := s.conn.Write(b)
	chk.E(err)
}

func (s *S) writeNotice(msg string) {
	b := noticeenvelope.NewWith(msg).Marshal(nil)
	_, err := s.conn.Write(b)
	chk.E(err)
}

func (s *S) writeAuthChallenge(challenge []byte) {
	b := authenvelope.NewChallengeWith(challenge).Marshal(nil)
	_, err := s.conn.Write(b)
	chk.E(err)
}
