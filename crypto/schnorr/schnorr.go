// Package schnorr wraps BIP-340 Schnorr-over-secp256k1 verification (and
// signing, for test fixtures) for the Event Validator (spec.md §4.1).
package schnorr

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"beacon.dev/utils/errorf"
)

const (
	// PubKeyBytesLen is the length of an x-only secp256k1 public key.
	PubKeyBytesLen = 32
	// SignatureSize is the length of a BIP-340 Schnorr signature.
	SignatureSize = 64
)

// Verify checks that sig is a valid BIP-340 Schnorr signature over msg
// (expected to be the 32-byte event id) under the x-only public key pub.
func Verify(pub, msg, sig []byte) (ok bool, err error) {
	if len(pub) != PubKeyBytesLen {
		return false, errorf.E(
			"schnorr: pubkey must be %d bytes, got %d", PubKeyBytesLen,
			len(pub),
		)
	}
	if len(sig) != SignatureSize {
		return false, errorf.E(
			"schnorr: signature must be %d bytes, got %d", SignatureSize,
			len(sig),
		)
	}
	var pk *btcec.PublicKey
	if pk, err = schnorr.ParsePubKey(pub); err != nil {
		return false, err
	}
	var s *schnorr.Signature
	if s, err = schnorr.ParseSignature(sig); err != nil {
		return false, err
	}
	return s.Verify(msg, pk), nil
}

// Signer signs messages with a secp256k1 secret key — used by test fixtures
// and the benchmark/fixture helpers, not by the relay core itself (the
// relay only ever verifies).
type Signer struct {
	sec *btcec.PrivateKey
	pub []byte
}

// NewSigner derives a Signer from a 32-byte secret key.
func NewSigner(sec []byte) (*Signer, error) {
	key, pub := btcec.PrivKeyFromBytes(sec)
	return &Signer{sec: key, pub: schnorr.SerializePubKey(pub)}, nil
}

// Pub returns the x-only public key bytes.
func (s *Signer) Pub() []byte { return s.pub }

// Sign produces a BIP-340 signature over msg.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	var si *schnorr.Signature
	if si, err = schnorr.Sign(s.sec, msg); err != nil {
		return
	}
	return si.Serialize(), nil
}
