// Package hex provides lowercase hex encode/decode helpers used throughout
// the wire codecs, grounded on the teacher's encoders/hex package.
package hex

import "encoding/hex"

// Enc returns the lowercase hex encoding of b.
func Enc(b []byte) string { return hex.EncodeToString(b) }

// EncAppend appends the lowercase hex encoding of src onto dst.
func EncAppend(dst, src []byte) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, hex.EncodedLen(len(src)))...)
	hex.Encode(dst[start:], src)
	return dst
}

// Dec decodes a hex string into bytes.
func Dec(s string) ([]byte, error) { return hex.DecodeString(s) }

// DecAppend decodes src (hex text) and appends the decoded bytes to dst.
func DecAppend(dst []byte, src []byte) (out []byte, err error) {
	b := make([]byte, hex.DecodedLen(len(src)))
	if _, err = hex.Decode(b, src); err != nil {
		return
	}
	out = append(dst, b...)
	return
}
