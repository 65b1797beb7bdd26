// Package envelopes implements the wire framing shared by every nostr
// message: a JSON array whose first element is a label string naming the
// message kind, per spec.md §4. The label-specific packages
// (eventenvelope, reqenvelope, closeenvelope, authenvelope, okenvelope,
// noticeenvelope, eoseenvelope) each wrap this framing around their payload.
package envelopes

import (
	"beacon.dev/encoders/text"
	"beacon.dev/utils/errorf"
)

// Envelope is implemented by every concrete envelope type in the
// encoders/envelopes/* subpackages.
type Envelope interface {
	Label() string
	Marshal(dst []byte) []byte
	Unmarshal(b []byte) (rem []byte, err error)
}

// Marshal writes ["label", then calls body to append the remaining array
// elements, then closes the array. body is expected to append its own
// leading comma.
func Marshal(dst []byte, label string, body func(dst []byte) []byte) []byte {
	dst = append(dst, '[', '"')
	dst = append(dst, label...)
	dst = append(dst, '"')
	dst = body(dst)
	dst = append(dst, ']')
	return dst
}

// Identify reads the label out of a raw envelope array, returning the
// label and the remainder of the buffer positioned just after the comma
// that follows the label (ready for the next array element).
func Identify(b []byte) (label string, rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '[' {
		return "", b, errorf.E("envelope: expected '['")
	}
	r = skipWS(r[1:])
	var raw []byte
	if raw, r, err = text.UnmarshalQuoted(r); err != nil {
		return "", b, err
	}
	r = skipWS(r)
	if len(r) > 0 && r[0] == ',' {
		r = skipWS(r[1:])
	}
	return string(raw), r, nil
}

// SkipToTheEnd consumes any remaining array elements and the closing ']',
// returning the bytes after it. Used by envelopes whose payload is the last
// (or only) element.
func SkipToTheEnd(b []byte) (rem []byte, err error) {
	r := skipWS(b)
	depth := 0
	inStr := false
	for i := 0; i < len(r); i++ {
		c := r[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '[', '{':
			depth++
		case ']', '}':
			if depth == 0 {
				return r[i+1:], nil
			}
			depth--
		}
	}
	return nil, errorf.E("envelope: unterminated array")
}

func skipWS(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return b[i:]
}
