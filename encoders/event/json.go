package event

import (
	"strconv"

	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/tag"
	"beacon.dev/encoders/text"
	"beacon.dev/encoders/timestamp"
	"beacon.dev/utils/errorf"
)

// CanonicalSerialize renders the array [0, pubkey, created_at, kind, tags,
// content] with no insignificant whitespace, per spec.md §4.1 — this is the
// exact byte sequence that is sha256-hashed to produce the event id, so its
// escaping rules are load-bearing and must not drift from a generic JSON
// encoder's defaults (which HTML-escape and reorder).
func (ev *E) CanonicalSerialize(dst []byte) []byte {
	dst = append(dst, '[', '0', ',')
	dst = text.AppendQuote(dst, ev.Pubkey, text.HexEscape)
	dst = append(dst, ',')
	dst = ev.CreatedAt.Marshal(dst)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(ev.Kind.K), 10)
	dst = append(dst, ',')
	dst = marshalTagsCanonical(dst, ev.Tags)
	dst = append(dst, ',')
	dst = text.AppendQuote(dst, ev.Content, text.NostrEscape)
	dst = append(dst, ']')
	return dst
}

func marshalTagsCanonical(dst []byte, tags *tag.S) []byte {
	dst = append(dst, '[')
	for i, t := range tags.Field {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '[')
		for j, f := range t.Field {
			if j > 0 {
				dst = append(dst, ',')
			}
			dst = text.AppendQuote(dst, f, text.NostrEscape)
		}
		dst = append(dst, ']')
	}
	dst = append(dst, ']')
	return dst
}

var (
	jId        = []byte("id")
	jPubkey    = []byte("pubkey")
	jCreatedAt = []byte("created_at")
	jKind      = []byte("kind")
	jTags      = []byte("tags")
	jContent   = []byte("content")
	jSig       = []byte("sig")
)

// Marshal renders the wire object shape: the seven fields of spec.md §3,
// minified.
func (ev *E) Marshal(dst []byte) []byte {
	dst = append(dst, '{')
	dst = text.JSONKey(dst, jId)
	dst = text.AppendQuote(dst, ev.Id, text.HexEscape)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jPubkey)
	dst = text.AppendQuote(dst, ev.Pubkey, text.HexEscape)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jCreatedAt)
	dst = ev.CreatedAt.Marshal(dst)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jKind)
	dst = strconv.AppendUint(dst, uint64(ev.Kind.K), 10)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jTags)
	dst = marshalTagsCanonical(dst, ev.Tags)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jContent)
	dst = text.AppendQuote(dst, ev.Content, text.NostrEscape)
	dst = append(dst, ',')
	dst = text.JSONKey(dst, jSig)
	dst = text.AppendQuote(dst, ev.Sig, text.HexEscape)
	dst = append(dst, '}')
	return dst
}

// Serialize is Marshal(nil).
func (ev *E) Serialize() []byte { return ev.Marshal(nil) }

// Unmarshal decodes a wire-format event object from b, returning any
// trailing bytes. A minimal single-pass scanner in the teacher's style
// (event/json.go), since every field here must be individually validated
// (hex length, non-negative kind, etc.) rather than trusted from a generic
// decoder.
func (ev *E) Unmarshal(b []byte) (rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '{' {
		return b, errorf.E("event: expected '{'")
	}
	r = r[1:]
	seen := map[string]bool{}
	for {
		r = skipWS(r)
		if len(r) == 0 {
			return b, errorf.E("event: truncated")
		}
		if r[0] == '}' {
			r = r[1:]
			break
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
		}
		var key []byte
		if key, r, err = text.UnmarshalQuoted(r); err != nil {
			return b, err
		}
		r = skipWS(r)
		if len(r) == 0 || r[0] != ':' {
			return b, errorf.E("event: expected ':' after key %q", key)
		}
		r = skipWS(r[1:])
		switch string(key) {
		case "id":
			if ev.Id, r, err = text.UnmarshalHex(r); err != nil {
				return b, err
			}
			seen["id"] = true
		case "pubkey":
			if ev.Pubkey, r, err = text.UnmarshalHex(r); err != nil {
				return b, err
			}
			seen["pubkey"] = true
		case "sig":
			if ev.Sig, r, err = text.UnmarshalHex(r); err != nil {
				return b, err
			}
			seen["sig"] = true
		case "content":
			if ev.Content, r, err = text.UnmarshalQuoted(r); err != nil {
				return b, err
			}
			seen["content"] = true
		case "created_at":
			ev.CreatedAt = timestamp.New(0)
			if r, err = ev.CreatedAt.Unmarshal(r); err != nil {
				return b, err
			}
			seen["created_at"] = true
		case "kind":
			var n int
			if n, r, err = unmarshalUint(r); err != nil {
				return b, err
			}
			ev.Kind = kind.New(uint16(n))
			seen["kind"] = true
		case "tags":
			if ev.Tags, r, err = unmarshalTags(r); err != nil {
				return b, err
			}
			seen["tags"] = true
		default:
			return b, errorf.E("event: unknown key %q", key)
		}
	}
	for _, k := range []string{
		"id", "pubkey", "created_at", "kind", "tags", "content", "sig",
	} {
		if !seen[k] {
			return b, errorf.E("event: missing field %q", k)
		}
	}
	return r, nil
}

// Unmarshal decodes a JSON event object into a new E.
func Unmarshal(b []byte) (ev *E, rem []byte, err error) {
	ev = New()
	rem, err = ev.Unmarshal(b)
	return
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

func unmarshalUint(b []byte) (n int, rem []byte, err error) {
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, b, errorf.E("expected integer")
	}
	v, convErr := strconv.ParseUint(string(b[:i]), 10, 32)
	if convErr != nil {
		return 0, b, convErr
	}
	return int(v), b[i:], nil
}

func unmarshalTags(b []byte) (tags *tag.S, rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '[' {
		return nil, b, errorf.E("tags: expected '['")
	}
	r = skipWS(r[1:])
	tags = tag.NewSWithCap(8)
	if len(r) > 0 && r[0] == ']' {
		return tags, r[1:], nil
	}
	for {
		var t *tag.T
		if t, r, err = unmarshalOneTag(r); err != nil {
			return nil, b, err
		}
		tags.Append(t)
		r = skipWS(r)
		if len(r) == 0 {
			return nil, b, errorf.E("tags: truncated")
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
			continue
		}
		if r[0] == ']' {
			return tags, r[1:], nil
		}
		return nil, b, errorf.E("tags: unexpected byte %q", r[0])
	}
}

func unmarshalOneTag(b []byte) (t *tag.T, rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '[' {
		return nil, b, errorf.E("tag: expected '['")
	}
	r = skipWS(r[1:])
	var fields [][]byte
	if len(r) > 0 && r[0] == ']' {
		return tag.NewFromBytes(fields...), r[1:], nil
	}
	for {
		var f []byte
		if f, r, err = text.UnmarshalQuoted(r); err != nil {
			return nil, b, err
		}
		fields = append(fields, f)
		r = skipWS(r)
		if len(r) == 0 {
			return nil, b, errorf.E("tag: truncated")
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
			continue
		}
		if r[0] == ']' {
			return tag.NewFromBytes(fields...), r[1:], nil
		}
		return nil, b, errorf.E("tag: unexpected byte %q", r[0])
	}
}
