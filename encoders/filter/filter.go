// Package filter implements the REQ filter object of spec.md §3: the
// predicate a Store query or a session's live-delivery re-check matches
// against an event. Grounded on the teacher's encoders/filter package, trimmed
// to the fields spec.md's filter table names (no free-text Search — that is
// explicitly out of scope).
package filter

import (
	"sort"
	"strconv"

	"beacon.dev/encoders/event"
	"beacon.dev/encoders/kind"
	"beacon.dev/encoders/text"
	"beacon.dev/encoders/timestamp"
	"beacon.dev/utils/errorf"
)

// TagFilter is a single "#x" entry: match events carrying a tag named x
// whose value is any of Values.
type TagFilter struct {
	Name   byte
	Values *ByteSet
}

// F is a REQ filter, per spec.md §3.
type F struct {
	Ids     *ByteSet
	Authors *ByteSet
	Kinds   []*kind.T
	Tags    []*TagFilter
	Since   *timestamp.T
	Until   *timestamp.T
	Limit   int
}

// New allocates an empty filter.
func New() *F { return &F{} }

// Clone copies f with its own Kinds and Tags slices; the Ids/Authors sets,
// the TagFilter values and the Since/Until timestamps are shared with f.
func (f *F) Clone() *F {
	c := &F{
		Ids:     f.Ids,
		Authors: f.Authors,
		Kinds:   append([]*kind.T{}, f.Kinds...),
		Tags:    append([]*TagFilter{}, f.Tags...),
		Since:   f.Since,
		Until:   f.Until,
		Limit:   f.Limit,
	}
	return c
}

// HasAuthors reports whether the filter carries a non-empty authors array —
// the precondition spec.md §4.5 imposes on every REQ filter.
func (f *F) HasAuthors() bool { return f.Authors.Len() > 0 }

// Matches reports whether ev satisfies every present constraint of f, per
// spec.md §3's filter-matching table: absent fields impose no constraint,
// present fields are logically ANDed together, and within one field
// membership is logical-OR.
func (f *F) Matches(ev *event.E) bool {
	if f.Ids.Len() > 0 && !f.Ids.Contains(ev.Id) {
		return false
	}
	if f.Authors.Len() > 0 && !f.Authors.Contains(ev.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if k.Equal(ev.Kind) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt.I64() < f.Since.I64() {
		return false
	}
	if f.Until != nil && ev.CreatedAt.I64() > f.Until.I64() {
		return false
	}
	for _, tf := range f.Tags {
		name := string(tf.Name)
		matched := false
		for _, t := range ev.Tags.GetAll(name) {
			if tf.Values.Contains(t.Value()) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Marshal renders f in a fixed field order: ids, authors, kinds, since,
// until, limit, then #-tags in ascending name order. Absent fields are
// omitted.
func (f *F) Marshal(dst []byte) []byte {
	dst = append(dst, '{')
	first := true
	comma := func() {
		if !first {
			dst = append(dst, ',')
		}
		first = false
	}
	if f.Ids.Len() > 0 {
		comma()
		dst = append(dst, `"ids":[`...)
		for i, id := range f.Ids.ToSlice() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = text.AppendQuote(dst, id, text.HexEscape)
		}
		dst = append(dst, ']')
	}
	if f.Authors.Len() > 0 {
		comma()
		dst = append(dst, `"authors":[`...)
		for i, a := range f.Authors.ToSlice() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = text.AppendQuote(dst, a, text.HexEscape)
		}
		dst = append(dst, ']')
	}
	if len(f.Kinds) > 0 {
		comma()
		dst = append(dst, `"kinds":[`...)
		for i, k := range f.Kinds {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendUint(dst, uint64(k.K), 10)
		}
		dst = append(dst, ']')
	}
	if f.Since != nil {
		comma()
		dst = append(dst, `"since":`...)
		dst = f.Since.Marshal(dst)
	}
	if f.Until != nil {
		comma()
		dst = append(dst, `"until":`...)
		dst = f.Until.Marshal(dst)
	}
	if f.Limit > 0 {
		comma()
		dst = append(dst, `"limit":`...)
		dst = strconv.AppendInt(dst, int64(f.Limit), 10)
	}
	tags := append([]*TagFilter{}, f.Tags...)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	for _, tf := range tags {
		comma()
		dst = append(dst, '"', '#', tf.Name, '"', ':', '[')
		for i, v := range tf.Values.ToSlice() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = text.AppendQuote(dst, v, text.NostrEscape)
		}
		dst = append(dst, ']')
	}
	dst = append(dst, '}')
	return dst
}

// Unmarshal decodes a filter object from b.
func Unmarshal(b []byte) (f *F, rem []byte, err error) {
	f = New()
	r := skipWS(b)
	if len(r) == 0 || r[0] != '{' {
		return nil, b, errorf.E("filter: expected '{'")
	}
	r = skipWS(r[1:])
	if len(r) > 0 && r[0] == '}' {
		return f, r[1:], nil
	}
	for {
		var key []byte
		if key, r, err = text.UnmarshalQuoted(r); err != nil {
			return nil, b, err
		}
		r = skipWS(r)
		if len(r) == 0 || r[0] != ':' {
			return nil, b, errorf.E("filter: expected ':' after key %q", key)
		}
		r = skipWS(r[1:])
		ks := string(key)
		switch {
		case ks == "ids":
			if f.Ids, r, err = unmarshalByteSet(r, true); err != nil {
				return nil, b, err
			}
		case ks == "authors":
			if f.Authors, r, err = unmarshalByteSet(r, true); err != nil {
				return nil, b, err
			}
		case ks == "kinds":
			if f.Kinds, r, err = unmarshalKinds(r); err != nil {
				return nil, b, err
			}
		case ks == "since":
			f.Since = timestamp.New(0)
			if r, err = f.Since.Unmarshal(r); err != nil {
				return nil, b, err
			}
		case ks == "until":
			f.Until = timestamp.New(0)
			if r, err = f.Until.Unmarshal(r); err != nil {
				return nil, b, err
			}
		case ks == "limit":
			var n int
			if n, r, err = unmarshalInt(r); err != nil {
				return nil, b, err
			}
			f.Limit = n
		case len(ks) == 2 && ks[0] == '#':
			var vs *ByteSet
			if vs, r, err = unmarshalByteSet(r, false); err != nil {
				return nil, b, err
			}
			f.Tags = append(f.Tags, &TagFilter{Name: ks[1], Values: vs})
		default:
			return nil, b, errorf.E("filter: unknown key %q", key)
		}
		r = skipWS(r)
		if len(r) == 0 {
			return nil, b, errorf.E("filter: truncated")
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
			continue
		}
		if r[0] == '}' {
			return f, r[1:], nil
		}
		return nil, b, errorf.E("filter: unexpected byte %q", r[0])
	}
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

func unmarshalInt(b []byte) (n int, rem []byte, err error) {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	start := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == start {
		return 0, b, errorf.E("expected integer")
	}
	v, convErr := strconv.ParseInt(string(b[:i]), 10, 64)
	if convErr != nil {
		return 0, b, convErr
	}
	return int(v), b[i:], nil
}

func unmarshalByteSet(b []byte, hex bool) (s *ByteSet, rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '[' {
		return nil, b, errorf.E("expected '['")
	}
	r = skipWS(r[1:])
	s = NewByteSet(4)
	if len(r) > 0 && r[0] == ']' {
		return s, r[1:], nil
	}
	for {
		var v []byte
		if hex {
			if v, r, err = text.UnmarshalHex(r); err != nil {
				return nil, b, err
			}
		} else {
			if v, r, err = text.UnmarshalQuoted(r); err != nil {
				return nil, b, err
			}
		}
		s.Append(v)
		r = skipWS(r)
		if len(r) == 0 {
			return nil, b, errorf.E("truncated")
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
			continue
		}
		if r[0] == ']' {
			return s, r[1:], nil
		}
		return nil, b, errorf.E("unexpected byte %q", r[0])
	}
}

func unmarshalKinds(b []byte) (ks []*kind.T, rem []byte, err error) {
	r := skipWS(b)
	if len(r) == 0 || r[0] != '[' {
		return nil, b, errorf.E("kinds: expected '['")
	}
	r = skipWS(r[1:])
	if len(r) > 0 && r[0] == ']' {
		return nil, r[1:], nil
	}
	for {
		var n int
		if n, r, err = unmarshalInt(r); err != nil {
			return nil, b, err
		}
		ks = append(ks, kind.New(uint16(n)))
		r = skipWS(r)
		if len(r) == 0 {
			return nil, b, errorf.E("kinds: truncated")
		}
		if r[0] == ',' {
			r = skipWS(r[1:])
			continue
		}
		if r[0] == ']' {
			return ks, r[1:], nil
		}
		return nil, b, errorf.E("kinds: unexpected byte %q", r[0])
	}
}
