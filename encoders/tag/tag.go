// Package tag implements a nostr tag: an ordered sequence of strings whose
// first element names the tag, plus S — an ordered sequence of tags.
package tag

import "bytes"

// T is a single tag: an ordered sequence of byte-string fields, the first of
// which is conventionally the tag name.
type T struct{ Field [][]byte }

// New builds a tag from string fields.
func New(fields ...string) *T {
	t := &T{Field: make([][]byte, len(fields))}
	for i, f := range fields {
		t.Field[i] = []byte(f)
	}
	return t
}

// NewFromBytes builds a tag from byte-slice fields.
func NewFromBytes(fields ...[]byte) *T { return &T{Field: fields} }

// Len returns the number of fields in the tag.
func (t *T) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Field)
}

// Key returns the first field (the tag name), or nil if empty.
func (t *T) Key() []byte {
	if t.Len() < 1 {
		return nil
	}
	return t.Field[0]
}

// Value returns the second field, or nil if absent.
func (t *T) Value() []byte {
	if t.Len() < 2 {
		return nil
	}
	return t.Field[1]
}

// B returns the field at index i.
func (t *T) B(i int) []byte {
	if i < 0 || i >= t.Len() {
		return nil
	}
	return t.Field[i]
}

// ToStringsSlice renders the tag as a slice of strings.
func (t *T) ToStringsSlice() []string {
	out := make([]string, t.Len())
	for i, f := range t.Field {
		out[i] = string(f)
	}
	return out
}

// S is an ordered collection of tags.
type S struct{ Field []*T }

// NewS creates an empty tag collection.
func NewS() *S { return &S{} }

// NewSWithCap creates an empty tag collection with capacity hinted.
func NewSWithCap(n int) *S { return &S{Field: make([]*T, 0, n)} }

// Append adds tags to the collection and returns the receiver for chaining.
func (s *S) Append(tags ...*T) *S {
	s.Field = append(s.Field, tags...)
	return s
}

// Len reports the number of tags in the collection.
func (s *S) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Field)
}

// GetFirst returns the first tag whose key matches name, or nil.
func (s *S) GetFirst(name string) *T {
	if s == nil {
		return nil
	}
	nb := []byte(name)
	for _, t := range s.Field {
		if bytes.Equal(t.Key(), nb) {
			return t
		}
	}
	return nil
}

// GetAll returns every tag whose key matches name.
func (s *S) GetAll(name string) []*T {
	if s == nil {
		return nil
	}
	nb := []byte(name)
	var out []*T
	for _, t := range s.Field {
		if bytes.Equal(t.Key(), nb) {
			out = append(out, t)
		}
	}
	return out
}

// ToStringsSlice renders the whole collection as [][]string.
func (s *S) ToStringsSlice() [][]string {
	if s == nil {
		return nil
	}
	out := make([][]string, len(s.Field))
	for i, t := range s.Field {
		out[i] = t.ToStringsSlice()
	}
	return out
}

// FromStringsSlice builds a tag collection from [][]string.
func FromStringsSlice(ss [][]string) *S {
	s := NewSWithCap(len(ss))
	for _, row := range ss {
		s.Append(New(row...))
	}
	return s
}

// Clone makes a deep-enough copy (tags themselves are treated as immutable
// once built, so the field slices are shared).
func (s *S) Clone() *S {
	c := NewSWithCap(s.Len())
	c.Field = append(c.Field, s.Field...)
	return c
}

// Intersects reports whether any tag in s has the same key and a
// value in common with any tag of the same key in o. Filter "#X" matching
// does not go through this method; filter.F.Matches checks tag values itself.
func (s *S) Intersects(o *S) bool {
	if s.Len() == 0 || o.Len() == 0 {
		return false
	}
	for _, want := range o.Field {
		if want.Len() < 2 {
			continue
		}
		key := want.Key()
		wantVals := want.Field[1:]
		for _, have := range s.Field {
			if !bytes.Equal(have.Key(), key) || have.Len() < 2 {
				continue
			}
			haveVal := have.Value()
			for _, wv := range wantVals {
				if bytes.Equal(haveVal, wv) {
					return true
				}
			}
		}
	}
	return false
}
