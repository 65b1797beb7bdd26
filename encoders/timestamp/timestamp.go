// Package timestamp wraps the nostr created_at field: a signed Unix-second
// integer.
package timestamp

import (
	"strconv"
	"time"
)

// T is a nostr timestamp.
type T struct{ V int64 }

// New wraps a raw unix-seconds value.
func New(v int64) *T { return &T{V: v} }

// Now returns the current time as a T.
func Now() *T { return &T{V: time.Now().Unix()} }

// I64 returns the timestamp as int64.
func (t *T) I64() int64 {
	if t == nil {
		return 0
	}
	return t.V
}

// Time converts the timestamp to a time.Time.
func (t *T) Time() time.Time { return time.Unix(t.I64(), 0).UTC() }

// Marshal appends the decimal rendering of the timestamp (a bare JSON
// number, no fractional part, per spec.md §4.1).
func (t *T) Marshal(dst []byte) []byte {
	return strconv.AppendInt(dst, t.I64(), 10)
}

// Unmarshal reads a decimal integer off the front of b.
func (t *T) Unmarshal(b []byte) (rem []byte, err error) {
	i := 0
	for i < len(b) && (b[i] == '-' || (b[i] >= '0' && b[i] <= '9')) {
		i++
	}
	var v int64
	if v, err = strconv.ParseInt(string(b[:i]), 10, 64); err != nil {
		return b, err
	}
	t.V = v
	return b[i:], nil
}
