package store

import "beacon.dev/encoders/event"

// ToWire implements spec.md §4.2 to_wire: the canonical client-facing JSON
// object shape for a stored event.
func ToWire(ev *event.E) []byte { return ev.Marshal(nil) }
