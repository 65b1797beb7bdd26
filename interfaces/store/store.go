// Package store is the storage abstraction of spec.md §4.2, kept separate
// from its badger-backed implementation. It is the type
// app/relay.Relay.Storage() returns; session.S and the Relay itself hold the
// concrete *store.D. Grounded on the teacher's
// interfaces/store/store_interface.go, trimmed to the operations spec.md
// names (no import/export/rescan surface — this relay has one store impl).
package store

import (
	"beacon.dev/encoders/event"
	"beacon.dev/encoders/filter"
)

// I is the persistence layer's operation set, implemented by *store.D.
type I interface {
	// Path returns the directory the store is backed by.
	Path() string
	// Close releases the store's resources.
	Close() error
	// Sync flushes any buffered writes to durable storage.
	Sync() error

	// PutRegular appends a regular event, a no-op on duplicate id.
	PutRegular(ev *event.E) error
	// PutReplaceable stores ev, keeping only the latest per (pubkey,kind).
	PutReplaceable(ev *event.E) error
	// PutParameterized stores ev, keeping only the latest per
	// (pubkey,kind,d_tag).
	PutParameterized(ev *event.E) error

	// Query returns the events matching any filter in filters, deduplicated,
	// newest-first, truncated to the smallest present Limit.
	Query(filters []*filter.F) (event.S, error)
	// GetById looks up a single event by id.
	GetById(id []byte) (*event.E, error)
	// DeleteEvent removes an event, optionally recording a tombstone.
	DeleteEvent(id []byte, tombstone bool) error
}
