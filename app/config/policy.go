package config

import "go.uber.org/atomic"

// Policy is the runtime-mutable configuration of spec.md §6: the values the
// session consults on every frame. Per spec.md §9's recommendation, it is
// held as an immutable value behind an atomic pointer — writers publish a
// whole new Policy, readers load a consistent snapshot with no locking.
type Policy struct {
	AuthRequired   bool
	AllowedPubkeys map[string]struct{}

	InformationName        string
	InformationDescription string
	InformationPubkey      string
	InformationContact     string
}

// Allowed reports whether pubkey (hex) may publish/subscribe: true when the
// allow-list is empty, or when pubkey is a member.
func (p *Policy) Allowed(pubkeyHex string) bool {
	if len(p.AllowedPubkeys) == 0 {
		return true
	}
	_, ok := p.AllowedPubkeys[pubkeyHex]
	return ok
}

// FromConfig builds the initial Policy snapshot from the loaded C.
func FromConfig(cfg *C) *Policy {
	allowed := make(map[string]struct{}, len(cfg.AllowedPubkeys))
	for _, pk := range cfg.AllowedPubkeys {
		if pk == "" {
			continue
		}
		allowed[pk] = struct{}{}
	}
	return &Policy{
		AuthRequired:            cfg.AuthRequired,
		AllowedPubkeys:          allowed,
		InformationName:         cfg.InformationName,
		InformationDescription:  cfg.InformationDesc,
		InformationPubkey:       cfg.InformationPubkey,
		InformationContact:      cfg.InformationURI,
	}
}

// Store holds the current Policy behind an atomic pointer.
type Store struct {
	v atomic.Pointer[Policy]
}

// NewStore wraps an initial Policy.
func NewStore(initial *Policy) *Store {
	s := &Store{}
	s.v.Store(initial)
	return s
}

// Get returns the current snapshot. Lock-free.
func (s *Store) Get() *Policy { return s.v.Load() }

// Set publishes a new snapshot, immediately visible to subsequent Get calls.
func (s *Store) Set(p *Policy) { s.v.Store(p) }
