// Package relayinfo builds the NIP-11 relay information document served at
// "/" for every non-upgrade GET request (the Accept header is not checked) — the
// out-of-core-scope HTTP surface spec.md §1 assumes exists around the
// Relay Session. Grounded on the teacher's protocol/relayinfo.T usage in
// app/realy/handleRelayinfo.go and server/handle-relayinfo.go.
package relayinfo

import "beacon.dev/app/config"

// Limits mirrors NIP-11's "limitation" object, trimmed to the fields this
// relay's Policy actually tracks.
type Limits struct {
	AuthRequired     bool `json:"auth_required"`
	RestrictedWrites bool `json:"restricted_writes"`
}

// T is the NIP-11 relay information document.
type T struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Pubkey        string   `json:"pubkey,omitempty"`
	Contact       string   `json:"contact,omitempty"`
	SupportedNIPs []int    `json:"supported_nips"`
	Software      string   `json:"software"`
	Version       string   `json:"version"`
	Limitation    Limits   `json:"limitation"`
}

// supportedNIPs lists the NIPs this relay's wire behavior actually
// implements: NIP-01 (basic protocol, generic tag queries, event
// treatment, EOSE, replaceable events), NIP-09 (deletion), NIP-11 (this
// document), NIP-33 (parameterized-replaceable events), NIP-42 (AUTH).
var supportedNIPs = []int{1, 9, 11, 33, 42}

// Build assembles the document from the given Policy snapshot and the
// relay's name/version.
func Build(name, version string, p *config.Policy) *T {
	return &T{
		Name:          orDefault(p.InformationName, name),
		Description:   p.InformationDescription,
		Pubkey:        p.InformationPubkey,
		Contact:       p.InformationContact,
		SupportedNIPs: supportedNIPs,
		Software:      "https://github.com/beacon-dev/beacon",
		Version:       version,
		Limitation: Limits{
			AuthRequired:     p.AuthRequired,
			RestrictedWrites: p.AuthRequired,
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
