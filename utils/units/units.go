// Package units names byte-size constants, as used to configure the store's
// cache and block sizes.
package units

const (
	Kb = 1 << 10
	Mb = 1 << 20
	Gb = 1 << 30
)
