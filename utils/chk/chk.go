// Package chk gives the one-line error-check-and-log idiom used at nearly
// every fallible call in this codebase: `if err = f(); chk.E(err) { ... }`.
package chk

import "beacon.dev/utils/log"

// E logs err at error level and reports whether it was non-nil.
func E(err error) bool {
	if err != nil {
		log.E.F("%v", err)
		return true
	}
	return false
}

// T logs err at trace level and reports whether it was non-nil. Used where
// an error is expected often enough in normal operation (signature check
// failures, and the like) that error-level noise would be misleading.
func T(err error) bool {
	if err != nil {
		log.T.F("%v", err)
		return true
	}
	return false
}

// D logs err at debug level and reports whether it was non-nil.
func D(err error) bool {
	if err != nil {
		log.D.F("%v", err)
		return true
	}
	return false
}
