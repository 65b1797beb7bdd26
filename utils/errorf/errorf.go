// Package errorf is a thin fmt.Errorf wrapper so call sites read errorf.E(...)
// alongside chk.E(...) and log.E.F(...), matching the teacher's naming
// convention for its small utility packages.
package errorf

import "fmt"

// E formats and returns an error, equivalent to fmt.Errorf without a %w verb.
func E(format string, args ...any) error { return fmt.Errorf(format, args...) }
