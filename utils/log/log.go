// Package log implements a minimal leveled logger in the style the teacher
// repo uses throughout its codebase: a package-level value per level, each
// exposing an F (printf-style), Ln (Println-style) and S (spew-dump) method.
package log

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Level identifies a logging severity.
type Level int

const (
	Off Level = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

var names = map[Level]string{
	Fatal: "FTL", Error: "ERR", Warn: "WRN",
	Info: "INF", Debug: "DBG", Trace: "TRC",
}

// current is the process-wide log level, read on every call, written only by
// SetLevel — single-writer, many-reader, matches the hot-path policy used
// for runtime config elsewhere in this module.
var current atomic.Int32

func init() { current.Store(int32(Info)) }

// SetLevel adjusts the minimum level that will be printed.
func SetLevel(l Level) { current.Store(int32(l)) }

// GetLevel returns the current minimum printed level.
func GetLevel() Level { return Level(current.Load()) }

// ParseLevel converts a textual level name (as found in configuration) into
// a Level, defaulting to Info on an unrecognized value.
func ParseLevel(s string) Level {
	switch s {
	case "fatal":
		return Fatal
	case "error":
		return Error
	case "warn", "warning":
		return Warn
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	default:
		return Info
	}
}

// logger is a bound logging level; the package exposes one instance per
// level as a package variable, so call sites read as log.I.F(...).
type logger struct{ level Level }

var (
	F = &logger{Fatal}
	E = &logger{Error}
	W = &logger{Warn}
	I = &logger{Info}
	D = &logger{Debug}
	T = &logger{Trace}
)

func (l *logger) enabled() bool { return l.level <= GetLevel() }

func (l *logger) prefix() string {
	return time.Now().UTC().Format("15:04:05.000") + " " + names[l.level] + " "
}

// F prints a formatted message at this logger's level.
func (l *logger) F(format string, args ...any) {
	if !l.enabled() {
		return
	}
	fmt.Fprintf(os.Stderr, l.prefix()+format+"\n", args...)
	if l.level == Fatal {
		os.Exit(1)
	}
}

// Ln prints its arguments space-separated at this logger's level.
func (l *logger) Ln(args ...any) {
	if !l.enabled() {
		return
	}
	fmt.Fprintln(os.Stderr, append([]any{l.prefix()}, args...)...)
	if l.level == Fatal {
		os.Exit(1)
	}
}

// S dumps one or more values with spew, for trace-level inspection of
// complex structures without writing a bespoke formatter for each.
func (l *logger) S(args ...any) {
	if !l.enabled() {
		return
	}
	fmt.Fprint(os.Stderr, l.prefix())
	spew.Fdump(os.Stderr, args...)
}
