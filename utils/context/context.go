// Package context provides short aliases for the standard context types used
// throughout the relay, matching the teacher's convention of giving the
// ubiquitous types single-letter names.
package context

import "context"

// T is a context.Context.
type T = context.Context

// F is a cancellation function.
type F = context.CancelFunc

// Bg returns a background context.
func Bg() T { return context.Background() }

// Cancel wraps context.WithCancel.
func Cancel(c T) (ctx T, cancel F) { return context.WithCancel(c) }
