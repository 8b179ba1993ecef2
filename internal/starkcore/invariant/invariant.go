// Package invariant provides the core's hard-precondition asserts.
// Contract violations (non-power-of-two domain sizes, malformed
// divisors, fragment sizes below the minimum, ...) are programming
// errors, not recoverable runtime errors, and panic rather than return
// an error.
package invariant

import "fmt"

// Assert panics with msg if cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic("starkcore: invariant violated: " + msg)
	}
}

// Assertf panics with a formatted message if cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("starkcore: invariant violated: " + fmt.Sprintf(format, args...))
	}
}
