//go:build coredebug

// Package assertx provides cheap internal-invariant checks, compiled in
// only under the coredebug build tag and compiled away entirely in
// release builds — the same "this should never happen" panic idiom the
// teacher uses for its own unrecoverable states (progressbar: close on
// closed bar).
package assertx

import "fmt"

// Check panics with an "assertx: invariant violated" message if cond is
// false. Callers name the invariant that broke, not the symptom.
func Check(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertx: invariant violated: "+format, args...))
	}
}

// Invariant is Check with the message built eagerly, for call sites
// that already have a formatted string.
func Invariant(cond bool, msg string) {
	if !cond {
		panic("assertx: invariant violated: " + msg)
	}
}
