//go:build !coredebug

package assertx

// Check is a no-op in release builds: invariant checks cost nothing
// outside of coredebug builds.
func Check(cond bool, format string, args ...interface{}) {}

// Invariant is a no-op in release builds.
func Invariant(cond bool, msg string) {}
