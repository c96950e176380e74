package lifecycle

import "fmt"

// Check panics with a formatted message when cond is false. It guards
// contracts whose violation would corrupt the lifecycle (re-entrant updates)
// and is active in every build.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("CHECK failed: "+format, args...))
	}
}

// DCheck is like Check but compiled to a no-op when the module is built with
// the "release" build tag.
func DCheck(cond bool, format string, args ...any) {
	if dcheckIsOn && !cond {
		panic(fmt.Sprintf("DCHECK failed: "+format, args...))
	}
}

// DCheckIsOn reports whether DCheck assertions are active in this build.
func DCheckIsOn() bool { return dcheckIsOn }
