package waypoint

import "fmt"

// assertf panics on violation of an internal invariant of the dynamic
// program. These mirror the BOOST_ASSERT checks in shortest_path.cpp: they
// guard conditions the caller's phantom/pair construction is responsible
// for upholding, not user-facing error paths (SPEC_FULL.md §8).
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
