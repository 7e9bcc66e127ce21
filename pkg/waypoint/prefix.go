package waypoint

import (
	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
)

// Prefix is the best-known route so far ending in one orientation (forward
// or reverse) at the most recently committed waypoint (spec.md §3 "DP
// State"). leg_begins[i] is the offset in Path where leg i starts.
type Prefix struct {
	Path      search.PackedPath
	LegBegins []int
	Weight    phantom.Weight
	Live      bool
}

// dpState holds both parallel prefixes carried across waypoints.
type dpState struct {
	fwd Prefix
	rev Prefix
}

// clonePrefix deep-copies a Prefix's backing slices. Required by the F/F
// and R/R splice cases (spec.md §4.2 step C): duplicating a leg into both
// slots must not leave the two prefixes aliasing the same backing array,
// or appending to one would corrupt the other.
func clonePrefix(p Prefix) Prefix {
	path := make(search.PackedPath, len(p.Path))
	copy(path, p.Path)
	legBegins := make([]int, len(p.LegBegins))
	copy(legBegins, p.LegBegins)
	return Prefix{Path: path, LegBegins: legBegins, Weight: p.Weight, Live: p.Live}
}

// resolveSplice implements the six-case splice table of spec.md §4.2 step C,
// translated from shortest_path.cpp's forward_to_forward/reverse_to_forward/
// forward_to_reverse/reverse_to_reverse dance. It decides, for a leg beyond
// the first, which prefix(es) newFwd and newRev actually extend, mutating dp
// in place so that by the time commitLeg runs, newFwd always belongs
// logically to dp.fwd and newRev to dp.rev.
func resolveSplice(dp *dpState, newFwd, newRev search.LegResult, source phantom.Phantom) {
	forwardToForward := newFwd.Weight != phantom.InvalidWeight &&
		source.Forward.Enabled && newFwd.Packed[0] == source.Forward.ID
	reverseToForward := newFwd.Weight != phantom.InvalidWeight &&
		source.Reverse.Enabled && newFwd.Packed[0] == source.Reverse.ID
	forwardToReverse := newRev.Weight != phantom.InvalidWeight &&
		source.Forward.Enabled && newRev.Packed[0] == source.Forward.ID
	reverseToReverse := newRev.Weight != phantom.InvalidWeight &&
		source.Reverse.Enabled && newRev.Packed[0] == source.Reverse.ID

	assertf(!(forwardToForward && reverseToForward), "new_fwd leg entry node matches both source orientations")
	assertf(!(forwardToReverse && reverseToReverse), "new_rev leg entry node matches both source orientations")

	// F/F: the forward-ending leg attaches to prefix_fwd; the
	// reverse-ending leg also starts from F, so it needs prefix_fwd's
	// history too — copy it onto the reverse slot before splicing.
	if forwardToForward && forwardToReverse {
		dp.rev = clonePrefix(dp.fwd)
		forwardToReverse = false
		reverseToReverse = true
	} else if reverseToForward && reverseToReverse {
		// R/R: mirror image of the above.
		dp.fwd = clonePrefix(dp.rev)
		reverseToForward = false
		forwardToForward = true
	}

	assertf(!(forwardToForward && forwardToReverse), "new leg cannot attach to both prefixes after duplication")
	assertf(!(reverseToForward && reverseToReverse), "new leg cannot attach to both prefixes after duplication")

	// R/F or F/R: the new legs cross, so the prefixes they extend must
	// swap places to stay aligned with which slot newFwd/newRev belong in.
	if reverseToForward || forwardToReverse {
		dp.fwd, dp.rev = dp.rev, dp.fwd
	}
}

// commitLeg appends a leg's packed path onto p, or resets p to the empty/
// dead state if the leg is INVALID (spec.md §4.2 step D).
func commitLeg(p *Prefix, leg search.LegResult) {
	if leg.Weight != phantom.InvalidWeight {
		p.LegBegins = append(p.LegBegins, len(p.Path))
		p.Path = append(p.Path, leg.Packed...)
		p.Weight = leg.Weight
		p.Live = true
		return
	}
	p.Path = p.Path[:0]
	p.LegBegins = p.LegBegins[:0]
	p.Live = false
	p.Weight = phantom.InvalidWeight
}

// selectWinner implements spec.md §4.2's tie-break rule (P6): smaller
// weight wins; equal weight prefers the shorter packed path; any remaining
// tie prefers prefix_fwd.
func selectWinner(fwd, rev Prefix) Prefix {
	assertf(fwd.Live || rev.Live, "shortestPathSearch completed with neither prefix live")
	if !rev.Live {
		return fwd
	}
	if !fwd.Live {
		return rev
	}
	if fwd.Weight != rev.Weight {
		if fwd.Weight < rev.Weight {
			return fwd
		}
		return rev
	}
	if len(fwd.Path) <= len(rev.Path) {
		return fwd
	}
	return rev
}
