// Package unpack implements the Leg Unpacker boundary (spec.md §4.3): once
// the waypoint dynamic program has picked a winning packed path, this
// package walks its leg boundaries and asks a Facade to expand each leg into
// a concrete route segment, deriving the per-leg traversal-orientation flags
// along the way. The facade itself — shortcut expansion into original-graph
// edges and geometry construction — is external (adapted by routing.Engine
// from the teacher's unpackOverlayPath/buildGeometry).
package unpack

import (
	"fmt"

	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
)

// Segment is one leg's expanded route. Facade implementations fill in
// whatever geometry representation the caller ultimately needs; this
// package only ever looks at the boundary node ids of the packed slice it
// hands to UnpackPath, never at Segment's contents.
type Segment struct {
	Nodes []uint32
}

// Facade expands packed[begin:end] — one leg's slice of the winning path,
// still in packed (shortcut-not-yet-expanded) form — into a route segment.
// Implemented by routing.Engine.
type Facade interface {
	UnpackPath(packed search.PackedPath, begin, end int, pair phantom.Pair) Segment
}

// Result is the InternalRouteResult of spec.md §6. Empty is true when no
// route exists; in that case every other field is the zero value.
type Result struct {
	SegmentEndCoordinates    []phantom.Pair
	UnpackedPathSegments     []Segment
	SourceTraversedInReverse []bool
	TargetTraversedInReverse []bool
	ShortestPathWeight       phantom.Weight
	Empty                    bool
}

// Legs implements spec.md §4.3: given the winning prefix's packed path,
// leg_begins (with its trailing sentinel), and total weight, it produces
// one Segment per leg plus the per-leg orientation flags.
func Legs(facade Facade, pairs []phantom.Pair, winning search.PackedPath, legBegins []int, weight phantom.Weight) Result {
	if len(pairs) == 0 || weight == phantom.InvalidWeight {
		return Result{Empty: true}
	}
	assertf(len(legBegins) == len(pairs)+1, "leg_begins has %d entries for %d pairs, want %d", len(legBegins), len(pairs), len(pairs)+1)

	segments := make([]Segment, len(pairs))
	sourceRev := make([]bool, len(pairs))
	targetRev := make([]bool, len(pairs))

	for i, pair := range pairs {
		begin, end := legBegins[i], legBegins[i+1]
		assertf(begin <= end && end <= len(winning), "leg %d bounds [%d,%d) out of range for packed path of length %d", i, begin, end, len(winning))

		segments[i] = facade.UnpackPath(winning, begin, end, pair)

		firstNode := winning[begin]
		lastNode := winning[end-1]
		sourceRev[i] = firstNode != pair.Source.Forward.ID
		targetRev[i] = lastNode != pair.Target.Forward.ID
	}

	return Result{
		SegmentEndCoordinates:    pairs,
		UnpackedPathSegments:     segments,
		SourceTraversedInReverse: sourceRev,
		TargetTraversedInReverse: targetRev,
		ShortestPathWeight:       weight,
	}
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
