package waypoint_test

import (
	"context"
	"testing"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
	"github.com/azybler/waypointrouter/pkg/waypoint"
)

// legKey identifies one leg search call by the edges its source/target
// phantoms sit on and which target orientation(s) were requested. Using
// the edge pair instead of the phantom value itself lets every test give
// each leg of a scenario a distinct, recognizable identity.
type legKey struct {
	srcEdge, tgtEdge uint32
	seedFwd, seedRev bool
}

// fakeEngine is a search.Engine test double driven entirely by a
// lookup table, bypassing graph traversal so the waypoint dynamic program
// can be exercised against exact scenarios from spec.md §8 without
// constructing real graphs. It ignores the Working heaps entirely — Run
// answers purely from the (srcEdge, tgtEdge, seedFwd, seedRev) key set by
// the immediately preceding InsertNodes call, mirroring how
// search.Directed/search.WithUTurn always call InsertNodes once right
// before the matching Run.
type fakeEngine struct {
	responses  map[legKey]search.LegResult
	degenerate map[legKey]struct {
		node   graph.NodeID
		weight phantom.Weight
	}
	lastKey legKey
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		responses: map[legKey]search.LegResult{},
		degenerate: map[legKey]struct {
			node   graph.NodeID
			weight phantom.Weight
		}{},
	}
}

func (e *fakeEngine) set(srcEdge, tgtEdge uint32, seedFwd, seedRev bool, packed search.PackedPath, weight phantom.Weight) {
	e.responses[legKey{srcEdge, tgtEdge, seedFwd, seedRev}] = search.LegResult{Packed: packed, Weight: weight}
}

func (e *fakeEngine) InsertNodes(w *search.Working, pair phantom.Pair, weightInFwd, weightInRev phantom.Weight, seedTargetFwd, seedTargetRev bool) (graph.NodeID, phantom.Weight) {
	e.lastKey = legKey{pair.Source.EdgeIdx, pair.Target.EdgeIdx, seedTargetFwd, seedTargetRev}
	if d, ok := e.degenerate[e.lastKey]; ok {
		return d.node, d.weight
	}
	return graph.NoNode, phantom.InvalidWeight
}

func (e *fakeEngine) Run(ctx context.Context, w *search.Working, forceLoopFwd, forceLoopRev bool) (search.PackedPath, phantom.Weight) {
	if r, ok := e.responses[e.lastKey]; ok {
		return r.Packed, r.Weight
	}
	return nil, phantom.InvalidWeight
}

func (e *fakeEngine) NeedsLoopForward(source, target phantom.Phantom) bool  { return false }
func (e *fakeEngine) NeedsLoopBackwards(source, target phantom.Phantom) bool { return false }

var _ search.Engine = (*fakeEngine)(nil)

func newWorking() *search.Working { return search.NewWorking(64) }

func straight(yes bool) *bool { return &yes }

func TestSearchEmptyInput(t *testing.T) {
	eng := newFakeEngine()
	result := waypoint.Search(context.Background(), newWorking(), eng, nil, nil, false)
	if !result.Empty {
		t.Fatalf("Result.Empty = false, want true for zero pairs (P7)")
	}
}

// TestSearchStraightCorridor is spec.md §8 scenario 1: a two-leg corridor
// where only the forward orientation is ever enabled, U-turns forbidden.
func TestSearchStraightCorridor(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100}
	b := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 10}, EdgeIdx: 200}
	c := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 20}, EdgeIdx: 300}

	pairs := []phantom.Pair{{Source: a, Target: b}, {Source: b, Target: c}}

	eng := newFakeEngine()
	// Weight is cumulative-from-trip-start (InsertNodes seeds the search
	// with the prior prefix's weight), so leg 1's canned response already
	// includes leg 0's contribution.
	eng.set(100, 200, true, false, search.PackedPath{1, 5, 10}, 2)
	eng.set(200, 300, true, false, search.PackedPath{10, 15, 20}, 4)

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(true), false)
	if result.Empty {
		t.Fatal("Result.Empty = true, want a route")
	}
	if result.Weight != 4 {
		t.Errorf("Weight = %d, want 4", result.Weight)
	}
	if len(result.LegBegins) != 3 {
		t.Fatalf("LegBegins = %v, want 3 entries (2 legs + sentinel), P1", result.LegBegins)
	}
	if result.LegBegins[2] != len(result.Path) {
		t.Errorf("trailing sentinel = %d, want %d", result.LegBegins[2], len(result.Path))
	}
}

// TestSearchReverseEntrySwap is spec.md §8 scenario 2: the second leg enters
// the shared waypoint on its reverse orientation, forcing the R/F splice
// rule to swap prefix_fwd and prefix_rev before appending.
func TestSearchReverseEntrySwap(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100}
	b := phantom.Phantom{
		Forward: phantom.Segment{Enabled: true, ID: 10},
		Reverse: phantom.Segment{Enabled: true, ID: 11},
		EdgeIdx: 200,
	}
	c := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 20}, EdgeIdx: 300}

	pairs := []phantom.Pair{{Source: a, Target: b}, {Source: b, Target: c}}

	eng := newFakeEngine()
	// Leg 0: only source A.Forward enabled -> seeded into weightInFwd only.
	// Both of B's orientations are reachable, at different cumulative costs.
	eng.set(100, 200, true, false, search.PackedPath{1, 5, 10}, 5)  // enters B.Forward
	eng.set(100, 200, false, true, search.PackedPath{1, 6, 11}, 7) // enters B.Reverse
	// Leg 1: target C only has Forward enabled, so only one Directed subcall
	// runs; it is seeded from both of B's prefixes at once and its packed
	// path begins at B.Reverse.ID (11), exercising the R/F swap. Weight is
	// cumulative, so this canned response already bakes in B.Reverse's 7.
	eng.set(200, 300, true, false, search.PackedPath{11, 16, 20}, 10)

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(true), false)
	if result.Empty {
		t.Fatal("Result.Empty = true, want a route")
	}
	if result.Weight != 10 {
		t.Errorf("Weight = %d, want 10, via the swapped reverse prefix", result.Weight)
	}

	// The leg that entered waypoint B used its reverse orientation (11),
	// not the forward one (10) — confirms the swap picked up the right
	// accumulated prefix rather than the unrelated forward-ending one.
	begin, end := result.LegBegins[1], result.LegBegins[2]
	if result.Path[begin] != 11 {
		t.Errorf("leg 1 entry node = %d, want 11 (source_traversed_in_reverse)", result.Path[begin])
	}
	if result.Path[end-1] != 20 {
		t.Errorf("leg 1 exit node = %d, want 20", result.Path[end-1])
	}
}

// TestSearchUTurnCollapse is spec.md §8 scenario 3: with U-turns permitted,
// a single searchWithUTurn call is used and its result is duplicated into
// whichever target orientation(s) are enabled.
func TestSearchUTurnCollapse(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100}
	b := phantom.Phantom{
		Forward: phantom.Segment{Enabled: true, ID: 10},
		Reverse: phantom.Segment{Enabled: true, ID: 11},
		EdgeIdx: 200,
	}

	pairs := []phantom.Pair{{Source: a, Target: b}}

	eng := newFakeEngine()
	eng.set(100, 200, true, true, search.PackedPath{1, 5, 10}, 2)

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(false), false)
	if result.Empty {
		t.Fatal("Result.Empty = true, want a route")
	}
	if result.Weight != 2 {
		t.Errorf("Weight = %d, want 2", result.Weight)
	}
}

// TestSearchBrokenMiddle is spec.md §8 scenario 5: the middle leg of three
// has no path in either orientation, so the whole search fails empty.
func TestSearchBrokenMiddle(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100}
	b := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 10}, EdgeIdx: 200}
	c := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 20}, EdgeIdx: 300}
	d := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 30}, EdgeIdx: 400}

	pairs := []phantom.Pair{
		{Source: a, Target: b},
		{Source: b, Target: c}, // deliberately left unset -> INVALID
		{Source: c, Target: d},
	}

	eng := newFakeEngine()
	eng.set(100, 200, true, false, search.PackedPath{1, 10}, 1)
	eng.set(300, 400, true, false, search.PackedPath{20, 30}, 1)

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(true), false)
	if !result.Empty {
		t.Fatalf("Result.Empty = false, want true when the middle leg is unreachable")
	}
}

// TestSearchDegenerateMerge is spec.md §8 scenario 4: the bidirectional
// search reports no path but the degenerate same-edge candidate is finite,
// so the leg is emitted as a single-node packed path.
func TestSearchDegenerateMerge(t *testing.T) {
	p := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100, Ratio: 0.2}
	q := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 2}, EdgeIdx: 100, Ratio: 0.8}

	pairs := []phantom.Pair{{Source: p, Target: q}}

	eng := newFakeEngine()
	// No bidirectional result set (defaults to Invalid); only the
	// degenerate candidate is registered.
	eng.degenerate[legKey{100, 100, true, false}] = struct {
		node   graph.NodeID
		weight phantom.Weight
	}{node: 2, weight: 42}

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(true), false)
	if result.Empty {
		t.Fatal("Result.Empty = true, want the degenerate candidate to be used")
	}
	if result.Weight != 42 {
		t.Errorf("Weight = %d, want 42", result.Weight)
	}
	if len(result.Path) != 1 || result.Path[0] != 2 {
		t.Errorf("Path = %v, want single-node [2]", result.Path)
	}
}

// TestSearchTieBreak is spec.md §8 scenario 6 / P6: equal weight prefers
// the shorter packed path.
func TestSearchTieBreak(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}, EdgeIdx: 100}
	b := phantom.Phantom{
		Forward: phantom.Segment{Enabled: true, ID: 10},
		Reverse: phantom.Segment{Enabled: true, ID: 11},
		EdgeIdx: 200,
	}

	pairs := []phantom.Pair{{Source: a, Target: b}}

	eng := newFakeEngine()
	// Same weight, different lengths: forward path is longer, reverse is
	// shorter — the shorter one must win regardless of prefix identity.
	eng.set(100, 200, true, false, search.PackedPath{1, 3, 4, 5, 10}, 9)
	eng.set(100, 200, false, true, search.PackedPath{1, 11}, 9)

	result := waypoint.Search(context.Background(), newWorking(), eng, pairs, straight(true), false)
	if result.Empty {
		t.Fatal("Result.Empty = true, want a route")
	}
	if len(result.Path) != 2 {
		t.Errorf("Path length = %d, want 2 (shorter prefix should win the tie)", len(result.Path))
	}
}
