package search

import (
	"context"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// Directed implements spec.md §4.1 searchDirected: it runs the engine up to
// twice, once constrained to terminate in the target's forward orientation
// and once in its reverse, applying loop-forcing and the degenerate
// same-edge merge to each. Either result may be the empty/INVALID LegResult
// when that orientation of the target is disabled or unreachable.
func Directed(
	ctx context.Context,
	engine Engine,
	w *Working,
	fromFwdEnabled, fromRevEnabled bool,
	toFwdEnabled, toRevEnabled bool,
	pair phantom.Pair,
	weightInFwd, weightInRev phantom.Weight,
) (toFwd, toRev LegResult) {
	weightInFwd = gateWeight(fromFwdEnabled, weightInFwd)
	weightInRev = gateWeight(fromRevEnabled, weightInRev)

	// Default both to INVALID: a disabled target orientation must never be
	// read as a zero-weight (and therefore winning) leg by resolveSplice.
	toFwd = LegResult{Weight: phantom.InvalidWeight}
	toRev = LegResult{Weight: phantom.InvalidWeight}

	if toFwdEnabled {
		// Reset, not just clear the heaps: the two subcalls below (and every
		// other leg sharing this *Working) must each start from a clean
		// distFwd/distBwd/predFwd/predBwd/seededFwd/seededBwd slate, the way
		// OSRM's QueryHeap::Clear() runs before every subcall in
		// shortest_path.cpp. Leftover per-node state from a sibling subcall
		// or a previous leg would otherwise gate seedFwd/seedBwd's strict-less
		// pushes and corrupt relaxation and the backward-meet check.
		w.Reset()
		degenerateNode, degenerateWeight := engine.InsertNodes(w, pair, weightInFwd, weightInRev, true, false)

		packed, weight := engine.Run(ctx, w, engine.NeedsLoopForward(pair.Source, pair.Target), false)
		toFwd = mergeDegenerate(packed, weight, degenerateNode, degenerateWeight)
	}

	if toRevEnabled {
		w.Reset()
		degenerateNode, degenerateWeight := engine.InsertNodes(w, pair, weightInFwd, weightInRev, false, true)

		packed, weight := engine.Run(ctx, w, false, engine.NeedsLoopBackwards(pair.Source, pair.Target))
		toRev = mergeDegenerate(packed, weight, degenerateNode, degenerateWeight)
	}

	return toFwd, toRev
}

// WithUTurn implements spec.md §4.1 searchWithUTurn: the variant used when
// U-turns at the target are permitted. It collapses the two subcalls of
// Directed into one search that may terminate at either enabled orientation
// of the target, and asserts neither loop-forcing flag (a U-turn at the
// waypoint makes the same-edge loop naturally satisfiable).
func WithUTurn(
	ctx context.Context,
	engine Engine,
	w *Working,
	fromFwdEnabled, fromRevEnabled bool,
	toFwdEnabled, toRevEnabled bool,
	pair phantom.Pair,
	weightInFwd, weightInRev phantom.Weight,
) LegResult {
	weightInFwd = gateWeight(fromFwdEnabled, weightInFwd)
	weightInRev = gateWeight(fromRevEnabled, weightInRev)

	w.Reset()
	degenerateNode, degenerateWeight := engine.InsertNodes(w, pair, weightInFwd, weightInRev, toFwdEnabled, toRevEnabled)

	packed, weight := engine.Run(ctx, w, false, false)
	return mergeDegenerate(packed, weight, degenerateNode, degenerateWeight)
}

func gateWeight(enabled bool, weight phantom.Weight) phantom.Weight {
	if !enabled {
		return phantom.InvalidWeight
	}
	return weight
}

// mergeDegenerate implements spec.md §4.1 step 5's final rule: if the
// bidirectional result is INVALID but the degenerate weight is finite, the
// LegResult becomes the single-node packed form; otherwise the degenerate
// candidate is discarded.
func mergeDegenerate(packed PackedPath, weight phantom.Weight, degenerateNode graph.NodeID, degenerateWeight phantom.Weight) LegResult {
	if weight == phantom.InvalidWeight && degenerateWeight != phantom.InvalidWeight {
		return LegResult{Packed: PackedPath{degenerateNode}, Weight: degenerateWeight}
	}
	return LegResult{Packed: packed, Weight: weight}
}
