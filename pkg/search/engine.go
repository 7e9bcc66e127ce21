// Package search holds the per-query working storage and the pluggable
// bidirectional leg-search primitive consumed by the waypoint dynamic
// program (spec.md §4.1). It knows nothing about multi-waypoint splicing;
// that lives in package waypoint.
package search

import (
	"context"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// Engine is the bidirectional one-to-one shortest-path search this package
// treats as an external, swappable collaborator (spec.md §1). CHEngine and
// PlainEngine both satisfy it; the waypoint dynamic program is written
// against this interface only.
type Engine interface {
	// InsertNodes seeds w's forward and/or backward heap from pair's
	// source/target phantoms (spec.md §4.1 step 1–2) and evaluates the
	// degenerate same-edge candidate (step 5): a (node, weight) pair
	// describing a path that never leaves the source/target edge. It
	// returns graph.NoNode / phantom.InvalidWeight when no such
	// candidate exists. w must have been Reset before the first call in
	// a query.
	InsertNodes(w *Working, pair phantom.Pair, weightInFwd, weightInRev phantom.Weight, seedTargetFwd, seedTargetRev bool) (degenerateNode graph.NodeID, degenerateWeight phantom.Weight)

	// Run performs one bidirectional query against whatever InsertNodes
	// most recently seeded, applying the loop-forcing rule (step 4) when
	// forceLoopFwd/forceLoopRev hold, then returns the packed path and
	// its weight (nil path / phantom.InvalidWeight if unreachable).
	Run(ctx context.Context, w *Working, forceLoopFwd, forceLoopRev bool) (PackedPath, phantom.Weight)

	// NeedsLoopForward/NeedsLoopBackwards are the loop-forcing policy
	// predicates over (source, target); see spec.md §9 design notes.
	NeedsLoopForward(source, target phantom.Phantom) bool
	NeedsLoopBackwards(source, target phantom.Phantom) bool
}
