package search

import (
	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// PackedPath is an ordered sequence of overlay NodeIDs describing a leg's
// route in the engine's compressed form (spec.md §3). The leg unpacker
// expands shortcut edges between consecutive entries into base-graph edges.
type PackedPath = []graph.NodeID

// LegResult is the outcome of one bidirectional leg query.
type LegResult struct {
	Packed PackedPath
	Weight phantom.Weight
}

// Working is the per-query scratch space a caller owns exclusively for the
// duration of one shortestPathSearch call (spec.md §3 "Search Heaps /
// Working Storage", §5 "Concurrency & Resource Model"). It is pooled across
// queries and cleared, not reallocated, at entry.
type Working struct {
	distFwd []phantom.Weight
	distBwd []phantom.Weight
	predFwd []graph.NodeID
	predBwd []graph.NodeID

	// seededFwd/seededBwd mark nodes pushed directly by InsertNodes (as
	// opposed to discovered via edge relaxation). A node that is seeded on
	// both sides represents a zero-hop meeting candidate — see the
	// loop-forcing check in Run.
	seededFwd []bool
	seededBwd []bool

	touched []graph.NodeID

	fwdPQ minHeap
	bwdPQ minHeap
}

// NewWorking allocates working storage sized for a graph with n nodes.
func NewWorking(n uint32) *Working {
	w := &Working{
		distFwd:   make([]phantom.Weight, n),
		distBwd:   make([]phantom.Weight, n),
		predFwd:   make([]graph.NodeID, n),
		predBwd:   make([]graph.NodeID, n),
		seededFwd: make([]bool, n),
		seededBwd: make([]bool, n),
		touched:   make([]graph.NodeID, 0, 1024),
		fwdPQ:     minHeap{items: make([]pqItem, 0, 256)},
		bwdPQ:     minHeap{items: make([]pqItem, 0, 256)},
	}
	for i := range w.distFwd {
		w.distFwd[i] = phantom.InvalidWeight
		w.distBwd[i] = phantom.InvalidWeight
		w.predFwd[i] = graph.NoNode
		w.predBwd[i] = graph.NoNode
	}
	return w
}

// Reset clears only the touched entries, for fast reuse across legs and
// across pooled queries.
func (w *Working) Reset() {
	for _, node := range w.touched {
		w.distFwd[node] = phantom.InvalidWeight
		w.distBwd[node] = phantom.InvalidWeight
		w.predFwd[node] = graph.NoNode
		w.predBwd[node] = graph.NoNode
		w.seededFwd[node] = false
		w.seededBwd[node] = false
	}
	w.touched = w.touched[:0]
	w.fwdPQ.Reset()
	w.bwdPQ.Reset()
}

func (w *Working) touch(node graph.NodeID) {
	if w.distFwd[node] == phantom.InvalidWeight && w.distBwd[node] == phantom.InvalidWeight {
		w.touched = append(w.touched, node)
	}
}

// seedFwd inserts node into the forward heap with initial priority dist,
// marking it as a direct seed (not yet reached via any edge).
func (w *Working) seedFwd(node graph.NodeID, dist phantom.Weight) {
	if dist == phantom.InvalidWeight {
		return
	}
	w.touch(node)
	if dist < w.distFwd[node] {
		w.distFwd[node] = dist
		w.fwdPQ.Push(node, dist)
	}
	w.seededFwd[node] = true
}

// seedBwd is the backward-heap analogue of seedFwd.
func (w *Working) seedBwd(node graph.NodeID, dist phantom.Weight) {
	if dist == phantom.InvalidWeight {
		return
	}
	w.touch(node)
	if dist < w.distBwd[node] {
		w.distBwd[node] = dist
		w.bwdPQ.Push(node, dist)
	}
	w.seededBwd[node] = true
}

// relaxFwd/relaxBwd are used by an Engine's Run to push a node discovered by
// traversing an edge out of another node (as opposed to direct seeding).
func (w *Working) relaxFwd(node graph.NodeID, dist phantom.Weight, pred graph.NodeID) {
	w.touch(node)
	w.distFwd[node] = dist
	w.predFwd[node] = pred
	w.fwdPQ.Push(node, dist)
}

func (w *Working) relaxBwd(node graph.NodeID, dist phantom.Weight, pred graph.NodeID) {
	w.touch(node)
	w.distBwd[node] = dist
	w.predBwd[node] = pred
	w.bwdPQ.Push(node, dist)
}
