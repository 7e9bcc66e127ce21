package search

import (
	"context"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// PlainEngine runs unaccelerated bidirectional Dijkstra directly over the
// base graph, with no Contraction Hierarchies overlay and therefore no
// shortcut unpacking step. It satisfies the same search.Engine contract as
// CHEngine, which is the point: the waypoint dynamic program never needs to
// know which one it is driving (spec.md §1, §4.1, §9).
type PlainEngine struct {
	g *graph.Graph
}

// NewPlainEngine wraps a base (non-contracted) graph for direct search.
func NewPlainEngine(g *graph.Graph) *PlainEngine {
	return &PlainEngine{g: g}
}

var _ Engine = (*PlainEngine)(nil)

func (e *PlainEngine) InsertNodes(w *Working, pair phantom.Pair, weightInFwd, weightInRev phantom.Weight, seedTargetFwd, seedTargetRev bool) (graph.NodeID, phantom.Weight) {
	src := pair.Source
	tgt := pair.Target

	if src.Forward.Enabled && weightInFwd != phantom.InvalidWeight {
		w.seedFwd(src.Forward.ID, phantom.AddWeight(weightInFwd, src.Forward.Offset))
	}
	if src.Reverse.Enabled && weightInRev != phantom.InvalidWeight {
		w.seedFwd(src.Reverse.ID, phantom.AddWeight(weightInRev, src.Reverse.Offset))
	}
	if seedTargetFwd && tgt.Forward.Enabled {
		w.seedBwd(tgt.Forward.ID, tgt.Forward.Offset)
	}
	if seedTargetRev && tgt.Reverse.Enabled {
		w.seedBwd(tgt.Reverse.ID, tgt.Reverse.Offset)
	}

	return degenerateCandidate(src, tgt, seedTargetFwd, seedTargetRev)
}

func (e *PlainEngine) NeedsLoopForward(source, target phantom.Phantom) bool {
	return source.EdgeIdx == target.EdgeIdx && source.Forward.Enabled && target.Forward.Enabled
}

func (e *PlainEngine) NeedsLoopBackwards(source, target phantom.Phantom) bool {
	return source.EdgeIdx == target.EdgeIdx && source.Reverse.Enabled && target.Reverse.Enabled
}

// Run mirrors CHEngine.Run but walks the base graph's CSR adjacency in both
// directions (the backward step needs an incoming-edge scan since
// graph.Graph, unlike graph.CHGraph, carries no pre-built reverse overlay).
func (e *PlainEngine) Run(ctx context.Context, w *Working, forceLoopFwd, forceLoopRev bool) (PackedPath, phantom.Weight) {
	mu := phantom.InvalidWeight
	meetNode := graph.NoNode
	forceLoop := forceLoopFwd || forceLoopRev

	iterations := uint32(0)

	for {
		fwdMin := w.fwdPQ.PeekDist()
		bwdMin := w.bwdPQ.PeekDist()
		if fwdMin >= mu && bwdMin >= mu {
			break
		}

		iterations++
		if iterations&255 == 0 && ctx.Err() != nil {
			break
		}

		if fwdMin < mu {
			item := w.fwdPQ.Pop()
			u := item.node
			d := item.dist

			if d <= w.distFwd[u] {
				if w.distBwd[u] != phantom.InvalidWeight {
					candidate := phantom.AddWeight(d, w.distBwd[u])
					rejected := forceLoop && w.seededFwd[u] && w.seededBwd[u]
					if candidate < mu && !rejected {
						mu = candidate
						meetNode = u
					}
				}

				start, end := e.g.EdgesFrom(u)
				for ei := start; ei < end; ei++ {
					v := e.g.Head[ei]
					newDist := d + e.g.Weight[ei]
					if newDist < w.distFwd[v] {
						w.relaxFwd(v, newDist, u)
					}
				}
			}
		}

		if w.bwdPQ.PeekDist() < mu {
			item := w.bwdPQ.Pop()
			u := item.node
			d := item.dist

			if d <= w.distBwd[u] {
				if w.distFwd[u] != phantom.InvalidWeight {
					candidate := phantom.AddWeight(w.distFwd[u], d)
					rejected := forceLoop && w.seededFwd[u] && w.seededBwd[u]
					if candidate < mu && !rejected {
						mu = candidate
						meetNode = u
					}
				}

				// No reverse adjacency is precomputed for the base graph,
				// so the backward frontier scans every edge looking for
				// ones that point at u. Fine for small graphs/tests; a
				// production deployment would precompute a reverse CSR
				// the same way graph.CHGraph does for its overlay.
				for src := uint32(0); src < e.g.NumNodes; src++ {
					start, end := e.g.EdgesFrom(src)
					for ei := start; ei < end; ei++ {
						if e.g.Head[ei] != u {
							continue
						}
						newDist := d + e.g.Weight[ei]
						if newDist < w.distBwd[src] {
							w.relaxBwd(src, newDist, u)
						}
					}
				}
			}
		}
	}

	if meetNode == graph.NoNode || mu == phantom.InvalidWeight {
		return nil, phantom.InvalidWeight
	}

	return reconstructPath(w, meetNode), mu
}
