package search

import (
	"context"
	"math"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// CHEngine runs bidirectional Dijkstra over a Contraction Hierarchies
// overlay, stopping as soon as the forward and backward frontiers can no
// longer improve on the best meeting found. It is the same stall-free loop
// as the teacher's routing.Engine.runCHDijkstra, generalized to accept
// arbitrary phantom-derived seed sets instead of a single snap point and to
// terminate at one specific target orientation per call rather than at
// "first meeting wins".
type CHEngine struct {
	chg *graph.CHGraph
}

// NewCHEngine wraps a contracted overlay graph for use by the waypoint
// dynamic program.
func NewCHEngine(chg *graph.CHGraph) *CHEngine {
	return &CHEngine{chg: chg}
}

var _ Engine = (*CHEngine)(nil)

// degenerateCandidate implements spec.md §4.1 step 5: a phantom pair that
// lies on the same base edge may be answerable without leaving that edge.
func degenerateCandidate(source, target phantom.Phantom, seedTargetFwd, seedTargetRev bool) (graph.NodeID, phantom.Weight) {
	if source.EdgeIdx != target.EdgeIdx {
		return graph.NoNode, phantom.InvalidWeight
	}

	if seedTargetFwd && target.Forward.Enabled && source.Ratio <= target.Ratio {
		dist := uint32(math.Round(float64(source.EdgeWeight) * (target.Ratio - source.Ratio)))
		return target.Forward.ID, dist
	}
	if seedTargetRev && target.Reverse.Enabled && source.Ratio >= target.Ratio {
		dist := uint32(math.Round(float64(source.EdgeWeight) * (source.Ratio - target.Ratio)))
		return target.Reverse.ID, dist
	}
	return graph.NoNode, phantom.InvalidWeight
}

// InsertNodes implements search.Engine.InsertNodes.
func (e *CHEngine) InsertNodes(w *Working, pair phantom.Pair, weightInFwd, weightInRev phantom.Weight, seedTargetFwd, seedTargetRev bool) (graph.NodeID, phantom.Weight) {
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

// NeedsLoopForward reports whether a forward-terminating subcall for this
// phantom pair risks a trivial zero-hop meeting that must be rejected.
func (e *CHEngine) NeedsLoopForward(source, target phantom.Phantom) bool {
	return source.EdgeIdx == target.EdgeIdx && source.Forward.Enabled && target.Forward.Enabled
}

// NeedsLoopBackwards is the reverse-orientation analogue of NeedsLoopForward.
func (e *CHEngine) NeedsLoopBackwards(source, target phantom.Phantom) bool {
	return source.EdgeIdx == target.EdgeIdx && source.Reverse.Enabled && target.Reverse.Enabled
}

// Run performs one bidirectional query against whatever InsertNodes most
// recently seeded into w.
func (e *CHEngine) Run(ctx context.Context, w *Working, forceLoopFwd, forceLoopRev bool) (PackedPath, phantom.Weight) {
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

				start := e.chg.FwdFirstOut[u]
				end := e.chg.FwdFirstOut[u+1]
				for ei := start; ei < end; ei++ {
					v := e.chg.FwdHead[ei]
					newDist := d + e.chg.FwdWeight[ei]
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

				start := e.chg.BwdFirstOut[u]
				end := e.chg.BwdFirstOut[u+1]
				for ei := start; ei < end; ei++ {
					v := e.chg.BwdHead[ei]
					newDist := d + e.chg.BwdWeight[ei]
					if newDist < w.distBwd[v] {
						w.relaxBwd(v, newDist, u)
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

// reconstructPath walks predFwd from meetNode back to a seed, then predBwd
// from meetNode forward to a seed, producing source→...→meetNode→...→target.
func reconstructPath(w *Working, meetNode graph.NodeID) PackedPath {
	fwdPath := make([]graph.NodeID, 0, 16)
	node := meetNode
	for {
		fwdPath = append(fwdPath, node)
		pred := w.predFwd[node]
		if pred == graph.NoNode {
			break
		}
		node = pred
	}
	for i, j := 0, len(fwdPath)-1; i < j; i, j = i+1, j-1 {
		fwdPath[i], fwdPath[j] = fwdPath[j], fwdPath[i]
	}

	node = meetNode
	for {
		pred := w.predBwd[node]
		if pred == graph.NoNode {
			break
		}
		fwdPath = append(fwdPath, pred)
		node = pred
	}

	return fwdPath
}
