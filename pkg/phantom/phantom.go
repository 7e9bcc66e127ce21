// Package phantom defines the snapped-waypoint data model shared by the
// leg search primitive and the waypoint dynamic program.
package phantom

import (
	"math"

	"github.com/azybler/waypointrouter/pkg/graph"
)

// Weight is an integer edge cost in millimeters, matching graph.Graph's
// existing unit. InvalidWeight marks "unreachable / absent".
type Weight = uint32

// InvalidWeight is the sentinel for an unreachable or absent weight.
const InvalidWeight Weight = math.MaxUint32

// AddWeight adds two weights, saturating at InvalidWeight if either input
// is already invalid or the sum would overflow uint32.
func AddWeight(a, b Weight) Weight {
	if a == InvalidWeight || b == InvalidWeight {
		return InvalidWeight
	}
	sum := uint64(a) + uint64(b)
	if sum >= uint64(InvalidWeight) {
		return InvalidWeight
	}
	return Weight(sum)
}

// Segment is one directional anchor of a phantom: whether that orientation
// is reachable at all, the overlay/original NodeID it resolves to, and the
// partial-edge weight offset from the phantom to that node.
type Segment struct {
	Enabled bool
	ID      graph.NodeID
	Offset  Weight
}

// Phantom is a virtual graph anchor produced by snapping a coordinate onto
// an edge of the road graph. At least one of Forward, Reverse must be
// enabled; routing's newPhantom always enables Forward.
type Phantom struct {
	Forward Segment
	Reverse Segment

	// EdgeIdx identifies the base-graph edge this phantom was snapped
	// onto; EdgeWeight is that edge's full weight and Ratio is the
	// phantom's position along it (0 = edge's source node, 1 = edge's
	// target node). These three are consumed by the leg search
	// primitive's degenerate single-node handler (spec.md §4.1 step 5)
	// and otherwise passed through opaquely.
	EdgeIdx    uint32
	EdgeWeight Weight
	Ratio      float64

	// Lat/Lon are consumed opaquely by the unpacker; the waypoint DP
	// and leg search never read them.
	Lat, Lon float64
}

// SameEdge reports whether two phantoms lie on the same directed edge of
// the base graph, which is what makes the loop-forcing rule and the
// degenerate single-node merge (spec.md §4.1 step 5) relevant.
func (p Phantom) SameEdge(other Phantom) bool {
	return p.EdgeIdx == other.EdgeIdx
}

// Pair is one leg's source/target phantom pair. shortestPathSearch's input
// is an ordered sequence of Pairs such that Pairs[i].Target equals
// Pairs[i+1].Source — enforced by the caller, not re-validated here.
type Pair struct {
	Source Phantom
	Target Phantom
}
