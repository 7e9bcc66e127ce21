package routing

import (
	"math"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
)

// newPhantom converts a snapped road point into the data model the leg
// search primitive and waypoint DP consume. The forward segment is the
// downstream node of the edge the point was snapped onto, with the
// remaining forward distance as its weight offset; the reverse segment is
// the upstream node, offset by the distance already covered — the same
// ratio arithmetic the teacher's seedForward/seedBackward used, generalized
// into a role-independent phantom shared by both the source and target side
// of a leg.
func newPhantom(g *graph.Graph, snap SnapResult) phantom.Phantom {
	weight := g.Weight[snap.EdgeIdx]

	fwdOffset := phantom.Weight(math.Round(float64(weight) * (1 - snap.Ratio)))
	revOffset := phantom.Weight(math.Round(float64(weight) * snap.Ratio))

	reverseEnabled := findEdge(g.FirstOut, g.Head, snap.NodeV, snap.NodeU) != noNode

	lat := g.NodeLat[snap.NodeU] + snap.Ratio*(g.NodeLat[snap.NodeV]-g.NodeLat[snap.NodeU])
	lon := g.NodeLon[snap.NodeU] + snap.Ratio*(g.NodeLon[snap.NodeV]-g.NodeLon[snap.NodeU])

	return phantom.Phantom{
		Forward:    phantom.Segment{Enabled: true, ID: snap.NodeV, Offset: fwdOffset},
		Reverse:    phantom.Segment{Enabled: reverseEnabled, ID: snap.NodeU, Offset: revOffset},
		EdgeIdx:    snap.EdgeIdx,
		EdgeWeight: weight,
		Ratio:      snap.Ratio,
		Lat:        lat,
		Lon:        lon,
	}
}
