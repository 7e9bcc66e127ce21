package routing

import (
	"errors"
	"math"

	"github.com/azybler/waypointrouter/pkg/geo"
	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/tidwall/rtree"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index into original edge arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
}

// Search box half-width in degrees. 0.015° ≈ 1.7 km at the equator, well
// over the 500 m max snap distance, matching the margin the grid index this
// replaced used to cover with its 3×3 cell search.
const snapBoxMarginDeg = 0.015

// Snapper provides nearest-road snapping using an R-tree spatial index over
// edge bounding boxes, keyed [lon, lat] to match the library's [2]float64
// axis order.
type Snapper struct {
	tree rtree.RTreeG[uint32] // edge index, keyed by its [lon,lat] bounding box
	g    *graph.Graph
}

// NewSnapper builds an R-tree spatial index from the original graph's edges.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			uLat, uLon := g.NodeLat[u], g.NodeLon[u]
			vLat, vLon := g.NodeLat[v], g.NodeLon[v]

			min := [2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)}
			max := [2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)}
			s.tree.Insert(min, max, e)
		}
	}

	return s
}

// Snap finds the nearest road segment to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	bestDist := math.Inf(1)
	var bestResult SnapResult
	found := false

	min := [2]float64{lng - snapBoxMarginDeg, lat - snapBoxMarginDeg}
	max := [2]float64{lng + snapBoxMarginDeg, lat + snapBoxMarginDeg}

	s.tree.Search(min, max, func(_, _ [2]float64, edgeIdx uint32) bool {
		u := findCSRSource(s.g.FirstOut, edgeIdx)
		v := s.g.Head[edgeIdx]

		exactDist, ratio := geo.PointToSegmentDist(
			lat, lng,
			s.g.NodeLat[u], s.g.NodeLon[u],
			s.g.NodeLat[v], s.g.NodeLon[v],
		)

		if exactDist < bestDist {
			bestDist = exactDist
			bestResult = SnapResult{
				EdgeIdx: edgeIdx,
				NodeU:   u,
				NodeV:   v,
				Ratio:   ratio,
				Dist:    exactDist,
			}
			found = true
		}
		return true
	})

	if !found || bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}

	return bestResult, nil
}
