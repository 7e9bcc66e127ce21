package routing

import (
	"context"
	"errors"
	"sync"

	"github.com/azybler/waypointrouter/pkg/graph"
	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
	"github.com/azybler/waypointrouter/pkg/unpack"
	"github.com/azybler/waypointrouter/pkg/waypoint"
)

// ErrNoRoute is returned when no route exists that visits every waypoint
// in order.
var ErrNoRoute = errors.New("no route found")

// ErrTooFewWaypoints is returned when fewer than two waypoints are given;
// shortestPathSearch needs at least one source/target pair to run.
var ErrTooFewWaypoints = errors.New("at least two waypoints are required")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents one leg's road geometry in the route result, plus the
// orientation flags the leg unpacker derives (spec.md §4.3).
type Segment struct {
	DistanceMeters           float64
	Geometry                 []LatLng
	SourceTraversedInReverse bool
	TargetTraversedInReverse bool
}

// RouteResult is the output of a multi-waypoint route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
}

// Router is the interface for multi-waypoint route queries: the ambient
// surface wrapping the waypoint dynamic program (spec.md §6
// shortestPathSearch).
type Router interface {
	RouteWaypoints(ctx context.Context, waypoints []LatLng, continueStraightAtWaypoint *bool) (*RouteResult, error)
}

// Engine implements Router using a CH graph. It owns the spatial index used
// for phantom-node snapping and a pool of search.Working scratch buffers,
// one per in-flight query (spec.md §5).
type Engine struct {
	chg       *graph.CHGraph
	origGraph *graph.Graph // for geometry and snap
	snapper   *Snapper

	// continueStraightDefault is the facade-wide default consulted when a
	// request does not override it (Facade.GetContinueStraightDefault,
	// spec.md §6). OSRM's own default is false — U-turns at waypoints are
	// permitted unless a caller explicitly asks to continue straight.
	continueStraightDefault bool

	workingPool sync.Pool
}

// NewEngine creates a routing engine from a CH graph and the original graph.
func NewEngine(chg *graph.CHGraph, origGraph *graph.Graph) *Engine {
	e := &Engine{
		chg:       chg,
		origGraph: origGraph,
		snapper:   NewSnapper(origGraph),
	}
	e.workingPool.New = func() any {
		return search.NewWorking(chg.NumNodes)
	}
	return e
}

// GetContinueStraightDefault implements the Facade.GetContinueStraightDefault
// contract spec.md §6 names. RouteWaypoints passes the stored default to
// waypoint.Search, which resolves a nil per-request override against it.
func (e *Engine) GetContinueStraightDefault() bool {
	return e.continueStraightDefault
}

// SetContinueStraightDefault overrides the facade-wide U-turn policy default.
func (e *Engine) SetContinueStraightDefault(v bool) {
	e.continueStraightDefault = v
}

// RouteWaypoints snaps each waypoint to a phantom, runs the waypoint dynamic
// program across the resulting legs, and unpacks the winning path into
// geometry. This is shortestPathSearch's HTTP-reachable entry point
// (spec.md §6).
func (e *Engine) RouteWaypoints(ctx context.Context, waypoints []LatLng, continueStraightAtWaypoint *bool) (*RouteResult, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}

	phantoms := make([]phantom.Phantom, len(waypoints))
	for i, wp := range waypoints {
		snap, err := e.snapper.Snap(wp.Lat, wp.Lng)
		if err != nil {
			return nil, err
		}
		phantoms[i] = newPhantom(e.origGraph, snap)
	}

	pairs := make([]phantom.Pair, len(phantoms)-1)
	for i := range pairs {
		pairs[i] = phantom.Pair{Source: phantoms[i], Target: phantoms[i+1]}
	}

	w := e.workingPool.Get().(*search.Working)
	defer func() {
		w.Reset()
		e.workingPool.Put(w)
	}()

	engine := search.NewCHEngine(e.chg)
	dp := waypoint.Search(ctx, w, engine, pairs, continueStraightAtWaypoint, e.continueStraightDefault)
	if dp.Empty {
		return nil, ErrNoRoute
	}

	legs := unpack.Legs(e, pairs, dp.Path, dp.LegBegins, dp.Weight)
	if legs.Empty {
		return nil, ErrNoRoute
	}

	segments := make([]Segment, len(legs.UnpackedPathSegments))
	for i, seg := range legs.UnpackedPathSegments {
		segments[i] = Segment{
			DistanceMeters:           e.segmentDistanceMeters(seg.Nodes),
			Geometry:                 e.buildGeometry(seg.Nodes),
			SourceTraversedInReverse: legs.SourceTraversedInReverse[i],
			TargetTraversedInReverse: legs.TargetTraversedInReverse[i],
		}
	}

	return &RouteResult{
		TotalDistanceMeters: float64(legs.ShortestPathWeight) / 1000.0,
		Segments:            segments,
	}, nil
}

// UnpackPath implements unpack.Facade (spec.md §4.3): it expands
// packed[begin:end] — one leg's sequence of overlay node ids, still with CH
// shortcuts folded in — into the original-graph node sequence that leg
// passes through, by unpacking every shortcut between consecutive overlay
// nodes (mirrors the teacher's unpackOverlayPath, generalized from a single
// source→target path to an arbitrary leg slice of a longer packed route).
func (e *Engine) UnpackPath(packed search.PackedPath, begin, end int, pair phantom.Pair) unpack.Segment {
	leg := packed[begin:end]
	nodes := make([]uint32, 0, (end-begin)*2)
	nodes = append(nodes, leg[0])

	for i := 0; i+1 < len(leg); i++ {
		a, b := leg[i], leg[i+1]
		if fwdEdge := findEdge(e.chg.FwdFirstOut, e.chg.FwdHead, a, b); fwdEdge != noNode {
			unpackForwardEdge(e.chg, fwdEdge, &nodes)
			continue
		}
		bwdEdge := findEdge(e.chg.BwdFirstOut, e.chg.BwdHead, b, a)
		assertUnpack(bwdEdge != noNode, "no overlay edge %d->%d in either direction", a, b)
		unpackBackwardEdge(e.chg, bwdEdge, &nodes)
	}

	return unpack.Segment{Nodes: nodes}
}

// segmentDistanceMeters sums original-graph edge weights along an unpacked
// leg. A leg that never leaves its source/target edge (the degenerate
// single-node case, spec.md §4.1 step 5) unpacks to a single node with no
// edges to sum; its true distance is folded into TotalDistanceMeters via the
// dynamic program's own weight and is not separately recoverable from
// geometry alone — the same approximation the teacher's Route made when it
// reported total distance from the search weight rather than from summed
// geometry.
func (e *Engine) segmentDistanceMeters(nodes []uint32) float64 {
	if len(nodes) < 2 {
		return 0
	}
	g := e.origGraph
	var total uint32
	for i := 0; i+1 < len(nodes); i++ {
		edgeIdx := findEdge(g.FirstOut, g.Head, nodes[i], nodes[i+1])
		if edgeIdx != noNode {
			total += g.Weight[edgeIdx]
		}
	}
	return float64(total) / 1000.0
}

// buildGeometry converts a sequence of original graph node IDs into lat/lng
// coordinates, including intermediate shape points from edge geometry.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	if len(nodes) == 0 {
		return nil
	}

	g := e.origGraph
	// Estimate ~2 geometry points per node (node + avg shape points).
	geom := make([]LatLng, 0, len(nodes)*2)

	// Add first node.
	geom = append(geom, LatLng{Lat: g.NodeLat[nodes[0]], Lng: g.NodeLon[nodes[0]]})

	for i := 0; i < len(nodes)-1; i++ {
		u := nodes[i]
		v := nodes[i+1]

		// Look up edge u→v in original graph for intermediate shape points.
		if g.GeoFirstOut != nil {
			edgeIdx := findEdge(g.FirstOut, g.Head, u, v)
			if edgeIdx != noNode && edgeIdx < uint32(len(g.GeoFirstOut)-1) {
				geoStart := g.GeoFirstOut[edgeIdx]
				geoEnd := g.GeoFirstOut[edgeIdx+1]
				for k := geoStart; k < geoEnd; k++ {
					geom = append(geom, LatLng{
						Lat: g.GeoShapeLat[k],
						Lng: g.GeoShapeLon[k],
					})
				}
			}
		}

		// Add target node coordinates.
		geom = append(geom, LatLng{Lat: g.NodeLat[v], Lng: g.NodeLon[v]})
	}

	return geom
}
