package routing

import (
	"context"
	"testing"

	"github.com/paulmach/osm"

	"github.com/azybler/waypointrouter/pkg/ch"
	"github.com/azybler/waypointrouter/pkg/graph"
	osmparser "github.com/azybler/waypointrouter/pkg/osm"
)

// buildTestGraphAndCH creates a test graph and its CH overlay.
//
//	0 ---100--- 1 ---200--- 2
//	|                       |
//	300                    400
//	|                       |
//	3 ---500--- 4 ---600--- 5
//
// All edges bidirectional. Weights in millimeters.
func buildTestGraphAndCH(t *testing.T) (*graph.Graph, *graph.CHGraph) {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 40, ToNodeID: 10, Weight: 300},
			{FromNodeID: 30, ToNodeID: 60, Weight: 400},
			{FromNodeID: 60, ToNodeID: 30, Weight: 400},
			{FromNodeID: 40, ToNodeID: 50, Weight: 500},
			{FromNodeID: 50, ToNodeID: 40, Weight: 500},
			{FromNodeID: 50, ToNodeID: 60, Weight: 600},
			{FromNodeID: 60, ToNodeID: 50, Weight: 600},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
	g := graph.Build(result)
	chg := ch.Contract(g)
	return g, chg
}

func TestRouteWaypointsTwoPoints(t *testing.T) {
	g, chg := buildTestGraphAndCH(t)
	eng := NewEngine(chg, g)

	result, err := eng.RouteWaypoints(context.Background(), []LatLng{
		{Lat: 1.300, Lng: 103.800}, // near node 0
		{Lat: 1.301, Lng: 103.802}, // near node 5
	}, nil)
	if err != nil {
		t.Fatalf("RouteWaypoints: %v", err)
	}
	if result.TotalDistanceMeters <= 0 {
		t.Errorf("TotalDistanceMeters = %f, want > 0", result.TotalDistanceMeters)
	}
	if len(result.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(result.Segments))
	}
}

func TestRouteWaypointsMultiLeg(t *testing.T) {
	g, chg := buildTestGraphAndCH(t)
	eng := NewEngine(chg, g)

	result, err := eng.RouteWaypoints(context.Background(), []LatLng{
		{Lat: 1.300, Lng: 103.800}, // near node 0
		{Lat: 1.300, Lng: 103.802}, // near node 2
		{Lat: 1.301, Lng: 103.800}, // near node 3
	}, nil)
	if err != nil {
		t.Fatalf("RouteWaypoints: %v", err)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("Segments = %d, want 2 (P1 Leg count)", len(result.Segments))
	}
	if result.TotalDistanceMeters <= 0 {
		t.Errorf("TotalDistanceMeters = %f, want > 0", result.TotalDistanceMeters)
	}
}

func TestRouteWaypointsTooFew(t *testing.T) {
	g, chg := buildTestGraphAndCH(t)
	eng := NewEngine(chg, g)

	if _, err := eng.RouteWaypoints(context.Background(), []LatLng{{Lat: 1.3, Lng: 103.8}}, nil); err != ErrTooFewWaypoints {
		t.Errorf("err = %v, want ErrTooFewWaypoints", err)
	}
	if _, err := eng.RouteWaypoints(context.Background(), nil, nil); err != ErrTooFewWaypoints {
		t.Errorf("err = %v, want ErrTooFewWaypoints", err)
	}
}

func TestRouteWaypointsPointTooFar(t *testing.T) {
	g, chg := buildTestGraphAndCH(t)
	eng := NewEngine(chg, g)

	_, err := eng.RouteWaypoints(context.Background(), []LatLng{
		{Lat: 1.300, Lng: 103.800},
		{Lat: 50.0, Lng: 50.0}, // far from every edge
	}, nil)
	if err != ErrPointTooFar {
		t.Errorf("err = %v, want ErrPointTooFar", err)
	}
}

func BenchmarkRouteWaypoints(b *testing.B) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
			{FromNodeID: 40, ToNodeID: 10, Weight: 300},
			{FromNodeID: 30, ToNodeID: 60, Weight: 400},
			{FromNodeID: 60, ToNodeID: 30, Weight: 400},
			{FromNodeID: 40, ToNodeID: 50, Weight: 500},
			{FromNodeID: 50, ToNodeID: 40, Weight: 500},
			{FromNodeID: 50, ToNodeID: 60, Weight: 600},
			{FromNodeID: 60, ToNodeID: 50, Weight: 600},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
	g := graph.Build(result)
	chg := ch.Contract(g)
	eng := NewEngine(chg, g)

	ctx := context.Background()
	waypoints := []LatLng{{Lat: 1.300, Lng: 103.800}, {Lat: 1.301, Lng: 103.802}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = eng.RouteWaypoints(ctx, waypoints, nil)
	}
}
