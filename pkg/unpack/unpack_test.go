package unpack_test

import (
	"testing"

	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
	"github.com/azybler/waypointrouter/pkg/unpack"
)

// stubFacade records every UnpackPath call and returns a Segment whose
// single node count equals end-begin, just enough to assert on slicing
// without modeling real shortcut expansion.
type stubFacade struct {
	calls []stubCall
}

type stubCall struct {
	begin, end int
	pair       phantom.Pair
}

func (f *stubFacade) UnpackPath(packed search.PackedPath, begin, end int, pair phantom.Pair) unpack.Segment {
	f.calls = append(f.calls, stubCall{begin, end, pair})
	return unpack.Segment{Nodes: append([]uint32(nil), packed[begin:end]...)}
}

var _ unpack.Facade = (*stubFacade)(nil)

func TestLegsEmptyOnNoPairs(t *testing.T) {
	result := unpack.Legs(&stubFacade{}, nil, nil, nil, 5)
	if !result.Empty {
		t.Error("Empty = false, want true for zero pairs")
	}
}

func TestLegsEmptyOnInvalidWeight(t *testing.T) {
	pairs := []phantom.Pair{{}}
	result := unpack.Legs(&stubFacade{}, pairs, search.PackedPath{1}, []int{0, 1}, phantom.InvalidWeight)
	if !result.Empty {
		t.Error("Empty = false, want true when weight is INVALID")
	}
}

func TestLegsSlicesEachLegAndDerivesOrientation(t *testing.T) {
	a := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 1}}
	b := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 10}, Reverse: phantom.Segment{Enabled: true, ID: 11}}
	c := phantom.Phantom{Forward: phantom.Segment{Enabled: true, ID: 20}}

	pairs := []phantom.Pair{{Source: a, Target: b}, {Source: b, Target: c}}
	// Leg 0 ends on B.Reverse (11): the splice swapped in a reverse-ending
	// prefix. Leg 1 starts at 11 too and ends at C.Forward (20).
	packed := search.PackedPath{1, 5, 11, 11, 16, 20}
	legBegins := []int{0, 3, 6}

	facade := &stubFacade{}
	result := unpack.Legs(facade, pairs, packed, legBegins, 10)

	if result.Empty {
		t.Fatal("Empty = true, want a populated result")
	}
	if len(result.UnpackedPathSegments) != 2 {
		t.Fatalf("UnpackedPathSegments length = %d, want 2", len(result.UnpackedPathSegments))
	}
	if len(facade.calls) != 2 {
		t.Fatalf("UnpackPath called %d times, want 2", len(facade.calls))
	}
	if facade.calls[0].begin != 0 || facade.calls[0].end != 3 {
		t.Errorf("leg 0 bounds = [%d,%d), want [0,3)", facade.calls[0].begin, facade.calls[0].end)
	}
	if facade.calls[1].begin != 3 || facade.calls[1].end != 6 {
		t.Errorf("leg 1 bounds = [%d,%d), want [3,6)", facade.calls[1].begin, facade.calls[1].end)
	}

	if result.SourceTraversedInReverse[0] {
		t.Error("leg 0 source should be forward-traversed (starts at A.Forward)")
	}
	if !result.TargetTraversedInReverse[0] {
		t.Error("leg 0 target should be reverse-traversed (ends at B.Reverse, not B.Forward)")
	}
	if !result.SourceTraversedInReverse[1] {
		t.Error("leg 1 source should be reverse-traversed (starts at B.Reverse)")
	}
	if result.TargetTraversedInReverse[1] {
		t.Error("leg 1 target should be forward-traversed (ends at C.Forward)")
	}
	if result.ShortestPathWeight != 10 {
		t.Errorf("ShortestPathWeight = %d, want 10", result.ShortestPathWeight)
	}
}

func TestLegsPanicsOnMismatchedLegBegins(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic when leg_begins length does not match len(pairs)+1")
		}
	}()
	pairs := []phantom.Pair{{}, {}}
	unpack.Legs(&stubFacade{}, pairs, search.PackedPath{1, 2}, []int{0, 1}, 1)
}
