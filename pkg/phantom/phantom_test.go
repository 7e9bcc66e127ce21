package phantom_test

import (
	"math"
	"testing"

	"github.com/azybler/waypointrouter/pkg/phantom"
)

func TestAddWeightSaturatesAtInvalid(t *testing.T) {
	if got := phantom.AddWeight(phantom.InvalidWeight, 5); got != phantom.InvalidWeight {
		t.Errorf("AddWeight(InvalidWeight, 5) = %d, want InvalidWeight", got)
	}
	if got := phantom.AddWeight(5, phantom.InvalidWeight); got != phantom.InvalidWeight {
		t.Errorf("AddWeight(5, InvalidWeight) = %d, want InvalidWeight", got)
	}
	if got := phantom.AddWeight(math.MaxUint32-1, 5); got != phantom.InvalidWeight {
		t.Errorf("AddWeight should saturate to InvalidWeight on overflow, got %d", got)
	}
}

func TestAddWeightOrdinaryCase(t *testing.T) {
	if got := phantom.AddWeight(3, 4); got != 7 {
		t.Errorf("AddWeight(3, 4) = %d, want 7", got)
	}
	if got := phantom.AddWeight(0, 0); got != 0 {
		t.Errorf("AddWeight(0, 0) = %d, want 0", got)
	}
}

func TestSameEdge(t *testing.T) {
	a := phantom.Phantom{EdgeIdx: 7}
	b := phantom.Phantom{EdgeIdx: 7}
	c := phantom.Phantom{EdgeIdx: 8}

	if !a.SameEdge(b) {
		t.Error("SameEdge should be true for equal EdgeIdx")
	}
	if a.SameEdge(c) {
		t.Error("SameEdge should be false for differing EdgeIdx")
	}
}
