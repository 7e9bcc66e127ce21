package routing

import (
	"fmt"

	"github.com/azybler/waypointrouter/pkg/graph"
)

const maxUnpackDepth = 100

const noNode = ^uint32(0) // sentinel for "no node"/"no edge"

// unpackForwardEdge iteratively expands a forward overlay edge into the
// original-graph node ids it passes through, appending each hop's endpoint
// to result (the edge's start node is not appended — callers seed result
// with the leg's first node before unpacking any edges). Forward-overlay
// halves of a shortcut go on an explicit stack; the from→mid half lies in
// the backward overlay (stored there as mid→from, since mid ranks below
// from) and is expanded at once by unpackBackwardEdge.
func unpackForwardEdge(chg *graph.CHGraph, edgeIdx uint32, result *[]uint32) {
	type stackItem struct {
		edgeIdx uint32
		depth   int
	}

	stack := []stackItem{{edgeIdx, 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > maxUnpackDepth {
			continue // safety bound
		}

		middle := chg.FwdMiddle[item.edgeIdx]
		head := chg.FwdHead[item.edgeIdx]

		if middle < 0 {
			*result = append(*result, head)
			continue
		}

		from := findCSRSource(chg.FwdFirstOut, item.edgeIdx)
		mid := uint32(middle)

		fromMidEdge := findEdge(chg.BwdFirstOut, chg.BwdHead, mid, from)
		midHeadEdge := findEdge(chg.FwdFirstOut, chg.FwdHead, mid, head)
		assertUnpack(fromMidEdge != noNode && midHeadEdge != noNode,
			"shortcut %d->%d via %d missing a sub-edge in the overlays", from, head, mid)

		// Push mid→head, then expand from→mid now so it is emitted first.
		stack = append(stack, stackItem{midHeadEdge, item.depth + 1})
		unpackBackwardEdge(chg, fromMidEdge, result)
	}
}

// unpackBackwardEdge is the mirror of unpackForwardEdge over the backward
// overlay, whose edges are stored reversed: an edge with CSR source u and
// head v represents the original-graph hop v→u. A shortcut's head→mid half
// is a backward-overlay edge and its mid→from half a forward-overlay edge;
// both are expanded in that order by recursive calls.
func unpackBackwardEdge(chg *graph.CHGraph, edgeIdx uint32, result *[]uint32) {
	type stackItem struct {
		edgeIdx uint32
		depth   int
	}

	stack := []stackItem{{edgeIdx, 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > maxUnpackDepth {
			continue
		}

		middle := chg.BwdMiddle[item.edgeIdx]
		from := findCSRSource(chg.BwdFirstOut, item.edgeIdx) // real hop's target node
		head := chg.BwdHead[item.edgeIdx]                    // real hop's source node

		if middle < 0 {
			*result = append(*result, from)
			continue
		}

		mid := uint32(middle)

		// Real hop is head→mid→from.
		headMidEdge := findEdge(chg.BwdFirstOut, chg.BwdHead, mid, head)
		midFromEdge := findEdge(chg.FwdFirstOut, chg.FwdHead, mid, from)
		assertUnpack(headMidEdge != noNode && midFromEdge != noNode,
			"shortcut %d->%d via %d missing a sub-edge in the overlays", head, from, mid)

		unpackBackwardEdge(chg, headMidEdge, result)
		unpackForwardEdge(chg, midFromEdge, result)
	}
}

// findEdge finds an edge from source to target in a CSR graph.
func findEdge(firstOut, head []uint32, source, target uint32) uint32 {
	start := firstOut[source]
	end := firstOut[source+1]
	for e := start; e < end; e++ {
		if head[e] == target {
			return e
		}
	}
	return noNode
}

// findCSRSource finds the source node for an edge index in a CSR graph.
func findCSRSource(firstOut []uint32, edgeIdx uint32) uint32 {
	n := uint32(len(firstOut) - 1)
	lo, hi := uint32(0), n
	for lo < hi {
		mid := (lo + hi) / 2
		if firstOut[mid+1] <= edgeIdx {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func assertUnpack(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
