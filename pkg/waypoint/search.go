// Package waypoint implements the multi-waypoint shortest path dynamic
// program: the central contract that turns a sequence of phantom pairs, one
// per leg, into a single packed route by carrying two candidate prefixes
// (one ending forward, one ending reverse at the most recent waypoint) leg
// by leg and splicing each new leg onto whichever prefix(es) it actually
// extends. It is a direct generalization of shortest_path.cpp's
// shortestPathSearch to an arbitrary number of waypoints.
package waypoint

import (
	"context"

	"github.com/azybler/waypointrouter/pkg/phantom"
	"github.com/azybler/waypointrouter/pkg/search"
)

// Result is the outcome of Search: either the winning packed path with its
// per-leg boundaries (LegBegins carries a trailing sentinel equal to
// len(Path), so consumers can iterate leg i as Path[LegBegins[i]:LegBegins[i+1]]
// without special-casing the last leg), or Empty if no route exists.
type Result struct {
	Path      search.PackedPath
	LegBegins []int
	Weight    phantom.Weight
	Empty     bool
}

// resolveContinueStraight applies the per-request override, if present,
// over the facade-wide default (spec.md §4.2's continue_straight_at_waypoint
// resolution).
func resolveContinueStraight(override *bool, facadeDefault bool) bool {
	if override != nil {
		return *override
	}
	return facadeDefault
}

// Search runs the waypoint dynamic program across pairs, one phantom.Pair
// per leg, using engine for each leg's bidirectional search. continueStraight
// overrides the engine-wide default of defaultContinueStraight when non-nil;
// when continuation is forced, a U-turn is disallowed at every interior
// waypoint and search.WithUTurn's single-orientation sibling search.Directed
// is used instead.
func Search(
	ctx context.Context,
	w *search.Working,
	engine search.Engine,
	pairs []phantom.Pair,
	continueStraight *bool,
	defaultContinueStraight bool,
) Result {
	if len(pairs) == 0 {
		return Result{Empty: true}
	}

	allowUTurn := !resolveContinueStraight(continueStraight, defaultContinueStraight)

	dp := dpState{
		fwd: Prefix{Live: pairs[0].Source.Forward.Enabled},
		rev: Prefix{Live: pairs[0].Source.Reverse.Enabled},
	}

	for i, pair := range pairs {
		toFwdEnabled := pair.Target.Forward.Enabled
		toRevEnabled := pair.Target.Reverse.Enabled
		if !toFwdEnabled && !toRevEnabled {
			return Result{Empty: true}
		}

		var newFwd, newRev search.LegResult

		if allowUTurn {
			single := search.WithUTurn(ctx, engine, w, dp.fwd.Live, dp.rev.Live, toFwdEnabled, toRevEnabled, pair, dp.fwd.Weight, dp.rev.Weight)
			switch {
			case toFwdEnabled && toRevEnabled:
				newFwd, newRev = single, single
			case toFwdEnabled:
				newFwd = single
				newRev = search.LegResult{Weight: phantom.InvalidWeight}
			default:
				newRev = single
				newFwd = search.LegResult{Weight: phantom.InvalidWeight}
			}
		} else {
			newFwd, newRev = search.Directed(ctx, engine, w, dp.fwd.Live, dp.rev.Live, toFwdEnabled, toRevEnabled, pair, dp.fwd.Weight, dp.rev.Weight)
		}

		if newFwd.Weight == phantom.InvalidWeight && newRev.Weight == phantom.InvalidWeight {
			return Result{Empty: true}
		}

		if i > 0 {
			resolveSplice(&dp, newFwd, newRev, pair.Source)
		}

		commitLeg(&dp.fwd, newFwd)
		commitLeg(&dp.rev, newRev)
	}

	winner := selectWinner(dp.fwd, dp.rev)
	legBegins := append(winner.LegBegins, len(winner.Path))

	return Result{
		Path:      winner.Path,
		LegBegins: legBegins,
		Weight:    winner.Weight,
	}
}
