package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/travoltage/geometry"
)

// nextSegment picks the segment whose start point is nearest to pos among the
// segments after current (all segments when current < 0). Ties go to the lower index.
//
// When no later segment exists the choice repeats current and terminal is true:
// the walker has reached the end of the route. An empty route is always terminal
// and returns -1.
func nextSegment(route []geometry.LineSegment, pos r2.Vec, current int) (idx int, terminal bool) {
	if len(route) == 0 {
		return -1, true
	}
	start := current + 1
	if current < 0 {
		start = 0
	}
	if start >= len(route) {
		return current, true
	}

	best := -1
	bestDist := math.Inf(1)
	for i := start; i < len(route); i++ {
		if d := r2.Norm2(r2.Sub(route[i].P0, pos)); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, false
}

// buildRoute joins the force-line chain to the spark path with a bridge segment
// from the chain end to the first path point.
func buildRoute(forceLines []geometry.LineSegment, path []r2.Vec) []geometry.LineSegment {
	route := make([]geometry.LineSegment, 0, len(forceLines)+len(path))
	route = append(route, forceLines...)
	if len(forceLines) > 0 && len(path) > 0 {
		end := forceLines[len(forceLines)-1].P1
		if end != path[0] {
			route = append(route, geometry.NewLineSegment(end, path[0]))
		}
	}
	return append(route, geometry.Polyline(path, false)...)
}
