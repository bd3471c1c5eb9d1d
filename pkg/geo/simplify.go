package geo

// Simplify reduces a dense GPS path to its corner vertices using the
// Douglas-Peucker algorithm with a tolerance in meters. The output is
// always a subsequence of the input: no new points are invented and the
// first and last input points are always kept. Paths with fewer than
// three points are returned unchanged.
//
// Implemented with an explicit range stack rather than recursion so that
// very long capture sessions cannot exhaust the call stack. Splits and
// tie-breaks are identical to the recursive formulation: within a span the
// first index at the maximum perpendicular distance wins.
func Simplify(points []GeoPoint, epsilon float64) []GeoPoint {
	if len(points) < 3 {
		return points
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true

	type span struct{ first, last int }
	stack := []span{{0, len(points) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		// Each span measures deviation in the planar frame of its own
		// first point, matching the per-call origin of the recursive form.
		origin := points[s.first]
		maxDist := 0.0
		maxIdx := s.first
		for i := s.first + 1; i < s.last; i++ {
			d := PerpendicularDistance(points[i], points[s.first], points[s.last], origin)
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{maxIdx, s.last}, span{s.first, maxIdx})
		}
		// Otherwise every interior point of the span collapses away.
	}

	out := make([]GeoPoint, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}
