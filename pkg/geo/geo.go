package geo

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by all distance math.
const EarthRadiusMeters = 6371000.0

// DefaultEpsilon is the simplification tolerance in meters applied when a
// capture session stops. Consumer GPS is typically accurate to ±3-10 m,
// so deviations under 5 m are treated as noise rather than corners.
const DefaultEpsilon = 5.0

// MinMovementMeters is the minimum distance a new fix must be from the last
// accepted fix before it is appended to a raw path. Suppresses jitter while
// the surveyor stands still.
const MinMovementMeters = 3.0

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlanarPoint is a local planar coordinate in meters, valid only relative
// to the origin it was projected from. Never persisted.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToPlanar projects a geographic point into a local planar frame anchored
// at origin, using an equirectangular approximation. Accurate for spans up
// to a few kilometers, which covers a single parcel walk; beyond that the
// scale degrades gracefully rather than erroring.
func ToPlanar(p, origin GeoPoint) PlanarPoint {
	x := EarthRadiusMeters * toRadians(p.Lng-origin.Lng) * math.Cos(toRadians(origin.Lat))
	y := EarthRadiusMeters * toRadians(p.Lat-origin.Lat)
	return PlanarPoint{X: x, Y: y}
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// PerpendicularDistance returns the Euclidean distance in meters from p to
// the segment a-b, all three projected into the planar frame of origin. The
// projection parameter is clamped to [0,1] so the result is distance to the
// segment, not to the infinite line. A degenerate segment (a == b) falls
// back to the plain distance from p to a.
func PerpendicularDistance(p, a, b, origin GeoPoint) float64 {
	pp := ToPlanar(p, origin)
	pa := ToPlanar(a, origin)
	pb := ToPlanar(b, origin)

	dx := pb.X - pa.X
	dy := pb.Y - pa.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(pp.X-pa.X, pp.Y-pa.Y)
	}

	t := ((pp.X-pa.X)*dx + (pp.Y-pa.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := pa.X + t*dx
	cy := pa.Y + t*dy
	return math.Hypot(pp.X-cx, pp.Y-cy)
}

// PathLength returns the sum of haversine distances between consecutive
// points, in meters. Paths with fewer than two points have length 0.
func PathLength(points []GeoPoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Haversine(points[i-1], points[i])
	}
	return total
}

// PolygonArea returns the enclosed area of a boundary in square meters,
// computed with the shoelace formula over the planar projection anchored at
// the first point. The boundary need not repeat its first point; the
// closing edge is implied. Fewer than three points enclose nothing.
func PolygonArea(points []GeoPoint) float64 {
	if len(points) < 3 {
		return 0
	}
	origin := points[0]
	sum := 0.0
	for i := 0; i < len(points); i++ {
		a := ToPlanar(points[i], origin)
		b := ToPlanar(points[(i+1)%len(points)], origin)
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}
