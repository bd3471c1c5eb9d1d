package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// offsetPoint shifts a base coordinate by east/north meters, good enough
// for building short test paths.
func offsetPoint(base GeoPoint, east, north float64) GeoPoint {
	dLat := north / EarthRadiusMeters * 180 / math.Pi
	dLng := east / (EarthRadiusMeters * math.Cos(base.Lat*math.Pi/180)) * 180 / math.Pi
	return GeoPoint{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func TestHaversineCoincidentPoints(t *testing.T) {
	p := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	assert.Equal(t, 0.0, Haversine(p, p))
}

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude is ~111.19 km at the mean Earth radius.
	a := GeoPoint{Lat: 0, Lng: 0}
	b := GeoPoint{Lat: 1, Lng: 0}
	assert.InDelta(t, 111194.9, Haversine(a, b), 10)
}

func TestToPlanarAtOrigin(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	pp := ToPlanar(origin, origin)
	assert.Equal(t, 0.0, pp.X)
	assert.Equal(t, 0.0, pp.Y)
}

func TestToPlanarMatchesHaversineAtShortRange(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	p := offsetPoint(origin, 120, -80)
	pp := ToPlanar(p, origin)
	planar := math.Hypot(pp.X, pp.Y)
	assert.InDelta(t, Haversine(origin, p), planar, 0.5)
}

func TestPerpendicularDistanceDegenerateSegment(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	a := offsetPoint(origin, 10, 10)
	p := offsetPoint(origin, 40, 50)
	got := PerpendicularDistance(p, a, a, origin)
	assert.InDelta(t, Haversine(p, a), got, 0.5)
}

func TestPerpendicularDistanceMidSegment(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	a := origin
	b := offsetPoint(origin, 100, 0)
	p := offsetPoint(origin, 50, 30)
	assert.InDelta(t, 30, PerpendicularDistance(p, a, b, origin), 0.5)
}

func TestPerpendicularDistanceClampsToSegment(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	a := origin
	b := offsetPoint(origin, 100, 0)
	// Past the far endpoint: distance to b, not to the infinite line.
	p := offsetPoint(origin, 140, 30)
	assert.InDelta(t, 50, PerpendicularDistance(p, a, b, origin), 0.5)
}

func TestPathLengthDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, PathLength(nil))
	assert.Equal(t, 0.0, PathLength([]GeoPoint{}))
	assert.Equal(t, 0.0, PathLength([]GeoPoint{{Lat: 1, Lng: 1}}))
}

func TestPathLengthSumsLegs(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	path := []GeoPoint{
		origin,
		offsetPoint(origin, 100, 0),
		offsetPoint(origin, 100, 100),
	}
	assert.InDelta(t, 200, PathLength(path), 1)
}

func TestPolygonArea(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	square := []GeoPoint{
		origin,
		offsetPoint(origin, 100, 0),
		offsetPoint(origin, 100, 100),
		offsetPoint(origin, 0, 100),
	}
	assert.InDelta(t, 10000, PolygonArea(square), 50)
	assert.Equal(t, 0.0, PolygonArea(square[:2]))
}
