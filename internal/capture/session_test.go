package capture

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

func fixAt(base geo.GeoPoint, east, north float64) Fix {
	dLat := north / geo.EarthRadiusMeters * 180 / math.Pi
	dLng := east / (geo.EarthRadiusMeters * math.Cos(base.Lat*math.Pi/180)) * 180 / math.Pi
	return Fix{Point: geo.GeoPoint{Lat: base.Lat + dLat, Lng: base.Lng + dLng}, Accuracy: 5}
}

var testOrigin = geo.GeoPoint{Lat: -1.2921, Lng: 36.8219}

func TestSessionMovementGate(t *testing.T) {
	s := newSession(uuid.New())

	accepted, count := s.Offer(fixAt(testOrigin, 0, 0))
	assert.True(t, accepted)
	assert.Equal(t, 1, count)

	// 1 m away: jitter, rejected.
	accepted, count = s.Offer(fixAt(testOrigin, 1, 0))
	assert.False(t, accepted)
	assert.Equal(t, 1, count)

	// 5 m away: real movement, appended.
	accepted, count = s.Offer(fixAt(testOrigin, 5, 0))
	assert.True(t, accepted)
	assert.Equal(t, 2, count)
}

func TestSessionGateMeasuresFromLastAccepted(t *testing.T) {
	s := newSession(uuid.New())
	s.Offer(fixAt(testOrigin, 0, 0))

	// Creep in 2 m steps: each is under the gate relative to the last
	// accepted point, so nothing accumulates until the distance clears 3 m.
	accepted, _ := s.Offer(fixAt(testOrigin, 2, 0))
	assert.False(t, accepted)
	accepted, _ = s.Offer(fixAt(testOrigin, 4, 0))
	assert.True(t, accepted)
}

func TestSessionFinalizeDegeneratePaths(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		s := newSession(uuid.New())
		for i := 0; i < n; i++ {
			s.Offer(fixAt(testOrigin, float64(i)*10, 0))
		}
		result := s.Finalize(geo.DefaultEpsilon)
		assert.Len(t, result.CleanPath, n, "n=%d", n)
		assert.Equal(t, StateIdle, s.State())
	}
}

func TestSessionFinalizeSimplifies(t *testing.T) {
	s := newSession(uuid.New())
	// Straight 100 m east in 5 m steps, then 90 degrees north.
	for m := 0.0; m <= 100; m += 5 {
		s.Offer(fixAt(testOrigin, m, 0))
	}
	for m := 5.0; m <= 100; m += 5 {
		s.Offer(fixAt(testOrigin, 100, m))
	}
	result := s.Finalize(geo.DefaultEpsilon)

	require.Len(t, result.CleanPath, 3)
	assert.Equal(t, result.RawPath[0], result.CleanPath[0])
	assert.Equal(t, result.RawPath[len(result.RawPath)-1], result.CleanPath[2])
	assert.InDelta(t, 200, result.Perimeter, 2)
}

func TestSessionRejectsFixesAfterFinalize(t *testing.T) {
	s := newSession(uuid.New())
	s.Offer(fixAt(testOrigin, 0, 0))
	s.Finalize(geo.DefaultEpsilon)

	accepted, count := s.Offer(fixAt(testOrigin, 50, 0))
	assert.False(t, accepted)
	assert.Equal(t, 1, count)
}
