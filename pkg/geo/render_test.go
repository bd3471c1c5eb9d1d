package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDrawingPathEmpty(t *testing.T) {
	assert.Empty(t, ToDrawingPath(nil, 300, 300))
	assert.Empty(t, ToDrawingPath([]GeoPoint{}, 300, 300))
}

func TestToDrawingPathSinglePointCentered(t *testing.T) {
	p := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	cmds := ToDrawingPath([]GeoPoint{p}, 300, 200)
	require.Len(t, cmds, 1)
	assert.Equal(t, MoveTo, cmds[0].Op)
	assert.InDelta(t, 150, cmds[0].X, 0.001)
	assert.InDelta(t, 100, cmds[0].Y, 0.001)
}

func TestToDrawingPathCommandSequence(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	path := []GeoPoint{
		origin,
		offsetPoint(origin, 50, 0),
		offsetPoint(origin, 50, 50),
	}
	cmds := ToDrawingPath(path, 400, 400)
	require.Len(t, cmds, 3)
	assert.Equal(t, MoveTo, cmds[0].Op)
	assert.Equal(t, LineTo, cmds[1].Op)
	assert.Equal(t, LineTo, cmds[2].Op)
}

func TestToDrawingPathStaysInsideViewport(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	path := []GeoPoint{
		origin,
		offsetPoint(origin, 300, 0),
		offsetPoint(origin, 300, 80),
		offsetPoint(origin, -40, 80),
	}
	const w, h = 320, 240
	for _, cmd := range ToDrawingPath(path, w, h) {
		assert.GreaterOrEqual(t, cmd.X, 0.0)
		assert.LessOrEqual(t, cmd.X, float64(w))
		assert.GreaterOrEqual(t, cmd.Y, 0.0)
		assert.LessOrEqual(t, cmd.Y, float64(h))
	}
}

func TestToDrawingPathPreservesAspectRatio(t *testing.T) {
	origin := GeoPoint{Lat: 6.5244, Lng: 3.3792}
	// A 200 m x 100 m rectangle should scale by the limiting axis only.
	path := []GeoPoint{
		origin,
		offsetPoint(origin, 200, 0),
		offsetPoint(origin, 200, 100),
		offsetPoint(origin, 0, 100),
	}
	cmds := ToDrawingPath(path, 400, 400)
	require.Len(t, cmds, 4)

	minX, maxX := cmds[0].X, cmds[0].X
	minY, maxY := cmds[0].Y, cmds[0].Y
	for _, c := range cmds {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	assert.InDelta(t, 2.0, (maxX-minX)/(maxY-minY), 0.05)
	// Equal margins on the limiting axis.
	assert.InDelta(t, minX, 400-maxX, 0.5)
}
