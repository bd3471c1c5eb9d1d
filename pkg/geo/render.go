package geo

import "math"

// PathOp identifies a vector drawing operation.
type PathOp string

const (
	MoveTo PathOp = "move"
	LineTo PathOp = "line"
)

// PathCommand is a single drawing instruction in viewport coordinates.
type PathCommand struct {
	Op PathOp  `json:"op"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// renderPadding is the margin in viewport units kept around a rendered
// boundary.
const renderPadding = 10.0

// ToDrawingPath fits a boundary into a viewWidth x viewHeight viewport and
// returns it as a move-to/line-to command sequence. The path is projected
// into the planar frame of its own first point, scaled uniformly so the
// whole boundary fits with equal margins, and flipped so north is up. An
// empty input yields an empty output.
func ToDrawingPath(points []GeoPoint, viewWidth, viewHeight float64) []PathCommand {
	if len(points) == 0 {
		return nil
	}

	origin := points[0]
	proj := make([]PlanarPoint, len(points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range points {
		pp := ToPlanar(p, origin)
		proj[i] = pp
		minX = math.Min(minX, pp.X)
		maxX = math.Max(maxX, pp.X)
		minY = math.Min(minY, pp.Y)
		maxY = math.Max(maxY, pp.Y)
	}

	pad := renderPadding
	if viewWidth < 2*pad || viewHeight < 2*pad {
		pad = 0
	}

	spanX := maxX - minX
	spanY := maxY - minY
	scale := 0.0
	if spanX > 0 || spanY > 0 {
		scale = math.Inf(1)
		if spanX > 0 {
			scale = math.Min(scale, (viewWidth-2*pad)/spanX)
		}
		if spanY > 0 {
			scale = math.Min(scale, (viewHeight-2*pad)/spanY)
		}
	}

	offsetX := (viewWidth - spanX*scale) / 2
	offsetY := (viewHeight - spanY*scale) / 2

	cmds := make([]PathCommand, len(points))
	for i, pp := range proj {
		op := LineTo
		if i == 0 {
			op = MoveTo
		}
		cmds[i] = PathCommand{
			Op: op,
			X:  offsetX + (pp.X-minX)*scale,
			Y:  viewHeight - (offsetY + (pp.Y-minY)*scale),
		}
	}
	return cmds
}
