package geom

import (
	"fmt"
	"image"
	"math"
)

// Point is a 2D position in pixel space with sub-pixel precision.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// FromImagePoint converts an integer image.Point.
func FromImagePoint(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// Scale multiplies both coordinates by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

// Quad is a quadrilateral. Once ordered by OrderPoints the corners are
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Corner indices of an ordered Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// QuadFromContour converts a 4-vertex integer polygon into a Quad.
// It returns an error if the polygon does not have exactly four vertices.
func QuadFromContour(pts []image.Point) (Quad, error) {
	var q Quad
	if len(pts) != 4 {
		return q, fmt.Errorf("quad needs 4 vertices, got %d", len(pts))
	}
	for i, p := range pts {
		q[i] = FromImagePoint(p)
	}
	return q, nil
}

// Scale multiplies every corner by f.
func (q Quad) Scale(f float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(f)
	}
	return out
}

// OrderPoints puts the corners of q into canonical order.
//
// The top-left corner has the smallest x+y sum and the bottom-right the
// largest. The top-right corner has the smallest y-x difference and the
// bottom-left the largest. Ties resolve to the earliest input corner.
func OrderPoints(q Quad) Quad {
	var out Quad

	minSum, maxSum := 0, 0
	minDiff, maxDiff := 0, 0
	for i := 1; i < 4; i++ {
		s := q[i].X + q[i].Y
		if s < q[minSum].X+q[minSum].Y {
			minSum = i
		}
		if s > q[maxSum].X+q[maxSum].Y {
			maxSum = i
		}
		d := q[i].Y - q[i].X
		if d < q[minDiff].Y-q[minDiff].X {
			minDiff = i
		}
		if d > q[maxDiff].Y-q[maxDiff].X {
			maxDiff = i
		}
	}

	out[TopLeft] = q[minSum]
	out[TopRight] = q[minDiff]
	out[BottomRight] = q[maxSum]
	out[BottomLeft] = q[maxDiff]
	return out
}

// DestinationSize returns the size of the upright rectangle an ordered quad
// flattens into: the longer of the top and bottom edges by the longer of the
// left and right edges, each truncated to whole pixels.
func DestinationSize(q Quad) (width, height int) {
	widthBottom := q[BottomRight].Dist(q[BottomLeft])
	widthTop := q[TopRight].Dist(q[TopLeft])
	width = max(int(widthBottom), int(widthTop))

	heightRight := q[TopRight].Dist(q[BottomRight])
	heightLeft := q[TopLeft].Dist(q[BottomLeft])
	height = max(int(heightRight), int(heightLeft))
	return width, height
}

// DestinationRect returns the corners of a width x height rectangle anchored
// at the origin, in canonical order.
func DestinationRect(width, height int) Quad {
	w := float64(width - 1)
	h := float64(height - 1)
	return Quad{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
}
