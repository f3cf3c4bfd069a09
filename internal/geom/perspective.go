package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateQuad is returned when a quadrilateral cannot define a
// perspective mapping, for example when three of its corners are collinear.
var ErrDegenerateQuad = errors.New("degenerate quadrilateral")

// Homography is a row-major 3x3 projective transform with H[8] fixed at 1.
type Homography [9]float64

// PerspectiveTransform computes the homography that maps each corner of src
// onto the corresponding corner of dst.
//
// Parameters:
//   - src: Source corners, in any consistent order.
//   - dst: Target corners, in the same order as src.
//
// Returns:
//   - Homography: H with H[8] == 1, so dst[i] == H.Apply(src[i]).
//   - error: ErrDegenerateQuad (possibly wrapped) when the system is
//     singular, yields non-finite coefficients, or maps the plane onto a
//     line (determinant negligible next to the Hadamard bound of H).
//
// The eight unknowns are solved from the standard 8x8 linear system built
// from the four correspondences:
//
//	u = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
//	v = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
func PerspectiveTransform(src, dst Quad) (Homography, error) {
	var h Homography

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		a.SetRow(i+4, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(i, u)
		b.SetVec(i+4, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return h, fmt.Errorf("%w: %v", ErrDegenerateQuad, err)
	}

	for i := 0; i < 8; i++ {
		v := sol.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return h, ErrDegenerateQuad
		}
		h[i] = v
	}
	h[8] = 1

	// A solvable system can still collapse the plane onto a line.
	bound := 1.0
	for col := 0; col < 3; col++ {
		bound *= math.Sqrt(h[col]*h[col] + h[col+3]*h[col+3] + h[col+6]*h[col+6])
	}
	if math.Abs(h.Det()) <= 1e-10*bound {
		return h, ErrDegenerateQuad
	}
	return h, nil
}

// Det returns the determinant of the 3x3 matrix.
func (h Homography) Det() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// Apply maps p through the homography. Points on the line at infinity map
// to NaN coordinates.
func (h Homography) Apply(p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point{X: math.NaN(), Y: math.NaN()}
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}
