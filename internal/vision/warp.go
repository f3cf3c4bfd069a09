package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/geom"
)

// WarpPerspective implements Backend.
//
// Each destination pixel is mapped back through the inverse transform and
// sampled bilinearly from img. Samples falling outside img read as opaque
// black.
func (n *Native) WarpPerspective(img image.Image, src, dst geom.Quad, size image.Point) (image.Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: destination size %dx%d", geom.ErrDegenerateQuad, size.X, size.Y)
	}

	inverse, err := geom.PerspectiveTransform(dst, src)
	if err != nil {
		return nil, fmt.Errorf("failed to compute perspective transform: %w", err)
	}

	source := imaging.Clone(img)
	out := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			p := inverse.Apply(geom.Pt(float64(x), float64(y)))
			i := out.PixOffset(x, y)
			sampleBilinear(source, p.X, p.Y, out.Pix[i:i+4])
		}
	}
	return out, nil
}

// sampleBilinear writes the bilinear interpolation of src at (fx, fy) into
// px (R, G, B, A).
func sampleBilinear(src *image.NRGBA, fx, fy float64, px []uint8) {
	px[3] = 255
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	if x0 < -1 || y0 < -1 || x0 >= w || y0 >= h {
		return
	}
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	var acc [3]float64
	weights := [4]float64{(1 - ax) * (1 - ay), ax * (1 - ay), (1 - ax) * ay, ax * ay}
	corners := [4]image.Point{{x0, y0}, {x0 + 1, y0}, {x0, y0 + 1}, {x0 + 1, y0 + 1}}
	for k, c := range corners {
		if c.X < 0 || c.Y < 0 || c.X >= w || c.Y >= h || weights[k] == 0 {
			continue
		}
		i := src.PixOffset(c.X, c.Y)
		acc[0] += weights[k] * float64(src.Pix[i])
		acc[1] += weights[k] * float64(src.Pix[i+1])
		acc[2] += weights[k] * float64(src.Pix[i+2])
	}
	for c := 0; c < 3; c++ {
		px[c] = uint8(math.Min(255, acc[c]+0.5))
	}
}
