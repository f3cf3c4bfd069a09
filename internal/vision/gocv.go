//go:build gocv

package vision

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ironsheep/docscan/internal/geom"
)

// GoCV is the OpenCV-backed Backend. Every call converts its inputs to
// gocv.Mat and its outputs back to Go images, so it trades conversion
// overhead for OpenCV's exact primitives.
type GoCV struct{}

// NewGoCV returns the OpenCV backend.
func NewGoCV() (Backend, error) {
	return &GoCV{}, nil
}

// Name implements Backend.
func (g *GoCV) Name() string {
	return BackendGoCV
}

// Resize implements Backend with area interpolation.
func (g *GoCV) Resize(img image.Image, width, height int) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	return dst.ToImage()
}

// Grayscale implements Backend.
func (g *GoCV) Grayscale(img image.Image) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return matToGray(dst)
}

// GaussianBlur implements Backend.
func (g *GoCV) GaussianBlur(img *image.Gray, ksize int, sigma float64) (*image.Gray, error) {
	return g.grayOp(img, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.GaussianBlur(src, dst, image.Pt(ksize, ksize), sigma, sigma, gocv.BorderDefault)
	})
}

// Canny implements Backend.
func (g *GoCV) Canny(img *image.Gray, low, high float64) (*image.Gray, error) {
	return g.grayOp(img, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Canny(src, dst, float32(low), float32(high))
	})
}

// AdaptiveThreshold implements Backend with OpenCV's rule: sigma derived
// from blockSize, a hard blockSize window and replicated borders. Native
// uses the wider (blockSize-1)/6 Gaussian with mirrored borders instead.
func (g *GoCV) AdaptiveThreshold(img *image.Gray, blockSize int, offset float64) (*image.Gray, error) {
	return g.grayOp(img, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.AdaptiveThreshold(src, dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, blockSize, float32(offset))
	})
}

// FindContours implements Backend.
func (g *GoCV) FindContours(edges *image.Gray) ([]Contour, error) {
	src, err := gocv.ImageGrayToMatGray(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	found := gocv.FindContours(src, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer found.Close()

	raw := found.ToPoints()
	contours := make([]Contour, len(raw))
	for i, pts := range raw {
		contours[i] = Contour(pts)
	}
	return contours, nil
}

// ContourArea implements Backend.
func (g *GoCV) ContourArea(c Contour) float64 {
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()
	return gocv.ContourArea(pv)
}

// ArcLength implements Backend.
func (g *GoCV) ArcLength(c Contour, closed bool) float64 {
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()
	return gocv.ArcLength(pv, closed)
}

// ApproxPolyDP implements Backend.
func (g *GoCV) ApproxPolyDP(c Contour, epsilon float64, closed bool) Contour {
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, epsilon, closed)
	defer approx.Close()
	return Contour(approx.ToPoints())
}

// WarpPerspective implements Backend.
func (g *GoCV) WarpPerspective(img image.Image, src, dst geom.Quad, size image.Point) (image.Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: destination size %dx%d", geom.ErrDegenerateQuad, size.X, size.Y)
	}

	mat, err := gocv.ImageToMatRGB(imaging.Clone(img))
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	srcVec := gocv.NewPoint2fVectorFromPoints(quadPoints(src))
	defer srcVec.Close()
	dstVec := gocv.NewPoint2fVectorFromPoints(quadPoints(dst))
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	defer m.Close()
	if m.Empty() {
		return nil, geom.ErrDegenerateQuad
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.WarpPerspective(mat, &out, m, size)
	return out.ToImage()
}

func quadPoints(q geom.Quad) []gocv.Point2f {
	pts := make([]gocv.Point2f, len(q))
	for i, p := range q {
		pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return pts
}

// grayOp runs op on a single-channel Mat copy of img.
func (g *GoCV) grayOp(img *image.Gray, op func(src gocv.Mat, dst *gocv.Mat)) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst)
	return matToGray(dst)
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mat: %w", err)
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}
	return redChannel(imaging.Clone(img)), nil
}
