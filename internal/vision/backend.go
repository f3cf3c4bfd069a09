package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/docscan/internal/geom"
)

// Contour is an ordered closed boundary in pixel coordinates.
type Contour []image.Point

// Backend is the set of vision primitives the scanning pipeline needs.
//
// Rasters returned by a Backend are origin-anchored and owned by the
// caller; inputs are never modified. Implementations must be safe for
// concurrent use, since one Scanner serves every request.
//
// Two implementations exist:
//   - Native: pure Go, always available.
//   - GoCV: OpenCV through gocv, compiled in with -tags gocv.
//
// They agree on every primitive the pipeline relies on except
// AdaptiveThreshold, whose Gaussian differs (see Native.AdaptiveThreshold).
type Backend interface {
	// Name identifies the backend in logs and tool output.
	Name() string

	// Resize scales img to exactly width x height.
	Resize(img image.Image, width, height int) (image.Image, error)

	// Grayscale converts img to 8-bit luma using BT.601 weights.
	Grayscale(img image.Image) (*image.Gray, error)

	// GaussianBlur smooths img with a ksize x ksize Gaussian kernel.
	// A sigma <= 0 derives the spread from the kernel size.
	GaussianBlur(img *image.Gray, ksize int, sigma float64) (*image.Gray, error)

	// Canny returns a binary edge map using hysteresis thresholds low/high.
	Canny(img *image.Gray, low, high float64) (*image.Gray, error)

	// FindContours returns every border in a binary image (list retrieval,
	// no hierarchy) with straight runs compressed to their end points.
	FindContours(edges *image.Gray) ([]Contour, error)

	// ContourArea returns the unsigned area enclosed by c.
	ContourArea(c Contour) float64

	// ArcLength returns the length of c, including the closing segment
	// when closed is true.
	ArcLength(c Contour, closed bool) float64

	// ApproxPolyDP simplifies c so that no removed point lies further
	// than epsilon from the result.
	ApproxPolyDP(c Contour, epsilon float64, closed bool) Contour

	// WarpPerspective maps the quadrilateral src of img onto dst in a new
	// raster of the given size.
	WarpPerspective(img image.Image, src, dst geom.Quad, size image.Point) (image.Image, error)

	// AdaptiveThreshold binarizes img against a Gaussian-weighted local
	// mean minus offset. blockSize sets the Gaussian's extent; backends
	// differ in the exact sigma and border rule. Pixels strictly above
	// their threshold become 255, pixels at or below it 0.
	AdaptiveThreshold(img *image.Gray, blockSize int, offset float64) (*image.Gray, error)
}

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

var (
	// ErrUnknownBackend is returned by New for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown vision backend")

	// ErrGoCVUnavailable is returned by NewGoCV when the binary was built
	// without the gocv build tag.
	ErrGoCVUnavailable = errors.New("gocv backend not compiled in (build with -tags gocv)")
)

// New returns the backend registered under name. An empty name selects the
// native backend.
//
// # Errors
//
//   - ErrUnknownBackend: name is neither "native" nor "gocv".
//   - ErrGoCVUnavailable: "gocv" was requested from a binary built without
//     the gocv tag.
func New(name string) (Backend, error) {
	switch name {
	case "", BackendNative:
		return NewNative(), nil
	case BackendGoCV:
		return NewGoCV()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
