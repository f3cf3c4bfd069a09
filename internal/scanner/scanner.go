package scanner

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/placeholder"
	"github.com/ironsheep/docscan/internal/vision"
)

// Pipeline constants.
const (
	WorkingHeight   = 500
	BlurKernel      = 5
	CannyLow        = 75
	CannyHigh       = 200
	MaxCandidates   = 5
	ApproxFactor    = 0.02
	ThresholdBlock  = 11
	ThresholdOffset = 10
)

// ErrEmptyImage is returned for a nil or zero-sized input.
var ErrEmptyImage = errors.New("empty input image")

// Scanner runs the document scanning pipeline. It holds only immutable
// collaborators and is safe for concurrent use.
type Scanner struct {
	vision      vision.Backend
	placeholder image.Image
	log         zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBackend selects the vision backend. The default is vision.Native.
func WithBackend(b vision.Backend) Option {
	return func(s *Scanner) {
		if b != nil {
			s.vision = b
		}
	}
}

// WithPlaceholder sets the image returned when no document is found.
func WithPlaceholder(img image.Image) Option {
	return func(s *Scanner) {
		if img != nil {
			s.placeholder = img
		}
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) {
		s.log = l
	}
}

// New creates a Scanner.
//
// Without options the Scanner uses the native vision backend, discards its
// logs and falls back to placeholder.Default(). Nil backends and
// placeholders passed to the options are ignored.
//
// Example:
//
//	backend, err := vision.New(cfg.Scanner.Backend)
//	if err != nil {
//		return err
//	}
//	sc := scanner.New(scanner.WithBackend(backend), scanner.WithLogger(log))
//	out, err := sc.Scan(photo)
func New(opts ...Option) *Scanner {
	s := &Scanner{
		vision: vision.NewNative(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.placeholder == nil {
		s.placeholder = placeholder.Default()
	}
	return s
}

// Backend returns the vision backend in use.
func (s *Scanner) Backend() vision.Backend {
	return s.vision
}

// Placeholder returns the image handed back when no document is found.
// Callers must not modify it.
func (s *Scanner) Placeholder() image.Image {
	return s.placeholder
}

// Detection describes where the document was found.
type Detection struct {
	// Found reports whether a four-vertex outline was located.
	Found bool `json:"found"`
	// Ratio is original height / working height.
	Ratio float64 `json:"ratio"`
	// Working is the size of the resized working copy.
	Working image.Point `json:"working"`
	// Polygon is the selected outline in working-copy coordinates.
	Polygon vision.Contour `json:"polygon,omitempty"`
	// Corners is the outline in original coordinates, ordered top-left,
	// top-right, bottom-right, bottom-left.
	Corners geom.Quad `json:"corners"`
	// Width and Height are the size of the rectified output.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the output of Process.
type Result struct {
	Detection
	// Image is the binarized scan, or the placeholder when !Found.
	Image image.Image
}

// Scan returns the scanned version of img, or the placeholder when no
// document outline is found.
//
// Parameters:
//   - img: Photo of a document, any color model and bounds origin.
//
// Returns:
//   - image.Image: *image.Gray with every pixel 0 or 255, sized by the
//     rectified page; or the placeholder, unchanged, when no outline with
//     four vertices is among the five largest contours.
//   - error: see Process.
func (s *Scanner) Scan(img image.Image) (image.Image, error) {
	res, err := s.Process(img)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// Process runs the full pipeline and reports detection details alongside
// the output image.
//
// Parameters:
//   - img: Photo of a document. It is only read.
//
// Returns:
//   - *Result: the output image plus the Detection that produced it. When
//     Found is false, Image is the placeholder and Corners, Width and Height
//     are zero.
//   - error: Non-nil when the pipeline cannot run.
//
// # Errors
//
//   - ErrEmptyImage: img is nil or has empty bounds.
//   - geom.ErrDegenerateQuad (wrapped): the outline cannot be rectified,
//     for example a zero-sized destination.
//   - Any backend failure, wrapped with the stage that raised it.
//
// Not finding a document is not an error.
func (s *Scanner) Process(img image.Image) (*Result, error) {
	start := time.Now()

	det, err := s.Detect(img)
	if err != nil {
		return nil, err
	}
	if !det.Found {
		s.log.Debug().
			Dur("elapsed", time.Since(start)).
			Msg("no document outline found, returning placeholder")
		return &Result{Detection: *det, Image: s.placeholder}, nil
	}

	warped, err := FourPointTransform(s.vision, img, det.Corners)
	if err != nil {
		return nil, fmt.Errorf("failed to rectify document: %w", err)
	}

	out, err := Binarize(s.vision, warped)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize document: %w", err)
	}

	s.log.Debug().
		Int("width", det.Width).
		Int("height", det.Height).
		Dur("elapsed", time.Since(start)).
		Msg("document scanned")
	return &Result{Detection: *det, Image: out}, nil
}

// Detect runs edge detection and outline selection without warping.
//
// The returned Detection always carries Ratio and Working. Polygon,
// Corners, Width and Height are set only when Found is true; Corners are
// in the coordinates of img, ordered top-left, top-right, bottom-right,
// bottom-left. Errors are those of Process except the warp stage's.
func (s *Scanner) Detect(img image.Image) (*Detection, error) {
	edges, ratio, err := s.detectEdges(img)
	if err != nil {
		return nil, err
	}

	det := &Detection{
		Ratio:   ratio,
		Working: edges.Bounds().Size(),
	}

	poly, found, err := s.selectQuad(edges)
	if err != nil {
		return nil, err
	}
	if !found {
		return det, nil
	}

	q, err := geom.QuadFromContour(poly)
	if err != nil {
		return nil, err
	}
	det.Found = true
	det.Polygon = poly
	det.Corners = geom.OrderPoints(q.Scale(ratio))
	det.Width, det.Height = geom.DestinationSize(det.Corners)
	return det, nil
}

// EdgeMap returns the binary edge map of the working copy and the ratio
// between the original and working heights.
func (s *Scanner) EdgeMap(img image.Image) (*image.Gray, float64, error) {
	return s.detectEdges(img)
}

func (s *Scanner) detectEdges(img image.Image) (*image.Gray, float64, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, 0, ErrEmptyImage
	}
	b := img.Bounds()
	ratio := float64(b.Dy()) / WorkingHeight
	// Width truncates: 1000x1200 works at 416x500.
	width := int(float64(b.Dx()) * (WorkingHeight / float64(b.Dy())))
	if width < 1 {
		width = 1
	}

	small, err := s.vision.Resize(img, width, WorkingHeight)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resize: %w", err)
	}
	gray, err := s.vision.Grayscale(small)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	blurred, err := s.vision.GaussianBlur(gray, BlurKernel, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to blur: %w", err)
	}
	edges, err := s.vision.Canny(blurred, CannyLow, CannyHigh)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to detect edges: %w", err)
	}
	return edges, ratio, nil
}

type candidate struct {
	contour vision.Contour
	area    float64
}

// selectQuad returns the first of the MaxCandidates largest contours whose
// simplified polygon has exactly four vertices.
func (s *Scanner) selectQuad(edges *image.Gray) (vision.Contour, bool, error) {
	contours, err := s.vision.FindContours(edges)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find contours: %w", err)
	}

	cands := make([]candidate, len(contours))
	for i, c := range contours {
		cands[i] = candidate{contour: c, area: s.vision.ContourArea(c)}
	}
	cands = largest(cands, MaxCandidates)

	for i, c := range cands {
		peri := s.vision.ArcLength(c.contour, true)
		approx := s.vision.ApproxPolyDP(c.contour, ApproxFactor*peri, true)
		s.log.Debug().
			Int("rank", i).
			Float64("area", c.area).
			Int("vertices", len(approx)).
			Msg("contour candidate")
		if len(approx) == 4 {
			return approx, true, nil
		}
	}
	return nil, false, nil
}
