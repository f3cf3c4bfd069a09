package scanner

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/vision"
)

// largest returns up to n candidates in descending area order. Equal areas
// keep their discovery order.
func largest(cands []candidate, n int) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].area > cands[j].area
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	return cands
}

// FourPointTransform warps the quadrilateral corners of img onto an upright
// rectangle sized by the longest opposite edges.
//
// Parameters:
//   - b: Backend that performs the warp.
//   - img: Source image; corners are in its coordinate space.
//   - corners: The page outline, in any order.
//
// Returns:
//   - image.Image: the rectified page, width x height as computed by
//     geom.DestinationSize, with a black border where the source runs out.
//   - error: wraps geom.ErrDegenerateQuad for a zero-sized destination or a
//     singular mapping; otherwise any backend error.
func FourPointTransform(b vision.Backend, img image.Image, corners geom.Quad) (image.Image, error) {
	rect := geom.OrderPoints(corners)
	width, height := geom.DestinationSize(rect)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: destination %dx%d", geom.ErrDegenerateQuad, width, height)
	}

	dst := geom.DestinationRect(width, height)
	warped, err := b.WarpPerspective(img, rect, dst, image.Pt(width, height))
	if err != nil {
		return nil, err
	}
	return warped, nil
}

// Binarize converts img to grayscale and applies a local Gaussian threshold
// so that every output pixel is 0 or 255.
func Binarize(b vision.Backend, img image.Image) (*image.Gray, error) {
	gray, err := b.Grayscale(img)
	if err != nil {
		return nil, err
	}
	return b.AdaptiveThreshold(gray, ThresholdBlock, ThresholdOffset)
}
