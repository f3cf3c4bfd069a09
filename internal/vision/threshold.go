package vision

import (
	"fmt"
	"image"
	"math"
)

// thresholdTolerance absorbs floating-point noise in the local means so a
// pixel equal to its threshold is treated as not above it.
const thresholdTolerance = 1e-9

// AdaptiveThreshold implements Backend.
//
// The threshold at each pixel is the Gaussian-weighted mean of its
// neighborhood minus offset. The Gaussian has sigma = (blockSize-1)/6 and is
// truncated at four sigma, so an 11 block reads a 15x15 window. Borders are
// mirrored (d c b a | a b c d) and means stay in floating point.
//
// Parameters:
//   - img: Grayscale source.
//   - blockSize: Odd neighborhood size, at least 3.
//   - offset: Subtracted from the local mean to form the threshold.
//
// Returns:
//   - *image.Gray: origin-anchored raster, 255 where pixel > threshold and 0
//     where pixel <= threshold.
//   - error: Non-nil for an invalid block size.
//
// The gocv backend uses OpenCV's adaptiveThreshold instead, which derives
// sigma from the block size, uses a hard blockSize window and replicates
// borders; results may differ by a few pixels along strong gradients.
func (n *Native) AdaptiveThreshold(img *image.Gray, blockSize int, offset float64) (*image.Gray, error) {
	if blockSize < 3 || blockSize%2 == 0 {
		return nil, fmt.Errorf("block size must be odd and at least 3, got %d", blockSize)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out, nil
	}

	weights := truncatedGaussian(float64(blockSize-1) / 6.0)
	radius := len(weights) / 2

	src := make([]float64, w*h)
	for y := 0; y < h; y++ {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			src[y*w+x] = float64(img.Pix[si+x])
		}
	}

	// Separable filter: rows into tmp, then columns into the comparison.
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += weights[k+radius] * row[reflectIndex(x+k, w)]
			}
			tmp[y*w+x] = sum
		}
	}

	for y := 0; y < h; y++ {
		oi := y * out.Stride
		for x := 0; x < w; x++ {
			var mean float64
			for k := -radius; k <= radius; k++ {
				mean += weights[k+radius] * tmp[reflectIndex(y+k, h)*w+x]
			}
			if src[y*w+x]-(mean-offset) > thresholdTolerance {
				out.Pix[oi+x] = 255
			}
		}
	}
	return out, nil
}

// truncatedGaussian returns normalized 1D weights for sigma, cut off at
// radius int(4*sigma + 0.5).
func truncatedGaussian(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	var sum float64
	for i := range weights {
		d := float64(i - radius)
		weights[i] = math.Exp(-0.5 * d * d / (sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// reflectIndex mirrors i into [0, n) about the half-pixel border, repeating
// for offsets longer than the axis.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
