package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// fixedGaussian holds the kernels OpenCV uses for small odd sizes when no
// sigma is given.
var fixedGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// sigmaForKernel derives a Gaussian spread from a kernel size.
func sigmaForKernel(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// gaussianWeights returns normalized 1D Gaussian weights of length ksize.
func gaussianWeights(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		if w, ok := fixedGaussian[ksize]; ok {
			return w
		}
		sigma = sigmaForKernel(ksize)
	}

	weights := make([]float64, ksize)
	center := float64(ksize-1) / 2
	var sum float64
	for i := range weights {
		d := float64(i) - center
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// gaussianKernel builds a separable ksize x ksize Gaussian as a bild kernel.
func gaussianKernel(ksize int, sigma float64) *convolution.Kernel {
	w := gaussianWeights(ksize, sigma)
	k := convolution.NewKernel(ksize, ksize)
	for y := 0; y < ksize; y++ {
		for x := 0; x < ksize; x++ {
			k.Matrix[y*k.Width+x] = w[y] * w[x]
		}
	}
	return k
}

// convolveGray runs a bild convolution over a grayscale raster. Borders
// replicate the edge pixels.
func convolveGray(img *image.Gray, k *convolution.Kernel) *image.Gray {
	out := convolution.Convolve(img, k, &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false})
	return rgbaRed(out)
}

// GaussianBlur implements Backend.
func (n *Native) GaussianBlur(img *image.Gray, ksize int, sigma float64) (*image.Gray, error) {
	if ksize <= 0 || ksize%2 == 0 {
		return nil, fmt.Errorf("gaussian kernel size must be positive and odd, got %d", ksize)
	}
	return convolveGray(img, gaussianKernel(ksize, sigma)), nil
}
