package vision

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Native is the pure-Go Backend.
type Native struct{}

// NewNative returns the pure-Go backend.
func NewNative() *Native {
	return &Native{}
}

// Name implements Backend.
func (n *Native) Name() string {
	return BackendNative
}

// Resize implements Backend using a linear filter, which imaging scales
// with the reduction factor so downsampling averages like an area filter.
func (n *Native) Resize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", width, height)
	}
	return imaging.Resize(img, width, height, imaging.Linear), nil
}

// Grayscale implements Backend.
//
// imaging.Grayscale applies 0.299*R + 0.587*G + 0.114*B and stores the
// result in all three channels of an NRGBA image; the red channel is copied
// out into a single-channel raster.
func (n *Native) Grayscale(img image.Image) (*image.Gray, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot convert empty image to grayscale")
	}
	return redChannel(imaging.Grayscale(img)), nil
}

// redChannel copies the first channel of an RGBA-like raster into a Gray
// image anchored at the origin.
func redChannel(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			dst.Pix[di+x] = src.Pix[si+4*x]
		}
	}
	return dst
}

// rgbaRed is redChannel for the *image.RGBA rasters bild returns.
func rgbaRed(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			dst.Pix[di+x] = src.Pix[si+4*x]
		}
	}
	return dst
}
