// Package placeholder provides the raster returned by the scanner when no
// document outline can be found in a photo.
//
// The scanner never reads it from disk on its own: callers either inject an
// image loaded with Load or fall back to the rendered Default.
package placeholder

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Message is the text drawn on the default placeholder.
const Message = "No document found"

// Default placeholder geometry.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
	textScale     = 3
)

var (
	defaultOnce sync.Once
	defaultImg  *image.Gray
)

// Default returns a white single-channel raster with Message drawn in black
// across its center. The same instance is returned on every call; callers
// must not modify it.
func Default() *image.Gray {
	defaultOnce.Do(func() {
		defaultImg = render(DefaultWidth, DefaultHeight, Message)
	})
	return defaultImg
}

// Load reads a placeholder image from path. The decoded image is returned
// as is so that it can be handed back to callers unchanged.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load placeholder %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("placeholder %s is empty", path)
	}
	return img, nil
}

// render draws msg with the 7x13 bitmap font, scales it up with nearest
// neighbor sampling so it stays crisp, and centers it on a white canvas.
func render(width, height int, msg string) *image.Gray {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, msg).Ceil()
	textH := face.Metrics().Height.Ceil()

	text := image.NewNRGBA(image.Rect(0, 0, textW, textH))
	draw.Draw(text, text.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  text,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	d.DrawString(msg)

	scaled := imaging.Resize(text, textW*textScale, textH*textScale, imaging.NearestNeighbor)
	canvas := imaging.New(width, height, color.White)
	canvas = imaging.PasteCenter(canvas, scaled)

	out := image.NewGray(canvas.Bounds())
	draw.Draw(out, out.Bounds(), canvas, image.Point{}, draw.Src)
	return out
}
