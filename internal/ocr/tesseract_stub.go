//go:build !cgo

package ocr

import "image"

// Available reports whether Tesseract can be initialized.
func Available() bool {
	return false
}

// ExtractText always fails without cgo.
func ExtractText(image.Image, string) (*Result, error) {
	return nil, ErrUnavailable
}

// ExtractTextFromRegion always fails without cgo.
func ExtractTextFromRegion(image.Image, image.Rectangle, string) (*Result, error) {
	return nil, ErrUnavailable
}
