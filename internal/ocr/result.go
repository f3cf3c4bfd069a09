package ocr

import (
	"errors"
	"image"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when the binary was built without cgo.
var ErrUnavailable = errors.New("ocr unavailable: built without cgo/tesseract")

// Bounds is a bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Word is a recognized word with its location and confidence (0..1).
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Bounds     Bounds  `json:"bounds"`
}

// Result contains the text read from an image.
type Result struct {
	// FullText keeps Tesseract's line breaks.
	FullText string `json:"full_text"`
	// Words may be empty when box extraction fails; FullText is still set.
	Words    []Word `json:"words"`
	Language string `json:"language"`
}

func boundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// offsetWords shifts word boxes found in a crop back into the coordinates of
// the full image.
func offsetWords(words []Word, origin image.Point) {
	for i := range words {
		words[i].Bounds.X1 += origin.X
		words[i].Bounds.Y1 += origin.Y
		words[i].Bounds.X2 += origin.X
		words[i].Bounds.Y2 += origin.Y
	}
}

func language(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
