//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Available reports whether Tesseract can be initialized.
func Available() bool {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// ExtractText runs OCR over img. An empty language selects DefaultLanguage.
func ExtractText(img image.Image, lang string) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("ocr: empty image")
	}
	lang = language(lang)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	res := &Result{
		FullText: strings.TrimSpace(text),
		Words:    []Word{},
		Language: lang,
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return res, nil
	}
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		res.Words = append(res.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds:     boundsFromRect(box.Box),
		})
	}
	return res, nil
}

// ExtractTextFromRegion runs OCR over the r sub-rectangle of img. Word boxes
// are reported in img coordinates.
func ExtractTextFromRegion(img image.Image, r image.Rectangle, lang string) (*Result, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("ocr: region outside image bounds")
	}

	res, err := ExtractText(imaging.Crop(img, r), lang)
	if err != nil {
		return nil, err
	}
	offsetWords(res.Words, r.Min)
	return res, nil
}
