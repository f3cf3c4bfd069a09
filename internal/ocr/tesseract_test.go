package ocr

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// renderText draws text with basicfont and scales it up so Tesseract sees
// glyphs of a realistic size.
func renderText(text string, scale int) image.Image {
	width := len(text)*7 + 40
	img := image.NewRGBA(image.Rect(0, 0, width, 40))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)

	return imaging.Resize(img, width*scale, 40*scale, imaging.NearestNeighbor)
}

func skipWithoutTesseract(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("Tesseract not available")
	}
}

func TestExtractText_Unavailable(t *testing.T) {
	if Available() {
		t.Skip("Tesseract available")
	}
	_, err := ExtractText(renderText("SCAN", 2), "")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestExtractText(t *testing.T) {
	skipWithoutTesseract(t)

	res, err := ExtractText(renderText("HELLO WORLD", 4), "")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if res.Language != DefaultLanguage {
		t.Errorf("Language: got %q, want %q", res.Language, DefaultLanguage)
	}
	if !strings.Contains(strings.ToUpper(res.FullText), "HELLO") {
		t.Logf("recognized %q", res.FullText)
	}
	for _, w := range res.Words {
		if w.Confidence < 0 || w.Confidence > 1 {
			t.Errorf("confidence out of range: %v", w.Confidence)
		}
	}
}

func TestExtractText_BlankPage(t *testing.T) {
	skipWithoutTesseract(t)

	blank := imaging.New(200, 100, color.White)
	res, err := ExtractText(blank, "eng")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if res.FullText != "" {
		t.Errorf("expected no text, got %q", res.FullText)
	}
}

func TestExtractText_Empty(t *testing.T) {
	if _, err := ExtractText(image.NewGray(image.Rect(0, 0, 0, 0)), ""); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestExtractTextFromRegion_OutsideBounds(t *testing.T) {
	img := renderText("X", 1)
	_, err := ExtractTextFromRegion(img, image.Rect(500, 500, 600, 600), "")
	if err == nil {
		t.Error("expected error for region outside image")
	}
}

func TestOffsetWords(t *testing.T) {
	words := []Word{
		{Text: "a", Bounds: Bounds{X1: 1, Y1: 2, X2: 10, Y2: 12}},
		{Text: "b", Bounds: Bounds{X1: 20, Y1: 2, X2: 30, Y2: 12}},
	}
	offsetWords(words, image.Pt(100, 50))

	want := []Bounds{{101, 52, 110, 62}, {120, 52, 130, 62}}
	for i, w := range words {
		if w.Bounds != want[i] {
			t.Errorf("word %d: got %+v, want %+v", i, w.Bounds, want[i])
		}
	}
}

func TestLanguageDefault(t *testing.T) {
	if language("") != "eng" {
		t.Error("empty language should default to eng")
	}
	if language("deu") != "deu" {
		t.Error("explicit language should be kept")
	}
}
