// Package ocr reads text from scanned pages with Tesseract (gosseract/v2).
//
// Recognition needs cgo and the Tesseract libraries at build and run time:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Binaries built with CGO_ENABLED=0 still link; every call then returns
// ErrUnavailable.
//
// Language codes are Tesseract's ("eng", "deu", "fra", "chi_sim", ...).
// The binarized output of the scanner is the intended input: Tesseract does
// its own thresholding, but a clean black and white page is read markedly
// better than the raw photo.
package ocr
