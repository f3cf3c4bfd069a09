// Package vision wraps the computer-vision primitives the document scanner
// is built from behind a single capability interface, Backend.
//
// Two implementations exist:
//
//   - Native: pure Go. Resizing and grayscale conversion come from
//     disintegration/imaging, convolutions (Gaussian blur and the local
//     means behind adaptive thresholding) from bild, the perspective solve
//     from gonum. Canny edge detection, Suzuki-Abe border following and
//     Douglas-Peucker polygon approximation are implemented here.
//   - GoCV: OpenCV through gocv.io/x/gocv. Only compiled with the "gocv"
//     build tag; without it NewGoCV returns ErrGoCVUnavailable.
//
// # Conventions
//
// All rasters produced by a Backend are anchored at the origin. Binary
// rasters (edge maps, thresholded output) use 0 for background and 255 for
// foreground and nothing in between.
//
// # Thread Safety
//
// Backends hold no mutable state and are safe for concurrent use.
package vision
