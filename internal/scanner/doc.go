// Package scanner turns a photographed document into a flat, black and
// white scan.
//
// The pipeline is strictly linear:
//
//  1. resize to a working height of 500 px, grayscale, 5x5 Gaussian blur,
//     Canny edge detection (75/200)
//  2. find contours, keep the five largest by area and take the first one
//     that simplifies to exactly four vertices
//  3. scale that quadrilateral back to the original resolution and warp it
//     onto an upright rectangle
//  4. binarize the warped page with a local Gaussian threshold
//
// When step 2 finds nothing the injected placeholder image is returned
// instead. All vision primitives come from a vision.Backend.
package scanner
