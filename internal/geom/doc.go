// Package geom holds the small amount of plane geometry the scanner needs:
// floating-point points, four-corner quadrilaterals, corner ordering and the
// 3x3 perspective (homography) matrix that maps one quadrilateral onto another.
//
// Coordinates follow the image convention used throughout the module: origin
// at the top-left, X grows rightward and Y grows downward.
package geom
