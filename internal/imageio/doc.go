// Package imageio loads, caches and encodes the images flowing through
// docscan.
//
// Decoding goes through disintegration/imaging with EXIF auto-orientation
// enabled, so phone photos arrive upright before the scanner sees them.
// PNG, JPEG, GIF, BMP, TIFF and WebP inputs are supported; output is always
// PNG because scans are binary rasters.
//
// # Caching
//
// ImageCache keeps decoded images keyed by path. It is safe for concurrent
// use and is shared by the MCP tools so that detecting and then scanning the
// same photo decodes it once:
//
//	cache := imageio.NewImageCache()
//	img, err := cache.Load("/path/to/photo.jpg")
//	if err != nil {
//	    return err
//	}
//	defer cache.Evict("/path/to/photo.jpg")
package imageio
