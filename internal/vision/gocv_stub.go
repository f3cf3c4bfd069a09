//go:build !gocv

package vision

// NewGoCV reports that the OpenCV backend is not available in this build.
func NewGoCV() (Backend, error) {
	return nil, ErrGoCVUnavailable
}
