package httpapi

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/imageio"
	"github.com/ironsheep/docscan/internal/scanner"
)

// uploadField is the multipart field carrying the photo.
const uploadField = "file"

// multipart parts above this size spill to temp files.
const maxMemory = 8 << 20

type handler struct {
	scanner *scanner.Scanner
	log     zerolog.Logger
	cfg     Config
}

// errUploadTooLarge reports a body over Config.MaxUploadBytes.
var errUploadTooLarge = errors.New("upload exceeds size limit")

// DetectResponse is the body of POST /detect.
type DetectResponse struct {
	ScanID  string     `json:"scan_id"`
	Found   bool       `json:"found"`
	Corners *geom.Quad `json:"corners,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
	Ratio   float64    `json:"ratio"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "docscan",
		"version": h.cfg.Version,
		"backend": h.scanner.Backend().Name(),
	})
}

// processImage handles POST /process-image.
func (h *handler) processImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	scanID := uuid.NewString()
	res, err := h.scanner.Process(img)
	if err != nil {
		h.log.Error().Err(err).Str("scan_id", scanID).Msg("scan failed")
		h.writeError(w, http.StatusInternalServerError, "scan failed", err.Error())
		return
	}

	h.log.Info().
		Str("scan_id", scanID).
		Bool("found", res.Found).
		Int("width", res.Image.Bounds().Dx()).
		Int("height", res.Image.Bounds().Dy()).
		Msg("scan completed")

	w.Header().Set("Content-Type", imageio.MimePNG)
	w.Header().Set(HeaderScanID, scanID)
	w.Header().Set(HeaderDocumentFound, strconv.FormatBool(res.Found))
	w.WriteHeader(http.StatusOK)
	if err := imageio.EncodePNG(w, res.Image); err != nil {
		h.log.Error().Err(err).Str("scan_id", scanID).Msg("failed to write scan")
	}
}

// detect handles POST /detect.
func (h *handler) detect(w http.ResponseWriter, r *http.Request) {
	img, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	det, err := h.scanner.Detect(img)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "detection failed", err.Error())
		return
	}

	resp := DetectResponse{
		ScanID: uuid.NewString(),
		Found:  det.Found,
		Ratio:  det.Ratio,
	}
	if det.Found {
		resp.Corners = &det.Corners
		resp.Width = det.Width
		resp.Height = det.Height
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload decodes the photo in the multipart field "file". On failure it
// writes the error response and returns false.
func (h *handler) readUpload(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	if r.ContentLength > h.cfg.MaxUploadBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, errUploadTooLarge.Error(), "")
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isTooLarge(err) {
			h.writeError(w, http.StatusRequestEntityTooLarge, errUploadTooLarge.Error(), "")
			return nil, false
		}
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing file field", err.Error())
		return nil, false
	}
	defer file.Close()

	img, err := imageio.Decode(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unsupported image", err.Error())
		return nil, false
	}
	return img, true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
