// Package httpapi serves the scanner over HTTP for the web front end.
//
// The browser app posts a photo as the multipart field "file" to
// POST /process-image and renders the PNG it gets back.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ironsheep/docscan/internal/scanner"
)

// Response headers set on scan results.
const (
	HeaderScanID        = "X-Scan-ID"
	HeaderDocumentFound = "X-Document-Found"
)

// Config holds router settings.
type Config struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string
	Version        string
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 60 * time.Second,
		MaxUploadBytes: 20 << 20,
		CORSOrigins:    []string{"*"},
		Version:        "dev",
	}
}

// NewRouter creates the API router with all routes configured.
func NewRouter(sc *scanner.Scanner, log zerolog.Logger, cfg Config) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	h := &handler{scanner: sc, log: log, cfg: cfg}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors(cfg.CORSOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", h.health)
	r.Post("/process-image", h.processImage)
	r.Post("/detect", h.detect)

	return r
}
