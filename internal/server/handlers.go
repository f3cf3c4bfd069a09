package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/imageio"
	"github.com/ironsheep/docscan/internal/ocr"
	"github.com/ironsheep/docscan/internal/scanner"
)

var errPathRequired = errors.New("path is required")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall executes a tool and wraps its result in MCP's content
// format:
//
//	{"content": [{"type": "text", "text": "<JSON result>"}]}
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "document_detect":
		return s.handleDocumentDetect(args)
	case "document_scan":
		return s.handleDocumentScan(args)
	case "document_scan_batch":
		return s.handleDocumentScanBatch(ctx, args)
	case "document_ocr":
		return s.handleDocumentOCR(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON. Marshal failures
// yield an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodeArgs(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	return imageio.LoadImageInfo(s.cache, a.Path)
}

type detectResult struct {
	Found         bool       `json:"found"`
	Corners       *geom.Quad `json:"corners,omitempty"`
	Width         int        `json:"width,omitempty"`
	Height        int        `json:"height,omitempty"`
	Ratio         float64    `json:"ratio"`
	WorkingWidth  int        `json:"working_width"`
	WorkingHeight int        `json:"working_height"`
	Backend       string     `json:"backend"`
}

func (s *Server) handleDocumentDetect(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det, err := s.scanner.Detect(img)
	if err != nil {
		return nil, err
	}

	res := &detectResult{
		Found:         det.Found,
		Ratio:         det.Ratio,
		WorkingWidth:  det.Working.X,
		WorkingHeight: det.Working.Y,
		Backend:       s.scanner.Backend().Name(),
	}
	if det.Found {
		res.Corners = &det.Corners
		res.Width = det.Width
		res.Height = det.Height
	}
	return res, nil
}

type documentScanArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

type scanResult struct {
	ScanID     string                `json:"scan_id"`
	Found      bool                  `json:"found"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imageio.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleDocumentScan(args json.RawMessage) (interface{}, error) {
	var a documentScanArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	res, err := s.scanFile(a.Path)
	if err != nil {
		return nil, err
	}

	out := &scanResult{
		ScanID: uuid.NewString(),
		Found:  res.Found,
		Width:  res.Image.Bounds().Dx(),
		Height: res.Image.Bounds().Dy(),
	}
	if a.OutputPath != "" {
		if err := imageio.Save(a.OutputPath, res.Image); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}

	enc, err := imageio.EncodeBase64(res.Image)
	if err != nil {
		return nil, err
	}
	out.Image = enc
	return out, nil
}

// scanFile runs the full pipeline on a cached photo.
func (s *Server) scanFile(path string) (*scanner.Result, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := s.scanner.Process(img)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return res, nil
}

type documentOCRArgs struct {
	Path     string      `json:"path"`
	Language string      `json:"language"`
	Region   *regionArgs `json:"region"`
}

// regionArgs is a rectangle in scanned-page coordinates.
type regionArgs struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r *regionArgs) rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

type documentOCRResult struct {
	Found bool `json:"found"`
	*ocr.Result
}

func (s *Server) handleDocumentOCR(args json.RawMessage) (interface{}, error) {
	var a documentOCRArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	if a.Region != nil && (a.Region.Width <= 0 || a.Region.Height <= 0) {
		return nil, fmt.Errorf("region width and height must be positive, got %dx%d", a.Region.Width, a.Region.Height)
	}
	if a.Language == "" {
		a.Language = s.opts.OCRLanguage
	}

	res, err := s.scanFile(a.Path)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return &documentOCRResult{Found: false, Result: &ocr.Result{Words: []ocr.Word{}}}, nil
	}

	var text *ocr.Result
	if a.Region != nil {
		page := res.Image.Bounds()
		if !a.Region.rect().Overlaps(page) {
			return nil, fmt.Errorf("region %v lies outside the %dx%d scan", a.Region.rect(), page.Dx(), page.Dy())
		}
		text, err = ocr.ExtractTextFromRegion(res.Image, a.Region.rect(), a.Language)
	} else {
		text, err = ocr.ExtractText(res.Image, a.Language)
	}
	if err != nil {
		return nil, err
	}
	return &documentOCRResult{Found: true, Result: text}, nil
}

type edgeDetectResult struct {
	*imageio.EncodedImage
	EdgePixels int     `json:"edge_pixels"`
	Ratio      float64 `json:"ratio"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	edges, ratio, err := s.scanner.EdgeMap(img)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, v := range edges.Pix {
		if v != 0 {
			count++
		}
	}

	enc, err := imageio.EncodeBase64(edges)
	if err != nil {
		return nil, err
	}
	return &edgeDetectResult{EncodedImage: enc, EdgePixels: count, Ratio: ratio}, nil
}
