package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/docscan/internal/ocr"
)

// writePNG encodes img into dir/name and returns the path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createDocumentPhoto writes a white 300x400 page on a black 500x600 photo.
func createDocumentPhoto(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 500, 600))
	for y := 100; y < 500; y++ {
		for x := 100; x < 400; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return writePNG(t, dir, name, img)
}

// createBlankPhoto writes an all-black photo with no page in it.
func createBlankPhoto(t *testing.T, dir, name string) string {
	t.Helper()
	return writePNG(t, dir, name, image.NewGray(image.Rect(0, 0, 300, 300)))
}

// callTool runs a tools/call request and decodes the JSON text content.
func callTool(t *testing.T, s *Server, name string, args interface{}) (*MCPResponse, map[string]interface{}) {
	t.Helper()
	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp, nil
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v", err)
	}
	return resp, out
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsCall(context.Background(), &MCPRequest{ID: 1, Params: json.RawMessage(`{bad`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	resp, _ := callTool(t, newTestServer(), "image_crop", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected -32000, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_MissingPath(t *testing.T) {
	for _, tool := range []string{"image_load", "document_detect", "document_scan", "document_ocr", "image_edge_detect"} {
		t.Run(tool, func(t *testing.T) {
			resp, _ := callTool(t, newTestServer(), tool, map[string]interface{}{})
			if resp.Error == nil {
				t.Fatal("expected error for missing path")
			}
			if resp.Error.Data != errPathRequired.Error() {
				t.Errorf("data: got %v", resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	resp, _ := callTool(t, newTestServer(), "document_scan", map[string]interface{}{"path": "/nonexistent/photo.png"})
	if resp.Error == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImageLoad(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	resp, out := callTool(t, newTestServer(), "image_load", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["width"] != float64(500) || out["height"] != float64(600) {
		t.Errorf("size: got %vx%v, want 500x600", out["width"], out["height"])
	}
	if out["format"] != "png" {
		t.Errorf("format: got %v", out["format"])
	}
}

func TestDocumentDetect(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	resp, out := callTool(t, newTestServer(), "document_detect", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != true {
		t.Fatal("expected document to be found")
	}
	corners, ok := out["corners"].([]interface{})
	if !ok || len(corners) != 4 {
		t.Fatalf("corners: got %v", out["corners"])
	}
	tl := corners[0].(map[string]interface{})
	if x := tl["x"].(float64); x < 90 || x > 110 {
		t.Errorf("top-left x: got %v, want about 100", x)
	}
	if out["working_height"] != float64(500) {
		t.Errorf("working_height: got %v", out["working_height"])
	}
	if out["backend"] != "native" {
		t.Errorf("backend: got %v", out["backend"])
	}
}

func TestDocumentDetect_Blank(t *testing.T) {
	path := createBlankPhoto(t, t.TempDir(), "blank.png")

	resp, out := callTool(t, newTestServer(), "document_detect", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != false {
		t.Error("expected no document")
	}
	if _, ok := out["corners"]; ok {
		t.Error("corners should be omitted when nothing is found")
	}
}

func TestDocumentScan_Base64(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	resp, out := callTool(t, newTestServer(), "document_scan", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != true {
		t.Fatal("expected document to be found")
	}
	if out["scan_id"] == "" {
		t.Error("scan_id should be set")
	}
	img, ok := out["image"].(map[string]interface{})
	if !ok {
		t.Fatal("expected embedded image")
	}
	if img["mime_type"] != "image/png" || img["image_base64"] == "" {
		t.Errorf("unexpected image payload: %v", img["mime_type"])
	}
	if w := out["width"].(float64); w < 280 || w > 320 {
		t.Errorf("width: got %v, want about 300", w)
	}
}

func TestDocumentScan_OutputPath(t *testing.T) {
	dir := t.TempDir()
	path := createDocumentPhoto(t, dir, "photo.png")
	outPath := filepath.Join(dir, "out", "scan.png")

	resp, out := callTool(t, newTestServer(), "document_scan", map[string]interface{}{
		"path":        path,
		"output_path": outPath,
	})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["output_path"] != outPath {
		t.Errorf("output_path: got %v", out["output_path"])
	}
	if _, ok := out["image"]; ok {
		t.Error("image should not be embedded when writing to a file")
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("scan not written: %v", err)
	}
}

func TestDocumentScan_BlankReturnsPlaceholder(t *testing.T) {
	s := newTestServer()
	path := createBlankPhoto(t, t.TempDir(), "blank.png")

	resp, out := callTool(t, s, "document_scan", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != false {
		t.Error("expected found=false")
	}
	ph := s.scanner.Placeholder().Bounds()
	if out["width"] != float64(ph.Dx()) || out["height"] != float64(ph.Dy()) {
		t.Errorf("size: got %vx%v, want placeholder %v", out["width"], out["height"], ph.Size())
	}
}

func TestDocumentScanBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "scans")
	paths := []interface{}{
		createDocumentPhoto(t, dir, "a.png"),
		createBlankPhoto(t, dir, "b.png"),
		filepath.Join(dir, "missing.png"),
	}

	s := newTestServer()
	resp, out := callTool(t, s, "document_scan_batch", map[string]interface{}{
		"paths":       paths,
		"output_dir":  outDir,
		"concurrency": 2,
	})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if out["scanned"] != float64(2) || out["found"] != float64(1) || out["failed"] != float64(1) {
		t.Errorf("counts: scanned=%v found=%v failed=%v", out["scanned"], out["found"], out["failed"])
	}

	results := out["results"].([]interface{})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	first := results[0].(map[string]interface{})
	if first["output_path"] != filepath.Join(outDir, "a_scan.png") {
		t.Errorf("output_path: got %v", first["output_path"])
	}
	if _, err := os.Stat(filepath.Join(outDir, "b_scan.png")); err != nil {
		t.Errorf("placeholder scan not written: %v", err)
	}
	if results[2].(map[string]interface{})["error"] == nil {
		t.Error("missing file should report an error")
	}
	if s.cache.Len() != 0 {
		t.Errorf("batch should not keep photos cached, %d remain", s.cache.Len())
	}
}

func TestDocumentScanBatch_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no paths", map[string]interface{}{"output_dir": t.TempDir()}},
		{"no output dir", map[string]interface{}{"paths": []string{"/a.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := callTool(t, newTestServer(), "document_scan_batch", tt.args)
			if resp.Error == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatchOutputPaths(t *testing.T) {
	tests := []struct {
		name string
		srcs []string
		want []string
	}{
		{
			name: "distinct names",
			srcs: []string{"/photos/receipt.final.jpg", "/photos/invoice.png"},
			want: []string{"receipt.final_scan.png", "invoice_scan.png"},
		},
		{
			name: "same base name in two directories",
			srcs: []string{"/a/page.jpg", "/b/page.jpg", "/c/page.png"},
			want: []string{"page_scan.png", "page_scan_1.png", "page_scan_2.png"},
		},
		{
			name: "same file twice",
			srcs: []string{"/a/page.jpg", "/a/page.jpg"},
			want: []string{"page_scan.png", "page_scan_1.png"},
		},
		{
			name: "names differing only in case",
			srcs: []string{"/a/Page.jpg", "/b/page.jpg"},
			want: []string{"Page_scan.png", "page_scan_1.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batchOutputPaths("/out", tt.srcs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d paths, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if want := filepath.Join("/out", tt.want[i]); got[i] != want {
					t.Errorf("path %d: got %s, want %s", i, got[i], want)
				}
			}
		})
	}
}

func TestDocumentScanBatch_SameBaseName(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}
	outDir := filepath.Join(dir, "scans")
	paths := []interface{}{
		createDocumentPhoto(t, filepath.Join(dir, "a"), "page.png"),
		createBlankPhoto(t, filepath.Join(dir, "b"), "page.png"),
	}

	s := newTestServer()
	resp, out := callTool(t, s, "document_scan_batch", map[string]interface{}{
		"paths":       paths,
		"output_dir":  outDir,
		"concurrency": 2,
	})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	results := out["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	first := results[0].(map[string]interface{})
	second := results[1].(map[string]interface{})
	if first["output_path"] == second["output_path"] {
		t.Fatalf("both items wrote to %v", first["output_path"])
	}
	if first["found"] != true || second["found"] != false {
		t.Errorf("found: got %v and %v, want true and false", first["found"], second["found"])
	}

	// Each file holds its own scan: the page is portrait, the placeholder
	// is not.
	page := decodePNGFile(t, first["output_path"].(string))
	if b := page.Bounds(); b.Dx() >= b.Dy() {
		t.Errorf("document scan should be portrait, got %v", b.Size())
	}
	ph := decodePNGFile(t, second["output_path"].(string))
	if got, want := ph.Bounds().Size(), s.scanner.Placeholder().Bounds().Size(); got != want {
		t.Errorf("placeholder scan size: got %v, want %v", got, want)
	}
}

// decodePNGFile reads a PNG written by a tool.
func decodePNGFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func TestDocumentOCR_NoDocument(t *testing.T) {
	path := createBlankPhoto(t, t.TempDir(), "blank.png")

	resp, out := callTool(t, newTestServer(), "document_ocr", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != false {
		t.Error("expected found=false")
	}
}

func TestDocumentOCR(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	resp, out := callTool(t, newTestServer(), "document_ocr", map[string]interface{}{"path": path, "language": "eng"})
	if !ocr.Available() {
		if resp.Error == nil {
			t.Error("expected error without tesseract")
		}
		return
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["found"] != true || out["language"] != "eng" {
		t.Errorf("unexpected result: %v", out)
	}
}

func TestDocumentOCR_Region(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	tests := []struct {
		name    string
		region  map[string]interface{}
		wantErr bool
	}{
		{"zero width", map[string]interface{}{"x": 0, "y": 0, "width": 0, "height": 50}, true},
		{"negative height", map[string]interface{}{"x": 0, "y": 0, "width": 50, "height": -5}, true},
		{"outside the scan", map[string]interface{}{"x": 5000, "y": 5000, "width": 50, "height": 50}, true},
		{"top of the page", map[string]interface{}{"x": 0, "y": 0, "width": 200, "height": 100}, !ocr.Available()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := callTool(t, newTestServer(), "document_ocr", map[string]interface{}{
				"path":   path,
				"region": tt.region,
			})
			if tt.wantErr {
				if resp.Error == nil {
					t.Error("expected error")
				}
				return
			}
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			if out["found"] != true {
				t.Errorf("expected found=true, got %v", out)
			}
		})
	}
}

func TestRegionArgsRect(t *testing.T) {
	r := (&regionArgs{X: 10, Y: 20, Width: 30, Height: 40}).rect()
	if r != image.Rect(10, 20, 40, 60) {
		t.Errorf("got %v, want (10,20)-(40,60)", r)
	}
}

func TestImageEdgeDetect(t *testing.T) {
	path := createDocumentPhoto(t, t.TempDir(), "photo.png")

	resp, out := callTool(t, newTestServer(), "image_edge_detect", map[string]interface{}{"path": path})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if out["height"] != float64(500) {
		t.Errorf("height: got %v, want 500", out["height"])
	}
	if out["edge_pixels"].(float64) <= 0 {
		t.Error("expected edge pixels")
	}
	if out["ratio"] != 1.2 {
		t.Errorf("ratio: got %v, want 1.2", out["ratio"])
	}
}
