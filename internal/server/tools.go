package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the photo (PNG, JPEG, GIF, BMP, TIFF or WebP)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "document_detect",
			Description: "Find the outline of a paper document in a photo. Returns whether a page was found, " +
				"its four corners in photo coordinates (top-left, top-right, bottom-right, bottom-left) and the size " +
				"the flattened scan would have.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "document_scan",
			Description: "Turn a photo of a document into a flat black and white scan. Writes a PNG to output_path " +
				"when given, otherwise returns the scan as base64-encoded PNG. When no page outline is found the " +
				"'No document found' placeholder is returned and found is false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write the PNG scan to",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_scan_batch",
			Description: "Scan several photos in parallel, writing '<name>_scan.png' files into output_dir.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the photos to scan",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory receiving the scans (created if missing)",
					},
					"concurrency": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum scans in flight. Defaults to the server setting",
					},
				},
				"required": []string{"paths", "output_dir"},
			},
		},
		{
			Name:        "document_ocr",
			Description: "Scan a photo of a document and extract its text with Tesseract. Returns the full text and word bounding boxes in scan coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (e.g. 'eng', 'deu'). Defaults to the server setting",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Only read this rectangle of the scanned page. Word boxes stay in page coordinates",
						"properties": map[string]interface{}{
							"x":      map[string]interface{}{"type": "integer", "description": "Left edge in scan pixels"},
							"y":      map[string]interface{}{"type": "integer", "description": "Top edge in scan pixels"},
							"width":  map[string]interface{}{"type": "integer", "description": "Width in pixels"},
							"height": map[string]interface{}{"type": "integer", "description": "Height in pixels"},
						},
						"required": []string{"x", "y", "width", "height"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Return the Canny edge map the document outline search runs on, at the 500 px working height, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}
