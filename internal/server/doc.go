// Package server implements the MCP (Model Context Protocol) stdio server
// exposing the document scanner as tools.
//
// # Protocol
//
// JSON-RPC 2.0, one request per line on stdin, one response per line on
// stdout. Supported methods: initialize, tools/list, tools/call, ping.
// Logs go to stderr.
//
// # Tools
//
//   - image_load: image metadata
//   - document_detect: locate the page outline without warping
//   - document_scan: scan one photo to a file or a base64 PNG
//   - document_scan_batch: scan many photos with bounded concurrency
//   - document_ocr: scan a photo, then read the page with Tesseract
//   - image_edge_detect: the edge map the outline search runs on
//
// Photos are decoded once per path and kept in an in-memory cache for the
// life of the process.
//
// # Errors
//
// Malformed tools/call params return -32602. Tool failures return -32000
// with the Go error string in data.
package server
