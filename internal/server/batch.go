package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/docscan/internal/imageio"
)

type documentScanBatchArgs struct {
	Paths       []string `json:"paths"`
	OutputDir   string   `json:"output_dir"`
	Concurrency int      `json:"concurrency"`
}

type batchItem struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	Found      bool   `json:"found"`
	Error      string `json:"error,omitempty"`
}

type batchResult struct {
	Results   []batchItem `json:"results"`
	Scanned   int         `json:"scanned"`
	Found     int         `json:"found"`
	Failed    int         `json:"failed"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

// batchOutputPaths names the scan of each source inside dir as
// <name>_scan.png. A name already taken in the batch (same base name from
// another directory, or the same file listed twice) gets the item index:
// <name>_scan_<i>.png. Names compare case-insensitively.
func batchOutputPaths(dir string, srcs []string) []string {
	out := make([]string, len(srcs))
	taken := make(map[string]bool, len(srcs))
	for i, src := range srcs {
		base := filepath.Base(src)
		name := strings.TrimSuffix(base, filepath.Ext(base))

		p := filepath.Join(dir, name+"_scan.png")
		if taken[strings.ToLower(p)] {
			p = filepath.Join(dir, fmt.Sprintf("%s_scan_%d.png", name, i))
		}
		taken[strings.ToLower(p)] = true
		out[i] = p
	}
	return out
}

func (s *Server) handleDocumentScanBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentScanBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}
	if a.OutputDir == "" {
		return nil, errors.New("output_dir is required")
	}
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output_dir: %w", err)
	}

	limit := a.Concurrency
	if limit < 1 || limit > s.opts.BatchConcurrency {
		limit = s.opts.BatchConcurrency
	}

	start := time.Now()
	items := make([]batchItem, len(a.Paths))
	outputs := batchOutputPaths(a.OutputDir, a.Paths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range a.Paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.scanBatchItem(p, outputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &batchResult{Results: items, ElapsedMS: time.Since(start).Milliseconds()}
	for _, it := range items {
		switch {
		case it.Error != "":
			res.Failed++
		case it.Found:
			res.Scanned++
			res.Found++
		default:
			res.Scanned++
		}
	}

	s.log.Info().
		Int("photos", len(items)).
		Int("found", res.Found).
		Int("failed", res.Failed).
		Int("concurrency", limit).
		Msg("batch scan completed")
	return res, nil
}

// scanBatchItem scans one photo and evicts it from the cache. Failures are
// reported in the item rather than returned.
func (s *Server) scanBatchItem(path, out string) batchItem {
	item := batchItem{Path: path}
	defer s.cache.Evict(path)

	res, err := s.scanFile(path)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	if err := imageio.Save(out, res.Image); err != nil {
		item.Error = err.Error()
		return item
	}
	item.OutputPath = out
	item.Found = res.Found
	return item
}
