// Package publish writes recorded responses out as markdown reports.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"rankedlist/internal/results"
)

type WriteOptions struct {
	Overwrite   bool
	ScaleLabels []string
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteRecords writes index.md plus one page per record into toDir.
func WriteRecords(recs []results.Record, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	pagesDir := filepath.Join(toDir, "trials")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(rewriteIndexLinks(RenderIndexMarkdown(recs))), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on the first error.
	written := []string{indexPath}
	for _, rec := range recs {
		md := RenderRecordMarkdown(rec, RenderOptions{ScaleLabels: opt.ScaleLabels})
		p := filepath.Join(pagesDir, recordFileName(rec))
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}

	return WriteResult{Written: written}, nil
}

// rewriteIndexLinks points index links into the trials/ directory.
func rewriteIndexLinks(md string) string {
	return strings.ReplaceAll(md, "](", "](trials/")
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
