package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// FileSink writes the formatted payload to the configured path.
type FileSink struct {
	// BaseDir anchors relative file paths. Empty means the working
	// directory.
	BaseDir string
}

// NewFileSink creates a file sink rooted at baseDir.
func NewFileSink(baseDir string) *FileSink {
	return &FileSink{BaseDir: baseDir}
}

// Deliver writes the payload and returns the written path.
func (s *FileSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	name := cfg.FileName
	if name == "" {
		name = "output." + extensionFor(cfg.Format)
	}
	dir := cfg.FilePath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.BaseDir, dir)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return nil, fmt.Errorf("writing output file: %w", err)
	}
	return map[string]any{"path": path, "bytes": len(payload)}, nil
}

func extensionFor(f flow.OutputFormat) string {
	switch f {
	case flow.FormatJSON:
		return "json"
	case flow.FormatMarkdown:
		return "md"
	case flow.FormatHTML:
		return "html"
	case flow.FormatCSV:
		return "csv"
	case flow.FormatZip:
		return "zip"
	default:
		return "txt"
	}
}
