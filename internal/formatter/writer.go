package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"newsclip/internal/config"
	"newsclip/internal/models"
)

// FileStampLayout is the timestamp embedded in report file names.
const FileStampLayout = "20060102_150405"

// Written lists the files produced by Writer.Write.
type Written struct {
	HTML     string
	Markdown string
}

// Writer stores rendered reports in the output directory.
type Writer struct {
	dir    string
	prefix string
}

// NewWriter creates a writer for the configured output directory.
func NewWriter(cfg config.OutputConfig) *Writer {
	return &Writer{
		dir:    cfg.OutputDir(),
		prefix: cfg.FilePrefix,
	}
}

// BaseName returns "{prefix}_{YYYYMMDD_HHMMSS}" for the report's generation time.
func (w *Writer) BaseName(report *models.Report) string {
	stamp := report.GeneratedAt
	if !report.WindowStart.IsZero() {
		stamp = stamp.In(report.WindowStart.Location())
	}

	return fmt.Sprintf("%s_%s", w.prefix, stamp.Format(FileStampLayout))
}

// Write saves the HTML page and, when markdown is non-empty, the digest next to it.
func (w *Writer) Write(report *models.Report, html, markdown string) (*Written, error) {
	if report == nil {
		return nil, ErrNilReport
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(w.dir, w.BaseName(report))
	out := &Written{HTML: base + ".html"}

	if err := os.WriteFile(out.HTML, []byte(html), 0644); err != nil {
		return nil, fmt.Errorf("failed to write HTML report: %w", err)
	}

	if markdown == "" {
		return out, nil
	}

	out.Markdown = base + ".md"

	if err := os.WriteFile(out.Markdown, []byte(markdown), 0644); err != nil {
		return out, fmt.Errorf("failed to write markdown digest: %w", err)
	}

	return out, nil
}
