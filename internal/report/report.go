// Package report renders analysis results as a PDF document for download
// and as plain text for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/seenimoa/pulsewatch/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Renderer configuration
// ════════════════════════════════════════════════════════════════════

// Config controls document layout.
type Config struct {
	PageSize   string  // default: "A4"
	Margin     float64 // page margin in mm (default: 12.7, half an inch)
	Author     string  // document metadata (default: "pulsewatch")
	Compress   bool    // deflate content streams
	PriceChart bool    // draw the close-price line under "Stock Performance"
}

// DefaultConfig returns the layout used by the HTTP service.
func DefaultConfig() Config {
	return Config{
		PageSize:   "A4",
		Margin:     12.7,
		Author:     "pulsewatch",
		Compress:   true,
		PriceChart: true,
	}
}

// Renderer lays out AnalysisReport data with fpdf. It holds no per-call
// state and is safe for concurrent use.
type Renderer struct {
	cfg Config
	now func() time.Time
}

// NewRenderer creates a Renderer, filling zero fields from DefaultConfig.
func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.PageSize == "" {
		cfg.PageSize = def.PageSize
	}
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.Author == "" {
		cfg.Author = def.Author
	}
	return &Renderer{cfg: cfg, now: time.Now}
}

// Render writes the document to path, creating the parent directory. On
// error a partially written file may remain; the caller removes it.
func (r *Renderer) Render(path string, queries []string, summary string, results map[string]models.QueryResult) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	doc := r.build(queries, summary, results)
	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing report %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write streams the document to w.
func (r *Renderer) Write(w io.Writer, queries []string, summary string, results map[string]models.QueryResult) error {
	doc := r.build(queries, summary, results)
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func (r *Renderer) build(queries []string, summary string, results map[string]models.QueryResult) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", r.cfg.PageSize, "")
	pdf.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	pdf.SetAutoPageBreak(true, r.cfg.Margin)
	pdf.SetCompression(r.cfg.Compress)
	pdf.SetAuthor(r.cfg.Author, true)
	pdf.SetCreator("pulsewatch", true)
	pdf.SetTitle(reportTitle(queries), true)
	pdf.SetCreationDate(r.now())

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), cfg: r.cfg}
	d.layout(queries, summary, results)
	return pdf
}
