// Package export runs the validate, paginate and emit pipeline for a
// document.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photolog/internal/layout"
	"github.com/kozaktomas/photolog/internal/photolog"
	"github.com/kozaktomas/photolog/internal/render"
)

// Result is a finished export.
type Result struct {
	PDF      []byte
	Filename string
	Report   *render.Report
}

// Exporter turns documents into PDF photo logs.
type Exporter struct {
	Layout   layout.Config
	Style    render.Style
	measurer *render.Measurer
	logger   *log.Logger
}

// New returns an Exporter for the given layout and style.
func New(cfg layout.Config, st render.Style, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{
		Layout:   cfg,
		Style:    st,
		measurer: render.NewMeasurer(st),
		logger:   logger,
	}
}

// Export snapshots doc and renders it. Mutations of doc are rejected until
// Export returns. An incomplete document yields *photolog.ValidationError
// and no output.
func (x *Exporter) Export(ctx context.Context, doc *photolog.Document) (*Result, error) {
	snapshot, release, err := doc.BeginExport()
	if err != nil {
		return nil, err
	}
	defer release()
	return x.Render(ctx, snapshot)
}

// Render validates and renders a project snapshot.
func (x *Exporter) Render(ctx context.Context, p *photolog.Project) (*Result, error) {
	if err := photolog.Validate(p.Header, p.Photos).Err(); err != nil {
		return nil, err
	}

	pl, err := layout.Paginate(p.Header, p.Photos, x.measurer, x.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate: %w", err)
	}
	warnings := layout.ValidateLayout(pl)

	data, report, err := render.Emit(ctx, pl, x.Style)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		msg := fmt.Sprintf("Page %d: %s", w.PageNumber, w.Message)
		report.Warnings = append(report.Warnings, msg)
		x.logger.Warn("layout issue", "page", w.PageNumber, "severity", w.Severity, "message", w.Message)
	}

	x.logger.Debug("export finished", "pages", report.PageCount, "photos", report.PhotoCount, "bytes", len(data))
	return &Result{
		PDF:      data,
		Filename: render.Filename(p.Header),
		Report:   report,
	}, nil
}

// WriteFile writes the result to path. When path is empty or an existing
// directory, the derived filename is used inside it.
func (r *Result) WriteFile(path string) (string, error) {
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, r.Filename)
	}
	if err := os.WriteFile(path, r.PDF, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
