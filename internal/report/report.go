// Package report turns a migration summary into the human-facing run report:
// totals, per-document outcomes, and the catalog of components the registry
// could not place, optionally decorated with admin deep links.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// ErrSummaryRequired indicates Build was called without a run summary.
var ErrSummaryRequired = errors.New("report: summary is required")

// Report is the rendered artifact of one migration run.
type Report struct {
	RunID       uuid.UUID        `json:"runId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Mode        string           `json:"mode"`
	ContentDir  string           `json:"contentDir,omitempty"`
	Duration    string           `json:"duration"`
	Totals      Totals           `json:"totals"`
	Documents   []DocumentEntry  `json:"documents"`
	Unhandled   []UnhandledEntry `json:"unhandled,omitempty"`
}

// Totals aggregates per-status and block counters for the run.
type Totals struct {
	Documents       int `json:"documents"`
	Succeeded       int `json:"succeeded"`
	Failed          int `json:"failed"`
	Skipped         int `json:"skipped"`
	Published       int `json:"published"`
	TotalBlocks     int `json:"totalBlocks"`
	RichTextBlocks  int `json:"richTextBlocks"`
	ComponentBlocks int `json:"componentBlocks"`
}

// DocumentEntry reports the fate of one source file.
type DocumentEntry struct {
	Path      string `json:"path"`
	Slug      string `json:"slug,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Status    string `json:"status"`
	Blocks    int    `json:"blocks"`
	Error     string `json:"error,omitempty"`
	ReceiptID string `json:"receiptId,omitempty"`
	AdminURL  string `json:"adminUrl,omitempty"`
}

// UnhandledEntry reports one component the registry could not place,
// aggregated over the whole corpus.
type UnhandledEntry struct {
	Name       string `json:"name"`
	Usage      string `json:"usage"`
	UsageCount int    `json:"usageCount"`
	FirstSeen  string `json:"firstSeen,omitempty"`
	AdminURL   string `json:"adminUrl,omitempty"`
}

// Generator builds and renders run reports.
type Generator struct {
	links  *LinkBuilder
	logger interfaces.Logger
	now    func() time.Time
}

// Option adjusts generator construction.
type Option func(*Generator)

// WithLinkBuilder attaches an admin deep link builder.
func WithLinkBuilder(links *LinkBuilder) Option {
	return func(g *Generator) {
		g.links = links
	}
}

// WithLogger attaches a module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator builds a report generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build assembles a report from a run summary. Link building failures are
// advisory: the entry simply ships without a URL.
func (g *Generator) Build(summary *interfaces.MigrationSummary, contentDir string) (*Report, error) {
	if summary == nil {
		return nil, ErrSummaryRequired
	}

	rep := &Report{
		RunID:       summary.RunID,
		GeneratedAt: g.now(),
		Mode:        summary.Mode,
		ContentDir:  contentDir,
		Duration:    summary.Duration.String(),
		Totals: Totals{
			Documents:       summary.Documents,
			Succeeded:       summary.Succeeded,
			Failed:          summary.Failed,
			Skipped:         summary.Skipped,
			Published:       summary.Published,
			TotalBlocks:     summary.TotalBlocks,
			RichTextBlocks:  summary.RichTextBlocks,
			ComponentBlocks: summary.ComponentBlocks,
		},
		Documents: make([]DocumentEntry, 0, len(summary.Outcomes)),
	}

	for _, outcome := range summary.Outcomes {
		entry := DocumentEntry{
			Path:      outcome.Path,
			Slug:      outcome.Slug,
			Locale:    outcome.Locale,
			Status:    outcome.Status,
			Blocks:    outcome.Blocks,
			Error:     outcome.Error,
			ReceiptID: outcome.ReceiptID,
		}
		if outcome.Status == interfaces.OutcomePublished {
			url, err := g.links.DocumentURL(outcome.Slug, outcome.Locale)
			if err != nil {
				g.logger.Warn("report.link.document", "slug", outcome.Slug, "error", err.Error())
			} else {
				entry.AdminURL = url
			}
		}
		rep.Documents = append(rep.Documents, entry)
	}

	for _, gap := range summary.Unhandled {
		entry := UnhandledEntry{
			Name:       gap.Name,
			Usage:      string(gap.Usage),
			UsageCount: gap.UsageCount,
			FirstSeen:  gap.FirstSeen,
		}
		url, err := g.links.ComponentURL(gap.Name)
		if err != nil {
			g.logger.Warn("report.link.component", "component", gap.Name, "error", err.Error())
		} else {
			entry.AdminURL = url
		}
		rep.Unhandled = append(rep.Unhandled, entry)
	}

	return rep, nil
}

// Render serializes a report as indented JSON with a trailing newline.
func (g *Generator) Render(rep *Report) ([]byte, error) {
	if rep == nil {
		return nil, ErrSummaryRequired
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: render: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders a report to the given writer.
func (g *Generator) Write(rep *Report, w io.Writer) error {
	data, err := g.Render(rep)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// WriteFile renders a report to the given path, creating parent directories
// as needed.
func (g *Generator) WriteFile(rep *Report, path string) error {
	data, err := g.Render(rep)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
