package interfaces

import (
	"context"
	"time"

	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/google/uuid"
)

// Document outcome states reported per converted file.
const (
	OutcomeConverted = "converted"
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// MigrateOptions controls a migration or scan run.
type MigrateOptions struct {
	// Mode selects the error handling strategy: "fail-fast" or "collect".
	Mode string
	// Pattern filters which files are loaded, e.g. "*.mdx".
	Pattern string
	// Recursive toggles directory descent; nil keeps the loader default.
	Recursive *bool
	// LocalePatterns maps locale codes to path fragments used to detect a
	// document's locale.
	LocalePatterns map[string]string
	// DryRun converts without publishing or recording ledger rows.
	DryRun bool
	// Publish pushes converted documents through the configured publisher.
	Publish bool
	// SkipUnchanged skips documents whose checksum matches their last
	// successful conversion in the ledger. Ignored when no ledger is
	// configured.
	SkipUnchanged bool
}

// DocumentOutcome describes the fate of one document in a run.
type DocumentOutcome struct {
	DocumentID uuid.UUID                   `json:"documentId,omitempty"`
	Path       string                      `json:"path"`
	Slug       string                      `json:"slug,omitempty"`
	Locale     string                      `json:"locale,omitempty"`
	Status     string                      `json:"status"`
	Blocks     int                         `json:"blocks"`
	Checksum   string                      `json:"checksum,omitempty"`
	Error      string                      `json:"error,omitempty"`
	ReceiptID  string                      `json:"receiptId,omitempty"`
	Unhandled  []blocks.UnhandledComponent `json:"unhandled,omitempty"`
}

// MigrationSummary aggregates a whole run.
type MigrationSummary struct {
	RunID           uuid.UUID                   `json:"runId"`
	Mode            string                      `json:"mode"`
	Duration        time.Duration               `json:"duration"`
	Documents       int                         `json:"documents"`
	Succeeded       int                         `json:"succeeded"`
	Failed          int                         `json:"failed"`
	Skipped         int                         `json:"skipped"`
	Published       int                         `json:"published"`
	TotalBlocks     int                         `json:"totalBlocks"`
	RichTextBlocks  int                         `json:"richTextBlocks"`
	ComponentBlocks int                         `json:"componentBlocks"`
	Outcomes        []DocumentOutcome           `json:"outcomes"`
	Unhandled       []blocks.UnhandledComponent `json:"unhandled,omitempty"`
}

// MigrationService exposes the high-level migration workflows: converting a
// directory tree, converting a single file, and scanning for component
// coverage without converting.
type MigrationService interface {
	MigrateDirectory(ctx context.Context, dir string, opts MigrateOptions) (*MigrationSummary, error)
	MigrateFile(ctx context.Context, path string, opts MigrateOptions) (*MigrationSummary, error)
	ScanDirectory(ctx context.Context, dir string, opts MigrateOptions) (*MigrationSummary, error)
}
