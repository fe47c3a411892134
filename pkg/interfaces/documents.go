package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document represents a source file with parsed metadata and the markdown
// body left intact for segmentation. The struct is shared between the
// interfaces package and internal implementations so consumers can depend on
// a stable contract.
type Document struct {
	ID           uuid.UUID
	FilePath     string
	Locale       string
	Slug         string
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (typically
	// SHA-256) so repeated runs can detect changes without re-converting
	// unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from source documents. The Custom
// map keeps domain-specific values without forcing schema changes.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	Slug    string         `yaml:"slug" json:"slug"`
	Summary string         `yaml:"summary" json:"summary"`
	Status  string         `yaml:"status" json:"status"`
	Tags    []string       `yaml:"tags" json:"tags"`
	Author  string         `yaml:"author" json:"author"`
	Date    time.Time      `yaml:"date" json:"date"`
	Draft   bool           `yaml:"draft" json:"draft"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
	Raw     map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive      *bool
	Pattern        string
	LocalePatterns map[string]string
}

// DocumentLoader discovers and parses source documents.
type DocumentLoader interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
}
