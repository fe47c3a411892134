package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Run is one recorded execution of the migration pipeline over a content
// tree.
type Run struct {
	bun.BaseModel `bun:"table:migration_runs,alias:mr"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Mode            string     `bun:"mode,notnull" json:"mode"`
	ContentDir      string     `bun:"content_dir" json:"content_dir,omitempty"`
	Documents       int        `bun:"documents,notnull,default:0" json:"documents"`
	Succeeded       int        `bun:"succeeded,notnull,default:0" json:"succeeded"`
	Failed          int        `bun:"failed,notnull,default:0" json:"failed"`
	Skipped         int        `bun:"skipped,notnull,default:0" json:"skipped"`
	Published       int        `bun:"published,notnull,default:0" json:"published"`
	TotalBlocks     int        `bun:"total_blocks,notnull,default:0" json:"total_blocks"`
	RichTextBlocks  int        `bun:"rich_text_blocks,notnull,default:0" json:"rich_text_blocks"`
	ComponentBlocks int        `bun:"component_blocks,notnull,default:0" json:"component_blocks"`
	StartedAt       time.Time  `bun:"started_at,nullzero" json:"started_at"`
	FinishedAt      *time.Time `bun:"finished_at,nullzero" json:"finished_at,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// DocumentRecord is the per-document outcome of a run. Checksum keeps the
// hex digest of the source file so later runs can skip unchanged documents.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:migration_documents,alias:mdoc"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RunID      uuid.UUID `bun:"run_id,notnull,type:uuid" json:"run_id"`
	DocumentID uuid.UUID `bun:"document_id,type:uuid" json:"document_id,omitempty"`
	FilePath   string    `bun:"file_path,notnull" json:"file_path"`
	Locale     string    `bun:"locale" json:"locale,omitempty"`
	Slug       string    `bun:"slug" json:"slug,omitempty"`
	Status     string    `bun:"status,notnull" json:"status"`
	Blocks     int       `bun:"blocks,notnull,default:0" json:"blocks"`
	Checksum   string    `bun:"checksum" json:"checksum,omitempty"`
	ReceiptID  string    `bun:"receipt_id" json:"receipt_id,omitempty"`
	Error      *string   `bun:"error" json:"error,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// UnhandledRecord catalogs one component gap observed in a document during a
// run.
type UnhandledRecord struct {
	bun.BaseModel `bun:"table:migration_unhandled,alias:mu"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RunID      uuid.UUID `bun:"run_id,notnull,type:uuid" json:"run_id"`
	FilePath   string    `bun:"file_path,notnull" json:"file_path"`
	Name       string    `bun:"name,notnull" json:"name"`
	Usage      string    `bun:"usage,notnull" json:"usage"`
	UsageCount int       `bun:"usage_count,notnull,default:0" json:"usage_count"`
	FirstSeen  string    `bun:"first_seen" json:"first_seen,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
