// Package ledger persists migration run history: one row per run, one per
// document outcome, and one per component gap. The history powers audit
// queries and lets later runs skip documents whose checksum has not changed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// ErrNotFound marks lookups that matched no ledger record.
var ErrNotFound = errors.New("ledger: record not found")

// ErrSummaryRequired rejects RecordRun calls without a summary.
var ErrSummaryRequired = errors.New("ledger: summary is required")

var errUnavailable = errors.New("ledger: unavailable")

// Ledger records migration runs in a bun-backed store.
type Ledger struct {
	db        *bun.DB
	runs      repository.Repository[*Run]
	documents repository.Repository[*DocumentRecord]
	unhandled repository.Repository[*UnhandledRecord]
	now       func() time.Time
	id        func() uuid.UUID
}

// Option adjusts ledger construction.
type Option func(*Ledger)

// WithClock overrides the clock used for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator used for new records.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(l *Ledger) {
		if generator != nil {
			l.id = generator
		}
	}
}

// New creates a ledger without repository caching.
func New(db *bun.DB, opts ...Option) *Ledger {
	return NewWithCache(db, nil, nil, opts...)
}

// NewWithCache creates a ledger whose repositories are wrapped with the
// supplied cache services. Passing nil services disables caching.
func NewWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...Option) *Ledger {
	runs := NewRunRepository(db)
	documents := NewDocumentRecordRepository(db)
	unhandled := NewUnhandledRecordRepository(db)
	if cacheService != nil && serializer != nil {
		runs = repositorycache.New(runs, cacheService, serializer)
		documents = repositorycache.New(documents, cacheService, serializer)
		unhandled = repositorycache.New(unhandled, cacheService, serializer)
	}

	l := &Ledger{
		db:        db,
		runs:      runs,
		documents: documents,
		unhandled: unhandled,
		now:       time.Now,
		id:        uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.db == nil {
		return errUnavailable
	}
	models := []any{(*Run)(nil), (*DocumentRecord)(nil), (*UnhandledRecord)(nil)}
	for _, model := range models {
		if _, err := l.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("ledger: create table: %w", err)
		}
	}
	return nil
}

// RecordRunInput carries everything RecordRun persists.
type RecordRunInput struct {
	Summary    *interfaces.MigrationSummary
	ContentDir string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun stores a run with its per-document outcomes and component gaps.
func (l *Ledger) RecordRun(ctx context.Context, input RecordRunInput) (*Run, error) {
	if l == nil || l.runs == nil {
		return nil, errUnavailable
	}
	if input.Summary == nil {
		return nil, ErrSummaryRequired
	}

	summary := input.Summary
	runID := summary.RunID
	if runID == uuid.Nil {
		runID = l.id()
	}

	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = l.now()
	}
	var finishedAt *time.Time
	if !input.FinishedAt.IsZero() {
		finished := input.FinishedAt
		finishedAt = &finished
	}

	run := &Run{
		ID:              runID,
		Mode:            summary.Mode,
		ContentDir:      strings.TrimSpace(input.ContentDir),
		Documents:       summary.Documents,
		Succeeded:       summary.Succeeded,
		Failed:          summary.Failed,
		Skipped:         summary.Skipped,
		Published:       summary.Published,
		TotalBlocks:     summary.TotalBlocks,
		RichTextBlocks:  summary.RichTextBlocks,
		ComponentBlocks: summary.ComponentBlocks,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
		CreatedAt:       l.now(),
	}

	created, err := l.runs.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("ledger: record run: %w", err)
	}

	for _, outcome := range summary.Outcomes {
		record := &DocumentRecord{
			ID:         l.id(),
			RunID:      created.ID,
			DocumentID: outcome.DocumentID,
			FilePath:   outcome.Path,
			Locale:     outcome.Locale,
			Slug:       outcome.Slug,
			Status:     outcome.Status,
			Blocks:     outcome.Blocks,
			Checksum:   outcome.Checksum,
			ReceiptID:  outcome.ReceiptID,
			CreatedAt:  l.now(),
		}
		if outcome.Error != "" {
			message := outcome.Error
			record.Error = &message
		}
		if _, err := l.documents.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("ledger: record document %s: %w", outcome.Path, err)
		}

		for _, gap := range outcome.Unhandled {
			entry := &UnhandledRecord{
				ID:         l.id(),
				RunID:      created.ID,
				FilePath:   outcome.Path,
				Name:       gap.Name,
				Usage:      string(gap.Usage),
				UsageCount: gap.UsageCount,
				FirstSeen:  gap.FirstSeen,
				CreatedAt:  l.now(),
			}
			if _, err := l.unhandled.Create(ctx, entry); err != nil {
				return nil, fmt.Errorf("ledger: record gap %s in %s: %w", gap.Name, outcome.Path, err)
			}
		}
	}

	return created, nil
}

// GetRun returns one run by ID.
func (l *Ledger) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if l == nil || l.runs == nil {
		return nil, errUnavailable
	}
	record, err := l.runs.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "run", id.String())
	}
	return record, nil
}

// ListRuns returns runs newest first. A zero limit returns everything.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if l == nil || l.runs == nil {
		return nil, errUnavailable
	}
	newestFirst := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.started_at DESC")
	})
	if limit > 0 {
		records, _, err := l.runs.List(ctx, newestFirst, repository.SelectPaginate(limit, 0))
		if err != nil {
			return nil, fmt.Errorf("ledger: list runs: %w", err)
		}
		return records, nil
	}
	records, _, err := l.runs.List(ctx, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	return records, nil
}

// DocumentsForRun returns a run's document records ordered by file path.
func (l *Ledger) DocumentsForRun(ctx context.Context, runID uuid.UUID) ([]*DocumentRecord, error) {
	if l == nil || l.documents == nil {
		return nil, errUnavailable
	}
	records, _, err := l.documents.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.run_id = ?", runID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.file_path ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: list documents: %w", err)
	}
	return records, nil
}

// UnhandledForRun returns a run's component gaps, most used first.
func (l *Ledger) UnhandledForRun(ctx context.Context, runID uuid.UUID) ([]*UnhandledRecord, error) {
	if l == nil || l.unhandled == nil {
		return nil, errUnavailable
	}
	records, _, err := l.unhandled.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.run_id = ?", runID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.usage_count DESC, ?TableAlias.name ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: list unhandled: %w", err)
	}
	return records, nil
}

// LastConverted returns the newest successful record for a file path.
// Callers use its checksum to decide whether a document can be skipped.
func (l *Ledger) LastConverted(ctx context.Context, filePath string) (*DocumentRecord, error) {
	if l == nil || l.documents == nil {
		return nil, errUnavailable
	}
	records, _, err := l.documents.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.file_path = ?", filePath)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.status IN (?)", bun.In([]string{
				interfaces.OutcomeConverted,
				interfaces.OutcomePublished,
			}))
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "document", filePath)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, filePath)
	}
	return records[0], nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, resource, key)
	}
	return fmt.Errorf("ledger: %s repository: %w", resource, err)
}
