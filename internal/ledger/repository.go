package ledger

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewRunRepository creates a repository for Run entities.
func NewRunRepository(db *bun.DB) repository.Repository[*Run] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Run]{
		NewRecord:          func() *Run { return &Run{} },
		GetID:              func(r *Run) uuid.UUID { return r.ID },
		SetID:              func(r *Run, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "" },
		GetIdentifierValue: func(*Run) string { return "" },
	})
}

// NewDocumentRecordRepository creates a repository for DocumentRecord entities.
func NewDocumentRecordRepository(db *bun.DB) repository.Repository[*DocumentRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DocumentRecord]{
		NewRecord:          func() *DocumentRecord { return &DocumentRecord{} },
		GetID:              func(r *DocumentRecord) uuid.UUID { return r.ID },
		SetID:              func(r *DocumentRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "file_path" },
		GetIdentifierValue: func(r *DocumentRecord) string { return r.FilePath },
	})
}

// NewUnhandledRecordRepository creates a repository for UnhandledRecord entities.
func NewUnhandledRecordRepository(db *bun.DB) repository.Repository[*UnhandledRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*UnhandledRecord]{
		NewRecord:          func() *UnhandledRecord { return &UnhandledRecord{} },
		GetID:              func(r *UnhandledRecord) uuid.UUID { return r.ID },
		SetID:              func(r *UnhandledRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(r *UnhandledRecord) string { return r.Name },
	})
}
