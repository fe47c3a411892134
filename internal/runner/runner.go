// Package runner fans a document corpus out to a worker pool, converts each
// file through the block pipeline, and aggregates the per-document outcomes
// into a migration summary. Documents are independent; a failure in one never
// stops the others.
package runner

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/ledger"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/internal/pipeline"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

var (
	// ErrLoaderRequired indicates the runner was built without a document loader.
	ErrLoaderRequired = errors.New("runner: document loader is required")
	// ErrConverterRequired indicates no converter is configured for the
	// requested failure mode.
	ErrConverterRequired = errors.New("runner: converter is required")
	// ErrPublisherRequired indicates a publishing run was requested without a
	// publisher.
	ErrPublisherRequired = errors.New("runner: publisher is required to publish")
	// ErrModeUnknown rejects failure modes other than fail-fast and collect.
	ErrModeUnknown = errors.New("runner: unknown mode")
)

// DocumentConverter turns one parsed document into ordered content blocks.
// *pipeline.Pipeline satisfies it.
type DocumentConverter interface {
	Process(ctx context.Context, doc *interfaces.Document) (*blocks.Result, error)
}

// RunRecorder persists run outcomes and answers checksum lookups for
// incremental runs. *ledger.Ledger satisfies it.
type RunRecorder interface {
	RecordRun(ctx context.Context, input ledger.RecordRunInput) (*ledger.Run, error)
	LastConverted(ctx context.Context, filePath string) (*ledger.DocumentRecord, error)
}

// Converters holds one document converter per failure mode. Runs pick the
// converter matching their requested mode.
type Converters struct {
	FailFast DocumentConverter
	Collect  DocumentConverter
}

// Config captures runtime behaviour toggles for the runner.
type Config struct {
	// Workers bounds the worker pool; zero or negative selects runtime.NumCPU.
	Workers int
	// Mode is the failure mode applied when run options omit one.
	Mode string
}

// Dependencies lists the collaborators required by the runner. Publisher and
// Recorder are optional; runs degrade gracefully without them.
type Dependencies struct {
	Loader     interfaces.DocumentLoader
	Converters Converters
	Publisher  interfaces.Publisher
	Recorder   RunRecorder
	Logger     interfaces.Logger
}

// Service coordinates batch document migrations.
type Service interface {
	MigrateDirectory(ctx context.Context, dir string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error)
	MigrateFile(ctx context.Context, path string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error)
	ScanDirectory(ctx context.Context, dir string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error)
}

// Option adjusts service construction.
type Option func(*service)

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *service) {
		if gen != nil {
			s.id = gen
		}
	}
}

// NewService wires a runner implementation with the provided configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies, opts ...Option) Service {
	svc := &service{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
		now:    time.Now,
		id:     uuid.New,
	}
	if svc.logger == nil {
		svc.logger = logging.NoOp()
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
	id     func() uuid.UUID
}

var _ interfaces.MigrationService = (*service)(nil)

// workOutcome pairs a document outcome with the counters and error the
// summary aggregation needs.
type workOutcome struct {
	outcome    interfaces.DocumentOutcome
	richText   int
	components int
	err        error
}

func (s *service) MigrateDirectory(ctx context.Context, dir string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv, mode, err := s.converterFor(opts.Mode)
	if err != nil {
		return nil, err
	}
	if err := s.checkDependencies(opts); err != nil {
		return nil, err
	}

	started := s.now()
	docs, err := s.deps.Loader.LoadDirectory(ctx, dir, loadOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("runner: load directory %s: %w", dir, err)
	}

	summary, runErr := s.run(ctx, mode, conv, docs, opts)
	summary.Duration = s.now().Sub(started)

	var recordErr error
	if !opts.DryRun {
		recordErr = s.recordRun(ctx, summary, dir, started)
	}
	return summary, errors.Join(runErr, recordErr)
}

func (s *service) MigrateFile(ctx context.Context, path string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv, mode, err := s.converterFor(opts.Mode)
	if err != nil {
		return nil, err
	}
	if err := s.checkDependencies(opts); err != nil {
		return nil, err
	}

	started := s.now()
	doc, err := s.deps.Loader.Load(ctx, path, loadOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("runner: load %s: %w", path, err)
	}

	summary, runErr := s.run(ctx, mode, conv, []*interfaces.Document{doc}, opts)
	summary.Duration = s.now().Sub(started)

	var recordErr error
	if !opts.DryRun {
		recordErr = s.recordRun(ctx, summary, path, started)
	}
	return summary, errors.Join(runErr, recordErr)
}

// ScanDirectory reports component coverage for a corpus without publishing or
// recording anything. Scans always run in collect mode so every coverage gap
// is tallied instead of aborting the document.
func (s *service) ScanDirectory(ctx context.Context, dir string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	opts.Mode = string(pipeline.ModeCollect)
	opts.DryRun = true
	opts.Publish = false
	opts.SkipUnchanged = false
	return s.MigrateDirectory(ctx, dir, opts)
}

func (s *service) checkDependencies(opts interfaces.MigrateOptions) error {
	if s.deps.Loader == nil {
		return ErrLoaderRequired
	}
	if opts.Publish && !opts.DryRun && s.deps.Publisher == nil {
		return ErrPublisherRequired
	}
	return nil
}

func (s *service) converterFor(mode string) (DocumentConverter, pipeline.Mode, error) {
	requested := strings.TrimSpace(mode)
	if requested == "" {
		requested = strings.TrimSpace(s.cfg.Mode)
	}
	if requested == "" {
		requested = string(pipeline.ModeFailFast)
	}

	resolved := pipeline.Mode(requested)
	if !resolved.Valid() {
		return nil, "", fmt.Errorf("%w: %q", ErrModeUnknown, requested)
	}

	var conv DocumentConverter
	switch resolved {
	case pipeline.ModeFailFast:
		conv = s.deps.Converters.FailFast
	case pipeline.ModeCollect:
		conv = s.deps.Converters.Collect
	}
	if conv == nil {
		return nil, "", fmt.Errorf("%w: mode %q", ErrConverterRequired, requested)
	}
	return conv, resolved, nil
}

func (s *service) run(ctx context.Context, mode pipeline.Mode, conv DocumentConverter, docs []*interfaces.Document, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	summary := &interfaces.MigrationSummary{
		RunID:    s.id(),
		Mode:     string(mode),
		Outcomes: make([]interfaces.DocumentOutcome, 0, len(docs)),
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	collect := func(out workOutcome) {
		mu.Lock()
		defer mu.Unlock()
		summary.Outcomes = append(summary.Outcomes, out.outcome)
		summary.TotalBlocks += out.outcome.Blocks
		summary.RichTextBlocks += out.richText
		summary.ComponentBlocks += out.components
		switch out.outcome.Status {
		case interfaces.OutcomeFailed:
			summary.Failed++
		case interfaces.OutcomeSkipped:
			summary.Skipped++
		case interfaces.OutcomePublished:
			summary.Published++
			summary.Succeeded++
		default:
			summary.Succeeded++
		}
		if out.err != nil {
			failures = append(failures, out.err)
		}
	}

	workers := s.effectiveWorkerCount(len(docs))
	s.logger.Info("runner.run.start",
		"run_id", summary.RunID.String(),
		"mode", summary.Mode,
		"documents", len(docs),
		"workers", workers,
	)

	var dispatchErr error
	if workers <= 1 || len(docs) <= 1 {
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				dispatchErr = err
				break
			}
			collect(s.processDocument(ctx, conv, doc, opts))
		}
	} else {
		dispatchErr = s.processConcurrently(ctx, conv, docs, opts, workers, collect)
	}

	sort.Slice(summary.Outcomes, func(i, j int) bool {
		return summary.Outcomes[i].Path < summary.Outcomes[j].Path
	})
	summary.Documents = len(summary.Outcomes)
	summary.Unhandled = mergeUnhandled(summary.Outcomes)

	s.logger.Info("runner.run.finished",
		"run_id", summary.RunID.String(),
		"documents", summary.Documents,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"published", summary.Published,
	)

	return summary, errors.Join(dispatchErr, errors.Join(failures...))
}

func (s *service) processConcurrently(
	ctx context.Context,
	conv DocumentConverter,
	docs []*interfaces.Document,
	opts interfaces.MigrateOptions,
	workers int,
	collect func(workOutcome),
) error {
	jobs := make(chan *interfaces.Document)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				select {
				case <-ctx.Done():
					collect(canceledOutcome(doc, ctx.Err()))
					return
				default:
					collect(s.processDocument(ctx, conv, doc, opts))
				}
			}
		}()
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) processDocument(ctx context.Context, conv DocumentConverter, doc *interfaces.Document, opts interfaces.MigrateOptions) workOutcome {
	outcome := interfaces.DocumentOutcome{
		DocumentID: doc.ID,
		Path:       doc.FilePath,
		Slug:       doc.Slug,
		Locale:     doc.Locale,
		Checksum:   hex.EncodeToString(doc.Checksum),
	}

	if prior, ok := s.unchangedRecord(ctx, doc, opts, outcome.Checksum); ok {
		outcome.Status = interfaces.OutcomeSkipped
		outcome.Blocks = prior.Blocks
		outcome.ReceiptID = prior.ReceiptID
		s.logger.Debug("runner.document.skipped", "path", doc.FilePath)
		return workOutcome{outcome: outcome}
	}

	result, err := conv.Process(ctx, doc)
	if err != nil {
		outcome.Status = interfaces.OutcomeFailed
		outcome.Error = err.Error()
		s.logger.Error("runner.document.failed", "path", doc.FilePath, "error", err.Error())
		return workOutcome{outcome: outcome, err: fmt.Errorf("runner: convert %s: %w", doc.FilePath, err)}
	}

	outcome.Status = interfaces.OutcomeConverted
	outcome.Blocks = len(result.Blocks)
	outcome.Unhandled = result.Unhandled
	rich := result.RichTextCount()
	components := result.ComponentCount()

	if opts.Publish && !opts.DryRun {
		receipt, pubErr := s.deps.Publisher.PublishDocument(ctx, result)
		if pubErr != nil {
			outcome.Status = interfaces.OutcomeFailed
			outcome.Error = pubErr.Error()
			s.logger.Error("runner.document.publish_failed", "path", doc.FilePath, "error", pubErr.Error())
			return workOutcome{
				outcome:    outcome,
				richText:   rich,
				components: components,
				err:        fmt.Errorf("runner: publish %s: %w", doc.FilePath, pubErr),
			}
		}
		outcome.Status = interfaces.OutcomePublished
		outcome.ReceiptID = receipt.ID
	}

	return workOutcome{outcome: outcome, richText: rich, components: components}
}

// unchangedRecord reports whether the document's checksum matches its last
// successful conversion. Lookup failures other than not-found are logged and
// treated as a miss so a degraded ledger never blocks a run.
func (s *service) unchangedRecord(ctx context.Context, doc *interfaces.Document, opts interfaces.MigrateOptions, checksum string) (*ledger.DocumentRecord, bool) {
	if !opts.SkipUnchanged || s.deps.Recorder == nil || checksum == "" {
		return nil, false
	}
	prior, err := s.deps.Recorder.LastConverted(ctx, doc.FilePath)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			s.logger.Warn("runner.skip.lookup", "path", doc.FilePath, "error", err.Error())
		}
		return nil, false
	}
	if prior.Checksum != checksum {
		return nil, false
	}
	return prior, true
}

func (s *service) recordRun(ctx context.Context, summary *interfaces.MigrationSummary, contentDir string, started time.Time) error {
	if s.deps.Recorder == nil {
		return nil
	}
	input := ledger.RecordRunInput{
		Summary:    summary,
		ContentDir: contentDir,
		StartedAt:  started,
		FinishedAt: started.Add(summary.Duration),
	}
	if _, err := s.deps.Recorder.RecordRun(ctx, input); err != nil {
		return fmt.Errorf("runner: record run: %w", err)
	}
	return nil
}

func (s *service) effectiveWorkerCount(docCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if docCount > 0 && workers > docCount {
		return docCount
	}
	return workers
}

func canceledOutcome(doc *interfaces.Document, err error) workOutcome {
	return workOutcome{
		outcome: interfaces.DocumentOutcome{
			DocumentID: doc.ID,
			Path:       doc.FilePath,
			Slug:       doc.Slug,
			Locale:     doc.Locale,
			Status:     interfaces.OutcomeFailed,
			Error:      err.Error(),
		},
		err: err,
	}
}

func loadOptions(opts interfaces.MigrateOptions) interfaces.LoadOptions {
	return interfaces.LoadOptions{
		Recursive:      opts.Recursive,
		Pattern:        opts.Pattern,
		LocalePatterns: opts.LocalePatterns,
	}
}

// mergeUnhandled folds per-document coverage gaps into one corpus catalog,
// deduplicated by name and usage, heaviest first. Callers must pass outcomes
// already sorted by path so the retained first-seen location is stable.
func mergeUnhandled(outcomes []interfaces.DocumentOutcome) []blocks.UnhandledComponent {
	type key struct {
		name  string
		usage blocks.ComponentUsage
	}
	index := map[key]int{}
	merged := []blocks.UnhandledComponent{}
	for _, outcome := range outcomes {
		for _, gap := range outcome.Unhandled {
			k := key{name: gap.Name, usage: gap.Usage}
			if i, ok := index[k]; ok {
				merged[i].UsageCount += gap.UsageCount
				if merged[i].FirstSeen == "" {
					merged[i].FirstSeen = gap.FirstSeen
				}
				continue
			}
			index[k] = len(merged)
			merged = append(merged, gap)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].UsageCount != merged[j].UsageCount {
			return merged[i].UsageCount > merged[j].UsageCount
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}
