package runnercmd

import (
	"context"
	"errors"

	"github.com/ComparePower/go-payload-migrate/internal/commands"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	migrateDirectoryOperation = "runner.migrate_directory"
	migrateFileOperation      = "runner.migrate_file"
	scanDirectoryOperation    = "runner.scan_directory"
)

var (
	// ErrMigrationFeatureDisabled is returned when the migration feature flag is disabled at runtime.
	ErrMigrationFeatureDisabled = errors.New("migration command: feature disabled")
	// ErrPublishFeatureDisabled is returned when a command requests publishing while the publish flag is off.
	ErrPublishFeatureDisabled = errors.New("migration command: publish disabled")
)

var (
	_ command.Commander[MigrateDirectoryCommand] = (*MigrateDirectoryHandler)(nil)
	_ command.Commander[MigrateFileCommand]      = (*MigrateFileHandler)(nil)
	_ command.Commander[ScanDirectoryCommand]    = (*ScanDirectoryHandler)(nil)
)

// MigrateDirectoryHandler orchestrates directory migration runs via the shared command handler foundation.
type MigrateDirectoryHandler struct {
	inner *commands.Handler[MigrateDirectoryCommand]
}

// NewMigrateDirectoryHandler creates a handler bound to the supplied migration service.
func NewMigrateDirectoryHandler(service interfaces.MigrationService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[MigrateDirectoryCommand]) *MigrateDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg MigrateDirectoryCommand) error {
		if !gates.migrationEnabled() {
			return ErrMigrationFeatureDisabled
		}
		if msg.Publish && !gates.publishEnabled() {
			return ErrPublishFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, err := service.MigrateDirectory(ctx, msg.Directory, interfaces.MigrateOptions{
			Mode:          msg.Mode,
			Pattern:       msg.Pattern,
			DryRun:        msg.DryRun,
			Publish:       msg.Publish,
			SkipUnchanged: msg.SkipUnchanged,
		})
		logRunSummary(baseLogger, "runner.command.migrate_directory.completed", summary, msg.DryRun)
		return err
	}

	handlerOpts := []commands.HandlerOption[MigrateDirectoryCommand]{
		commands.WithLogger[MigrateDirectoryCommand](baseLogger),
		commands.WithOperation[MigrateDirectoryCommand](migrateDirectoryOperation),
		commands.WithMessageFields(func(msg MigrateDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Mode != "" {
				fields["mode"] = msg.Mode
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Publish {
				fields["publish"] = true
			}
			if msg.SkipUnchanged {
				fields["skip_unchanged"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MigrateDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MigrateDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MigrateDirectoryCommand].
func (h *MigrateDirectoryHandler) Execute(ctx context.Context, msg MigrateDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// MigrateFileHandler converts a single document via the shared command handler foundation.
type MigrateFileHandler struct {
	inner *commands.Handler[MigrateFileCommand]
}

// NewMigrateFileHandler creates a handler bound to the supplied migration service.
func NewMigrateFileHandler(service interfaces.MigrationService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[MigrateFileCommand]) *MigrateFileHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg MigrateFileCommand) error {
		if !gates.migrationEnabled() {
			return ErrMigrationFeatureDisabled
		}
		if msg.Publish && !gates.publishEnabled() {
			return ErrPublishFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, err := service.MigrateFile(ctx, msg.Path, interfaces.MigrateOptions{
			Mode:          msg.Mode,
			DryRun:        msg.DryRun,
			Publish:       msg.Publish,
			SkipUnchanged: msg.SkipUnchanged,
		})
		logRunSummary(baseLogger, "runner.command.migrate_file.completed", summary, msg.DryRun)
		return err
	}

	handlerOpts := []commands.HandlerOption[MigrateFileCommand]{
		commands.WithLogger[MigrateFileCommand](baseLogger),
		commands.WithOperation[MigrateFileCommand](migrateFileOperation),
		commands.WithMessageFields(func(msg MigrateFileCommand) map[string]any {
			fields := map[string]any{
				"path": msg.Path,
			}
			if msg.Mode != "" {
				fields["mode"] = msg.Mode
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Publish {
				fields["publish"] = true
			}
			if msg.SkipUnchanged {
				fields["skip_unchanged"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MigrateFileCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MigrateFileHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MigrateFileCommand].
func (h *MigrateFileHandler) Execute(ctx context.Context, msg MigrateFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ScanDirectoryHandler surveys component coverage via the shared command handler foundation.
type ScanDirectoryHandler struct {
	inner *commands.Handler[ScanDirectoryCommand]
}

// NewScanDirectoryHandler creates a handler bound to the supplied migration service.
func NewScanDirectoryHandler(service interfaces.MigrationService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ScanDirectoryCommand]) *ScanDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ScanDirectoryCommand) error {
		if !gates.migrationEnabled() {
			return ErrMigrationFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, err := service.ScanDirectory(ctx, msg.Directory, interfaces.MigrateOptions{
			Pattern: msg.Pattern,
		})
		if summary != nil {
			logging.WithFields(baseLogger, map[string]any{
				"run_id":     summary.RunID,
				"documents":  summary.Documents,
				"failed":     summary.Failed,
				"components": summary.ComponentBlocks,
				"unhandled":  len(summary.Unhandled),
			}).Info("runner.command.scan_directory.completed")
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[ScanDirectoryCommand]{
		commands.WithLogger[ScanDirectoryCommand](baseLogger),
		commands.WithOperation[ScanDirectoryCommand](scanDirectoryOperation),
		commands.WithMessageFields(func(msg ScanDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ScanDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ScanDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ScanDirectoryCommand].
func (h *ScanDirectoryHandler) Execute(ctx context.Context, msg ScanDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// logRunSummary emits the completion log even when the run returned per-document
// errors, since collect mode reports both a summary and a joined error.
func logRunSummary(logger interfaces.Logger, msg string, summary *interfaces.MigrationSummary, dryRun bool) {
	if summary == nil {
		return
	}
	logging.WithFields(logger, map[string]any{
		"run_id":    summary.RunID,
		"documents": summary.Documents,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"published": summary.Published,
		"blocks":    summary.TotalBlocks,
		"dry_run":   dryRun,
	}).Info(msg)
}
