package runnercmd

import (
	"context"
	"errors"

	"github.com/ComparePower/go-payload-migrate/internal/commands"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the migration command handlers produced by RegisterMigrationCommands.
type HandlerSet struct {
	MigrateDirectory *MigrateDirectoryHandler
	MigrateFile      *MigrateFileHandler
	Scan             *ScanDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	migrateDirectoryOpts []commands.HandlerOption[MigrateDirectoryCommand]
	migrateFileOpts      []commands.HandlerOption[MigrateFileCommand]
	scanOpts             []commands.HandlerOption[ScanDirectoryCommand]
}

// WithMigrateDirectoryHandlerOptions forwards options to the MigrateDirectoryHandler constructor.
func WithMigrateDirectoryHandlerOptions(opts ...commands.HandlerOption[MigrateDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.migrateDirectoryOpts = append(cfg.migrateDirectoryOpts, opts...)
	}
}

// WithMigrateFileHandlerOptions forwards options to the MigrateFileHandler constructor.
func WithMigrateFileHandlerOptions(opts ...commands.HandlerOption[MigrateFileCommand]) Option {
	return func(cfg *options) {
		cfg.migrateFileOpts = append(cfg.migrateFileOpts, opts...)
	}
}

// WithScanHandlerOptions forwards options to the ScanDirectoryHandler constructor.
func WithScanHandlerOptions(opts ...commands.HandlerOption[ScanDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.scanOpts = append(cfg.scanOpts, opts...)
	}
}

// RegisterMigrationCommands builds the migration command handlers and registers them with the
// provided registry. A HandlerSet containing the constructed handlers is returned so callers
// can wire additional integrations (dispatcher, cron) as needed.
func RegisterMigrationCommands(reg CommandRegistry, service interfaces.MigrationService, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("migration command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "runner")

	migrateDirectory := NewMigrateDirectoryHandler(service, logger, gates, cfg.migrateDirectoryOpts...)
	migrateFile := NewMigrateFileHandler(service, logger, gates, cfg.migrateFileOpts...)
	scan := NewScanDirectoryHandler(service, logger, gates, cfg.scanOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(migrateDirectory); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(migrateFile); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(scan); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		MigrateDirectory: migrateDirectory,
		MigrateFile:      migrateFile,
		Scan:             scan,
	}, nil
}

// RegisterMigrationCron wires the provided directory handler into a cron registrar using the
// supplied command configuration and message payload. The handler is executed with a background
// context, which suits scheduled re-migrations that skip unchanged documents.
func RegisterMigrationCron(reg CronRegistrar, handler *MigrateDirectoryHandler, cfg command.HandlerConfig, msg MigrateDirectoryCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
