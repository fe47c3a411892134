package bootstrap

import (
	"fmt"
	"strings"

	payloadmigrate "github.com/ComparePower/go-payload-migrate"
	"github.com/ComparePower/go-payload-migrate/internal/di"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// Options captures configuration for migration CLI bootstraps.
type Options struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	LocalePatterns map[string]string
	DefaultLocale  string
	Locales        []string
	Mode           string
	Workers        int
	SnapshotPath   string
	LedgerDriver   string
	LedgerDSN      string
	ReportPath     string
	LogLevel       string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the migration module and the configured service/logger.
type Module struct {
	Module  *payloadmigrate.Module
	Service interfaces.MigrationService
	Logger  interfaces.Logger
}

// BuildModule constructs a migration module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg := payloadmigrate.DefaultConfig()

	cfg.Documents.ContentDir = strings.TrimSpace(opts.ContentDir)
	if cfg.Documents.ContentDir == "" {
		cfg.Documents.ContentDir = "content"
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Documents.Pattern = trimmed
	}
	if opts.LocalePatterns != nil {
		cfg.Documents.LocalePatterns = opts.LocalePatterns
	}
	cfg.Documents.Recursive = opts.Recursive

	if locale := strings.TrimSpace(opts.DefaultLocale); locale != "" {
		cfg.Documents.DefaultLocale = locale
		cfg.DefaultLocale = locale
	}
	if len(opts.Locales) > 0 {
		cfg.Documents.Locales = cloneStrings(opts.Locales)
	}

	if mode := strings.TrimSpace(opts.Mode); mode != "" {
		cfg.Pipeline.Mode = mode
	}
	if opts.Workers > 0 {
		cfg.Runner.Workers = opts.Workers
	}
	if path := strings.TrimSpace(opts.SnapshotPath); path != "" {
		cfg.Registry.SnapshotPath = path
	}

	if dsn := strings.TrimSpace(opts.LedgerDSN); dsn != "" {
		cfg.Ledger.Enabled = true
		cfg.Ledger.DSN = dsn
		if driver := strings.TrimSpace(opts.LedgerDriver); driver != "" {
			cfg.Ledger.Driver = driver
		}
	}

	if path := strings.TrimSpace(opts.ReportPath); path != "" {
		cfg.Report.Path = path
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := payloadmigrate.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise migration module: %w", err)
	}

	service := module.Migration()
	if service == nil {
		return nil, fmt.Errorf("migration service not configured")
	}

	logger := logging.RunnerLogger(module.Container().LoggerProvider())

	return &Module{
		Module:  module,
		Service: service,
		Logger:  logger,
	}, nil
}

// SplitLocales parses a comma separated locale list into a trimmed slice.
func SplitLocales(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	locales := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			locales = append(locales, trimmed)
		}
	}
	return locales
}

func cloneStrings(values []string) []string {
	return append([]string(nil), values...)
}
