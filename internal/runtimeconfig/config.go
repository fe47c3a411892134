package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrDocumentsContentDirRequired indicates the source directory is missing.
var ErrDocumentsContentDirRequired = errors.New("migrate config: documents content directory is required")

// ErrPipelineModeInvalid rejects unknown segmentation modes.
var ErrPipelineModeInvalid = errors.New("migrate config: pipeline mode is invalid")

// ErrConverterProviderUnknown rejects unknown rich-text converter providers.
var ErrConverterProviderUnknown = errors.New("migrate config: converter provider is invalid")

// ErrWorkerCountInvalid rejects negative worker pool sizes.
var ErrWorkerCountInvalid = errors.New("migrate config: worker count must be zero or positive")

// ErrLedgerDriverUnknown rejects unsupported ledger drivers.
var ErrLedgerDriverUnknown = errors.New("migrate config: ledger driver is invalid")

// ErrLedgerDSNRequired indicates a ledger was enabled without a DSN.
var ErrLedgerDSNRequired = errors.New("migrate config: ledger DSN is required when the ledger is enabled")

// ErrLedgerCacheRequiresLedger keeps repository caching behind the ledger flag.
var ErrLedgerCacheRequiresLedger = errors.New("migrate config: ledger cache requires the ledger to be enabled")

// ErrCommandsDispatcherRequiresCommands keeps dispatcher auto-registration behind the commands flag.
var ErrCommandsDispatcherRequiresCommands = errors.New("migrate config: command dispatcher auto-registration requires commands to be enabled")

// ErrReportRoutesRequired indicates deep links were configured without routes.
var ErrReportRoutesRequired = errors.New("migrate config: report URL group requires a route config")

var ErrLoggingProviderRequired = errors.New("migrate config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("migrate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("migrate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("migrate config: logging format is invalid")

// Config aggregates settings for the migration module. Fields intentionally
// use simple types so host applications can extend them later.
type Config struct {
	Enabled       bool
	DefaultLocale string
	Documents     DocumentsConfig
	Registry      RegistryConfig
	Pipeline      PipelineConfig
	Runner        RunnerConfig
	Ledger        LedgerConfig
	Report        ReportConfig
	Commands      CommandsConfig
	Logging       LoggingConfig
}

// DocumentsConfig captures filesystem behaviour for source discovery.
type DocumentsConfig struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	DefaultLocale  string
	Locales        []string
	LocalePatterns map[string]string
}

// RegistryConfig seeds the component registry at startup.
type RegistryConfig struct {
	// SnapshotPath points at a JSON registry snapshot exported from the
	// destination CMS.
	SnapshotPath string
	// Definitions registers components inline, on top of any snapshot.
	Definitions []ComponentDefinitionConfig
}

// ComponentDefinitionConfig mirrors the registry's definition shape.
type ComponentDefinitionConfig struct {
	Name         string
	Status       string
	Type         string
	RenderBlock  bool
	RenderInline bool
	Fields       []string
}

// PipelineConfig captures segmentation and conversion behaviour.
type PipelineConfig struct {
	// Mode selects failure handling: "fail-fast" or "collect".
	Mode string
	// LinkRepair toggles the post-conversion link and spacing repair pass.
	LinkRepair bool
	Converter  ConverterConfig
}

// ConverterConfig selects the rich-text converter.
type ConverterConfig struct {
	// Provider picks the converter: "markdown" (goldmark) or "plain".
	Provider string
	// Extensions enables goldmark extensions by name for the markdown
	// provider. Empty keeps the defaults.
	Extensions []string
}

// RunnerConfig captures batch execution behaviour.
type RunnerConfig struct {
	// Workers sizes the worker pool. Zero means one worker per CPU.
	Workers int
}

// LedgerConfig captures migration ledger persistence.
type LedgerConfig struct {
	Enabled bool
	// Driver selects the database backend: "sqlite" or "postgres".
	Driver string
	DSN    string
	Cache  CacheConfig
}

// CacheConfig captures repository cache behaviour for the ledger.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// ReportConfig captures migration report output and admin deep links.
type ReportConfig struct {
	// Path is where the JSON report is written. Empty writes to stdout.
	Path        string
	RouteConfig *urlkit.Config
	URLKit      ReportLinkConfig
}

// ReportLinkConfig configures the go-urlkit based admin link builder.
type ReportLinkConfig struct {
	Group          string
	DocumentRoute  string
	ComponentRoute string
	SlugParam      string
	LocaleParam    string
	NameParam      string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a local migration run.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		Documents: DocumentsConfig{
			ContentDir:     "content",
			Recursive:      true,
			Locales:        []string{"en"},
			LocalePatterns: map[string]string{},
		},
		Registry: RegistryConfig{},
		Pipeline: PipelineConfig{
			Mode:       "fail-fast",
			LinkRepair: true,
			Converter: ConverterConfig{
				Provider: "markdown",
			},
		},
		Runner: RunnerConfig{},
		Ledger: LedgerConfig{
			Driver: "sqlite",
			Cache: CacheConfig{
				DefaultTTL: time.Minute,
			},
		},
		Report:   ReportConfig{},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Documents.ContentDir) == "" {
		return ErrDocumentsContentDirRequired
	}
	if mode := strings.TrimSpace(cfg.Pipeline.Mode); mode != "" && !isSupportedMode(mode) {
		return fmt.Errorf("%w: %s", ErrPipelineModeInvalid, mode)
	}
	if provider := normalizeProvider(cfg.Pipeline.Converter.Provider); provider != "" && !isSupportedConverter(provider) {
		return fmt.Errorf("%w: %s", ErrConverterProviderUnknown, provider)
	}
	if cfg.Runner.Workers < 0 {
		return ErrWorkerCountInvalid
	}
	if cfg.Ledger.Enabled {
		driver := normalizeProvider(cfg.Ledger.Driver)
		if !isSupportedLedgerDriver(driver) {
			return fmt.Errorf("%w: %s", ErrLedgerDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Ledger.DSN) == "" {
			return ErrLedgerDSNRequired
		}
	}
	if cfg.Ledger.Cache.Enabled && !cfg.Ledger.Enabled {
		return ErrLedgerCacheRequiresLedger
	}
	if cfg.Commands.AutoRegisterDispatcher && !cfg.Commands.Enabled {
		return ErrCommandsDispatcherRequiresCommands
	}
	if strings.TrimSpace(cfg.Report.URLKit.Group) != "" && cfg.Report.RouteConfig == nil {
		return ErrReportRoutesRequired
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedMode(mode string) bool {
	switch strings.ToLower(mode) {
	case "fail-fast", "collect":
		return true
	default:
		return false
	}
}

func isSupportedConverter(provider string) bool {
	switch provider {
	case "markdown", "plain":
		return true
	default:
		return false
	}
}

func isSupportedLedgerDriver(driver string) bool {
	switch driver {
	case "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
