// Package di wires the migration module's collaborators: logging, the
// component registry, document loading, the conversion pipelines, the run
// ledger, report generation, and the batch runner.
package di

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/ComparePower/go-payload-migrate/internal/documents"
	"github.com/ComparePower/go-payload-migrate/internal/ledger"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/internal/logging/console"
	"github.com/ComparePower/go-payload-migrate/internal/logging/gologger"
	"github.com/ComparePower/go-payload-migrate/internal/pipeline"
	"github.com/ComparePower/go-payload-migrate/internal/registry"
	"github.com/ComparePower/go-payload-migrate/internal/report"
	"github.com/ComparePower/go-payload-migrate/internal/runner"
	"github.com/ComparePower/go-payload-migrate/internal/runtimeconfig"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	registry  *registry.Registry
	loader    interfaces.DocumentLoader
	converter interfaces.RichTextConverter
	publisher interfaces.Publisher

	bunDB  *bun.DB
	ownsDB bool

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	ledger       *ledger.Ledger
	routeManager *urlkit.RouteManager
	linkBuilder  *report.LinkBuilder
	reporter     *report.Generator

	migrationSvc interfaces.MigrationService
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the config-driven logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRegistry overrides the config-driven component registry. Inline
// definitions from the configuration are still registered on top.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithLoader overrides the default filesystem document loader.
func WithLoader(loader interfaces.DocumentLoader) Option {
	return func(c *Container) {
		c.loader = loader
	}
}

// WithConverter overrides the rich text converter used by both pipelines.
func WithConverter(converter interfaces.RichTextConverter) Option {
	return func(c *Container) {
		c.converter = converter
	}
}

// WithPublisher supplies the destination publisher. Without one, publishing
// runs fail with the runner's publisher-required error.
func WithPublisher(publisher interfaces.Publisher) Option {
	return func(c *Container) {
		c.publisher = publisher
	}
}

// WithBunDB supplies an existing database handle for the ledger. The caller
// keeps ownership: the container will not close it and will not create the
// ledger schema.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the ledger's repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithMigrationService overrides the default migration service binding.
func WithMigrationService(svc interfaces.MigrationService) Option {
	return func(c *Container) {
		c.migrationSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureRegistry(); err != nil {
		return nil, err
	}
	c.configureLoader()
	c.configureConverter()
	if err := c.configureLedger(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureReport()
	c.configureRunner()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: consoleLevel(logCfg.Level),
		})
	}
	return nil
}

func (c *Container) configureRegistry() error {
	if c.registry == nil {
		if path := strings.TrimSpace(c.Config.Registry.SnapshotPath); path != "" {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			c.registry = reg
		} else {
			c.registry = registry.New()
		}
	}

	for _, def := range c.Config.Registry.Definitions {
		if err := c.registry.Register(componentDefinition(def)); err != nil {
			return err
		}
	}

	logging.RegistryLogger(c.loggerProvider).Info("registry.configured",
		"components", c.registry.Len(),
	)
	return nil
}

// configureLoader roots the loader filesystem at the configured content
// directory, so run directories and file paths are given relative to it.
// Absolute paths are remapped through the loader's base path.
func (c *Container) configureLoader() {
	if c.loader != nil {
		return
	}

	docs := c.Config.Documents
	contentDir := filepath.Clean(strings.TrimSpace(docs.ContentDir))
	basePath := contentDir
	if abs, err := filepath.Abs(contentDir); err == nil {
		basePath = abs
	}

	locale := strings.TrimSpace(docs.DefaultLocale)
	if locale == "" {
		locale = strings.TrimSpace(c.Config.DefaultLocale)
	}

	c.loader = documents.NewLoader(os.DirFS(contentDir), documents.LoaderConfig{
		BasePath:       basePath,
		DefaultLocale:  locale,
		Locales:        docs.Locales,
		LocalePatterns: docs.LocalePatterns,
		Pattern:        docs.Pattern,
		Recursive:      docs.Recursive,
	})

	logging.DocumentsLogger(c.loggerProvider).Info("loader.configured",
		"content_dir", contentDir,
		"recursive", docs.Recursive,
	)
}

func (c *Container) configureConverter() {
	if c.converter != nil {
		return
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Pipeline.Converter.Provider)) {
	case "plain":
		c.converter = richtext.NewPlainConverter()
	default:
		c.converter = richtext.NewMarkdownConverter()
	}
}

func (c *Container) configureLedger() error {
	if !c.Config.Ledger.Enabled || c.ledger != nil {
		return nil
	}

	if c.bunDB == nil {
		db, err := ledger.Open(ledger.Config{
			Driver: c.Config.Ledger.Driver,
			DSN:    c.Config.Ledger.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	c.configureCacheDefaults()
	c.ledger = ledger.NewWithCache(c.bunDB, c.cacheService, c.keySerializer)

	if c.ownsDB {
		if err := c.ledger.EnsureSchema(context.Background()); err != nil {
			return err
		}
	}

	logging.LedgerLogger(c.loggerProvider).Info("ledger.configured",
		"driver", strings.ToLower(strings.TrimSpace(c.Config.Ledger.Driver)),
		"cache", c.cacheService != nil,
	)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Ledger.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Ledger.Cache.DefaultTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureReport() {
	reportCfg := c.Config.Report

	if c.routeManager == nil && reportCfg.RouteConfig != nil {
		c.routeManager = urlkit.NewRouteManager(reportCfg.RouteConfig)
	}

	if c.linkBuilder == nil && c.routeManager != nil && strings.TrimSpace(reportCfg.URLKit.Group) != "" {
		links := reportCfg.URLKit
		c.linkBuilder = report.NewLinkBuilder(report.LinkOptions{
			Manager:        c.routeManager,
			Group:          links.Group,
			DocumentRoute:  links.DocumentRoute,
			ComponentRoute: links.ComponentRoute,
			SlugParam:      links.SlugParam,
			LocaleParam:    links.LocaleParam,
			NameParam:      links.NameParam,
		})
	}

	if c.reporter == nil {
		opts := []report.Option{
			report.WithLogger(logging.ReportLogger(c.loggerProvider)),
		}
		if c.linkBuilder != nil {
			opts = append(opts, report.WithLinkBuilder(c.linkBuilder))
		}
		c.reporter = report.NewGenerator(opts...)
	}

	logging.ReportLogger(c.loggerProvider).Info("report.configured",
		"links", c.linkBuilder != nil,
	)
}

func (c *Container) configureRunner() {
	if c.migrationSvc != nil {
		return
	}

	deps := runner.Dependencies{
		Loader: c.loader,
		Converters: runner.Converters{
			FailFast: c.pipelineFor(pipeline.ModeFailFast),
			Collect:  c.pipelineFor(pipeline.ModeCollect),
		},
		Publisher: c.publisher,
		Logger:    logging.RunnerLogger(c.loggerProvider),
	}
	if c.ledger != nil {
		deps.Recorder = c.ledger
	}

	c.migrationSvc = runner.NewService(runner.Config{
		Workers: c.Config.Runner.Workers,
		Mode:    c.Config.Pipeline.Mode,
	}, deps)

	logging.RunnerLogger(c.loggerProvider).Info("runner.configured",
		"mode", effectiveMode(c.Config.Pipeline.Mode),
		"workers", c.Config.Runner.Workers,
		"publisher", c.publisher != nil,
		"ledger", c.ledger != nil,
	)
}

// pipelineFor builds one conversion pipeline per failure mode; both share the
// registry, converter, and tuning so a run's mode only changes error policy.
func (c *Container) pipelineFor(mode pipeline.Mode) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithMode(mode),
		pipeline.WithLogger(logging.PipelineLogger(c.loggerProvider)),
		pipeline.WithConverter(c.converter),
		pipeline.WithLinkRepair(c.Config.Pipeline.LinkRepair),
	}
	if exts := c.Config.Pipeline.Converter.Extensions; len(exts) > 0 {
		opts = append(opts, pipeline.WithConvertOptions(richtext.ConvertOptions{
			Extensions: append([]string(nil), exts...),
		}))
	}
	return pipeline.New(c.registry, opts...)
}

// LoggerProvider exposes the configured logging provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Registry exposes the component capability registry.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// Loader exposes the configured document loader.
func (c *Container) Loader() interfaces.DocumentLoader {
	return c.loader
}

// Publisher exposes the configured publisher; nil when none was injected.
func (c *Container) Publisher() interfaces.Publisher {
	return c.publisher
}

// Migration returns the configured migration service.
func (c *Container) Migration() interfaces.MigrationService {
	return c.migrationSvc
}

// Ledger exposes the run ledger; nil when the ledger is disabled.
func (c *Container) Ledger() *ledger.Ledger {
	return c.ledger
}

// DB exposes the database handle backing the ledger; nil when disabled.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// Report returns the configured report generator.
func (c *Container) Report() *report.Generator {
	return c.reporter
}

// RouteManager exposes the route manager behind report admin links.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// Close releases resources the container owns, currently the ledger database
// handle when the container opened it itself.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	db := c.bunDB
	c.bunDB = nil
	c.ownsDB = false
	return db.Close()
}

func componentDefinition(cfg runtimeconfig.ComponentDefinitionConfig) interfaces.ComponentDefinition {
	return interfaces.ComponentDefinition{
		Name:         cfg.Name,
		Status:       interfaces.ComponentStatus(strings.ToLower(strings.TrimSpace(cfg.Status))),
		Type:         interfaces.ComponentType(strings.ToLower(strings.TrimSpace(cfg.Type))),
		RenderBlock:  cfg.RenderBlock,
		RenderInline: cfg.RenderInline,
		Fields:       append([]string(nil), cfg.Fields...),
	}
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}

func effectiveMode(mode string) string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return string(pipeline.ModeFailFast)
	}
	return strings.ToLower(mode)
}
