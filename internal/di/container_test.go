package di_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/di"
	"github.com/ComparePower/go-payload-migrate/internal/ledger"
	"github.com/ComparePower/go-payload-migrate/internal/registry"
	"github.com/ComparePower/go-payload-migrate/internal/runtimeconfig"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

func testConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Documents.ContentDir = "testdata"
	return cfg
}

func TestNewContainerDefaults(t *testing.T) {
	container, err := di.NewContainer(testConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if container.LoggerProvider() == nil {
		t.Fatal("expected a default logger provider")
	}
	if container.Registry() == nil {
		t.Fatal("expected a component registry")
	}
	if got := container.Registry().Len(); got != 0 {
		t.Fatalf("expected empty registry, got %d components", got)
	}
	if container.Loader() == nil {
		t.Fatal("expected a document loader")
	}
	if container.Migration() == nil {
		t.Fatal("expected a migration service")
	}
	if container.Report() == nil {
		t.Fatal("expected a report generator")
	}
	if container.Ledger() != nil {
		t.Fatalf("expected no ledger when disabled, got %#v", container.Ledger())
	}
	if container.Publisher() != nil {
		t.Fatal("expected no publisher when none was injected")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Documents.ContentDir = "  "

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrDocumentsContentDirRequired) {
		t.Fatalf("expected ErrDocumentsContentDirRequired, got %v", err)
	}
}

func TestNewContainerSeedsInlineDefinitions(t *testing.T) {
	cfg := testConfig()
	cfg.Registry.Definitions = []runtimeconfig.ComponentDefinitionConfig{
		{Name: "Callout", Status: "implemented", Type: "block", RenderBlock: true, Fields: []string{"variant", "title"}},
		{Name: "FaqToggle", Status: "needs-work", Type: "block"},
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if got := container.Registry().Len(); got != 2 {
		t.Fatalf("expected 2 registered components, got %d", got)
	}
	def, ok := container.Registry().Lookup("Callout")
	if !ok {
		t.Fatal("expected Callout to be registered")
	}
	if def.Status != interfaces.ComponentStatusImplemented {
		t.Fatalf("expected implemented status, got %q", def.Status)
	}
	if !def.RenderBlock {
		t.Fatal("expected RenderBlock to be carried over")
	}
	if len(def.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %#v", def.Fields)
	}
}

func TestNewContainerRejectsInvalidDefinition(t *testing.T) {
	cfg := testConfig()
	cfg.Registry.Definitions = []runtimeconfig.ComponentDefinitionConfig{
		{Name: "callout", Status: "implemented", Type: "block"},
	}

	if _, err := di.NewContainer(cfg); !errors.Is(err, registry.ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestNewContainerRejectsMissingSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Registry.SnapshotPath = "testdata/does-not-exist.json"

	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatal("expected snapshot load failure")
	}
}

func TestNewContainerHonoursOverrides(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(interfaces.ComponentDefinition{
		Name:   "Video",
		Status: interfaces.ComponentStatusImplemented,
		Type:   interfaces.ComponentTypeBlock,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	loader := &stubLoader{}
	publisher := &stubPublisher{}
	migration := &stubMigration{}

	container, err := di.NewContainer(testConfig(),
		di.WithRegistry(reg),
		di.WithLoader(loader),
		di.WithPublisher(publisher),
		di.WithMigrationService(migration),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if container.Registry() != reg {
		t.Fatal("expected injected registry to be kept")
	}
	if container.Loader() != interfaces.DocumentLoader(loader) {
		t.Fatal("expected injected loader to be kept")
	}
	if container.Publisher() != interfaces.Publisher(publisher) {
		t.Fatal("expected injected publisher to be kept")
	}
	if container.Migration() != interfaces.MigrationService(migration) {
		t.Fatal("expected injected migration service to be kept")
	}
	def, ok := container.Registry().Lookup("Video")
	if !ok || def.Name != "Video" {
		t.Fatalf("expected injected registry contents to survive, got %#v ok=%v", def, ok)
	}
}

func TestNewContainerOpensLedger(t *testing.T) {
	cfg := testConfig()
	cfg.Ledger.Enabled = true
	cfg.Ledger.Driver = "sqlite"
	cfg.Ledger.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { container.Close() })

	led := container.Ledger()
	if led == nil {
		t.Fatal("expected a ledger when enabled")
	}
	if container.DB() == nil {
		t.Fatal("expected the container to expose the opened database")
	}

	// The container ensures the schema, so recording works immediately.
	if _, err := led.LastConverted(context.Background(), "guides/never-seen.mdx"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from fresh ledger, got %v", err)
	}
}

func TestNewContainerLedgerCacheEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Ledger.Enabled = true
	cfg.Ledger.Driver = "sqlite"
	cfg.Ledger.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	cfg.Ledger.Cache.Enabled = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { container.Close() })

	if container.Ledger() == nil {
		t.Fatal("expected a cached ledger when enabled")
	}
}

func TestNewContainerLedgerRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Ledger.Enabled = true
	cfg.Ledger.Driver = "oracle"
	cfg.Ledger.DSN = "file:unused"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrLedgerDriverUnknown) {
		t.Fatalf("expected ErrLedgerDriverUnknown, got %v", err)
	}
}

func TestContainerCloseIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Ledger.Enabled = true
	cfg.Ledger.Driver = "sqlite"
	cfg.Ledger.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

type stubLoader struct{}

var _ interfaces.DocumentLoader = (*stubLoader)(nil)

func (s *stubLoader) Load(context.Context, string, interfaces.LoadOptions) (*interfaces.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLoader) LoadDirectory(context.Context, string, interfaces.LoadOptions) ([]*interfaces.Document, error) {
	return nil, errors.New("not implemented")
}

type stubPublisher struct{}

var _ interfaces.Publisher = (*stubPublisher)(nil)

func (s *stubPublisher) PublishDocument(context.Context, *blocks.Result) (interfaces.PublishReceipt, error) {
	return interfaces.PublishReceipt{}, errors.New("not implemented")
}

type stubMigration struct{}

var _ interfaces.MigrationService = (*stubMigration)(nil)

func (s *stubMigration) MigrateDirectory(context.Context, string, interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	return &interfaces.MigrationSummary{}, nil
}

func (s *stubMigration) MigrateFile(context.Context, string, interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	return &interfaces.MigrationSummary{}, nil
}

func (s *stubMigration) ScanDirectory(context.Context, string, interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	return &interfaces.MigrationSummary{}, nil
}
