package payloadmigrate

import (
	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/di"
	"github.com/ComparePower/go-payload-migrate/internal/ledger"
	"github.com/ComparePower/go-payload-migrate/internal/registry"
	"github.com/ComparePower/go-payload-migrate/internal/report"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

// MigrationService exports the migration service contract for consumers of the module.
type MigrationService = interfaces.MigrationService

// MigrateOptions exports the per-run migration options.
type MigrateOptions = interfaces.MigrateOptions

// MigrationSummary exports the aggregated run result.
type MigrationSummary = interfaces.MigrationSummary

// DocumentOutcome exports the per-document run result.
type DocumentOutcome = interfaces.DocumentOutcome

// ComponentRegistry exports the capability registry contract.
type ComponentRegistry = interfaces.ComponentRegistry

// ComponentDefinition exports the registry's definition shape.
type ComponentDefinition = interfaces.ComponentDefinition

// RichTextConverter exports the rich text converter contract.
type RichTextConverter = interfaces.RichTextConverter

// Publisher exports the destination publisher contract.
type Publisher = interfaces.Publisher

// DocumentLoader exports the source document loader contract.
type DocumentLoader = interfaces.DocumentLoader

// Document exports the source document record.
type Document = interfaces.Document

// ContentBlock exports the pipeline's output unit.
type ContentBlock = blocks.ContentBlock

// UnhandledComponent exports the collect-mode gap tally entry.
type UnhandledComponent = blocks.UnhandledComponent

// SectionContext exports the section metadata attached to content blocks.
type SectionContext = blocks.SectionContext

// RichTextNode exports the destination rich text node.
type RichTextNode = richtext.Node

// Module represents the top level migration runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a migration module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migration returns the configured migration service.
func (m *Module) Migration() MigrationService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Migration()
}

// Registry returns the component capability registry.
func (m *Module) Registry() *registry.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry()
}

// Loader returns the configured document loader.
func (m *Module) Loader() DocumentLoader {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Loader()
}

// Publisher returns the injected publisher, or nil when none was configured.
func (m *Module) Publisher() Publisher {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Publisher()
}

// Ledger returns the run ledger, or nil when the ledger is disabled.
func (m *Module) Ledger() *ledger.Ledger {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Ledger()
}

// Report returns the configured report generator.
func (m *Module) Report() *report.Generator {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Report()
}

// LoggerProvider returns the logging provider used by the module.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.LoggerProvider()
}

// Close releases resources owned by the module, such as the ledger database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
