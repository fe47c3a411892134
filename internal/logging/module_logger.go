package logging

import (
	"context"
	"strings"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

const (
	rootModule      = "migrate"
	pipelineModule  = "migrate.pipeline"
	documentsModule = "migrate.documents"
	registryModule  = "migrate.registry"
	runnerModule    = "migrate.runner"
	ledgerModule    = "migrate.ledger"
	reportModule    = "migrate.report"
)

const (
	fieldDocumentPath   = "document_path"
	fieldDocumentLocale = "locale"
	fieldPipelineStage  = "stage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PipelineLogger returns the logger namespace reserved for the conversion
// pipeline.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// DocumentsLogger returns the logger namespace reserved for document loading.
func DocumentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentsModule)
}

// RegistryLogger returns the logger namespace reserved for the component
// registry.
func RegistryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, registryModule)
}

// RunnerLogger returns the logger namespace reserved for batch runs.
func RunnerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, runnerModule)
}

// LedgerLogger returns the logger namespace reserved for the migration ledger.
func LedgerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ledgerModule)
}

// ReportLogger returns the logger namespace reserved for report rendering.
func ReportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reportModule)
}

// WithDocumentContext enriches the provided logger with common document
// fields such as file path, locale, and pipeline stage. Empty values are
// ignored.
func WithDocumentContext(logger interfaces.Logger, path, locale, stage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldDocumentLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldPipelineStage] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
