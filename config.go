package payloadmigrate

import "github.com/ComparePower/go-payload-migrate/internal/runtimeconfig"

var (
	ErrDocumentsContentDirRequired        = runtimeconfig.ErrDocumentsContentDirRequired
	ErrPipelineModeInvalid                = runtimeconfig.ErrPipelineModeInvalid
	ErrConverterProviderUnknown           = runtimeconfig.ErrConverterProviderUnknown
	ErrWorkerCountInvalid                 = runtimeconfig.ErrWorkerCountInvalid
	ErrLedgerDriverUnknown                = runtimeconfig.ErrLedgerDriverUnknown
	ErrLedgerDSNRequired                  = runtimeconfig.ErrLedgerDSNRequired
	ErrLedgerCacheRequiresLedger          = runtimeconfig.ErrLedgerCacheRequiresLedger
	ErrCommandsDispatcherRequiresCommands = runtimeconfig.ErrCommandsDispatcherRequiresCommands
	ErrReportRoutesRequired               = runtimeconfig.ErrReportRoutesRequired
	ErrLoggingProviderRequired            = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown             = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid                = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid               = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                    = runtimeconfig.Config
	DocumentsConfig           = runtimeconfig.DocumentsConfig
	RegistryConfig            = runtimeconfig.RegistryConfig
	ComponentDefinitionConfig = runtimeconfig.ComponentDefinitionConfig
	PipelineConfig            = runtimeconfig.PipelineConfig
	ConverterConfig           = runtimeconfig.ConverterConfig
	RunnerConfig              = runtimeconfig.RunnerConfig
	LedgerConfig              = runtimeconfig.LedgerConfig
	CacheConfig               = runtimeconfig.CacheConfig
	ReportConfig              = runtimeconfig.ReportConfig
	ReportLinkConfig          = runtimeconfig.ReportLinkConfig
	CommandsConfig            = runtimeconfig.CommandsConfig
	LoggingConfig             = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
