package commands

import (
	"strings"

	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

const commandModuleRoot = "migrate.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriching it with
// consistent structured fields so command executions share one observable shape.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
