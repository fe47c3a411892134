package runnercmd

import (
	"strings"

	"github.com/ComparePower/go-payload-migrate/internal/pipeline"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	migrateDirectoryMessageType = "migrate.runner.migrate_directory"
	migrateFileMessageType      = "migrate.runner.migrate_file"
	scanDirectoryMessageType    = "migrate.runner.scan_directory"
)

// MigrateDirectoryCommand triggers a conversion run across every document
// under the provided Directory. Fields map directly onto
// interfaces.MigrateOptions so callers control failure mode, publishing, and
// change detection per run. Loader behaviour such as locale detection comes
// from service configuration, not the message.
type MigrateDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load documents from.
	Directory string `json:"directory"`
	// Mode selects the failure policy for the run: "fail-fast" or "collect".
	Mode string `json:"mode,omitempty"`
	// Pattern narrows the run to files matching the provided glob.
	Pattern string `json:"pattern,omitempty"`
	// DryRun converts documents without publishing or recording the run.
	DryRun bool `json:"dry_run,omitempty"`
	// Publish pushes converted documents to the destination CMS after conversion.
	Publish bool `json:"publish,omitempty"`
	// SkipUnchanged skips documents whose checksum matches their last recorded conversion.
	SkipUnchanged bool `json:"skip_unchanged,omitempty"`
}

// Type implements command.Message.
func (MigrateDirectoryCommand) Type() string { return migrateDirectoryMessageType }

// Validate ensures directory and mode inputs are usable before handlers execute.
func (cmd MigrateDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("migrate.runner.migrate_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Mode, validation.By(validateMode("migrate.runner.migrate_directory.mode_invalid"))),
	)
}

// MigrateFileCommand converts a single document. It mirrors
// MigrateDirectoryCommand minus the directory-scoped pattern filter.
type MigrateFileCommand struct {
	// Path selects the document file to convert.
	Path string `json:"path"`
	// Mode selects the failure policy for the run: "fail-fast" or "collect".
	Mode string `json:"mode,omitempty"`
	// DryRun converts the document without publishing or recording the run.
	DryRun bool `json:"dry_run,omitempty"`
	// Publish pushes the converted document to the destination CMS after conversion.
	Publish bool `json:"publish,omitempty"`
	// SkipUnchanged skips the document when its checksum matches the last recorded conversion.
	SkipUnchanged bool `json:"skip_unchanged,omitempty"`
}

// Type implements command.Message.
func (MigrateFileCommand) Type() string { return migrateFileMessageType }

// Validate ensures path and mode inputs are usable before handlers execute.
func (cmd MigrateFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("migrate.runner.migrate_file.path_required", "path is required")
			}
			return nil
		})),
		validation.Field(&cmd.Mode, validation.By(validateMode("migrate.runner.migrate_file.mode_invalid"))),
	)
}

// ScanDirectoryCommand surveys component coverage under Directory without
// converting anything. The run always executes in collect mode with side
// effects disabled, so the message only carries discovery inputs.
type ScanDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to scan.
	Directory string `json:"directory"`
	// Pattern narrows the scan to files matching the provided glob.
	Pattern string `json:"pattern,omitempty"`
}

// Type implements command.Message.
func (ScanDirectoryCommand) Type() string { return scanDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ScanDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("migrate.runner.scan_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

func validateMode(code string) func(value any) error {
	return func(value any) error {
		mode := strings.TrimSpace(value.(string))
		if mode == "" {
			return nil
		}
		if !pipeline.Mode(mode).Valid() {
			return validation.NewError(code, "mode must be fail-fast or collect")
		}
		return nil
	}
}
