package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ComparePower/go-payload-migrate/cmd/internal/bootstrap"
	runnercmd "github.com/ComparePower/go-payload-migrate/internal/commands/runner"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runMigrate(os.Args[1:]); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the source content root")
	pattern := fs.String("pattern", "", "Glob pattern applied when discovering documents (defaults to *.mdx and *.md)")
	locales := fs.String("locales", "", "Comma separated list of locales (defaults to config locales)")
	defaultLocale := fs.String("default-locale", "en", "Default locale for documents without a locale marker")
	directory := fs.String("directory", ".", "Directory to migrate, relative to the content root")
	filePath := fs.String("file", "", "Single document to migrate instead of a directory")
	mode := fs.String("mode", "", "Failure policy: fail-fast or collect (defaults to config)")
	registrySnapshot := fs.String("registry", "", "Path to a component registry snapshot JSON file")
	ledgerDSN := fs.String("ledger-dsn", "", "Ledger database DSN; enables run recording when set")
	ledgerDriver := fs.String("ledger-driver", "sqlite", "Ledger database driver: sqlite or postgres")
	workers := fs.Int("workers", 0, "Worker pool size (0 uses one worker per CPU)")
	dryRun := fs.Bool("dry-run", false, "Convert without publishing or recording the run")
	skipUnchanged := fs.Bool("skip-unchanged", false, "Skip documents unchanged since their last recorded conversion")
	logLevel := fs.String("log-level", "info", "Minimum log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:    *contentDir,
		Pattern:       *pattern,
		Recursive:     true,
		DefaultLocale: *defaultLocale,
		Locales:       bootstrap.SplitLocales(*locales),
		Mode:          *mode,
		Workers:       *workers,
		SnapshotPath:  *registrySnapshot,
		LedgerDriver:  *ledgerDriver,
		LedgerDSN:     *ledgerDSN,
		LogLevel:      *logLevel,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Service == nil {
		return fmt.Errorf("migration service not configured")
	}
	defer module.Module.Close()

	ctx := context.Background()
	gates := runnercmd.FeatureGates{}

	if *filePath != "" {
		handler := runnercmd.NewMigrateFileHandler(module.Service, module.Logger, gates)
		cmd := runnercmd.MigrateFileCommand{
			Path:          *filePath,
			Mode:          *mode,
			DryRun:        *dryRun,
			SkipUnchanged: *skipUnchanged,
		}
		if err := handler.Execute(ctx, cmd); err != nil {
			return fmt.Errorf("execute migrate file command: %w", err)
		}
	} else {
		handler := runnercmd.NewMigrateDirectoryHandler(module.Service, module.Logger, gates)
		cmd := runnercmd.MigrateDirectoryCommand{
			Directory:     *directory,
			Mode:          *mode,
			Pattern:       *pattern,
			DryRun:        *dryRun,
			SkipUnchanged: *skipUnchanged,
		}
		if err := handler.Execute(ctx, cmd); err != nil {
			return fmt.Errorf("execute migrate directory command: %w", err)
		}
	}

	fmt.Fprintln(os.Stdout, "migrate command executed successfully")
	return nil
}
