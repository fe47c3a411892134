package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ComparePower/go-payload-migrate/cmd/internal/bootstrap"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runScan(os.Args[1:]); err != nil {
		log.Fatalf("scan: %v", err)
	}
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the source content root")
	pattern := fs.String("pattern", "", "Glob pattern applied when discovering documents (defaults to *.mdx and *.md)")
	locales := fs.String("locales", "", "Comma separated list of locales (defaults to config locales)")
	defaultLocale := fs.String("default-locale", "en", "Default locale for documents without a locale marker")
	directory := fs.String("directory", ".", "Directory to scan, relative to the content root")
	registrySnapshot := fs.String("registry", "", "Path to a component registry snapshot JSON file")
	reportPath := fs.String("report", "", "Write the JSON coverage report to this path instead of stdout")
	workers := fs.Int("workers", 0, "Worker pool size (0 uses one worker per CPU)")
	logLevel := fs.String("log-level", "warn", "Minimum log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:    *contentDir,
		Pattern:       *pattern,
		Recursive:     true,
		DefaultLocale: *defaultLocale,
		Locales:       bootstrap.SplitLocales(*locales),
		Workers:       *workers,
		SnapshotPath:  *registrySnapshot,
		ReportPath:    *reportPath,
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

	summary, err := module.Service.ScanDirectory(ctx, *directory, interfaces.MigrateOptions{
		Pattern: *pattern,
	})
	if summary == nil && err != nil {
		return fmt.Errorf("scan directory: %w", err)
	}

	reporter := module.Module.Report()
	rep, buildErr := reporter.Build(summary, *contentDir)
	if buildErr != nil {
		return fmt.Errorf("build report: %w", buildErr)
	}

	if *reportPath != "" {
		if writeErr := reporter.WriteFile(rep, *reportPath); writeErr != nil {
			return fmt.Errorf("write report: %w", writeErr)
		}
		fmt.Fprintf(os.Stdout, "coverage report written to %s\n", *reportPath)
	} else if writeErr := reporter.Write(rep, os.Stdout); writeErr != nil {
		return fmt.Errorf("write report: %w", writeErr)
	}

	// Collect-mode scans can return per-document errors alongside the
	// summary; surface them after the report so the catalog still lands.
	if err != nil {
		return fmt.Errorf("scan completed with errors: %w", err)
	}
	return nil
}
