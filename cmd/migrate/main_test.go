package main

import (
	"context"
	"strings"
	"testing"

	"github.com/ComparePower/go-payload-migrate/cmd/internal/bootstrap"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/google/uuid"
)

type stubMigrationService struct {
	directoryCalls int
	directory      string
	directoryOpts  interfaces.MigrateOptions

	fileCalls int
	filePath  string
}

func (s *stubMigrationService) MigrateDirectory(_ context.Context, dir string, opts interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	s.directoryCalls++
	s.directory = dir
	s.directoryOpts = opts
	return &interfaces.MigrationSummary{RunID: uuid.New(), Documents: 1, Succeeded: 1}, nil
}

func (s *stubMigrationService) MigrateFile(_ context.Context, path string, _ interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	s.fileCalls++
	s.filePath = path
	return &interfaces.MigrationSummary{RunID: uuid.New(), Documents: 1, Succeeded: 1}, nil
}

func (s *stubMigrationService) ScanDirectory(context.Context, string, interfaces.MigrateOptions) (*interfaces.MigrationSummary, error) {
	return &interfaces.MigrationSummary{}, nil
}

func stubBuilder(svc *stubMigrationService) func(bootstrap.Options) (*bootstrap.Module, error) {
	return func(bootstrap.Options) (*bootstrap.Module, error) {
		return &bootstrap.Module{
			Service: svc,
			Logger:  logging.NoOp(),
		}, nil
	}
}

func TestRunMigrateUsesDirectoryHandler(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	svc := &stubMigrationService{}
	moduleBuilder = stubBuilder(svc)

	if err := runMigrate([]string{"-directory", "guides", "-mode", "collect", "-dry-run"}); err != nil {
		t.Fatalf("runMigrate returned error: %v", err)
	}

	if svc.directoryCalls != 1 {
		t.Fatalf("expected one directory migration, got %d", svc.directoryCalls)
	}
	if svc.directory != "guides" {
		t.Fatalf("expected directory %q, got %q", "guides", svc.directory)
	}
	if svc.directoryOpts.Mode != "collect" || !svc.directoryOpts.DryRun {
		t.Fatalf("expected collect dry run options, got %+v", svc.directoryOpts)
	}
	if svc.fileCalls != 0 {
		t.Fatalf("expected no file migration, got %d", svc.fileCalls)
	}
}

func TestRunMigrateSingleFile(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	svc := &stubMigrationService{}
	moduleBuilder = stubBuilder(svc)

	if err := runMigrate([]string{"-file", "guides/rates.mdx"}); err != nil {
		t.Fatalf("runMigrate returned error: %v", err)
	}

	if svc.fileCalls != 1 || svc.filePath != "guides/rates.mdx" {
		t.Fatalf("expected one file migration for guides/rates.mdx, got %d (%q)", svc.fileCalls, svc.filePath)
	}
	if svc.directoryCalls != 0 {
		t.Fatalf("expected no directory migration, got %d", svc.directoryCalls)
	}
}

func TestRunMigrateRejectsInvalidMode(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	svc := &stubMigrationService{}
	moduleBuilder = stubBuilder(svc)

	err := runMigrate([]string{"-directory", "guides", "-mode", "optimistic"})
	if err == nil {
		t.Fatal("expected invalid mode to fail message validation")
	}
	if !strings.Contains(err.Error(), "mode") {
		t.Fatalf("expected mode validation failure, got %v", err)
	}
	if svc.directoryCalls != 0 {
		t.Fatalf("expected no migration on invalid mode, got %d", svc.directoryCalls)
	}
}
