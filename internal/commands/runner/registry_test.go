package runnercmd

import (
	"testing"

	"github.com/ComparePower/go-payload-migrate/internal/commands"
	"github.com/ComparePower/go-payload-migrate/internal/commands/fixtures"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	command "github.com/goliatone/go-command"
)

func TestRegisterMigrationCommandsHandlerOptionsApplied(t *testing.T) {
	service := &stubMigrationService{}
	directoryApplied := false
	fileApplied := false
	scanApplied := false

	_, err := RegisterMigrationCommands(nil, service, nil, FeatureGates{},
		WithMigrateDirectoryHandlerOptions(func(h *commands.Handler[MigrateDirectoryCommand]) {
			directoryApplied = true
		}),
		WithMigrateFileHandlerOptions(func(h *commands.Handler[MigrateFileCommand]) {
			fileApplied = true
		}),
		WithScanHandlerOptions(func(h *commands.Handler[ScanDirectoryCommand]) {
			scanApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register migration commands: %v", err)
	}
	if !directoryApplied {
		t.Fatal("expected migrate directory handler options applied")
	}
	if !fileApplied {
		t.Fatal("expected migrate file handler options applied")
	}
	if !scanApplied {
		t.Fatal("expected scan handler options applied")
	}
}

func TestRegisterMigrationCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	service := &stubMigrationService{}

	set, err := RegisterMigrationCommands(reg, service, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register migration commands: %v", err)
	}
	if set == nil {
		t.Fatal("expected handler set returned")
	}
	if set.MigrateDirectory == nil || set.MigrateFile == nil || set.Scan == nil {
		t.Fatalf("expected all handlers built, got %#v", set)
	}
	if len(reg.Handlers) != 3 {
		t.Fatalf("expected three handlers registered, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.MigrateDirectory {
		t.Fatalf("expected migrate directory handler registered first, got %#v", reg.Handlers[0])
	}
	if reg.Handlers[1] != set.MigrateFile {
		t.Fatalf("expected migrate file handler registered second, got %#v", reg.Handlers[1])
	}
	if reg.Handlers[2] != set.Scan {
		t.Fatalf("expected scan handler registered third, got %#v", reg.Handlers[2])
	}
}

func TestRegisterMigrationCommandsNilRegistrySkipsRegistration(t *testing.T) {
	service := &stubMigrationService{}
	set, err := RegisterMigrationCommands(nil, service, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register migration commands: %v", err)
	}
	if set == nil || set.MigrateDirectory == nil || set.MigrateFile == nil || set.Scan == nil {
		t.Fatalf("expected handlers built when registry nil, got %#v", set)
	}
}

func TestRegisterMigrationCommandsNilServiceError(t *testing.T) {
	if _, err := RegisterMigrationCommands(nil, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when service nil")
	}
}

func TestRegisterMigrationCronRegistersHandler(t *testing.T) {
	service := &stubMigrationService{summary: sampleSummary()}
	handler := NewMigrateDirectoryHandler(service, logging.NoOp(), FeatureGates{})
	recorder := fixtures.NewCronRecorder()

	cfg := command.HandlerConfig{Expression: "@daily"}
	msg := MigrateDirectoryCommand{Directory: "content", SkipUnchanged: true}

	if err := RegisterMigrationCron(recorder.Registrar(), handler, cfg, msg); err != nil {
		t.Fatalf("register migration cron: %v", err)
	}

	if len(recorder.Registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(recorder.Registrations))
	}
	reg := recorder.Registrations[0]
	if reg.Config.Expression != cfg.Expression {
		t.Fatalf("expected cron expression %q, got %q", cfg.Expression, reg.Config.Expression)
	}
	if reg.Handler == nil {
		t.Fatal("expected cron handler function recorded")
	}
	if err := reg.Handler(); err != nil {
		t.Fatalf("executing cron handler: %v", err)
	}
	if len(service.directoryCalls) != 1 {
		t.Fatalf("expected directory call executed, got %d", len(service.directoryCalls))
	}
	if !service.directoryCalls[0].options.SkipUnchanged {
		t.Fatal("expected cron run to skip unchanged documents")
	}
}

func TestRegisterMigrationCronNoOpWhenRegistrarNil(t *testing.T) {
	service := &stubMigrationService{}
	handler := NewMigrateDirectoryHandler(service, logging.NoOp(), FeatureGates{})
	if err := RegisterMigrationCron(nil, handler, command.HandlerConfig{}, MigrateDirectoryCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	if len(service.directoryCalls) != 0 {
		t.Fatalf("expected no directory calls when registrar nil, got %d", len(service.directoryCalls))
	}
}

func TestRegisterMigrationCronNoOpWhenHandlerNil(t *testing.T) {
	recorder := fixtures.NewCronRecorder()
	if err := RegisterMigrationCron(recorder.Registrar(), nil, command.HandlerConfig{}, MigrateDirectoryCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if len(recorder.Registrations) != 0 {
		t.Fatalf("expected no registrations when handler nil, got %d", len(recorder.Registrations))
	}
}
