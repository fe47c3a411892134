package payloadmigrate_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	payloadmigrate "github.com/ComparePower/go-payload-migrate"
	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/di"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

type recordingPublisher struct {
	mu      sync.Mutex
	results []*blocks.Result
}

func (p *recordingPublisher) PublishDocument(_ context.Context, result *blocks.Result) (interfaces.PublishReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return interfaces.PublishReceipt{ID: "rec-" + result.Slug}, nil
}

func writeDocument(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func moduleConfig(t *testing.T) payloadmigrate.Config {
	t.Helper()
	cfg := payloadmigrate.DefaultConfig()
	cfg.Documents.ContentDir = t.TempDir()
	cfg.Registry.Definitions = []payloadmigrate.ComponentDefinitionConfig{
		{Name: "RatesTable", Status: "implemented", Type: "block", RenderBlock: true},
		{Name: "Phone", Status: "implemented", Type: "inline", RenderInline: true},
	}
	return cfg
}

func TestModuleMigrateDirectory(t *testing.T) {
	cfg := moduleConfig(t)
	writeDocument(t, cfg.Documents.ContentDir, "rates.mdx", `---
title: Electricity Rates
slug: electricity-rates
---

Intro text.

<RatesTable provider="x" />

Outro text.
`)

	publisher := &recordingPublisher{}
	module, err := payloadmigrate.New(cfg, di.WithPublisher(publisher))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer module.Close()

	summary, err := module.Migration().MigrateDirectory(context.Background(), ".", payloadmigrate.MigrateOptions{
		Publish: true,
	})
	if err != nil {
		t.Fatalf("MigrateDirectory returned error: %v", err)
	}

	if summary.Documents != 1 || summary.Succeeded != 1 {
		t.Fatalf("expected one successful document, got %+v", summary)
	}
	if summary.Published != 1 {
		t.Fatalf("expected one published document, got %d", summary.Published)
	}

	if len(publisher.results) != 1 {
		t.Fatalf("expected one published result, got %d", len(publisher.results))
	}
	result := publisher.results[0]
	if result.Slug != "electricity-rates" {
		t.Fatalf("unexpected slug %q", result.Slug)
	}
	if len(result.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %#v", len(result.Blocks), result.Blocks)
	}
	if !result.Blocks[0].IsRichText() || !result.Blocks[2].IsRichText() {
		t.Fatalf("expected rich text blocks around the component, got %#v", result.Blocks)
	}
	if result.Blocks[1].Kind != "ratesTable" {
		t.Fatalf("expected ratesTable block, got %q", result.Blocks[1].Kind)
	}
	provider, ok := result.Blocks[1].Fields.Get("provider")
	if !ok || provider != "x" {
		t.Fatalf("expected provider field %q, got %v (%v)", "x", provider, ok)
	}
}

func TestModuleScanDirectoryCollectsGaps(t *testing.T) {
	cfg := moduleConfig(t)
	writeDocument(t, cfg.Documents.ContentDir, "widgets.mdx", `Intro.

<UnknownWidget foo="1" />

Outro.
`)

	module, err := payloadmigrate.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer module.Close()

	summary, err := module.Migration().ScanDirectory(context.Background(), ".", payloadmigrate.MigrateOptions{})
	if err != nil {
		t.Fatalf("ScanDirectory returned error: %v", err)
	}

	if summary.Mode != "collect" {
		t.Fatalf("expected collect mode scan, got %q", summary.Mode)
	}
	if len(summary.Unhandled) != 1 {
		t.Fatalf("expected one unhandled component, got %#v", summary.Unhandled)
	}
	gap := summary.Unhandled[0]
	if gap.Name != "UnknownWidget" || gap.Usage != blocks.UsageBlock || gap.UsageCount != 1 {
		t.Fatalf("unexpected unhandled entry %#v", gap)
	}
}

func TestModuleFailFastSurfacesComponent(t *testing.T) {
	cfg := moduleConfig(t)
	writeDocument(t, cfg.Documents.ContentDir, "bad.mdx", "Before.\n\n<UnknownWidget />\n")

	module, err := payloadmigrate.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer module.Close()

	summary, err := module.Migration().MigrateDirectory(context.Background(), ".", payloadmigrate.MigrateOptions{
		Mode:   "fail-fast",
		DryRun: true,
	})
	if err == nil {
		t.Fatal("expected fail-fast run to surface the unknown component")
	}
	if summary == nil || summary.Failed != 1 {
		t.Fatalf("expected one failed document, got %+v", summary)
	}
}

func TestModuleAccessorsNilSafe(t *testing.T) {
	var module *payloadmigrate.Module

	if module.Migration() != nil {
		t.Fatal("expected nil migration service on nil module")
	}
	if module.Registry() != nil {
		t.Fatal("expected nil registry on nil module")
	}
	if module.Ledger() != nil {
		t.Fatal("expected nil ledger on nil module")
	}
	if err := module.Close(); err != nil {
		t.Fatalf("Close on nil module returned %v", err)
	}
}
