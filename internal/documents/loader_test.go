package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ComparePower/go-payload-migrate/internal/identity"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

const plansDoc = `---
title: Compare Plans
slug: compare-plans
summary: Pick a plan.
tags:
  - plans
  - rates
provider: txu
draft: true
---

# Compare

Body text.
`

const aboutDoc = `---
title: About Us
---

We compare rates.
`

var testModTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"content/en/plans.mdx": &fstest.MapFile{
			Data:    []byte(plansDoc),
			ModTime: testModTime,
		},
		"content/en/about.md": &fstest.MapFile{
			Data:    []byte(aboutDoc),
			ModTime: testModTime,
		},
		"content/en/guides/switching.mdx": &fstest.MapFile{
			Data:    []byte("# Switching\n\nHow to switch providers.\n"),
			ModTime: testModTime,
		},
		"content/en/notes.txt": &fstest.MapFile{
			Data:    []byte("ignore me"),
			ModTime: testModTime,
		},
		"content/es/planes.mdx": &fstest.MapFile{
			Data:    []byte("# Planes\n\nTexto.\n"),
			ModTime: testModTime,
		},
		"translations/fr-guide.mdx": &fstest.MapFile{
			Data:    []byte("# Guide\n\nTexte.\n"),
			ModTime: testModTime,
		},
	}
}

func newTestLoader(tb testing.TB) *Loader {
	tb.Helper()
	return NewLoader(newTestFS(), LoaderConfig{
		DefaultLocale: "en",
		Locales:       []string{"en", "es"},
		Recursive:     true,
	})
}

func TestLoadBuildsDocument(t *testing.T) {
	loader := newTestLoader(t)

	doc, err := loader.Load(context.Background(), "content/en/plans.mdx", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.FilePath != "content/en/plans.mdx" {
		t.Fatalf("unexpected file path %q", doc.FilePath)
	}
	if doc.Locale != "en" {
		t.Fatalf("expected locale en, got %q", doc.Locale)
	}
	if doc.Slug != "compare-plans" {
		t.Fatalf("expected slug compare-plans, got %q", doc.Slug)
	}
	if want := identity.DocumentUUID("en", "compare-plans"); doc.ID != want {
		t.Fatalf("expected deterministic id %s, got %s", want, doc.ID)
	}
	if doc.FrontMatter.Title != "Compare Plans" {
		t.Fatalf("unexpected title %q", doc.FrontMatter.Title)
	}
	if len(doc.FrontMatter.Tags) != 2 || doc.FrontMatter.Tags[0] != "plans" {
		t.Fatalf("unexpected tags %#v", doc.FrontMatter.Tags)
	}
	if got := doc.FrontMatter.Custom["provider"]; got != "txu" {
		t.Fatalf("expected custom provider txu, got %#v", got)
	}
	if got := doc.FrontMatter.Raw["draft"]; got != true {
		t.Fatalf("expected raw draft true, got %#v", got)
	}

	body := string(doc.Body)
	if !strings.Contains(body, "# Compare") {
		t.Fatalf("body missing heading: %q", body)
	}
	if strings.Contains(body, "title:") {
		t.Fatalf("frontmatter leaked into body: %q", body)
	}

	sum := sha256.Sum256([]byte(plansDoc))
	if !bytes.Equal(doc.Checksum, sum[:]) {
		t.Fatalf("checksum mismatch")
	}
	if !doc.LastModified.Equal(testModTime) {
		t.Fatalf("expected mod time %v, got %v", testModTime, doc.LastModified)
	}
}

func TestLoadDerivesSlugFromTitle(t *testing.T) {
	loader := newTestLoader(t)

	doc, err := loader.Load(context.Background(), "content/en/about.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Slug != "about-us" {
		t.Fatalf("expected slug about-us, got %q", doc.Slug)
	}
	if want := identity.DocumentUUID("en", "about-us"); doc.ID != want {
		t.Fatalf("expected deterministic id %s, got %s", want, doc.ID)
	}
}

func TestLoadWithoutFrontMatter(t *testing.T) {
	loader := newTestLoader(t)

	doc, err := loader.Load(context.Background(), "content/en/guides/switching.mdx", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Slug != "switching" {
		t.Fatalf("expected stem slug switching, got %q", doc.Slug)
	}
	if doc.FrontMatter.Title != "" {
		t.Fatalf("expected empty title, got %q", doc.FrontMatter.Title)
	}
	if got := doc.FrontMatter.Raw["draft"]; got != false {
		t.Fatalf("expected raw draft false, got %#v", got)
	}
	if !strings.HasPrefix(string(doc.Body), "# Switching") {
		t.Fatalf("body altered: %q", string(doc.Body))
	}
}

func TestLoadDirectoryDiscoversAndSorts(t *testing.T) {
	loader := newTestLoader(t)

	docs, err := loader.LoadDirectory(context.Background(), "content", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	var paths []string
	locales := map[string]int{}
	for _, doc := range docs {
		paths = append(paths, doc.FilePath)
		locales[doc.Locale]++
	}

	wantPaths := []string{
		"content/en/about.md",
		"content/en/guides/switching.mdx",
		"content/en/plans.mdx",
		"content/es/planes.mdx",
	}
	if !reflect.DeepEqual(paths, wantPaths) {
		t.Fatalf("unexpected paths %#v", paths)
	}
	if locales["en"] != 3 || locales["es"] != 1 {
		t.Fatalf("unexpected locale distribution: %#v", locales)
	}
}

func TestLoadDirectoryNonRecursiveOverride(t *testing.T) {
	loader := newTestLoader(t)

	no := false
	docs, err := loader.LoadDirectory(context.Background(), "content/en", interfaces.LoadOptions{
		Recursive: &no,
	})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].FilePath != "content/en/about.md" || docs[1].FilePath != "content/en/plans.mdx" {
		t.Fatalf("unexpected documents %q, %q", docs[0].FilePath, docs[1].FilePath)
	}
}

func TestLoadDirectoryPatternOverride(t *testing.T) {
	loader := newTestLoader(t)

	docs, err := loader.LoadDirectory(context.Background(), "content", interfaces.LoadOptions{
		Pattern: "*.mdx",
	})
	if err != nil {
		t.Fatalf("LoadDirectory pattern: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for _, doc := range docs {
		if !strings.HasSuffix(doc.FilePath, ".mdx") {
			t.Fatalf("expected only mdx files, got %s", doc.FilePath)
		}
	}
}

func TestDetectLocaleFromPatterns(t *testing.T) {
	loader := NewLoader(newTestFS(), LoaderConfig{
		DefaultLocale: "en",
		Locales:       []string{"en", "es"},
		LocalePatterns: map[string]string{
			"fr": "translations/*",
		},
		Recursive: true,
	})

	doc, err := loader.Load(context.Background(), "translations/fr-guide.mdx", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Locale != "fr" {
		t.Fatalf("expected locale fr from pattern, got %q", doc.Locale)
	}

	doc, err = loader.Load(context.Background(), "translations/fr-guide.mdx", interfaces.LoadOptions{
		LocalePatterns: map[string]string{"de": "translations/*"},
	})
	if err != nil {
		t.Fatalf("Load with override: %v", err)
	}
	if doc.Locale != "de" {
		t.Fatalf("expected override locale de, got %q", doc.Locale)
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.Load(context.Background(), "content/en/missing.mdx", interfaces.LoadOptions{})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	loader := newTestLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Load(ctx, "content/en/plans.mdx", interfaces.LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := loader.LoadDirectory(ctx, "content", interfaces.LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadAbsolutePathRequiresBasePath(t *testing.T) {
	loader := newTestLoader(t)

	_, err := loader.Load(context.Background(), "/srv/content/plans.mdx", interfaces.LoadOptions{})
	if err == nil {
		t.Fatalf("expected error for absolute path without base path")
	}
	if !strings.Contains(err.Error(), "base path") {
		t.Fatalf("unexpected error %v", err)
	}
}
