// Package documents discovers markdown and MDX source files, parses their
// frontmatter, and hands the pipeline stable Document values with
// deterministic identifiers and content checksums.
package documents

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// defaultPatterns lists the globs discovered when no pattern is configured.
var defaultPatterns = []string{"*.mdx", "*.md"}

// LoaderConfig configures how source documents are discovered within a base
// directory.
type LoaderConfig struct {
	// BasePath is the root directory where source documents live.
	BasePath string
	// DefaultLocale is used when no locale can be inferred from the file path.
	DefaultLocale string
	// Locales enumerates the known locales (e.g. ["en", "es"]) for directory
	// segment matching.
	Locales []string
	// LocalePatterns maps locale identifiers to glob expressions relative to
	// BasePath.
	LocalePatterns map[string]string
	// Pattern limits discovered files to those matching the supplied glob.
	// When empty both *.mdx and *.md files are discovered.
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into documents with metadata. It implements
// interfaces.DocumentLoader.
type Loader struct {
	fs             fs.FS
	basePath       string
	defaultLocale  string
	locales        []string
	localePatterns map[string]string
	patterns       []string
	recursive      bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	patterns := defaultPatterns
	if strings.TrimSpace(cfg.Pattern) != "" {
		patterns = []string{cfg.Pattern}
	}

	basePath := ""
	if strings.TrimSpace(cfg.BasePath) != "" {
		basePath = filepath.Clean(cfg.BasePath)
	}

	return &Loader{
		fs:             filesystem,
		basePath:       basePath,
		defaultLocale:  cfg.DefaultLocale,
		locales:        append([]string(nil), cfg.Locales...),
		localePatterns: cloneStringMap(cfg.LocalePatterns),
		patterns:       patterns,
		recursive:      cfg.Recursive,
	}
}

// Load reads and parses a single source document.
func (l *Loader) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("documents: read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("documents: stat %s: %w", rel, err)
	}

	doc, err := BuildDocument(rel, l.detectLocale(rel, opts.LocalePatterns), data, info.ModTime())
	if err != nil {
		return nil, fmt.Errorf("documents: parse %s: %w", rel, err)
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]

	return doc, nil
}

// LoadDirectory discovers source files under dir and returns parsed documents
// sorted by file path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	var results []*interfaces.Document

	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if !l.shouldRecurse(root, path, opts.Recursive) {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel := filepath.ToSlash(path)
		if !l.matchesPattern(rel, opts.Pattern) {
			return nil
		}

		doc, err := l.Load(ctx, rel, opts)
		if err != nil {
			return err
		}
		results = append(results, doc)
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})

	return results, nil
}

func (l *Loader) shouldRecurse(root, current string, override *bool) bool {
	recursive := l.recursive
	if override != nil {
		recursive = *override
	}
	if recursive {
		return true
	}
	// If recursion is disabled, only walk the root directory.
	return filepath.Clean(root) == filepath.Clean(current)
}

func (l *Loader) matchesPattern(path string, override string) bool {
	patterns := l.patterns
	if strings.TrimSpace(override) != "" {
		patterns = []string{override}
	}
	for _, pattern := range patterns {
		if matchFileGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchFileGlob applies a single glob to a slash-separated path. Patterns
// without a separator match the base name so "*.mdx" finds nested files; a
// "**/" prefix collapses the way fs.WalkDir callers expect.
func matchFileGlob(pattern, path string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := path
	if !strings.Contains(pattern, "/") {
		target = filepath.Base(path)
	}
	match, err := filepath.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) detectLocale(path string, overrides map[string]string) string {
	path = filepath.ToSlash(path)

	if locale := matchLocalePattern(path, overrides); locale != "" {
		return locale
	}
	if locale := matchLocalePattern(path, l.localePatterns); locale != "" {
		return locale
	}

	// Directory names like content/en/plans.mdx carry the locale.
	segments := strings.Split(path, "/")
	if len(segments) > 1 {
		for _, segment := range segments[:len(segments)-1] {
			for _, locale := range l.locales {
				if segment == locale {
					return locale
				}
			}
		}
	}

	return l.defaultLocale
}

func matchLocalePattern(path string, patterns map[string]string) string {
	if len(patterns) == 0 {
		return ""
	}

	locales := make([]string, 0, len(patterns))
	for locale := range patterns {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		pattern := filepath.ToSlash(strings.TrimSpace(patterns[locale]))
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, "**") {
			pattern = strings.ReplaceAll(pattern, "**/", "")
		}
		match, err := filepath.Match(pattern, path)
		if err != nil {
			continue
		}
		if match {
			return locale
		}
	}
	return ""
}

func (l *Loader) makeRelative(path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" {
		return "", fmt.Errorf("documents: absolute path %s provided without base path", path)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", fmt.Errorf("documents: make relative %s: %w", path, err)
	}
	return rel, nil
}

func cloneStringMap(input map[string]string) map[string]string {
	if input == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
