package documents

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"

	"github.com/ComparePower/go-payload-migrate/internal/identity"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and the markdown body from source bytes.
// The body comes back without the frontmatter delimiters.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles a Document from the supplied file path, locale, raw
// content, and modification time. The ID is derived from locale and slug so
// repeated loads of the same file agree.
func BuildDocument(path string, locale string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	slugValue := deriveSlug(meta, path)

	return &interfaces.Document{
		ID:           identity.DocumentUUID(locale, slugValue),
		FilePath:     filepath.ToSlash(path),
		Locale:       locale,
		Slug:         slugValue,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Summary string         `yaml:"summary"`
	Status  string         `yaml:"status"`
	Tags    []string       `yaml:"tags"`
	Author  string         `yaml:"author"`
	Date    time.Time      `yaml:"date"`
	Draft   bool           `yaml:"draft"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Title:   env.Title,
		Slug:    env.Slug,
		Summary: env.Summary,
		Status:  env.Status,
		Tags:    append([]string(nil), env.Tags...),
		Author:  env.Author,
		Date:    env.Date,
		Draft:   env.Draft,
		Custom:  cloneMap(env.Custom),
		Raw:     raw,
	}
}

// deriveSlug picks the document slug: the frontmatter slug, then the title,
// then the file stem, each run through the default normalizer.
func deriveSlug(meta interfaces.FrontMatter, path string) string {
	normalizer := slug.Default()
	for _, candidate := range []string{meta.Slug, meta.Title} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		normalized, err := normalizer.Normalize(candidate)
		if err != nil || normalized == "" {
			return candidate
		}
		return normalized
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if normalized, err := normalizer.Normalize(stem); err == nil && normalized != "" {
		return normalized
	}
	return stem
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
