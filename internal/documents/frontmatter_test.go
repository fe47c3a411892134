package documents

import (
	"strings"
	"testing"
	"time"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

func TestDeriveSlug(t *testing.T) {
	cases := []struct {
		name string
		meta interfaces.FrontMatter
		path string
		want string
	}{
		{
			name: "explicit slug is normalized",
			meta: interfaces.FrontMatter{Slug: "Custom Slug"},
			path: "content/en/page.mdx",
			want: "custom-slug",
		},
		{
			name: "slug wins over title",
			meta: interfaces.FrontMatter{Slug: "keep-me", Title: "Landing Page"},
			path: "content/en/page.mdx",
			want: "keep-me",
		},
		{
			name: "title fallback",
			meta: interfaces.FrontMatter{Title: "Landing Page"},
			path: "content/en/page.mdx",
			want: "landing-page",
		},
		{
			name: "stem fallback",
			meta: interfaces.FrontMatter{},
			path: "content/en/spring-sale.mdx",
			want: "spring-sale",
		},
		{
			name: "stem is normalized",
			meta: interfaces.FrontMatter{},
			path: "docs/Rate Charts.mdx",
			want: "rate-charts",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveSlug(tc.meta, tc.path); got != tc.want {
				t.Fatalf("expected slug %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuildDocumentDeterministicID(t *testing.T) {
	source := []byte("---\ntitle: Compare Plans\n---\n\nBody.\n")

	first, err := BuildDocument("content/en/plans.mdx", "en", source, time.Now())
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	second, err := BuildDocument("content/en/plans.mdx", "en", source, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected stable id, got %s and %s", first.ID, second.ID)
	}

	other, err := BuildDocument("content/es/plans.mdx", "es", source, time.Now())
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("expected locale to vary the id")
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	source := []byte("---\ntitle: [unclosed\n---\n\nBody.\n")

	_, _, err := ParseFrontMatter(source)
	if err == nil {
		t.Fatalf("expected error for malformed frontmatter")
	}
	if !strings.Contains(err.Error(), "parse frontmatter") {
		t.Fatalf("unexpected error %v", err)
	}
}
