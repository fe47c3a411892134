package pipeline

import (
	"reflect"
	"testing"

	"github.com/ComparePower/go-payload-migrate/internal/mdx"
)

func TestExtractPropsTypedValues(t *testing.T) {
	cases := []struct {
		name string
		attr mdx.Attribute
		want any
	}{
		{"flag is true", mdx.Attribute{Name: "compact", Type: mdx.AttrFlag}, true},
		{"string verbatim", mdx.Attribute{Name: "provider", Value: "txu", Type: mdx.AttrString}, "txu"},
		{"empty string kept", mdx.Attribute{Name: "variant", Value: "", Type: mdx.AttrString}, ""},
		{"keyword true", mdx.Attribute{Name: "open", Value: "true", Type: mdx.AttrExpression}, true},
		{"keyword false", mdx.Attribute{Name: "open", Value: "false", Type: mdx.AttrExpression}, false},
		{"keyword null", mdx.Attribute{Name: "plan", Value: "null", Type: mdx.AttrExpression}, nil},
		{"keyword undefined", mdx.Attribute{Name: "plan", Value: "undefined", Type: mdx.AttrExpression}, nil},
		{"integer", mdx.Attribute{Name: "limit", Value: "10", Type: mdx.AttrExpression}, int64(10)},
		{"negative integer", mdx.Attribute{Name: "offset", Value: "-3", Type: mdx.AttrExpression}, int64(-3)},
		{"float", mdx.Attribute{Name: "rate", Value: "12.5", Type: mdx.AttrExpression}, 12.5},
		{
			"json array",
			mdx.Attribute{Name: "ids", Value: `["a","b"]`, Type: mdx.AttrExpression},
			[]any{"a", "b"},
		},
		{
			"json object with number",
			mdx.Attribute{Name: "config", Value: `{"limit": 5, "label": "x"}`, Type: mdx.AttrExpression},
			map[string]any{"limit": int64(5), "label": "x"},
		},
		{
			"single quoted array",
			mdx.Attribute{Name: "tags", Value: `['plans','rates']`, Type: mdx.AttrExpression},
			[]any{"plans", "rates"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, malformed := ExtractProps([]mdx.Attribute{tc.attr})
			if len(malformed) != 0 {
				t.Fatalf("expected no malformed props, got %v", malformed)
			}
			got, ok := fields.Get(tc.attr.Name)
			if !ok {
				t.Fatalf("prop %q missing from fields", tc.attr.Name)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("prop %q = %#v, want %#v", tc.attr.Name, got, tc.want)
			}
		})
	}
}

func TestExtractPropsOpaqueExpressions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"identifier reference", "plans.featured"},
		{"arrow function", "() => refresh()"},
		{"unquoted object keys", "{limit: 5}"},
		{"empty braces", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attr := mdx.Attribute{Name: "value", Value: tc.raw, Type: mdx.AttrExpression}
			fields, malformed := ExtractProps([]mdx.Attribute{attr})

			got, ok := fields.Get("value")
			if !ok {
				t.Fatalf("opaque prop should still be present")
			}
			if got != tc.raw {
				t.Fatalf("opaque prop = %#v, want raw %q", got, tc.raw)
			}
			if len(malformed) != 1 || malformed[0].Name != "value" {
				t.Fatalf("expected one malformed note for %q, got %v", "value", malformed)
			}
		})
	}
}

func TestExtractPropsPreservesOrder(t *testing.T) {
	attrs := []mdx.Attribute{
		{Name: "zeta", Value: "1", Type: mdx.AttrString},
		{Name: "alpha", Value: "2", Type: mdx.AttrString},
		{Name: "mid", Type: mdx.AttrFlag},
	}

	fields, _ := ExtractProps(attrs)

	want := []string{"zeta", "alpha", "mid"}
	if got := fields.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("key order = %v, want %v", got, want)
	}
}

func TestExtractPropsNoAttributes(t *testing.T) {
	fields, malformed := ExtractProps(nil)
	if fields.Len() != 0 {
		t.Fatalf("expected empty fields, got %d entries", fields.Len())
	}
	if len(malformed) != 0 {
		t.Fatalf("expected no malformed notes, got %v", malformed)
	}
}
