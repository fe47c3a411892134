package pipeline

import (
	"strconv"
	"strings"

	"github.com/ComparePower/go-payload-migrate/internal/mdx"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

// MalformedProp records an attribute whose braced expression did not parse
// into any typed form and was kept as an opaque string. Advisory only.
type MalformedProp struct {
	Name string
	Raw  string
}

// ExtractProps converts a tag's raw attributes into an ordered field set.
// Valueless attributes become boolean true. Quoted values stay strings,
// including explicit empty strings. Braced expressions are interpreted as
// keyword, JSON array/object, or number literals, in that order; anything
// else is kept verbatim as an opaque string and reported.
func ExtractProps(attrs []mdx.Attribute) (*richtext.Fields, []MalformedProp) {
	fields := richtext.NewFields()
	var malformed []MalformedProp

	for _, attr := range attrs {
		switch attr.Type {
		case mdx.AttrFlag:
			fields.Set(attr.Name, true)
		case mdx.AttrString:
			fields.Set(attr.Name, attr.Value)
		case mdx.AttrExpression:
			value, ok := parseExpression(attr.Value)
			if !ok {
				malformed = append(malformed, MalformedProp{Name: attr.Name, Raw: attr.Value})
			}
			fields.Set(attr.Name, value)
		}
	}
	return fields, malformed
}

// parseExpression interprets the text between attribute braces. The bool
// result reports whether a typed interpretation was found; on false the
// returned value is the raw text.
func parseExpression(raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null", "undefined":
		return nil, true
	}

	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if value, err := richtext.DecodeValue([]byte(trimmed)); err == nil {
			return value, true
		}
		// Authors frequently write single-quoted JSX literals; retry with
		// quotes normalized before giving up.
		if strings.ContainsRune(trimmed, '\'') && !strings.ContainsRune(trimmed, '"') {
			swapped := strings.ReplaceAll(trimmed, "'", `"`)
			if value, err := richtext.DecodeValue([]byte(swapped)); err == nil {
				return value, true
			}
		}
		return raw, false
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f, true
	}

	return raw, false
}
