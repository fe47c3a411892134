package richtext

import (
	"context"
	"regexp"
	"strings"
)

var (
	blankLinePattern  = regexp.MustCompile(`\n[ \t]*\n+`)
	inlineLinkPattern = regexp.MustCompile(`\[([^\[\]]*)\]\(([^()\s]+)\)`)
)

// PlainConverter is the degraded fallback used when full markdown conversion
// is unavailable. It splits source into paragraphs on blank lines and keeps
// inline links; all other formatting is passed through as literal text.
type PlainConverter struct{}

// NewPlainConverter returns the fallback converter.
func NewPlainConverter() *PlainConverter {
	return &PlainConverter{}
}

// Convert splits markdown into paragraph nodes without interpreting block
// structure.
func (c *PlainConverter) Convert(ctx context.Context, markdown []byte, opts ConvertOptions) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Node
	for _, chunk := range blankLinePattern.Split(string(markdown), -1) {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		out = append(out, Node{Type: TypeParagraph, Children: SplitInlineLinks(text)})
	}
	return out, nil
}

// ContainsInlineLink reports whether text still holds markdown link syntax.
func ContainsInlineLink(text string) bool {
	return inlineLinkPattern.MatchString(text)
}

// SplitInlineLinks turns markdown link syntax inside plain text into link
// nodes, leaving the surrounding text untouched.
func SplitInlineLinks(text string) []Node {
	matches := inlineLinkPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Node{Text(text)}
	}
	var out []Node
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, Text(text[last:m[0]]))
		}
		label := text[m[2]:m[3]]
		url := text[m[4]:m[5]]
		out = append(out, Link(url, Text(label)))
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Text(text[last:]))
	}
	return out
}
