package mdx

import (
	"fmt"
	"strings"
)

// scannedTag is a single component tag occurrence found in a raw text chunk.
// Offsets are relative to the scanned chunk.
type scannedTag struct {
	name        string
	attributes  []Attribute
	closing     bool
	selfClosing bool
	start       int
	end         int
}

func isUpperASCII(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isTagNameChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func isAttrNameChar(c byte) bool {
	return isTagNameChar(c) || c == '-' || c == '_' || c == ':' || c == '.'
}

func isSpaceChar(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanError reports a malformed component tag along with its chunk-relative
// offset so callers can translate it to a source position.
type scanError struct {
	offset int
	err    error
}

func (e *scanError) Error() string { return e.err.Error() }
func (e *scanError) Unwrap() error { return e.err }

// scanTags finds every component tag in chunk. Component tags start with an
// uppercase letter, which keeps plain HTML like <div> or <br/> out of the
// result. Text that merely looks like a tag opener is left alone.
func scanTags(chunk string) ([]scannedTag, error) {
	var tags []scannedTag
	for i := 0; i < len(chunk); i++ {
		if chunk[i] != '<' {
			continue
		}
		tag, next, ok, err := parseTagAt(chunk, i)
		if err != nil {
			return nil, &scanError{offset: i, err: err}
		}
		if !ok {
			continue
		}
		tags = append(tags, tag)
		i = next - 1
	}
	return tags, nil
}

// parseTagAt attempts to parse a component tag starting at chunk[i] == '<'.
// It returns ok=false when the text is not a component tag; err is reserved
// for tags that open like components but carry malformed attributes.
func parseTagAt(chunk string, i int) (scannedTag, int, bool, error) {
	j := i + 1
	closing := false
	if j < len(chunk) && chunk[j] == '/' {
		closing = true
		j++
	}
	if j >= len(chunk) || !isUpperASCII(chunk[j]) {
		return scannedTag{}, 0, false, nil
	}
	nameStart := j
	for j < len(chunk) && isTagNameChar(chunk[j]) {
		j++
	}
	name := chunk[nameStart:j]

	// Scan to the closing '>' while honoring quoted strings and brace
	// expressions, both of which may contain '>'.
	attrStart := j
	depth := 0
	var quote byte
	for j < len(chunk) {
		c := chunk[j]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			j++
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				return finishTag(chunk, name, closing, i, attrStart, j)
			}
		}
		j++
	}
	// Ran off the end of the chunk mid-tag; treat the opener as literal text.
	return scannedTag{}, 0, false, nil
}

func finishTag(chunk, name string, closing bool, start, attrStart, gt int) (scannedTag, int, bool, error) {
	raw := strings.TrimSpace(chunk[attrStart:gt])
	selfClosing := false
	if strings.HasSuffix(raw, "/") {
		selfClosing = true
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "/"))
	}
	tag := scannedTag{
		name:        name,
		closing:     closing,
		selfClosing: selfClosing,
		start:       start,
		end:         gt + 1,
	}
	if closing {
		if raw != "" {
			return scannedTag{}, 0, false, fmt.Errorf("closing tag </%s> carries attributes", name)
		}
		return tag, gt + 1, true, nil
	}
	attrs, err := parseAttributes(raw)
	if err != nil {
		return scannedTag{}, 0, false, fmt.Errorf("tag <%s>: %w", name, err)
	}
	tag.attributes = attrs
	return tag, gt + 1, true, nil
}

// parseAttributes splits the raw attribute text of an open tag. Values are
// kept verbatim; interpretation happens later in the pipeline.
func parseAttributes(raw string) ([]Attribute, error) {
	var attrs []Attribute
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpaceChar(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}
		nameStart := i
		for i < len(raw) && isAttrNameChar(raw[i]) {
			i++
		}
		if i == nameStart {
			return nil, fmt.Errorf("malformed attribute near %q", truncate(raw[i:], 20))
		}
		name := raw[nameStart:i]

		for i < len(raw) && isSpaceChar(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			attrs = append(attrs, Attribute{Name: name, Type: AttrFlag})
			continue
		}
		i++ // consume '='
		for i < len(raw) && isSpaceChar(raw[i]) {
			i++
		}
		if i >= len(raw) {
			return nil, fmt.Errorf("attribute %q is missing a value", name)
		}

		switch c := raw[i]; c {
		case '"', '\'':
			i++
			valueStart := i
			for i < len(raw) && raw[i] != c {
				i++
			}
			if i >= len(raw) {
				return nil, fmt.Errorf("attribute %q has an unterminated string", name)
			}
			attrs = append(attrs, Attribute{Name: name, Value: raw[valueStart:i], Type: AttrString})
			i++
		case '{':
			value, next, ok := scanBraced(raw, i)
			if !ok {
				return nil, fmt.Errorf("attribute %q has an unterminated expression", name)
			}
			attrs = append(attrs, Attribute{Name: name, Value: value, Type: AttrExpression})
			i = next
		default:
			valueStart := i
			for i < len(raw) && !isSpaceChar(raw[i]) {
				i++
			}
			attrs = append(attrs, Attribute{Name: name, Value: raw[valueStart:i], Type: AttrString})
		}
	}
	return attrs, nil
}

// scanBraced consumes a brace-delimited expression starting at raw[i] == '{'
// and returns the text between the outermost braces. Nested braces and
// quoted strings are honored.
func scanBraced(raw string, i int) (string, int, bool) {
	depth := 1
	i++
	start := i
	var quote byte
	for i < len(raw) {
		c := raw[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start:i], i + 1, true
			}
		}
		i++
	}
	return "", 0, false
}

// splitExpressions breaks text into literal and expression runs. Braces that
// never close are treated as literal text.
func splitExpressions(text string, spanStart int) []*Node {
	var out []*Node
	last := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		value, next, ok := scanBraced(text, i)
		if !ok {
			continue
		}
		if i > last {
			out = append(out, &Node{
				Kind:      KindText,
				Text:      text[last:i],
				SpanStart: spanStart + last,
				SpanEnd:   spanStart + i,
			})
		}
		out = append(out, &Node{
			Kind:      KindExpression,
			Text:      value,
			SpanStart: spanStart + i,
			SpanEnd:   spanStart + next,
		})
		last = next
		i = next - 1
	}
	if last == 0 {
		return []*Node{{Kind: KindText, Text: text, SpanStart: spanStart, SpanEnd: spanStart + len(text)}}
	}
	if last < len(text) {
		out = append(out, &Node{
			Kind:      KindText,
			Text:      text[last:],
			SpanStart: spanStart + last,
			SpanEnd:   spanStart + len(text),
		})
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
