package pipeline

import (
	"regexp"
	"strings"

	"github.com/ComparePower/go-payload-migrate/richtext"
)

var (
	// danglingLinkOpen matches a "](url" fragment whose closing paren never
	// arrives, the shape left behind when a link's tail was replaced by an
	// inline node.
	danglingLinkOpen = regexp.MustCompile(`\]\([^()]*$`)
	// escapedBracket matches leftover escaped link punctuation.
	escapedBracket = regexp.MustCompile(`\\([\[\]()])`)
)

// CleanupArtifacts strips link syntax remnants out of text nodes: orphaned
// escaped brackets and dangling "](url" fragments produced when placeholder
// decoding or link repair replaced part of a markdown link. Touched nodes
// outside link children are trimmed; inside link children spacing is kept
// because leading or trailing space in link text can be intentional. Text
// nodes left empty are dropped.
func CleanupArtifacts(nodes []richtext.Node) []richtext.Node {
	return cleanupNodes(nodes, false)
}

func cleanupNodes(nodes []richtext.Node, insideLink bool) []richtext.Node {
	out := make([]richtext.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsText() {
			cleaned, changed := cleanText(n.TextValue(), insideLink)
			if !changed {
				out = append(out, n)
				continue
			}
			if cleaned == "" {
				continue
			}
			out = append(out, n.WithText(cleaned))
			continue
		}
		if len(n.Children) > 0 {
			n.Children = cleanupNodes(n.Children, insideLink || n.Type == richtext.TypeLink)
		}
		out = append(out, n)
	}
	return out
}

func cleanText(text string, insideLink bool) (string, bool) {
	cleaned := danglingLinkOpen.ReplaceAllString(text, "")
	cleaned = escapedBracket.ReplaceAllString(cleaned, "")
	if cleaned == text {
		return text, false
	}
	if !insideLink {
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned, true
}
