package pipeline

import (
	"regexp"
	"strings"

	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

var (
	// wordBeforeLink captures a word separated from a following link open
	// bracket by exactly one space in the segment source.
	wordBeforeLink = regexp.MustCompile(`([A-Za-z0-9]+)[ \t]\[`)
	// wordAfterLink captures a word separated from a preceding link close
	// by exactly one space.
	wordAfterLink = regexp.MustCompile(`\]\([^()\s]*\)[ \t]([A-Za-z0-9]+)`)
)

// RepairLinks runs the post-conversion link fixes over one segment: residual
// markdown link syntax left inside text nodes is decoded into link nodes,
// then whitespace the conversion trimmed next to links is restored by
// matching word content against the segment source. The spacing pass is a
// best-effort heuristic; when the same word borders several links it repairs
// the first occurrence and logs the ambiguity.
func RepairLinks(nodes []richtext.Node, source string, logger interfaces.Logger) []richtext.Node {
	if logger == nil {
		logger = logging.NoOp()
	}
	nodes = decodeResidualLinks(nodes)

	r := &spacingRepairer{logger: logger}
	for _, match := range wordBeforeLink.FindAllStringSubmatch(source, -1) {
		r.repairAround(nodes, match[1], true)
	}
	for _, match := range wordAfterLink.FindAllStringSubmatch(source, -1) {
		r.repairAround(nodes, match[1], false)
	}
	return nodes
}

// decodeResidualLinks rewrites text nodes that still carry `[text](url)`
// syntax, preserving the node's marks on every produced piece.
func decodeResidualLinks(nodes []richtext.Node) []richtext.Node {
	out := make([]richtext.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsText() && richtext.ContainsInlineLink(n.TextValue()) {
			for _, piece := range richtext.SplitInlineLinks(n.TextValue()) {
				out = append(out, copyMarks(piece, n))
			}
			continue
		}
		if len(n.Children) > 0 && n.Type != richtext.TypeCodeBlock {
			n.Children = decodeResidualLinks(n.Children)
		}
		out = append(out, n)
	}
	return out
}

func copyMarks(n, from richtext.Node) richtext.Node {
	n.Bold = from.Bold
	n.Italic = from.Italic
	n.Code = from.Code
	n.Strikethrough = from.Strikethrough
	if n.Type == richtext.TypeLink {
		for i := range n.Children {
			n.Children[i] = copyMarks(n.Children[i], from)
		}
	}
	return n
}

type spacingRepairer struct {
	logger interfaces.Logger
}

// repairAround restores one space next to a link for the given word. before
// selects which side of the link the word sits on.
func (r *spacingRepairer) repairAround(nodes []richtext.Node, word string, before bool) {
	found := 0
	r.walk(nodes, word, before, &found)
	if found > 1 {
		r.logger.Warn("pipeline.spacing.ambiguous",
			"word", word,
			"candidates", found,
			"side", sideLabel(before),
		)
	}
}

func (r *spacingRepairer) walk(nodes []richtext.Node, word string, before bool, found *int) {
	for i := range nodes {
		if nodes[i].Type == richtext.TypeLink {
			if before && i > 0 && nodes[i-1].IsText() && trailingWord(nodes[i-1].TextValue()) == word {
				*found++
				if *found == 1 {
					if text := nodes[i-1].TextValue(); !strings.HasSuffix(text, " ") {
						nodes[i-1] = nodes[i-1].WithText(text + " ")
					}
				}
			}
			if !before && i+1 < len(nodes) && nodes[i+1].IsText() && leadingWord(nodes[i+1].TextValue()) == word {
				*found++
				if *found == 1 {
					if text := nodes[i+1].TextValue(); !strings.HasPrefix(text, " ") {
						nodes[i+1] = nodes[i+1].WithText(" " + text)
					}
				}
			}
			continue
		}
		if len(nodes[i].Children) > 0 {
			r.walk(nodes[i].Children, word, before, found)
		}
	}
}

func sideLabel(before bool) string {
	if before {
		return "before"
	}
	return "after"
}

func trailingWord(text string) string {
	text = strings.TrimRight(text, " \t")
	end := len(text)
	start := end
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	return text[start:end]
}

func leadingWord(text string) string {
	text = strings.TrimLeft(text, " \t")
	end := 0
	for end < len(text) && isWordChar(text[end]) {
		end++
	}
	return text[:end]
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
