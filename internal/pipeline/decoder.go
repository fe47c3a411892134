package pipeline

import (
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

// DecodePlaceholders scans converted rich text for placeholder tokens and
// splits each carrying text node into alternating plain text and typed
// inline component nodes, in token order. Text between tokens is preserved
// verbatim, marks included. Nodes without tokens pass through untouched.
func DecodePlaceholders(nodes []richtext.Node, logger interfaces.Logger) []richtext.Node {
	if logger == nil {
		logger = logging.NoOp()
	}
	out := make([]richtext.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, decodeNode(n, logger)...)
	}
	return out
}

func decodeNode(n richtext.Node, logger interfaces.Logger) []richtext.Node {
	if n.IsText() {
		if !ContainsToken(n.TextValue()) {
			return []richtext.Node{n}
		}
		return splitTokenText(n, logger)
	}
	if len(n.Children) > 0 {
		children := make([]richtext.Node, 0, len(n.Children))
		for _, child := range n.Children {
			children = append(children, decodeNode(child, logger)...)
		}
		n.Children = children
	}
	return []richtext.Node{n}
}

// splitTokenText explodes one text node around its embedded tokens. Tokens
// that fail to decode stay behind as literal text so nothing is lost.
func splitTokenText(n richtext.Node, logger interfaces.Logger) []richtext.Node {
	text := n.TextValue()
	matches := tokenPattern.FindAllStringIndex(text, -1)

	out := make([]richtext.Node, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, n.WithText(text[last:m[0]]))
		}
		token := text[m[0]:m[1]]
		name, props, err := DecodeToken(token)
		if err != nil {
			logger.Warn("pipeline.token.undecodable", "token", snippet(token), "error", err.Error())
			out = append(out, n.WithText(token))
		} else {
			out = append(out, richtext.InlineComponent(name, props))
		}
		last = m[1]
	}
	if last < len(text) {
		out = append(out, n.WithText(text[last:]))
	}
	return out
}
