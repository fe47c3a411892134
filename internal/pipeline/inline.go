package pipeline

import (
	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/mdx"
)

// The inline reference encoder rewrites content-bearing subtrees before they
// are buffered: inline component tags become placeholder token text, wrapper
// tags are hoisted, and bare expressions are deleted. Everything else is
// reconstructed with the rewritten child lists.

// encodeInlines runs the encoder over one content-bearing node. It reports
// whether any descendant was rewritten.
func (r *segmentRun) encodeInlines(n *mdx.Node) (bool, error) {
	if len(n.Children) == 0 {
		return false, nil
	}
	children, rewritten, err := r.encodeChildren(n.Children)
	if err != nil {
		return false, err
	}
	n.Children = children
	return rewritten, nil
}

func (r *segmentRun) encodeChildren(children []*mdx.Node) ([]*mdx.Node, bool, error) {
	out := make([]*mdx.Node, 0, len(children))
	rewritten := false

	for _, child := range children {
		switch child.Kind {
		case mdx.KindInlineTag, mdx.KindBlockTag:
			nodes, err := r.encodeTag(child)
			if err != nil {
				return nil, false, err
			}
			out = append(out, nodes...)
			rewritten = true
		case mdx.KindExpression:
			// Bare interpolation carries nothing migratable.
			r.s.logger.Debug("pipeline.expression.dropped", "expression", snippet(child.Text))
			rewritten = true
		default:
			if len(child.Children) > 0 {
				sub, subRewritten, err := r.encodeChildren(child.Children)
				if err != nil {
					return nil, false, err
				}
				child.Children = sub
				rewritten = rewritten || subRewritten
			}
			out = append(out, child)
		}
	}
	return out, rewritten, nil
}

// encodeTag resolves one component tag found inside flowing content.
func (r *segmentRun) encodeTag(tag *mdx.Node) ([]*mdx.Node, error) {
	line, col := r.position(tag)

	def, ok := r.s.registry.Lookup(tag.Name)
	if !ok {
		return r.inlineFallback(unmappedComponent(tag.Name, blocks.UsageInline, line, col))
	}

	if def.IsWrapper() {
		hoisted, _, err := r.encodeChildren(tag.Children)
		if err != nil {
			return nil, err
		}
		return hoisted, nil
	}

	if !def.Implemented() {
		return r.inlineFallback(notImplemented(tag.Name, blocks.UsageInline, line, col))
	}

	if !def.RenderInline {
		return r.inlineFallback(unsupportedUsage(tag.Name, blocks.UsageInline, line, col))
	}

	props, malformed := ExtractProps(tag.Attributes)
	r.logMalformed(tag.Name, malformed)
	token, err := EncodeToken(tag.Name, props)
	if err != nil {
		return nil, err
	}
	if len(tag.Children) > 0 {
		r.s.logger.Warn("pipeline.component.children_dropped",
			"component", tag.Name, "children", len(tag.Children))
	}
	return []*mdx.Node{{Kind: mdx.KindText, Text: token}}, nil
}

// inlineFallback applies the failure policy for an inline-position component.
func (r *segmentRun) inlineFallback(cerr *ComponentError) ([]*mdx.Node, error) {
	if r.s.mode == ModeFailFast {
		return nil, wrapComponentError(cerr)
	}
	r.tally(cerr)
	return []*mdx.Node{{Kind: mdx.KindText, Text: "[" + cerr.Name + "]"}}, nil
}

// inlineClone reclassifies a block-position tag so the inline encoder
// accepts it without mutating the original node.
func inlineClone(n *mdx.Node) *mdx.Node {
	clone := *n
	clone.Kind = mdx.KindInlineTag
	return &clone
}
