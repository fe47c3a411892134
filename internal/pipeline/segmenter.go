package pipeline

import (
	"fmt"
	"strings"

	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/internal/mdx"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

// Mode selects how the pipeline reacts to components it cannot place.
type Mode string

const (
	// ModeFailFast aborts the document on the first unplaceable component.
	ModeFailFast Mode = "fail-fast"
	// ModeCollect tallies unplaceable components and keeps converting, so a
	// single pass over a corpus reports every registry gap.
	ModeCollect Mode = "collect"
)

// Valid reports whether m is one of the two supported modes.
func (m Mode) Valid() bool {
	return m == ModeFailFast || m == ModeCollect
}

// Segment is one ordered unit produced by the segmentation pass. Rich text
// segments carry the buffered markdown (placeholder tokens already embedded)
// awaiting conversion; component segments are atomic and convert directly
// into typed blocks.
type Segment struct {
	Markdown  string
	Component *blocks.ComponentRef
	Section   *blocks.SectionContext
}

// IsComponent reports whether the segment is an atomic component block.
func (s Segment) IsComponent() bool {
	return s.Component != nil
}

// Segmenter walks a parsed document's top-level nodes and splits them into
// rich text segments and atomic component blocks. Wrapper components are
// flattened by splicing their children into the traversal work list, one
// nesting level per pass, so relative order against later siblings is kept.
type Segmenter struct {
	registry interfaces.ComponentRegistry
	logger   interfaces.Logger
	mode     Mode
}

// NewSegmenter builds a segmenter bound to a capability registry. A nil
// logger falls back to the no-op implementation.
func NewSegmenter(registry interfaces.ComponentRegistry, logger interfaces.Logger, mode Mode) *Segmenter {
	if logger == nil {
		logger = logging.NoOp()
	}
	if !mode.Valid() {
		mode = ModeFailFast
	}
	return &Segmenter{registry: registry, logger: logger, mode: mode}
}

// Segment converts the document tree into an ordered segment list. The
// returned unhandled tally is populated only in collect mode; in fail-fast
// mode the first unplaceable component aborts with a diagnostic instead.
func (s *Segmenter) Segment(doc *mdx.Node, source []byte) ([]Segment, []blocks.UnhandledComponent, error) {
	run := &segmentRun{
		s:           s,
		source:      source,
		work:        append([]*mdx.Node(nil), doc.Children...),
		unhandledIx: map[string]int{},
	}

	for i := 0; i < len(run.work); i++ {
		n := run.work[i]
		switch n.Kind {
		case mdx.KindSectionEnd:
			// Flush with the section still on the stack so trailing content
			// inside the wrapper carries its frame.
			run.flush()
			run.pop()
		case mdx.KindBlockTag:
			if err := run.blockTag(i, n); err != nil {
				return nil, nil, err
			}
		case mdx.KindInlineTag:
			// An inline tag with no enclosing paragraph still has to live
			// inside rich text; wrap whatever it encodes to in one.
			nodes, _, err := run.encodeChildren([]*mdx.Node{n})
			if err != nil {
				return nil, nil, err
			}
			if len(nodes) > 0 {
				para := &mdx.Node{Kind: mdx.KindParagraph, Children: nodes}
				run.buffer = append(run.buffer, bufferEntry{node: para, rewritten: true})
			}
		case mdx.KindExpression:
			s.logger.Debug("pipeline.expression.dropped", "expression", snippet(n.Text))
		default:
			rewritten, err := run.encodeInlines(n)
			if err != nil {
				return nil, nil, err
			}
			run.buffer = append(run.buffer, bufferEntry{node: n, rewritten: rewritten})
		}
	}
	run.flush()

	return run.segs, run.unhandled, nil
}

// bufferEntry tracks whether the inline encoder touched a buffered node.
// Untouched nodes flush from their original source span; rewritten ones are
// re-rendered, since their spans no longer describe them.
type bufferEntry struct {
	node      *mdx.Node
	rewritten bool
}

type segmentRun struct {
	s      *Segmenter
	source []byte

	work   []*mdx.Node
	buffer []bufferEntry
	segs   []Segment
	stack  []blocks.SectionContext

	unhandled   []blocks.UnhandledComponent
	unhandledIx map[string]int
}

// blockTag dispatches a top-level component tag by its registry capability.
func (r *segmentRun) blockTag(i int, n *mdx.Node) error {
	line, col := r.position(n)

	def, ok := r.s.registry.Lookup(n.Name)
	if !ok {
		return r.unplaceableBlock(unmappedComponent(n.Name, blocks.UsageBlock, line, col))
	}

	if def.IsWrapper() {
		r.flush()
		spliced := mdx.Blockify(n.Children)
		if frame, named := sectionFrame(n); named {
			r.stack = append(r.stack, frame)
			spliced = append(spliced, &mdx.Node{Kind: mdx.KindSectionEnd})
		}
		if len(spliced) > 0 {
			r.spliceAt(i, spliced)
		}
		return nil
	}

	if !def.Implemented() {
		return r.unplaceableBlock(notImplemented(n.Name, blocks.UsageBlock, line, col))
	}

	if def.RenderBlock {
		r.flush()
		props, malformed := ExtractProps(n.Attributes)
		r.logMalformed(n.Name, malformed)
		r.segs = append(r.segs, Segment{
			Component: &blocks.ComponentRef{Name: n.Name, Props: props, Usage: blocks.UsageBlock},
			Section:   r.currentSection(),
		})
		return nil
	}

	if def.RenderInline {
		// Inline-only component promoted to block position by the author;
		// keep it in the text flow as a token inside a synthetic paragraph.
		nodes, _, err := r.encodeChildren([]*mdx.Node{inlineClone(n)})
		if err != nil {
			return err
		}
		if len(nodes) > 0 {
			para := &mdx.Node{Kind: mdx.KindParagraph, Children: nodes}
			r.buffer = append(r.buffer, bufferEntry{node: para, rewritten: true})
		}
		return nil
	}

	return r.unplaceableBlock(unsupportedUsage(n.Name, blocks.UsageBlock, line, col))
}

// unplaceableBlock applies the failure policy for a block-position component.
// Collect mode emits an inert bracketed-name block so editors can locate the
// gap, leaving surrounding rich text split exactly as a mapped component
// would have split it.
func (r *segmentRun) unplaceableBlock(cerr *ComponentError) error {
	if r.s.mode == ModeFailFast {
		return wrapComponentError(cerr)
	}
	r.tally(cerr)
	r.flush()
	r.segs = append(r.segs, Segment{
		Markdown: "[" + cerr.Name + "]",
		Section:  r.currentSection(),
	})
	return nil
}

func (r *segmentRun) tally(cerr *ComponentError) {
	r.s.logger.Warn("pipeline.component.unhandled",
		"component", cerr.Name,
		"usage", string(cerr.Usage),
		"reason", cerr.Err.Error(),
		"line", cerr.Line,
	)
	key := cerr.Name + "/" + string(cerr.Usage)
	if idx, ok := r.unhandledIx[key]; ok {
		r.unhandled[idx].UsageCount++
		return
	}
	entry := blocks.UnhandledComponent{
		Name:       cerr.Name,
		Usage:      cerr.Usage,
		UsageCount: 1,
	}
	if cerr.Line > 0 {
		entry.FirstSeen = fmt.Sprintf("%d:%d", cerr.Line, cerr.Col)
	}
	r.unhandledIx[key] = len(r.unhandled)
	r.unhandled = append(r.unhandled, entry)
}

// flush drains the buffer into one rich text segment. Untouched nodes render
// from their source spans so the original formatting survives verbatim;
// rewritten nodes are re-rendered from the tree. Buffered nodes convert as a
// single unit so adjacency across node boundaries is preserved.
func (r *segmentRun) flush() {
	if len(r.buffer) == 0 {
		return
	}
	parts := make([]string, 0, len(r.buffer))
	for _, entry := range r.buffer {
		var part string
		if !entry.rewritten && entry.node.HasSpan() {
			part = string(r.source[entry.node.SpanStart:entry.node.SpanEnd])
		} else {
			part = mdx.Stringify(entry.node)
		}
		part = strings.TrimRight(part, "\n")
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	r.buffer = r.buffer[:0]

	markdown := strings.Join(parts, "\n\n")
	if strings.TrimSpace(markdown) == "" {
		return
	}
	r.segs = append(r.segs, Segment{Markdown: markdown, Section: r.currentSection()})
}

// spliceAt inserts nodes into the work list directly after position i, so
// the loop visits them in this same pass before any later siblings.
func (r *segmentRun) spliceAt(i int, nodes []*mdx.Node) {
	next := make([]*mdx.Node, 0, len(r.work)+len(nodes))
	next = append(next, r.work[:i+1]...)
	next = append(next, nodes...)
	next = append(next, r.work[i+1:]...)
	r.work = next
}

func (r *segmentRun) currentSection() *blocks.SectionContext {
	if len(r.stack) == 0 {
		return nil
	}
	frame := r.stack[len(r.stack)-1]
	return &frame
}

func (r *segmentRun) pop() {
	if len(r.stack) == 0 {
		panic("pipeline: section stack underflow")
	}
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *segmentRun) position(n *mdx.Node) (int, int) {
	if !n.HasSpan() {
		return 0, 0
	}
	return mdx.Position(r.source, n.SpanStart)
}

func (r *segmentRun) logMalformed(component string, malformed []MalformedProp) {
	for _, m := range malformed {
		r.s.logger.Warn("pipeline.props.opaque",
			"component", component, "prop", m.Name, "raw", snippet(m.Raw))
	}
}

// sectionFrame reads the section identity props off a wrapper tag. Only
// wrappers carrying an id prop name a section; the rest flatten silently.
func sectionFrame(n *mdx.Node) (blocks.SectionContext, bool) {
	props, _ := ExtractProps(n.Attributes)
	if !props.Has("id") {
		return blocks.SectionContext{}, false
	}
	frame := blocks.SectionContext{}
	if id, ok := props.String("id"); ok {
		frame.ID = id
	}
	if title, ok := props.String("title"); ok {
		frame.Title = title
	}
	if level, ok := props.Int("headingLevel"); ok {
		frame.HeadingLevel = level
	}
	return frame, true
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}
