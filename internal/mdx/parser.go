// Package mdx parses hybrid documents that mix markdown with JSX-style
// component tags. Standard markdown is delegated to goldmark; component tags
// are recovered from the raw HTML nodes goldmark produces and reassembled
// into a single tree with source spans.
package mdx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parser turns document source into an mdx tree. A Parser is stateless and
// safe for concurrent use.
type Parser struct {
	engine goldmark.Markdown
}

// NewParser returns a parser with GFM extensions enabled.
func NewParser() *Parser {
	return &Parser{
		engine: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Parse builds the document tree. Component tags must be balanced; unmatched
// open or close tags fail the whole document.
func (p *Parser) Parse(source []byte) (*Node, error) {
	root := p.engine.Parser().Parse(text.NewReader(source))
	conv := &treeBuilder{source: source, lines: newLineIndex(source)}

	var flat []*Node
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := conv.block(child)
		if err != nil {
			return nil, err
		}
		flat = append(flat, nodes...)
	}
	children, err := assembleTags(flat, KindBlockTag, source)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindDocument, Children: children, SpanEnd: len(source)}, nil
}

type treeBuilder struct {
	source []byte
	lines  *lineIndex
}

func (b *treeBuilder) block(n ast.Node) ([]*Node, error) {
	switch node := n.(type) {
	case *ast.HTMLBlock:
		return b.htmlBlock(node)
	case *ast.Paragraph:
		return b.paragraph(node)
	case *ast.TextBlock:
		return b.paragraph(node)
	case *ast.Heading:
		children, err := b.assembledInlines(node)
		if err != nil {
			return nil, err
		}
		out := &Node{Kind: KindHeading, Level: node.Level, Children: children}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.List:
		children, err := b.containerBlocks(node)
		if err != nil {
			return nil, err
		}
		out := &Node{Kind: KindList, Ordered: node.IsOrdered(), Start: node.Start, Children: children}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.ListItem:
		children, err := b.containerBlocks(node)
		if err != nil {
			return nil, err
		}
		out := &Node{Kind: KindListItem, Children: children}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.Blockquote:
		children, err := b.containerBlocks(node)
		if err != nil {
			return nil, err
		}
		out := &Node{Kind: KindBlockquote, Children: children}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.FencedCodeBlock:
		out := &Node{
			Kind:     KindCodeBlock,
			Language: string(node.Language(b.source)),
			Text:     b.blockText(node),
		}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.CodeBlock:
		out := &Node{Kind: KindCodeBlock, Text: b.blockText(node)}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.ThematicBreak:
		// goldmark records no segments for breaks; the stringifier emits
		// them from scratch.
		return []*Node{{Kind: KindThematicBreak}}, nil
	case *extast.Table:
		return b.table(node)
	}
	if n.HasChildren() {
		return b.containerBlocks(n)
	}
	if start, stop, ok := b.lines.blockSpan(n); ok {
		return []*Node{{
			Kind:      KindHTML,
			Text:      string(b.source[start:stop]),
			SpanStart: start,
			SpanEnd:   stop,
		}}, nil
	}
	return nil, nil
}

// containerBlocks converts and assembles the children of a non-document
// container. Component tags must pair up inside the container.
func (b *treeBuilder) containerBlocks(parent ast.Node) ([]*Node, error) {
	var flat []*Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := b.block(child)
		if err != nil {
			return nil, err
		}
		flat = append(flat, nodes...)
	}
	return assembleTags(flat, KindBlockTag, b.source)
}

// paragraph converts a paragraph. Tags that pair up inside the paragraph
// stay inline; unmatched open and close markers float out as block-level
// siblings so tags written without surrounding blank lines still pair with
// their partner in another block. A paragraph that is nothing but one tag is
// block usage.
func (b *treeBuilder) paragraph(n ast.Node) ([]*Node, error) {
	raw, err := b.inlines(n)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	assembled := assembleTolerant(raw, KindInlineTag)

	var out []*Node
	var run []*Node
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		if only, ok := loneTag(run); ok && only.Kind == KindInlineTag {
			promoted := *only
			promoted.Kind = KindBlockTag
			out = append(out, &promoted)
			run = nil
			return
		}
		if blankRun(run) {
			run = nil
			return
		}
		para := &Node{Kind: KindParagraph, Children: run}
		b.setSpanExtent(para)
		out = append(out, para)
		run = nil
	}

	for _, node := range assembled {
		switch {
		case node.Kind == kindCloseTag:
			flushRun()
			out = append(out, node)
		case node.Kind == KindInlineTag && !node.closed:
			flushRun()
			promoted := *node
			promoted.Kind = KindBlockTag
			out = append(out, &promoted)
		default:
			run = append(run, node)
		}
	}
	flushRun()

	// The whole paragraph survived as one fragment; widen its span to full
	// source lines like any other block.
	if len(out) == 1 && out[0].Kind == KindParagraph {
		b.setSpan(out[0], n)
	}
	return out, nil
}

// blankRun reports whether nodes carry only whitespace text.
func blankRun(nodes []*Node) bool {
	for _, n := range nodes {
		if n.Kind != KindText || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

// loneTag reports whether nodes holds exactly one tag or close marker plus
// optional blank text.
func loneTag(nodes []*Node) (*Node, bool) {
	var tag *Node
	for _, n := range nodes {
		switch n.Kind {
		case KindInlineTag, kindCloseTag:
			if tag != nil {
				return nil, false
			}
			tag = n
		case KindText:
			if strings.TrimSpace(n.Text) != "" {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return tag, tag != nil
}

func (b *treeBuilder) htmlBlock(n *ast.HTMLBlock) ([]*Node, error) {
	segments := segmentsOf(n.Lines())
	if n.HasClosure() {
		segments = append(segments, n.ClosureLine)
	}
	ch := buildChunk(b.source, segments)
	return b.scanChunk(ch, true)
}

// scanChunk splits a raw HTML chunk into component tags, close markers, and
// residue. In block context residue becomes paragraphs and expression nodes;
// inline residue stays as literal text.
func (b *treeBuilder) scanChunk(ch chunk, blockContext bool) ([]*Node, error) {
	tags, err := scanTags(ch.text)
	if err != nil {
		var se *scanError
		offset := 0
		if errors.As(err, &se) {
			offset = se.offset
		}
		return nil, newTagError(fmt.Errorf("%w: %v", ErrMalformedTag, err), "", b.source, ch.srcOffset(offset))
	}

	if len(tags) == 0 {
		trimmed := strings.TrimRight(ch.text, "\n")
		if strings.TrimSpace(trimmed) == "" {
			return nil, nil
		}
		node := &Node{
			Kind:      KindHTML,
			Text:      trimmed,
			SpanStart: ch.srcOffset(0),
			SpanEnd:   ch.srcOffset(len(trimmed)),
		}
		return []*Node{node}, nil
	}

	tagKind := KindInlineTag
	if blockContext {
		tagKind = KindBlockTag
	}

	var out []*Node
	last := 0
	for _, tag := range tags {
		if tag.start > last {
			residue, err := b.chunkResidue(ch, last, tag.start, blockContext)
			if err != nil {
				return nil, err
			}
			out = append(out, residue...)
		}
		node := &Node{
			Name:      tag.name,
			SpanStart: ch.srcOffset(tag.start),
			SpanEnd:   ch.srcOffset(tag.end),
		}
		if tag.closing {
			node.Kind = kindCloseTag
		} else {
			node.Kind = tagKind
			node.Attributes = tag.attributes
			node.SelfClosing = tag.selfClosing
			node.closed = tag.selfClosing
		}
		out = append(out, node)
		last = tag.end
	}
	if last < len(ch.text) {
		residue, err := b.chunkResidue(ch, last, len(ch.text), blockContext)
		if err != nil {
			return nil, err
		}
		out = append(out, residue...)
	}
	return out, nil
}

// chunkResidue converts the text between component tags. Content on the same
// raw block as a tag is treated as plain text, mirroring how MDX treats
// unseparated element children.
func (b *treeBuilder) chunkResidue(ch chunk, start, end int, blockContext bool) ([]*Node, error) {
	segment := ch.text[start:end]
	pieces := splitExpressions(segment, 0)
	var out []*Node
	for _, piece := range pieces {
		pieceStart := ch.srcOffset(start + piece.SpanStart)
		pieceEnd := ch.srcOffset(start + piece.SpanEnd)
		switch piece.Kind {
		case KindExpression:
			out = append(out, &Node{
				Kind:      KindExpression,
				Text:      piece.Text,
				SpanStart: pieceStart,
				SpanEnd:   pieceEnd,
			})
		default:
			if !blockContext {
				out = append(out, &Node{
					Kind:      KindText,
					Text:      piece.Text,
					SpanStart: pieceStart,
					SpanEnd:   pieceEnd,
				})
				continue
			}
			trimmed := strings.TrimSpace(piece.Text)
			if trimmed == "" {
				continue
			}
			out = append(out, &Node{
				Kind: KindParagraph,
				Children: []*Node{{
					Kind:      KindText,
					Text:      trimmed,
					SpanStart: pieceStart,
					SpanEnd:   pieceEnd,
				}},
				SpanStart: pieceStart,
				SpanEnd:   pieceEnd,
			})
		}
	}
	return out, nil
}

func (b *treeBuilder) table(node *extast.Table) ([]*Node, error) {
	out := &Node{Kind: KindTable}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*extast.TableHeader)
		rowNode := &Node{Kind: KindTableRow, Header: header}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			children, err := b.assembledInlines(cell)
			if err != nil {
				return nil, err
			}
			cellNode := &Node{Kind: KindTableCell, Header: header, Children: children}
			b.setSpan(cellNode, cell)
			rowNode.Children = append(rowNode.Children, cellNode)
		}
		b.setSpanExtent(rowNode)
		out.Children = append(out.Children, rowNode)
	}
	b.setSpan(out, node)
	return []*Node{out}, nil
}

// assembledInlines converts inline children and pairs any component tags
// found among them.
func (b *treeBuilder) assembledInlines(parent ast.Node) ([]*Node, error) {
	raw, err := b.inlines(parent)
	if err != nil {
		return nil, err
	}
	return assembleTags(raw, KindInlineTag, b.source)
}

func (b *treeBuilder) inlines(parent ast.Node) ([]*Node, error) {
	var out []*Node
	for child := parent.FirstChild(); child != nil; {
		if t, ok := child.(*ast.Text); ok {
			value, seg, last := b.coalesceText(t)
			pieces := b.textPieces(value, seg.Start)
			if len(pieces) > 0 {
				tail := pieces[len(pieces)-1]
				tail.SoftBreak = last.SoftLineBreak() && !last.HardLineBreak()
				tail.HardBreak = last.HardLineBreak()
			}
			out = append(out, pieces...)
			child = last.NextSibling()
			continue
		}
		nodes, err := b.inline(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
		child = child.NextSibling()
	}
	return out, nil
}

// coalesceText joins a run of adjacent text siblings whose segments touch.
// goldmark leaves reverted delimiters such as "[" as their own text nodes,
// which would hide component tags with brace expressions from the scanner.
func (b *treeBuilder) coalesceText(t *ast.Text) (string, text.Segment, *ast.Text) {
	seg := t.Segment
	last := t
	for !last.SoftLineBreak() && !last.HardLineBreak() {
		next, ok := last.NextSibling().(*ast.Text)
		if !ok || next.Segment.Start != seg.Stop {
			break
		}
		seg = seg.WithStop(next.Segment.Stop)
		last = next
	}
	return string(seg.Value(b.source)), seg, last
}

func (b *treeBuilder) inline(n ast.Node) ([]*Node, error) {
	switch node := n.(type) {
	case *ast.Text:
		seg := node.Segment
		value := string(seg.Value(b.source))
		pieces := b.textPieces(value, seg.Start)
		if len(pieces) > 0 {
			last := pieces[len(pieces)-1]
			last.SoftBreak = node.SoftLineBreak() && !node.HardLineBreak()
			last.HardBreak = node.HardLineBreak()
		}
		return pieces, nil
	case *ast.String:
		if len(node.Value) == 0 {
			return nil, nil
		}
		return []*Node{{Kind: KindText, Text: string(node.Value)}}, nil
	case *ast.Emphasis:
		kind := KindEmphasis
		if node.Level >= 2 {
			kind = KindStrong
		}
		return b.inlineContainer(node, kind)
	case *extast.Strikethrough:
		return b.inlineContainer(node, KindStrikethrough)
	case *ast.CodeSpan:
		out := &Node{Kind: KindInlineCode, Text: b.codeSpanText(node)}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.Link:
		children, err := b.assembledInlines(node)
		if err != nil {
			return nil, err
		}
		out := &Node{
			Kind:        KindLink,
			Destination: string(node.Destination),
			Title:       string(node.Title),
			Children:    children,
		}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.AutoLink:
		url := string(node.URL(b.source))
		label := string(node.Label(b.source))
		out := &Node{
			Kind:        KindLink,
			Destination: url,
			Children:    []*Node{{Kind: KindText, Text: label}},
		}
		return []*Node{out}, nil
	case *ast.Image:
		children, err := b.assembledInlines(node)
		if err != nil {
			return nil, err
		}
		out := &Node{
			Kind:        KindImage,
			Destination: string(node.Destination),
			Title:       string(node.Title),
			Children:    children,
		}
		b.setSpan(out, node)
		return []*Node{out}, nil
	case *ast.RawHTML:
		segments := make([]text.Segment, 0, node.Segments.Len())
		for i := 0; i < node.Segments.Len(); i++ {
			segments = append(segments, node.Segments.At(i))
		}
		return b.scanChunk(buildChunk(b.source, segments), false)
	}
	if n.HasChildren() {
		return b.inlines(n)
	}
	return nil, nil
}

// textPieces splits a text run into literal, expression, and component tag
// nodes. Tags with brace expressions containing quotes never survive
// goldmark's raw HTML grammar, so they arrive here as plain text and are
// recovered by the same scanner used for raw HTML chunks.
func (b *treeBuilder) textPieces(value string, spanStart int) []*Node {
	if strings.Contains(value, "<") {
		if tags, err := scanTags(value); err == nil && len(tags) > 0 {
			ch := chunk{
				text:   value,
				pieces: []chunkPiece{{textStart: 0, srcStart: spanStart, length: len(value)}},
			}
			// scanTags already succeeded, so scanChunk cannot fail here.
			if nodes, err := b.scanChunk(ch, false); err == nil {
				return nodes
			}
		}
	}
	return splitExpressions(value, spanStart)
}

func (b *treeBuilder) inlineContainer(n ast.Node, kind Kind) ([]*Node, error) {
	children, err := b.assembledInlines(n)
	if err != nil {
		return nil, err
	}
	out := &Node{Kind: kind, Children: children}
	b.setSpan(out, n)
	return []*Node{out}, nil
}

func (b *treeBuilder) setSpan(out *Node, n ast.Node) {
	if start, stop, ok := b.lines.blockSpan(n); ok {
		out.SpanStart = start
		out.SpanEnd = stop
	}
}

// setSpanExtent derives a span from already-converted children.
func (b *treeBuilder) setSpanExtent(out *Node) {
	start, stop := -1, -1
	for _, child := range out.Children {
		if !child.HasSpan() {
			continue
		}
		if start == -1 || child.SpanStart < start {
			start = child.SpanStart
		}
		if child.SpanEnd > stop {
			stop = child.SpanEnd
		}
	}
	if start >= 0 {
		out.SpanStart = start
		out.SpanEnd = stop
	}
}

func (b *treeBuilder) blockText(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *treeBuilder) codeSpanText(n *ast.CodeSpan) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(b.source))
		}
	}
	return sb.String()
}

// assembleTags pairs open component tags with their closing markers,
// nesting intervening nodes as children. tagKind selects which tag kind is
// being paired at this level.
func assembleTags(nodes []*Node, tagKind Kind, source []byte) ([]*Node, error) {
	type frame struct {
		tag      *Node
		children []*Node
	}
	var out []*Node
	var stack []frame

	add := func(n *Node) {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.children = append(top.children, n)
			return
		}
		out = append(out, n)
	}

	for _, n := range nodes {
		switch {
		case n.Kind == tagKind && !n.closed:
			stack = append(stack, frame{tag: n})
		case n.Kind == kindCloseTag:
			if len(stack) == 0 {
				return nil, newTagError(ErrUnmatchedClosingTag, n.Name, source, n.SpanStart)
			}
			top := stack[len(stack)-1]
			if top.tag.Name != n.Name {
				return nil, newTagError(ErrUnclosedTag, top.tag.Name, source, top.tag.SpanStart)
			}
			stack = stack[:len(stack)-1]
			paired := top.tag.WithChildren(top.children)
			paired.closed = true
			if n.SpanEnd > paired.SpanEnd {
				paired.SpanEnd = n.SpanEnd
			}
			add(paired)
		default:
			add(n)
		}
	}
	if len(stack) > 0 {
		innermost := stack[len(stack)-1].tag
		return nil, newTagError(ErrUnclosedTag, innermost.Name, source, innermost.SpanStart)
	}
	return out, nil
}

// assembleTolerant pairs tags like assembleTags but keeps unmatched markers
// in place instead of failing: a close with no open stays a close marker, and
// unclosed opens are restored in source order with their collected trailing
// nodes. Paragraph conversion uses this so markers can pair with tags in
// other blocks at the container level.
func assembleTolerant(nodes []*Node, tagKind Kind) []*Node {
	type frame struct {
		tag      *Node
		children []*Node
	}
	var out []*Node
	var stack []frame

	add := func(n *Node) {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.children = append(top.children, n)
			return
		}
		out = append(out, n)
	}

	for _, n := range nodes {
		switch {
		case n.Kind == tagKind && !n.closed:
			stack = append(stack, frame{tag: n})
		case n.Kind == kindCloseTag:
			if len(stack) > 0 && stack[len(stack)-1].tag.Name == n.Name {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				paired := top.tag.WithChildren(top.children)
				paired.closed = true
				if n.SpanEnd > paired.SpanEnd {
					paired.SpanEnd = n.SpanEnd
				}
				add(paired)
				continue
			}
			add(n)
		default:
			add(n)
		}
	}
	for _, f := range stack {
		out = append(out, f.tag)
		out = append(out, f.children...)
	}
	return out
}

// Blockify wraps runs of inline-level nodes in paragraphs so hoisted wrapper
// children always present block-level structure.
func Blockify(nodes []*Node) []*Node {
	var out []*Node
	var run []*Node
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		para := &Node{Kind: KindParagraph, Children: run}
		for _, n := range run {
			if !n.HasSpan() {
				continue
			}
			if !para.HasSpan() {
				para.SpanStart = n.SpanStart
				para.SpanEnd = n.SpanEnd
				continue
			}
			if n.SpanStart < para.SpanStart {
				para.SpanStart = n.SpanStart
			}
			if n.SpanEnd > para.SpanEnd {
				para.SpanEnd = n.SpanEnd
			}
		}
		out = append(out, para)
		run = nil
	}
	for _, n := range nodes {
		if n.Kind.IsInline() {
			run = append(run, n)
			continue
		}
		flushRun()
		out = append(out, n)
	}
	flushRun()
	return out
}

// IsInline reports whether the kind only appears inside flowing content.
func (k Kind) IsInline() bool {
	switch k {
	case KindText, KindEmphasis, KindStrong, KindStrikethrough, KindInlineCode,
		KindLink, KindImage, KindInlineTag, KindExpression:
		return true
	}
	return false
}
