package richtext

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ConvertOptions tune a single conversion run.
type ConvertOptions struct {
	// Extensions enables goldmark extensions by name. Empty keeps the
	// defaults (gfm).
	Extensions []string
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":            extension.GFM,
	"table":          extension.Table,
	"strikethrough":  extension.Strikethrough,
	"linkify":        extension.Linkify,
	"tasklist":       extension.TaskList,
	"definitionlist": extension.DefinitionList,
	"footnote":       extension.Footnote,
	"typographer":    extension.Typographer,
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	if len(names) == 0 {
		names = []string{"gfm"}
	}
	seen := map[string]bool{}
	var extenders []goldmark.Extender
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("richtext: unknown markdown extension %q", name)
		}
		seen[key] = true
		extenders = append(extenders, ext)
	}
	return extenders, nil
}

// MarkdownConverter turns markdown source into the destination rich text
// tree using goldmark's AST.
type MarkdownConverter struct{}

// NewMarkdownConverter returns a converter with the default extension set.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert parses markdown and walks the AST into rich text nodes.
func (c *MarkdownConverter) Convert(ctx context.Context, markdown []byte, opts ConvertOptions) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	extenders, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}
	engine := goldmark.New(goldmark.WithExtensions(extenders...))
	doc := engine.Parser().Parse(text.NewReader(markdown))
	return convertBlocks(doc, markdown), nil
}

func convertBlocks(parent ast.Node, source []byte) []Node {
	var out []Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if node, ok := convertBlock(child, source); ok {
			out = append(out, node)
		}
	}
	return out
}

func convertBlock(n ast.Node, source []byte) (Node, bool) {
	switch node := n.(type) {
	case *ast.Paragraph:
		children := convertInlines(node, source, markState{})
		if len(children) == 0 {
			return Node{}, false
		}
		return Node{Type: TypeParagraph, Children: children}, true
	case *ast.TextBlock:
		children := convertInlines(node, source, markState{})
		if len(children) == 0 {
			return Node{}, false
		}
		return Node{Type: TypeParagraph, Children: children}, true
	case *ast.Heading:
		return Node{
			Type:     TypeHeading,
			Level:    node.Level,
			Children: convertInlines(node, source, markState{}),
		}, true
	case *ast.List:
		listType := TypeBulletList
		if node.IsOrdered() {
			listType = TypeOrderedList
		}
		return Node{Type: listType, Children: convertBlocks(node, source)}, true
	case *ast.ListItem:
		return Node{Type: TypeListItem, Children: convertBlocks(node, source)}, true
	case *ast.Blockquote:
		return Node{Type: TypeBlockquote, Children: convertBlocks(node, source)}, true
	case *ast.FencedCodeBlock:
		return Node{
			Type:     TypeCodeBlock,
			Language: string(node.Language(source)),
			Children: []Node{Text(blockLines(node, source))},
		}, true
	case *ast.CodeBlock:
		return Node{
			Type:     TypeCodeBlock,
			Children: []Node{Text(blockLines(node, source))},
		}, true
	case *ast.ThematicBreak:
		return Node{Type: TypeThematicBreak}, true
	case *ast.HTMLBlock:
		// Raw HTML has no rich text equivalent; surface it as plain text so
		// content is never silently dropped.
		raw := strings.TrimSpace(blockLines(node, source))
		if raw == "" {
			return Node{}, false
		}
		return Node{Type: TypeParagraph, Children: []Node{Text(raw)}}, true
	case *extast.Table:
		return convertTable(node, source), true
	}
	if n.HasChildren() {
		children := convertBlocks(n, source)
		if len(children) == 1 {
			return children[0], true
		}
		if len(children) > 0 {
			return Node{Type: TypeParagraph, Children: children}, true
		}
	}
	return Node{}, false
}

func convertTable(table *extast.Table, source []byte) Node {
	out := Node{Type: TypeTable}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		header := false
		if _, ok := row.(*extast.TableHeader); ok {
			header = true
		}
		rowNode := Node{Type: TypeTableRow, Header: header}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			rowNode.Children = append(rowNode.Children, Node{
				Type:     TypeTableCell,
				Header:   header,
				Children: convertInlines(cell, source, markState{}),
			})
		}
		out.Children = append(out.Children, rowNode)
	}
	return out
}

// markState accumulates formatting while descending inline containers.
type markState struct {
	bold          bool
	italic        bool
	code          bool
	strikethrough bool
}

func (m markState) apply(n Node) Node {
	n.Bold = m.bold
	n.Italic = m.italic
	n.Code = m.code
	n.Strikethrough = m.strikethrough
	return n
}

func convertInlines(parent ast.Node, source []byte, marks markState) []Node {
	var out []Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, convertInline(child, source, marks)...)
	}
	return mergeTextNodes(out)
}

func convertInline(n ast.Node, source []byte, marks markState) []Node {
	switch node := n.(type) {
	case *ast.Text:
		value := string(node.Segment.Value(source))
		var out []Node
		if value != "" {
			out = append(out, marks.apply(Text(value)))
		}
		if node.HardLineBreak() {
			out = append(out, marks.apply(Text("\n")))
		} else if node.SoftLineBreak() {
			out = append(out, marks.apply(Text(" ")))
		}
		return out
	case *ast.String:
		if len(node.Value) == 0 {
			return nil
		}
		return []Node{marks.apply(Text(string(node.Value)))}
	case *ast.Emphasis:
		next := marks
		if node.Level >= 2 {
			next.bold = true
		} else {
			next.italic = true
		}
		return convertInlines(node, source, next)
	case *extast.Strikethrough:
		next := marks
		next.strikethrough = true
		return convertInlines(node, source, next)
	case *ast.CodeSpan:
		next := marks
		next.code = true
		value := codeSpanText(node, source)
		if value == "" {
			return nil
		}
		return []Node{next.apply(Text(value))}
	case *ast.Link:
		return []Node{{
			Type:     TypeLink,
			URL:      string(node.Destination),
			Children: convertInlines(node, source, marks),
		}}
	case *ast.AutoLink:
		url := string(node.URL(source))
		label := string(node.Label(source))
		if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		return []Node{{
			Type:     TypeLink,
			URL:      url,
			Children: []Node{marks.apply(Text(label))},
		}}
	case *ast.Image:
		// Images become links so the reference survives in text form.
		alt := convertInlines(node, source, marks)
		if len(alt) == 0 {
			alt = []Node{marks.apply(Text(string(node.Destination)))}
		}
		return []Node{{
			Type:     TypeLink,
			URL:      string(node.Destination),
			Children: alt,
		}}
	case *ast.RawHTML:
		value := rawHTMLText(node, source)
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return []Node{marks.apply(Text(value))}
	}
	if n.HasChildren() {
		return convertInlines(n, source, marks)
	}
	return nil
}

// mergeTextNodes collapses adjacent leaves that carry identical marks.
// goldmark splits text at every inline boundary, including the "@" runs used
// by placeholder tokens, and downstream scanning expects whole tokens in a
// single leaf.
func mergeTextNodes(nodes []Node) []Node {
	if len(nodes) < 2 {
		return nodes
	}
	out := nodes[:0]
	for _, n := range nodes {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.IsText() && n.IsText() && last.Type == "" && n.Type == "" && sameMarks(*last, n) {
				merged := last.TextValue() + n.TextValue()
				last.Text = &merged
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

func rawHTMLText(n *ast.RawHTML, source []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}
