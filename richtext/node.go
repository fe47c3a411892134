package richtext

import "strings"

// Node types produced by the converters. The set mirrors what the
// destination block editor accepts.
const (
	TypeParagraph       = "paragraph"
	TypeHeading         = "heading"
	TypeBulletList      = "bulletList"
	TypeOrderedList     = "orderedList"
	TypeListItem        = "listItem"
	TypeBlockquote      = "blockquote"
	TypeCodeBlock       = "codeBlock"
	TypeThematicBreak   = "thematicBreak"
	TypeTable           = "table"
	TypeTableRow        = "tableRow"
	TypeTableCell       = "tableCell"
	TypeLink            = "link"
	TypeInlineComponent = "inlineComponent"
)

// Node is a single element of the destination rich text tree. Text leaves
// carry a non-nil Text plus formatting marks; containers carry Children.
// Inline component references carry Component and Props.
type Node struct {
	Type     string  `json:"type,omitempty"`
	Text     *string `json:"text,omitempty"`
	Children []Node  `json:"children,omitempty"`

	URL      string `json:"url,omitempty"`
	Level    int    `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
	Header   bool   `json:"header,omitempty"`

	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Code          bool `json:"code,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`

	Component string  `json:"component,omitempty"`
	Props     *Fields `json:"props,omitempty"`
}

// Text returns a plain text leaf.
func Text(text string) Node {
	return Node{Text: &text}
}

// Paragraph wraps children in a paragraph container.
func Paragraph(children ...Node) Node {
	return Node{Type: TypeParagraph, Children: children}
}

// Link wraps children in a link pointing at url.
func Link(url string, children ...Node) Node {
	return Node{Type: TypeLink, URL: url, Children: children}
}

// InlineComponent returns an inline component reference node.
func InlineComponent(name string, props *Fields) Node {
	return Node{Type: TypeInlineComponent, Component: name, Props: props}
}

// IsText reports whether the node is a text leaf.
func (n Node) IsText() bool {
	return n.Text != nil
}

// TextValue returns the leaf text, or "" for containers.
func (n Node) TextValue() string {
	if n.Text == nil {
		return ""
	}
	return *n.Text
}

// WithText returns a copy of the leaf carrying text but keeping every mark.
func (n Node) WithText(text string) Node {
	out := n
	out.Text = &text
	return out
}

// PlainText concatenates every text leaf under the node.
func (n Node) PlainText() string {
	var sb strings.Builder
	n.appendPlainText(&sb)
	return sb.String()
}

func (n Node) appendPlainText(sb *strings.Builder) {
	if n.Text != nil {
		sb.WriteString(*n.Text)
	}
	for _, child := range n.Children {
		child.appendPlainText(sb)
	}
}

// PlainText concatenates the text leaves of a node list.
func PlainText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		n.appendPlainText(&sb)
	}
	return sb.String()
}

// sameMarks reports whether two leaves carry identical formatting so they can
// be merged.
func sameMarks(a, b Node) bool {
	return a.Bold == b.Bold &&
		a.Italic == b.Italic &&
		a.Code == b.Code &&
		a.Strikethrough == b.Strikethrough
}
