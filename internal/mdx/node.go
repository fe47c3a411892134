package mdx

// Kind identifies a syntax tree node produced by the Parser.
type Kind string

const (
	KindDocument      Kind = "document"
	KindParagraph     Kind = "paragraph"
	KindHeading       Kind = "heading"
	KindList          Kind = "list"
	KindListItem      Kind = "listItem"
	KindBlockquote    Kind = "blockquote"
	KindCodeBlock     Kind = "codeBlock"
	KindThematicBreak Kind = "thematicBreak"
	KindTable         Kind = "table"
	KindTableRow      Kind = "tableRow"
	KindTableCell     Kind = "tableCell"
	KindText          Kind = "text"
	KindEmphasis      Kind = "emphasis"
	KindStrong        Kind = "strong"
	KindStrikethrough Kind = "strikethrough"
	KindInlineCode    Kind = "inlineCode"
	KindLink          Kind = "link"
	KindImage         Kind = "image"
	KindHTML          Kind = "html"

	// KindBlockTag is a component tag that stands alone at block level.
	KindBlockTag Kind = "blockTag"
	// KindInlineTag is a component tag embedded in flowing content.
	KindInlineTag Kind = "inlineTag"
	// KindExpression is a brace-delimited expression run.
	KindExpression Kind = "expression"

	// KindSectionEnd marks where a section wrapper's children stop after the
	// wrapper has been flattened. The parser never emits it; splicing does.
	KindSectionEnd Kind = "sectionEnd"

	// kindCloseTag marks a closing component tag during assembly. Close
	// markers never survive parsing; unmatched ones are document errors.
	kindCloseTag Kind = "closeTag"
)

// AttrType classifies how a component tag attribute was written.
type AttrType string

const (
	// AttrFlag is a valueless attribute, e.g. <Table compact>.
	AttrFlag AttrType = "flag"
	// AttrString is a quoted string value.
	AttrString AttrType = "string"
	// AttrExpression is a brace-delimited value, e.g. limit={10}.
	AttrExpression AttrType = "expression"
)

// Attribute is one raw attribute of a component tag. Value holds the text
// between the delimiters with no interpretation applied.
type Attribute struct {
	Name  string
	Value string
	Type  AttrType
}

// Node is a single element of the parsed document tree. Which fields are
// meaningful depends on Kind.
type Node struct {
	Kind     Kind
	Children []*Node

	// Text carries the payload for text, code, html and expression nodes.
	Text string
	// SoftBreak and HardBreak mark a line break following a text node.
	SoftBreak bool
	HardBreak bool

	// Name and Attributes describe component tags.
	Name        string
	Attributes  []Attribute
	SelfClosing bool

	// Destination and Title describe links and images.
	Destination string
	Title       string

	Level    int    // heading level
	Ordered  bool   // list flavour
	Start    int    // ordered list start index
	Language string // code fence info string

	// Header marks table header rows and cells.
	Header bool

	// SpanStart and SpanEnd locate the node in the source document as byte
	// offsets. A zero-width span means the node was synthesized.
	SpanStart int
	SpanEnd   int

	// closed tracks whether a component tag has been paired with its
	// closing tag (or was self-closing). Only meaningful during assembly.
	closed bool
}

// WithChildren returns a copy of the node carrying the given children.
func (n *Node) WithChildren(children []*Node) *Node {
	out := *n
	out.Children = children
	return &out
}

// HasSpan reports whether the node maps back to a source range.
func (n *Node) HasSpan() bool {
	return n.SpanEnd > n.SpanStart
}

// Attr returns the attribute named name.
func (n *Node) Attr(name string) (Attribute, bool) {
	for _, attr := range n.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// IsTag reports whether the node is a component tag reference.
func (n *Node) IsTag() bool {
	return n.Kind == KindBlockTag || n.Kind == KindInlineTag
}
