package mdx

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Node {
	t.Helper()
	doc, err := NewParser().Parse([]byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func kinds(nodes []*Node) []Kind {
	out := make([]Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind
	}
	return out
}

func TestParsePlainMarkdownShapes(t *testing.T) {
	source := strings.Join([]string{
		"# Title",
		"",
		"Intro paragraph.",
		"",
		"- one",
		"- two",
		"",
		"> quoted",
		"",
		"```go",
		"code()",
		"```",
		"",
		"---",
		"",
		"| a | b |",
		"| --- | --- |",
		"| 1 | 2 |",
	}, "\n")
	doc := mustParse(t, source)

	want := []Kind{KindHeading, KindParagraph, KindList, KindBlockquote, KindCodeBlock, KindThematicBreak, KindTable}
	got := kinds(doc.Children)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("child %d kind = %q, want %q", i, got[i], want[i])
		}
	}

	heading := doc.Children[0]
	if heading.Level != 1 {
		t.Fatalf("heading level = %d", heading.Level)
	}
	list := doc.Children[2]
	if list.Ordered || len(list.Children) != 2 {
		t.Fatalf("list = %#v", list)
	}
	code := doc.Children[4]
	if code.Language != "go" || code.Text != "code()" {
		t.Fatalf("code block = %q/%q", code.Language, code.Text)
	}
	table := doc.Children[6]
	if len(table.Children) != 2 || !table.Children[0].Header || table.Children[1].Header {
		t.Fatalf("table rows = %#v", table.Children)
	}
	if len(table.Children[0].Children) != 2 {
		t.Fatalf("header cells = %#v", table.Children[0].Children)
	}
}

func TestParseSpansSliceOriginalText(t *testing.T) {
	source := "# Title\n\nIntro paragraph.\n\n- one\n- two\n\n> quoted\n\n```go\ncode()\n```"
	doc := mustParse(t, source)

	cases := []struct {
		idx  int
		want string
	}{
		{0, "# Title"},
		{1, "Intro paragraph."},
		{2, "- one\n- two"},
		{3, "> quoted"},
		{4, "```go\ncode()\n```"},
	}
	for _, tc := range cases {
		n := doc.Children[tc.idx]
		if !n.HasSpan() {
			t.Fatalf("child %d (%s) has no span", tc.idx, n.Kind)
		}
		if got := source[n.SpanStart:n.SpanEnd]; got != tc.want {
			t.Fatalf("child %d span = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestParseSpansWithInlineMarks(t *testing.T) {
	// Inline children (emphasis, links, code spans) carry no line segments
	// of their own; the extent walk has to skip them instead of asking.
	source := "Start *emphasis* and `code` then [a link](http://x) end.\n\nNext paragraph."
	doc := mustParse(t, source)

	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 children, got %v", kinds(doc.Children))
	}
	first := doc.Children[0]
	if !first.HasSpan() {
		t.Fatal("paragraph has no span")
	}
	want := "Start *emphasis* and `code` then [a link](http://x) end."
	if got := source[first.SpanStart:first.SpanEnd]; got != want {
		t.Fatalf("paragraph span = %q, want %q", got, want)
	}
}

func TestParseCodeBlockTextOmitsFences(t *testing.T) {
	doc := mustParse(t, "```go\nfirst()\nsecond()\n```")

	if len(doc.Children) != 1 || doc.Children[0].Kind != KindCodeBlock {
		t.Fatalf("expected one code block, got %v", kinds(doc.Children))
	}
	block := doc.Children[0]
	if block.Text != "first()\nsecond()" {
		t.Fatalf("code text = %q", block.Text)
	}
	if block.Language != "go" {
		t.Fatalf("language = %q", block.Language)
	}
}

func TestParseSelfClosingBlockTag(t *testing.T) {
	source := "Intro.\n\n<RatesTable provider=\"txu\" limit={10} compact />\n\nBye."
	doc := mustParse(t, source)

	if got := kinds(doc.Children); len(got) != 3 || got[1] != KindBlockTag {
		t.Fatalf("kinds = %v", got)
	}
	tag := doc.Children[1]
	if tag.Name != "RatesTable" || !tag.SelfClosing {
		t.Fatalf("tag = %#v", tag)
	}
	wantAttrs := []Attribute{
		{Name: "provider", Value: "txu", Type: AttrString},
		{Name: "limit", Value: "10", Type: AttrExpression},
		{Name: "compact", Type: AttrFlag},
	}
	if len(tag.Attributes) != len(wantAttrs) {
		t.Fatalf("attributes = %#v", tag.Attributes)
	}
	for i, want := range wantAttrs {
		if tag.Attributes[i] != want {
			t.Fatalf("attribute %d = %#v, want %#v", i, tag.Attributes[i], want)
		}
	}
	if got := source[tag.SpanStart:tag.SpanEnd]; got != "<RatesTable provider=\"txu\" limit={10} compact />" {
		t.Fatalf("tag span = %q", got)
	}
}

func TestParseWrapperPairsAcrossBlocks(t *testing.T) {
	source := "<VrpSection id=\"faq\" title=\"FAQ\">\n\nBody text.\n\n<RatesTable />\n\n</VrpSection>"
	doc := mustParse(t, source)

	if len(doc.Children) != 1 {
		t.Fatalf("expected one top-level node, got %v", kinds(doc.Children))
	}
	wrapper := doc.Children[0]
	if wrapper.Kind != KindBlockTag || wrapper.Name != "VrpSection" {
		t.Fatalf("wrapper = %#v", wrapper)
	}
	if got := kinds(wrapper.Children); len(got) != 2 || got[0] != KindParagraph || got[1] != KindBlockTag {
		t.Fatalf("wrapper children = %v", got)
	}
	if wrapper.SpanEnd != len(source) {
		t.Fatalf("wrapper span end = %d, want %d", wrapper.SpanEnd, len(source))
	}
}

func TestParseNestedWrappers(t *testing.T) {
	source := "<Outer id=\"o\">\n\n<Inner id=\"i\">\n\nDeep.\n\n</Inner>\n\n</Outer>"
	doc := mustParse(t, source)

	outer := doc.Children[0]
	if outer.Name != "Outer" || len(outer.Children) != 1 {
		t.Fatalf("outer = %#v", outer)
	}
	inner := outer.Children[0]
	if inner.Name != "Inner" || len(inner.Children) != 1 || inner.Children[0].Kind != KindParagraph {
		t.Fatalf("inner = %#v", inner)
	}
}

func TestParseInlineTagInParagraph(t *testing.T) {
	doc := mustParse(t, "Call <Phone /> now.")

	para := doc.Children[0]
	if para.Kind != KindParagraph || len(para.Children) != 3 {
		t.Fatalf("paragraph = %#v", para)
	}
	if para.Children[0].Text != "Call " {
		t.Fatalf("text before tag = %q", para.Children[0].Text)
	}
	tag := para.Children[1]
	if tag.Kind != KindInlineTag || tag.Name != "Phone" || !tag.SelfClosing {
		t.Fatalf("tag = %#v", tag)
	}
	if para.Children[2].Text != " now." {
		t.Fatalf("text after tag = %q", para.Children[2].Text)
	}
}

func TestParseStandaloneTagIsBlock(t *testing.T) {
	doc := mustParse(t, "Before.\n\n<Phone />\n\nAfter.")

	if got := kinds(doc.Children); len(got) != 3 || got[1] != KindBlockTag {
		t.Fatalf("kinds = %v", got)
	}
	if doc.Children[1].Name != "Phone" {
		t.Fatalf("tag = %#v", doc.Children[1])
	}
}

func TestParseStandaloneTagWithQuotedBraces(t *testing.T) {
	// Quotes inside a brace expression keep goldmark from treating the line
	// as raw HTML; the tag is recovered from plain text and still promoted.
	doc := mustParse(t, "Before.\n\n<PlanLink tags={['a','b']} />\n\nAfter.")

	if got := kinds(doc.Children); len(got) != 3 || got[1] != KindBlockTag {
		t.Fatalf("kinds = %v", got)
	}
	tag := doc.Children[1]
	if tag.Name != "PlanLink" {
		t.Fatalf("tag = %#v", tag)
	}
	attr, ok := tag.Attr("tags")
	if !ok || attr.Type != AttrExpression || attr.Value != "['a','b']" {
		t.Fatalf("tags attribute = %#v", attr)
	}
}

func TestParsePairedTagAloneIsBlock(t *testing.T) {
	doc := mustParse(t, "<Callout>note this</Callout>")

	if len(doc.Children) != 1 || doc.Children[0].Kind != KindBlockTag {
		t.Fatalf("children = %v", kinds(doc.Children))
	}
	tag := doc.Children[0]
	if tag.Name != "Callout" || len(tag.Children) != 1 || tag.Children[0].Text != "note this" {
		t.Fatalf("tag = %#v", tag)
	}
}

func TestParseTightClosePairsWithEarlierOpen(t *testing.T) {
	source := "<VrpSection id=\"x\">\n\nBody text.\n</VrpSection>\n\nTail."
	doc := mustParse(t, source)

	if got := kinds(doc.Children); len(got) != 2 || got[0] != KindBlockTag || got[1] != KindParagraph {
		t.Fatalf("kinds = %v", got)
	}
	wrapper := doc.Children[0]
	if wrapper.Name != "VrpSection" || len(wrapper.Children) != 1 {
		t.Fatalf("wrapper = %#v", wrapper)
	}
	if wrapper.Children[0].Kind != KindParagraph {
		t.Fatalf("wrapper child = %#v", wrapper.Children[0])
	}
}

func TestParseExpressionsInText(t *testing.T) {
	doc := mustParse(t, "Price is {price} today.")

	para := doc.Children[0]
	if got := kinds(para.Children); len(got) != 3 || got[1] != KindExpression {
		t.Fatalf("children = %v", got)
	}
	if para.Children[0].Text != "Price is " || para.Children[1].Text != "price" || para.Children[2].Text != " today." {
		t.Fatalf("pieces = %#v", para.Children)
	}
}

func TestParseUnclosedBraceIsLiteral(t *testing.T) {
	doc := mustParse(t, "Set {incomplete and move on.")

	para := doc.Children[0]
	if len(para.Children) != 1 || para.Children[0].Kind != KindText {
		t.Fatalf("children = %#v", para.Children)
	}
	if para.Children[0].Text != "Set {incomplete and move on." {
		t.Fatalf("text = %q", para.Children[0].Text)
	}
}

func TestParseLowercaseHTMLStaysHTML(t *testing.T) {
	doc := mustParse(t, "<div>\nplain\n</div>")

	if len(doc.Children) != 1 || doc.Children[0].Kind != KindHTML {
		t.Fatalf("children = %v", kinds(doc.Children))
	}
	if got := doc.Children[0].Text; got != "<div>\nplain\n</div>" {
		t.Fatalf("html text = %q", got)
	}
}

func TestParseInlineHTMLStaysHTML(t *testing.T) {
	doc := mustParse(t, "line a<br/>line b")

	para := doc.Children[0]
	if got := kinds(para.Children); len(got) != 3 || got[1] != KindHTML {
		t.Fatalf("children = %v", got)
	}
	if para.Children[1].Text != "<br/>" {
		t.Fatalf("html = %q", para.Children[1].Text)
	}
}

func TestParseUnclosedTagFails(t *testing.T) {
	_, err := NewParser().Parse([]byte("<VrpSection id=\"x\">\n\nText."))
	if !errors.Is(err, ErrUnclosedTag) {
		t.Fatalf("expected ErrUnclosedTag, got %v", err)
	}
	var tagErr *TagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("expected TagError, got %T", err)
	}
	if tagErr.Name != "VrpSection" || tagErr.Line != 1 || tagErr.Col != 1 {
		t.Fatalf("tag error = %#v", tagErr)
	}
}

func TestParseUnmatchedCloseFails(t *testing.T) {
	_, err := NewParser().Parse([]byte("Text.\n\n</VrpSection>"))
	if !errors.Is(err, ErrUnmatchedClosingTag) {
		t.Fatalf("expected ErrUnmatchedClosingTag, got %v", err)
	}
	var tagErr *TagError
	if !errors.As(err, &tagErr) || tagErr.Name != "VrpSection" || tagErr.Line != 3 {
		t.Fatalf("tag error = %#v", tagErr)
	}
}

func TestParseMismatchedNestingFails(t *testing.T) {
	_, err := NewParser().Parse([]byte("<Outer>\n\n<Inner>\n\n</Outer>\n\n</Inner>"))
	if !errors.Is(err, ErrUnclosedTag) {
		t.Fatalf("expected ErrUnclosedTag, got %v", err)
	}
	var tagErr *TagError
	if !errors.As(err, &tagErr) || tagErr.Name != "Inner" {
		t.Fatalf("tag error = %#v", tagErr)
	}
}

func TestParseMalformedAttributesFail(t *testing.T) {
	// The first line opens an HTML block, so the malformed second tag flows
	// through the component scanner instead of staying literal text.
	_, err := NewParser().Parse([]byte("<VrpSection id=\"a\">\n<RatesTable provider= >\n\nText.\n\n</VrpSection>"))
	if !errors.Is(err, ErrMalformedTag) {
		t.Fatalf("expected ErrMalformedTag, got %v", err)
	}
}

func TestParseTableCellTags(t *testing.T) {
	doc := mustParse(t, "| plan | cta |\n| --- | --- |\n| saver | <Phone /> |")

	body := doc.Children[0].Children[1]
	cell := body.Children[1]
	var tag *Node
	for _, child := range cell.Children {
		if child.Kind == KindInlineTag {
			tag = child
		}
	}
	if tag == nil || tag.Name != "Phone" {
		t.Fatalf("cell children = %#v", cell.Children)
	}
}

func TestBlockifyWrapsInlineRuns(t *testing.T) {
	nodes := []*Node{
		{Kind: KindText, Text: "lead "},
		{Kind: KindInlineTag, Name: "Phone"},
		{Kind: KindParagraph, Children: []*Node{{Kind: KindText, Text: "para"}}},
		{Kind: KindText, Text: "tail"},
	}

	out := Blockify(nodes)

	if got := kinds(out); len(got) != 3 || got[0] != KindParagraph || got[1] != KindParagraph || got[2] != KindParagraph {
		t.Fatalf("kinds = %v", got)
	}
	if len(out[0].Children) != 2 {
		t.Fatalf("first run = %#v", out[0].Children)
	}
	if out[2].Children[0].Text != "tail" {
		t.Fatalf("tail run = %#v", out[2].Children)
	}
}

func TestBlockifyEmpty(t *testing.T) {
	if out := Blockify(nil); len(out) != 0 {
		t.Fatalf("expected no nodes, got %#v", out)
	}
}

func TestPosition(t *testing.T) {
	source := []byte("first\nsecond line\nthird")
	cases := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{6, 2, 1},
		{13, 2, 8},
		{18, 3, 1},
	}
	for _, tc := range cases {
		line, col := Position(source, tc.offset)
		if line != tc.line || col != tc.col {
			t.Fatalf("Position(%d) = %d:%d, want %d:%d", tc.offset, line, col, tc.line, tc.col)
		}
	}
}
