package mdx

import (
	"fmt"
	"strings"
)

// Stringify renders nodes back to markdown. Rendering is used for buffer
// nodes whose text was rewritten during placeholder encoding; unmodified
// nodes are sliced from the original source instead, so this only needs to
// be faithful, not byte-identical.
func Stringify(nodes ...*Node) string {
	var parts []string
	for _, n := range nodes {
		if rendered := stringifyBlock(n); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}

func stringifyBlock(n *Node) string {
	switch n.Kind {
	case KindDocument:
		return Stringify(n.Children...)
	case KindParagraph:
		return stringifyInlines(n.Children)
	case KindHeading:
		level := n.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return strings.Repeat("#", level) + " " + stringifyInlines(n.Children)
	case KindList:
		return stringifyList(n)
	case KindBlockquote:
		var lines []string
		for _, line := range strings.Split(Stringify(n.Children...), "\n") {
			lines = append(lines, strings.TrimRight("> "+line, " "))
		}
		return strings.Join(lines, "\n")
	case KindCodeBlock:
		return "```" + n.Language + "\n" + n.Text + "\n```"
	case KindThematicBreak:
		return "---"
	case KindTable:
		return stringifyTable(n)
	case KindHTML:
		return n.Text
	case KindBlockTag, KindInlineTag:
		// Tags are consumed before rendering; reaching one here means it was
		// intentionally kept, so reproduce it.
		return stringifyTag(n)
	case KindExpression:
		return ""
	}
	if len(n.Children) > 0 {
		return stringifyInlines(n.Children)
	}
	if n.Kind == KindText {
		return n.Text
	}
	return ""
}

func stringifyList(n *Node) string {
	var items []string
	index := n.Start
	if index < 1 {
		index = 1
	}
	for _, item := range n.Children {
		marker := "- "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		body := Stringify(item.Children...)
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			if i == 0 {
				lines[i] = marker + line
				continue
			}
			if line == "" {
				continue
			}
			lines[i] = strings.Repeat(" ", len(marker)) + line
		}
		items = append(items, strings.Join(lines, "\n"))
	}
	return strings.Join(items, "\n")
}

func stringifyTable(n *Node) string {
	var lines []string
	for i, row := range n.Children {
		var cells []string
		for _, cell := range row.Children {
			cells = append(cells, strings.TrimSpace(stringifyInlines(cell.Children)))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 && row.Header {
			var seps []string
			for range row.Children {
				seps = append(seps, "---")
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n")
}

func stringifyInlines(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(stringifyInline(n))
	}
	return sb.String()
}

func stringifyInline(n *Node) string {
	var body string
	switch n.Kind {
	case KindText:
		body = n.Text
	case KindEmphasis:
		body = "*" + stringifyInlines(n.Children) + "*"
	case KindStrong:
		body = "**" + stringifyInlines(n.Children) + "**"
	case KindStrikethrough:
		body = "~~" + stringifyInlines(n.Children) + "~~"
	case KindInlineCode:
		body = "`" + n.Text + "`"
	case KindLink:
		body = "[" + stringifyInlines(n.Children) + "](" + linkTarget(n) + ")"
	case KindImage:
		body = "![" + stringifyInlines(n.Children) + "](" + linkTarget(n) + ")"
	case KindHTML:
		body = n.Text
	case KindInlineTag, KindBlockTag:
		body = stringifyTag(n)
	case KindExpression:
		body = ""
	default:
		body = stringifyInlines(n.Children)
	}
	switch {
	case n.HardBreak:
		return body + "\\\n"
	case n.SoftBreak:
		return body + "\n"
	}
	return body
}

func linkTarget(n *Node) string {
	if n.Title != "" {
		return n.Destination + " " + strconvQuote(n.Title)
	}
	return n.Destination
}

func strconvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func stringifyTag(n *Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Name)
	for _, attr := range n.Attributes {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		switch attr.Type {
		case AttrFlag:
		case AttrExpression:
			sb.WriteString("={")
			sb.WriteString(attr.Value)
			sb.WriteByte('}')
		default:
			sb.WriteString(`="`)
			sb.WriteString(attr.Value)
			sb.WriteByte('"')
		}
	}
	if n.SelfClosing || len(n.Children) == 0 {
		sb.WriteString(" />")
		return sb.String()
	}
	sb.WriteByte('>')
	sb.WriteString(Stringify(n.Children...))
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
	return sb.String()
}
