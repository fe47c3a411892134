package mdx

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// lineIndex resolves byte offsets to lines so node spans can be widened to
// whole source lines. Markdown block markers ("#", ">", list bullets) sit
// outside goldmark's segments, and buffer flushing needs them back.
type lineIndex struct {
	source []byte
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	ix := &lineIndex{source: source, starts: []int{0}}
	for i, c := range source {
		if c == '\n' && i+1 < len(source) {
			ix.starts = append(ix.starts, i+1)
		}
	}
	return ix
}

// lineAt returns the zero-based line containing offset.
func (ix *lineIndex) lineAt(offset int) int {
	if offset < 0 {
		return 0
	}
	i := sort.SearchInts(ix.starts, offset+1) - 1
	if i < 0 {
		return 0
	}
	return i
}

func (ix *lineIndex) lineCount() int {
	return len(ix.starts)
}

func (ix *lineIndex) lineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(ix.starts) {
		return len(ix.source)
	}
	return ix.starts[line]
}

// lineEnd returns the offset just past the last character of line, excluding
// the newline itself.
func (ix *lineIndex) lineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line+1 < len(ix.starts) {
		end := ix.starts[line+1]
		for end > ix.starts[line] && (ix.source[end-1] == '\n' || ix.source[end-1] == '\r') {
			end--
		}
		return end
	}
	return len(ix.source)
}

func (ix *lineIndex) lineText(line int) string {
	return string(ix.source[ix.lineStart(line):ix.lineEnd(line)])
}

// Position converts a byte offset into 1-based line and column numbers for
// error messages and report locations.
func Position(source []byte, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	line = 1
	lastStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lastStart = i + 1
		}
	}
	return line, offset - lastStart + 1
}

// segmentExtent finds the minimum and maximum source offsets covered by a
// node. Block nodes report their line segments; containers recurse.
func segmentExtent(n ast.Node, source []byte) (int, int, bool) {
	minStart, maxStop := -1, -1
	update := func(seg text.Segment) {
		if seg.Start < 0 || seg.Stop < seg.Start {
			return
		}
		if minStart == -1 || seg.Start < minStart {
			minStart = seg.Start
		}
		if seg.Stop > maxStop {
			maxStop = seg.Stop
		}
	}

	// Only block nodes carry line segments; goldmark panics when Lines is
	// called on an inline node.
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			for i := 0; i < lines.Len(); i++ {
				update(lines.At(i))
			}
		}
	}
	switch node := n.(type) {
	case *ast.Text:
		update(node.Segment)
	case *ast.RawHTML:
		for i := 0; i < node.Segments.Len(); i++ {
			update(node.Segments.At(i))
		}
	case *ast.FencedCodeBlock:
		if node.Info != nil {
			update(node.Info.Segment)
		}
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if start, stop, ok := segmentExtent(child, source); ok {
			update(text.NewSegment(start, stop))
		}
	}
	if minStart == -1 {
		return 0, 0, false
	}
	return minStart, maxStop, true
}

// blockSpan widens a block node's extent to full source lines so markers
// such as "#", ">" and list bullets are included when the span is sliced.
func (ix *lineIndex) blockSpan(n ast.Node) (int, int, bool) {
	start, stop, ok := segmentExtent(n, ix.source)
	if !ok {
		return 0, 0, false
	}
	firstLine := ix.lineAt(start)
	lastLine := ix.lineAt(stop - 1)
	if stop == start {
		lastLine = firstLine
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		// Interior lines never include the fences themselves.
		if node.Info == nil && firstLine > 0 && isFenceLine(ix.lineText(firstLine-1)) {
			firstLine--
		}
		if lastLine+1 < ix.lineCount() && isFenceLine(ix.lineText(lastLine+1)) {
			lastLine++
		}
	case *ast.Heading:
		// Setext underlines live on the line after the heading text.
		if lastLine+1 < ix.lineCount() && isSetextUnderline(ix.lineText(lastLine+1)) {
			lastLine++
		}
	}
	return ix.lineStart(firstLine), ix.lineEnd(lastLine), true
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func isSetextUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	marker := trimmed[0]
	if marker != '=' && marker != '-' {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != marker {
			return false
		}
	}
	return true
}

// chunk is raw tag text reassembled from goldmark segments together with a
// mapping back to source offsets.
type chunk struct {
	text   string
	pieces []chunkPiece
}

type chunkPiece struct {
	textStart int
	srcStart  int
	length    int
}

func buildChunk(source []byte, segments []text.Segment) chunk {
	var sb strings.Builder
	var pieces []chunkPiece
	for _, seg := range segments {
		if seg.Stop <= seg.Start {
			continue
		}
		pieces = append(pieces, chunkPiece{
			textStart: sb.Len(),
			srcStart:  seg.Start,
			length:    seg.Stop - seg.Start,
		})
		sb.Write(seg.Value(source))
	}
	return chunk{text: sb.String(), pieces: pieces}
}

// srcOffset maps a chunk-relative position back to a source offset.
func (c chunk) srcOffset(pos int) int {
	for _, piece := range c.pieces {
		if pos < piece.textStart+piece.length {
			if pos < piece.textStart {
				return piece.srcStart
			}
			return piece.srcStart + (pos - piece.textStart)
		}
	}
	if len(c.pieces) > 0 {
		last := c.pieces[len(c.pieces)-1]
		return last.srcStart + last.length
	}
	return 0
}

func segmentsOf(lines *text.Segments) []text.Segment {
	if lines == nil {
		return nil
	}
	out := make([]text.Segment, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		out = append(out, lines.At(i))
	}
	return out
}
