package blocks

import "github.com/ComparePower/go-payload-migrate/richtext"

// Fields is the ordered attribute map attached to component blocks and
// inline component references.
type Fields = richtext.Fields

// NewFields returns an empty ordered field set.
func NewFields() *Fields {
	return richtext.NewFields()
}

// KindRichText is the block kind shared by every rich text segment. All
// other kinds are derived from component names via ComponentKind.
const KindRichText = "richText"

// ComponentUsage says where a component reference appeared in the source
// document.
type ComponentUsage string

const (
	UsageBlock  ComponentUsage = "block"
	UsageInline ComponentUsage = "inline"
)

// SectionContext identifies the innermost wrapper section a block was
// found in. Blocks outside any section carry a nil context.
type SectionContext struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	HeadingLevel int    `json:"headingLevel,omitempty"`
}

// ComponentRef records one component usage discovered during segmentation.
type ComponentRef struct {
	Name  string         `json:"name"`
	Props *Fields        `json:"props,omitempty"`
	Usage ComponentUsage `json:"usage"`
}

// ContentBlock is one ordered entry of a converted document. Rich text
// blocks carry Content; component blocks carry Fields.
type ContentBlock struct {
	Kind    string          `json:"kind"`
	Content []richtext.Node `json:"content,omitempty"`
	Fields  *Fields         `json:"fields,omitempty"`
	Section *SectionContext `json:"section,omitempty"`
}

// IsRichText reports whether the block holds converted rich text.
func (b ContentBlock) IsRichText() bool {
	return b.Kind == KindRichText
}

// RichText builds a rich text block tagged with the given section context.
func RichText(content []richtext.Node, section *SectionContext) ContentBlock {
	return ContentBlock{Kind: KindRichText, Content: content, Section: section}
}

// Component builds an atomic component block. Kind should already be in
// block-kind form (see ComponentKind).
func Component(kind string, fields *Fields, section *SectionContext) ContentBlock {
	return ContentBlock{Kind: kind, Fields: fields, Section: section}
}

// UnhandledComponent tallies a component the registry could not place,
// deduplicated by name and usage.
type UnhandledComponent struct {
	Name       string         `json:"name"`
	Usage      ComponentUsage `json:"usage"`
	UsageCount int            `json:"usageCount"`
	FirstSeen  string         `json:"firstSeen,omitempty"`
}

// Result is the ordered outcome of converting a single document.
type Result struct {
	Path      string               `json:"path"`
	Slug      string               `json:"slug,omitempty"`
	Locale    string               `json:"locale,omitempty"`
	Blocks    []ContentBlock       `json:"blocks"`
	Unhandled []UnhandledComponent `json:"unhandled,omitempty"`
}

// RichTextCount returns how many blocks hold converted rich text.
func (r *Result) RichTextCount() int {
	count := 0
	for _, b := range r.Blocks {
		if b.IsRichText() {
			count++
		}
	}
	return count
}

// ComponentCount returns how many blocks are atomic component blocks.
func (r *Result) ComponentCount() int {
	return len(r.Blocks) - r.RichTextCount()
}
