package pipeline

import (
	"context"
	"errors"

	"github.com/ComparePower/go-payload-migrate/blocks"
	"github.com/ComparePower/go-payload-migrate/internal/logging"
	"github.com/ComparePower/go-payload-migrate/internal/mdx"
	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
	"github.com/ComparePower/go-payload-migrate/richtext"
)

var errDocumentRequired = errors.New("pipeline: document is required")

// Pipeline converts one hybrid markdown document into an ordered content
// block list. Each instance is safe for concurrent use; per-document state
// lives in the segment run, never on the pipeline itself.
type Pipeline struct {
	registry    interfaces.ComponentRegistry
	converter   interfaces.RichTextConverter
	fallback    interfaces.RichTextConverter
	logger      interfaces.Logger
	mode        Mode
	repairLinks bool
	convertOpts richtext.ConvertOptions
	parser      *mdx.Parser
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithLogger attaches a module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMode selects the failure policy.
func WithMode(mode Mode) Option {
	return func(p *Pipeline) {
		if mode.Valid() {
			p.mode = mode
		}
	}
}

// WithConverter swaps the rich text converter. The plain fallback still
// applies when the supplied converter fails.
func WithConverter(converter interfaces.RichTextConverter) Option {
	return func(p *Pipeline) {
		if converter != nil {
			p.converter = converter
		}
	}
}

// WithConvertOptions forwards converter tuning, e.g. markdown extensions.
func WithConvertOptions(opts richtext.ConvertOptions) Option {
	return func(p *Pipeline) {
		p.convertOpts = opts
	}
}

// WithLinkRepair toggles the post-conversion link and spacing repair pass.
func WithLinkRepair(enabled bool) Option {
	return func(p *Pipeline) {
		p.repairLinks = enabled
	}
}

// New builds a pipeline around the given capability registry.
func New(registry interfaces.ComponentRegistry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:    registry,
		converter:   richtext.NewMarkdownConverter(),
		fallback:    richtext.NewPlainConverter(),
		logger:      logging.NoOp(),
		mode:        ModeFailFast,
		repairLinks: true,
		convertOpts: richtext.ConvertOptions{Extensions: []string{"gfm"}},
		parser:      mdx.NewParser(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode reports the active failure policy.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Process converts a loaded document into its block-oriented result.
func (p *Pipeline) Process(ctx context.Context, doc *interfaces.Document) (*blocks.Result, error) {
	if doc == nil {
		return nil, errDocumentRequired
	}
	contentBlocks, unhandled, err := p.Convert(ctx, doc.Body)
	if err != nil {
		return nil, err
	}
	return &blocks.Result{
		Path:      doc.FilePath,
		Slug:      doc.Slug,
		Locale:    doc.Locale,
		Blocks:    contentBlocks,
		Unhandled: unhandled,
	}, nil
}

// Convert runs the full segmentation and conversion pass over one document
// body. In fail-fast mode the first unplaceable component aborts with no
// partial output; in collect mode the unhandled tally accompanies the
// blocks.
func (p *Pipeline) Convert(ctx context.Context, source []byte) ([]blocks.ContentBlock, []blocks.UnhandledComponent, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := p.parser.Parse(source)
	if err != nil {
		return nil, nil, wrapParseError(err)
	}

	segments, unhandled, err := NewSegmenter(p.registry, p.logger, p.mode).Segment(doc, source)
	if err != nil {
		return nil, nil, err
	}

	out := make([]blocks.ContentBlock, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if seg.IsComponent() {
			out = append(out, blocks.Component(
				blocks.ComponentKind(seg.Component.Name),
				seg.Component.Props,
				seg.Section,
			))
			continue
		}
		nodes, err := p.convertSegment(ctx, seg)
		if err != nil {
			return nil, nil, err
		}
		if len(nodes) == 0 {
			continue
		}
		out = append(out, blocks.RichText(nodes, seg.Section))
	}
	return out, unhandled, nil
}

// convertSegment pushes one buffered markdown segment through conversion,
// placeholder decoding, link repair, and artifact cleanup. Converter
// failures degrade to the plain fallback rather than losing the segment.
func (p *Pipeline) convertSegment(ctx context.Context, seg Segment) ([]richtext.Node, error) {
	nodes, err := p.converter.Convert(ctx, []byte(seg.Markdown), p.convertOpts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.logger.Warn("pipeline.convert.fallback", "error", err.Error())
		nodes, err = p.fallback.Convert(ctx, []byte(seg.Markdown), p.convertOpts)
		if err != nil {
			return nil, wrapConversionError(err)
		}
	}

	nodes = DecodePlaceholders(nodes, p.logger)
	if p.repairLinks {
		nodes = RepairLinks(nodes, seg.Markdown, p.logger)
	}
	nodes = CleanupArtifacts(nodes)
	return nodes, nil
}
