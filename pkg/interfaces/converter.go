package interfaces

import (
	"context"

	"github.com/ComparePower/go-payload-migrate/richtext"
)

// RichTextConverter turns a markdown fragment into destination rich text
// nodes. Implementations are expected to be stateless and safe for
// concurrent use; the pipeline calls Convert once per rich text segment.
type RichTextConverter interface {
	Convert(ctx context.Context, markdown []byte, opts richtext.ConvertOptions) ([]richtext.Node, error)
}
