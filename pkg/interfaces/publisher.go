package interfaces

import (
	"context"
	"time"

	"github.com/ComparePower/go-payload-migrate/blocks"
)

// PublishReceipt identifies the destination record created for a converted
// document.
type PublishReceipt struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Publisher delivers converted documents to the destination system. The
// migration runner calls it once per successfully converted document when
// publishing is enabled; dry runs never reach a publisher.
type Publisher interface {
	PublishDocument(ctx context.Context, result *blocks.Result) (PublishReceipt, error)
}
