package ports

import (
	"context"

	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

// SearchEngine executes prepared requests against the track index.
// Implementations return domain.ErrNotFound for a missing document and a
// *domain.UpstreamError for every engine-level failure. They must not retry
// on behalf of the caller beyond their own transport policy.
type SearchEngine interface {
	Search(ctx context.Context, req query.Request) (query.Response, error)
	GetDocument(ctx context.Context, id string) (query.Document, error)
	Info(ctx context.Context) (query.ClusterInfo, error)
}
