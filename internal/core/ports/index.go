package ports

import "context"

// TrackIndex administers the track index used by bulk imports.
type TrackIndex interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Delete(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	NewBulk(ctx context.Context, opts BulkOptions) (BulkWriter, error)
}

// BulkOptions tunes a BulkWriter. Zero values select the writer's defaults.
type BulkOptions struct {
	BatchDocs int // documents per bulk request, approximately
	Workers   int
}

// BulkWriter batches documents into the index. Add may return before the
// document is flushed; Close flushes and reports the totals.
type BulkWriter interface {
	Add(ctx context.Context, id string, doc any) error
	Close(ctx context.Context) (BulkStats, error)
}

// BulkStats counts the outcome of a bulk write.
type BulkStats struct {
	Indexed int
	Failed  int
}
