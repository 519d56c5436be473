package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/elastic/go-elasticsearch/v9/esutil"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/ports"
)

const (
	// approxDocBytes converts a document batch size into the byte threshold
	// the bulk indexer flushes on. Track documents are well under 1KB.
	approxDocBytes       = 1024
	defaultFlushInterval = 30 * time.Second
)

type bulkWriter struct {
	bi     esutil.BulkIndexer
	logger *zap.Logger
}

// NewBulk starts a bulk indexer over the index. Documents are indexed under
// their given id, replacing any previous version.
func (c *Client) NewBulk(_ context.Context, opts ports.BulkOptions) (ports.BulkWriter, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cfg := esutil.BulkIndexerConfig{
		Client:        c.es,
		Index:         c.index,
		NumWorkers:    workers,
		FlushInterval: defaultFlushInterval,
		OnError: func(_ context.Context, err error) {
			c.logger.Error("bulk flush failed", zap.String("index", c.index), zap.Error(err))
		},
	}
	if opts.BatchDocs > 0 {
		cfg.FlushBytes = opts.BatchDocs * approxDocBytes
	}

	bi, err := esutil.NewBulkIndexer(cfg)
	if err != nil {
		return nil, fmt.Errorf("elastic adapter: create bulk indexer: %w", err)
	}
	return &bulkWriter{bi: bi, logger: c.logger}, nil
}

func (w *bulkWriter) Add(ctx context.Context, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elastic adapter: encode document %q: %w", id, err)
	}

	err = w.bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: id,
		Body:       bytes.NewReader(body),
		OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				w.logger.Warn("bulk item failed", zap.String("id", item.DocumentID), zap.Error(err))
				return
			}
			w.logger.Warn("bulk item rejected",
				zap.String("id", item.DocumentID),
				zap.Int("status", res.Status),
				zap.String("type", res.Error.Type),
				zap.String("reason", res.Error.Reason))
		},
	})
	if err != nil {
		return fmt.Errorf("elastic adapter: queue document %q: %w", id, err)
	}
	return nil
}

// Close flushes pending documents and waits for the workers.
func (w *bulkWriter) Close(ctx context.Context) (ports.BulkStats, error) {
	err := w.bi.Close(ctx)
	stats := w.bi.Stats()
	out := ports.BulkStats{
		Indexed: int(stats.NumIndexed + stats.NumCreated),
		Failed:  int(stats.NumFailed),
	}
	if err != nil {
		return out, fmt.Errorf("elastic adapter: close bulk indexer: %w", err)
	}
	return out, nil
}
