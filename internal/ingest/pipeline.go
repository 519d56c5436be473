package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
	"github.com/ewilliams-labs/tracklens/internal/core/ports"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

// Import record outcomes reported to metrics.
const (
	outcomeIndexed = "indexed"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// Options tunes a Pipeline.
type Options struct {
	Workers   int // normalizer goroutines
	BatchSize int // documents per bulk request
}

// Pipeline streams a dataset into the track index: a reader goroutine feeds
// rows to a pool of normalizers, whose documents are queued on the engine's
// bulk indexer. Rows that cannot be indexed are skipped and counted.
type Pipeline struct {
	index   ports.TrackIndex
	ledger  ports.ImportLedger
	logger  *zap.Logger
	metrics *metrics.Recorder
	opts    Options
	now     func() time.Time
}

// NewPipeline constructs a Pipeline. ledger, logger and rec may be nil.
func NewPipeline(index ports.TrackIndex, ledger ports.ImportLedger, logger *zap.Logger, rec *metrics.Recorder, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1000
	}
	return &Pipeline{
		index:   index,
		ledger:  ledger,
		logger:  logger.Named("ingest"),
		metrics: rec,
		opts:    opts,
		now:     time.Now,
	}
}

// EnsureIndex creates the index when it is absent. With recreate set an
// existing index is deleted first. It reports whether the index already
// existed and was kept.
func (p *Pipeline) EnsureIndex(ctx context.Context, recreate bool) (bool, error) {
	if recreate {
		if err := p.index.Delete(ctx); err != nil {
			return false, fmt.Errorf("ingest: delete index: %w", err)
		}
	}

	exists, err := p.index.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("ingest: check index: %w", err)
	}
	if exists {
		return true, nil
	}

	if err := p.index.Create(ctx); err != nil {
		return false, fmt.Errorf("ingest: create index: %w", err)
	}
	return false, nil
}

type counters struct {
	read    atomic.Int64
	skipped atomic.Int64
}

// Run imports every row of src. The returned run is complete even when err
// is non-nil, and is recorded in the ledger when one is configured.
func (p *Pipeline) Run(ctx context.Context, source string, src io.Reader) (domain.ImportRun, error) {
	run := domain.ImportRun{
		ID:        uuid.NewString(),
		Source:    source,
		Index:     p.index.Name(),
		StartedAt: p.now(),
		Status:    domain.RunRunning,
	}
	if p.ledger != nil {
		if err := p.ledger.StartRun(ctx, run); err != nil {
			return run, fmt.Errorf("ingest: record run start: %w", err)
		}
	}
	log := p.logger.With(zap.String("run_id", run.ID), zap.String("source", source))
	log.Info("import started", zap.String("index", run.Index))

	var c counters
	stats, err := p.load(ctx, log, src, &c)

	run.Read = int(c.read.Load())
	run.Skipped = int(c.skipped.Load())
	run.Indexed = stats.Indexed
	run.Failed = stats.Failed
	run.FinishedAt = p.now()
	run.Status = domain.RunCompleted
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
	}

	p.metrics.ImportRecords(outcomeIndexed, run.Indexed)
	p.metrics.ImportRecords(outcomeSkipped, run.Skipped)
	p.metrics.ImportRecords(outcomeFailed, run.Failed)

	if p.ledger != nil {
		// The run is recorded even when ctx was cancelled mid-import.
		if lerr := p.ledger.FinishRun(context.WithoutCancel(ctx), run); lerr != nil {
			err = errors.Join(err, fmt.Errorf("ingest: record run finish: %w", lerr))
		}
	}

	fields := []zap.Field{
		zap.Int("read", run.Read),
		zap.Int("indexed", run.Indexed),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	}
	if err != nil {
		log.Error("import failed", append(fields, zap.Error(err))...)
		return run, err
	}
	log.Info("import completed", fields...)
	return run, nil
}

func (p *Pipeline) load(ctx context.Context, log *zap.Logger, src io.Reader, c *counters) (ports.BulkStats, error) {
	reader, err := NewReader(src)
	if err != nil {
		return ports.BulkStats{}, err
	}

	bulk, err := p.index.NewBulk(ctx, ports.BulkOptions{
		BatchDocs: p.opts.BatchSize,
		Workers:   p.opts.Workers,
	})
	if err != nil {
		return ports.BulkStats{}, fmt.Errorf("ingest: open bulk writer: %w", err)
	}

	records := make(chan Record, p.opts.Workers*2)
	docs := make(chan Document, p.opts.Workers*2)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		return p.read(gctx, log, reader, records, c)
	})

	var normalizers sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		normalizers.Add(1)
		g.Go(func() error {
			defer normalizers.Done()
			return p.normalize(gctx, log, records, docs, c)
		})
	}
	g.Go(func() error {
		normalizers.Wait()
		close(docs)
		return nil
	})

	g.Go(func() error {
		for doc := range docs {
			if err := bulk.Add(gctx, doc.TrackID, doc); err != nil {
				return err
			}
		}
		return nil
	})

	runErr := g.Wait()
	stats, closeErr := bulk.Close(context.WithoutCancel(ctx))
	if runErr != nil {
		return stats, runErr
	}
	return stats, closeErr
}

func (p *Pipeline) read(ctx context.Context, log *zap.Logger, reader *Reader, out chan<- Record, c *counters) error {
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, ErrMalformedRecord) {
			return err
		}

		c.read.Add(1)
		if err != nil {
			c.skipped.Add(1)
			log.Debug("skipping record", zap.Error(err))
			continue
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pipeline) normalize(ctx context.Context, log *zap.Logger, in <-chan Record, out chan<- Document, c *counters) error {
	for rec := range in {
		doc, err := BuildDocument(rec)
		if err != nil {
			c.skipped.Add(1)
			log.Debug("skipping record", zap.Int("line", rec.Line), zap.Error(err))
			continue
		}

		select {
		case out <- doc:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Verify counts the documents in the index after an import.
func (p *Pipeline) Verify(ctx context.Context) (int, error) {
	n, err := p.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingest: verify: %w", err)
	}
	p.logger.Info("index verified", zap.String("index", p.index.Name()), zap.Int("documents", n))
	return n, nil
}
