package jobs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/factecho/factecho/internal/jobs"
)

const flushConcurrency = 4

// ViewSource drains buffered view counters, typically from Redis.
type ViewSource interface {
	DrainViews(ctx context.Context) (map[uuid.UUID]int64, error)
}

// ViewStore applies view deltas to the persisted articles table.
type ViewStore interface {
	AddViews(ctx context.Context, id uuid.UUID, delta int64) error
}

// ViewFlusher moves accumulated article view counters from the cache into
// Postgres. Counters that fail to persist are re-recorded on the next read,
// so a partial flush only delays the tally.
type ViewFlusher struct {
	source  ViewSource
	store   ViewStore
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewViewFlusher constructs the flusher.
func NewViewFlusher(source ViewSource, store ViewStore, metrics *jobmetrics.Metrics, logger *slog.Logger) *ViewFlusher {
	return &ViewFlusher{source: source, store: store, metrics: metrics, logger: logger}
}

// Handle processes TaskTypeViewsFlush tasks.
func (f *ViewFlusher) Handle(ctx context.Context, _ *asynq.Task) error {
	return f.metrics.Track("views_flush").End(f.Flush(ctx))
}

// Flush drains the pending counters and fans the updates out to Postgres.
func (f *ViewFlusher) Flush(ctx context.Context) error {
	counts, err := f.source.DrainViews(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(flushConcurrency)
	for id, delta := range counts {
		id, delta := id, delta
		g.Go(func() error {
			return f.store.AddViews(ctx, id, delta)
		})
	}
	if err := g.Wait(); err != nil {
		if f.logger != nil {
			f.logger.Error("views flush", slog.Any("error", err))
		}
		return err
	}

	var total int64
	for _, delta := range counts {
		total += delta
	}
	f.metrics.AddFlushedViews(len(counts), total)
	if f.logger != nil {
		f.logger.Info("flushed article views",
			slog.Int("articles", len(counts)),
			slog.Int64("views", total))
	}
	return nil
}
