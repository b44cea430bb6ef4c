package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

// Enricher launches background photo lookups for gems without an image and
// applies each reply to the store by gem id.
type Enricher struct {
	store   *store.GemStore
	photos  domain.PhotoResolver
	events  EventPublisher
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewEnricher creates an Enricher running at most concurrency lookups at once.
// events may be nil.
func NewEnricher(st *store.GemStore, photos domain.PhotoResolver, events EventPublisher, concurrency int, metrics *observability.Metrics, logger *slog.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		store:   st,
		photos:  photos,
		events:  events,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		metrics: metrics,
		logger:  logger,
	}
}

// Enrich starts a photo lookup for g unless it (or the stored record with
// its id) already has an image. It returns immediately. The lookup outlives
// ctx's cancellation; its own timeout bounds it.
func (e *Enricher) Enrich(ctx context.Context, g domain.Gem) {
	if g.HasImage() {
		return
	}
	if cur, ok := e.store.Get(g.ID); !ok || cur.HasImage() {
		return
	}

	req := domain.NewEnrichmentRequest(g)
	e.wg.Add(1)
	go e.run(context.WithoutCancel(ctx), req)
}

func (e *Enricher) run(ctx context.Context, req domain.EnrichmentRequest) {
	defer e.wg.Done()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return
	}
	url, ok := e.photos.ResolvePhoto(ctx, req.Name, req.Lat, req.Lng).Await(ctx).Get()
	// Publishing below must not hold a lookup slot.
	e.sem.Release(1)
	if !ok {
		return
	}

	if !e.store.ApplyPhoto(req.TargetID, url) {
		// Gone after a reload, or another value won.
		e.metrics.PhotoApplied.WithLabelValues("ignored").Inc()
		e.logger.Debug("photo reply ignored", "gem_id", req.TargetID)
		return
	}
	e.metrics.PhotoApplied.WithLabelValues("applied").Inc()
	e.logger.Debug("photo applied", "gem_id", req.TargetID, "name", req.Name)

	if g, ok := e.store.Get(req.TargetID); ok {
		publishEvent(ctx, e.events, e.logger, domain.EventPhotoApplied, g)
	}
}

// Wait blocks until every launched lookup has finished or ctx is done.
func (e *Enricher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
