package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

// Coordinator loads the gem list into the store and starts photo enrichment
// for every gem that arrived without an image.
type Coordinator struct {
	lister   GemLister
	store    *store.GemStore
	enricher *Enricher
	notifier Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(lister GemLister, st *store.GemStore, enricher *Enricher, notifier Notifier, metrics *observability.Metrics, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		lister:   lister,
		store:    st,
		enricher: enricher,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// FetchAndEnrich replaces the store contents with the current list and
// launches background photo lookups. On a failed fetch the store is left
// untouched, one notification is sent, and the error wraps
// domain.ErrListFetchFailed.
func (c *Coordinator) FetchAndEnrich(ctx context.Context) error {
	raws, err := c.lister.ListGems(ctx)
	if err != nil {
		c.metrics.ListFetches.WithLabelValues("error").Inc()
		err = fmt.Errorf("%w: %w", domain.ErrListFetchFailed, err)
		c.notifier.Notify(ctx, err)
		return err
	}

	gems := make([]domain.Gem, 0, len(raws))
	for _, raw := range raws {
		gems = append(gems, domain.NormalizeGem(raw))
	}
	c.store.Load(gems)
	c.metrics.ListFetches.WithLabelValues("success").Inc()
	c.metrics.GemsLoaded.Set(float64(c.store.Len()))

	// Load keeps the first entry for a repeated id; a later duplicate must
	// not resolve its own name onto that record.
	seen := make(map[string]struct{}, len(gems))
	missing := 0
	for _, g := range gems {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		if !g.HasImage() {
			missing++
		}
		c.enricher.Enrich(ctx, g)
	}
	c.logger.Info("gems loaded", "count", len(seen), "without_image", missing)
	return nil
}

// CheckReadiness returns nil once a list load has succeeded.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if !c.store.Loaded() {
		return errors.New("gem list has not been loaded yet")
	}
	return nil
}

// Run refreshes the list every interval until ctx is cancelled. Failed
// fetches are retried with exponential backoff capped at interval; a refresh
// never replaces an image a gem already has.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	c.logger.Info("periodic refresh started", "interval", interval)

	// Start at 200ms and double per failure.
	backoff := 200 * time.Millisecond
	for {
		wait := interval
		if err := c.FetchAndEnrich(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			wait = backoff
			backoff = nextBackoff(backoff, interval)
		} else {
			backoff = 200 * time.Millisecond
		}

		if !sleepWithContext(ctx, wait) {
			break
		}
	}
	c.logger.Info("periodic refresh stopping", "reason", ctx.Err())
	return nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
