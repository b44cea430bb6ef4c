// Package resolver turns fallible lookup providers into resolvers that never
// fail: every provider error, empty reply, rate-limit wait failure or timeout
// becomes NotFound.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
)

const (
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// Photo implements domain.PhotoResolver.
type Photo struct {
	provider domain.PhotoProvider
	limiter  *rate.Limiter
	timeout  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewPhoto wraps provider with a requests-per-second limiter and a per-lookup
// timeout. A nil provider makes every lookup NotFound.
func NewPhoto(provider domain.PhotoProvider, requestsPerSecond int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Photo {
	return &Photo{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// ResolvePhoto starts one independent lookup for the named place.
func (r *Photo) ResolvePhoto(ctx context.Context, name string, lat, lng *float64) *domain.Task[string] {
	if r.provider == nil || strings.TrimSpace(name) == "" {
		return domain.Resolved(domain.NotFound[string]())
	}
	return domain.StartTask(ctx, func(ctx context.Context) domain.Lookup[string] {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Warn("photo lookup rate limit wait failed", "name", name, "error", err)
			r.metrics.PhotoLookups.WithLabelValues(outcomeError).Inc()
			return domain.NotFound[string]()
		}

		start := time.Now()
		url, err := r.provider.FindPhoto(ctx, name, lat, lng)
		r.metrics.LookupDuration.WithLabelValues("photo").Observe(time.Since(start).Seconds())
		if err != nil {
			r.logger.Warn("photo lookup failed", "name", name, "error", err)
			r.metrics.PhotoLookups.WithLabelValues(outcomeError).Inc()
			return domain.NotFound[string]()
		}
		if url == "" {
			r.logger.Debug("no photo found", "name", name)
			r.metrics.PhotoLookups.WithLabelValues(outcomeNotFound).Inc()
			return domain.NotFound[string]()
		}
		r.metrics.PhotoLookups.WithLabelValues(outcomeFound).Inc()
		return domain.Found(url)
	})
}
