package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
)

// Geocode implements domain.GeocodeResolver.
type Geocode struct {
	provider domain.GeocodeProvider
	timeout  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewGeocode wraps provider with a per-lookup timeout. A nil provider makes
// every lookup NotFound.
func NewGeocode(provider domain.GeocodeProvider, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Geocode {
	return &Geocode{
		provider: provider,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// ResolveAddress starts a single geocode lookup. The reply arrives no later
// than the resolver timeout.
func (r *Geocode) ResolveAddress(ctx context.Context, address string) *domain.Task[domain.GeocodeResult] {
	if r.provider == nil || strings.TrimSpace(address) == "" {
		return domain.Resolved(domain.NotFound[domain.GeocodeResult]())
	}
	return domain.StartTask(ctx, func(ctx context.Context) domain.Lookup[domain.GeocodeResult] {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		start := time.Now()
		result, err := r.provider.Geocode(ctx, address)
		r.metrics.LookupDuration.WithLabelValues("geocode").Observe(time.Since(start).Seconds())
		if err != nil {
			r.logger.Warn("geocoding failed", "address", address, "error", err)
			r.metrics.GeocodeLookups.WithLabelValues(outcomeError).Inc()
			return domain.NotFound[domain.GeocodeResult]()
		}
		if result.IsZero() {
			r.logger.Debug("address not resolved", "address", address)
			r.metrics.GeocodeLookups.WithLabelValues(outcomeNotFound).Inc()
			return domain.NotFound[domain.GeocodeResult]()
		}
		if result.FormattedAddress == "" {
			result.FormattedAddress = address
		}
		r.metrics.GeocodeLookups.WithLabelValues(outcomeFound).Inc()
		return domain.Found(result)
	})
}
