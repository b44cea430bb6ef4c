package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hidden_gems"

// Metrics holds the Prometheus counters, histograms, and gauges for the gem pipeline.
type Metrics struct {
	ListFetches  *prometheus.CounterVec // labels: outcome={success,error}
	GemsLoaded   prometheus.Gauge
	Submissions  *prometheus.CounterVec // labels: outcome={success,auth_required,invalid,upload_failed,create_failed}
	Submitting   prometheus.Gauge
	PhotoApplied *prometheus.CounterVec // labels: result={applied,ignored}

	// Lookup metrics.
	PhotoLookups    *prometheus.CounterVec   // labels: outcome={found,not_found,error}
	GeocodeLookups  *prometheus.CounterVec   // labels: outcome={found,not_found,error}
	LookupDuration  *prometheus.HistogramVec // labels: kind={photo,geocode}
	EventsPublished *prometheus.CounterVec   // labels: type, outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ListFetches,
		m.GemsLoaded,
		m.Submissions,
		m.Submitting,
		m.PhotoApplied,
		m.PhotoLookups,
		m.GeocodeLookups,
		m.LookupDuration,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ListFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_fetches_total",
			Help:      "Gem list fetches by outcome.",
		}, []string{"outcome"}),
		GemsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gems_loaded",
			Help:      "Number of gems currently in the store.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Gem submissions by outcome.",
		}, []string{"outcome"}),
		Submitting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_progress",
			Help:      "Number of submissions currently running.",
		}),
		PhotoApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_replies_total",
			Help:      "Photo replies offered to the store, by whether they were applied.",
		}, []string{"result"}),
		PhotoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_lookups_total",
			Help:      "Photo lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Geocode lookups by outcome.",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Third-party lookup duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Gem events published to Kafka by type and outcome.",
		}, []string{"type", "outcome"}),
	}
}
