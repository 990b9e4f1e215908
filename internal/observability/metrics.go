package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "health_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Record-set fetches from the data source.
	FetchRequests *prometheus.CounterVec   // labels: kind={health,sdoh}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: kind={health,sdoh}
	CacheLookups  *prometheus.CounterVec   // labels: result={hit,miss}

	// Selections whose response arrived after a newer selection was made.
	StaleResponses prometheus.Counter

	RecordsClassified  prometheus.Counter
	AggregatesEmitted  prometheus.Counter
	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}
	SessionReady       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Record-set fetches by measure kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of record-set fetches from the data source.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Record-set cache lookups by result.",
		}, []string{"result"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Fetch responses discarded because a newer selection superseded them.",
		}),
		RecordsClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_classified_total",
			Help:      "Primary records run through classification.",
		}),
		AggregatesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_aggregates_emitted_total",
			Help:      "State aggregates produced in state view mode.",
		}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "View snapshots sent to the publisher by outcome.",
		}, []string{"outcome"}),
		SessionReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_ready",
			Help:      "1 once the data source has answered a request, 0 before.",
		}),
	}

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.CacheLookups,
		m.StaleResponses,
		m.RecordsClassified,
		m.AggregatesEmitted,
		m.SnapshotsPublished,
		m.SessionReady,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "fetch_requests_total"}, []string{"kind", "outcome"}),
		FetchDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "fetch_duration_seconds"}, []string{"kind"}),
		CacheLookups:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cache_lookups_total"}, []string{"result"}),
		StaleResponses:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "stale_responses_total"}),
		RecordsClassified:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_classified_total"}),
		AggregatesEmitted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "state_aggregates_emitted_total"}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "snapshots_published_total"}, []string{"outcome"}),
		SessionReady:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "session_ready"}),
	}
}
