package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flight_tracker"

// Flight query outcomes recorded by the bounds cache.
const (
	OutcomeFetched   = "fetched"
	OutcomeCached    = "cached"
	OutcomeThrottled = "throttled"
	OutcomeJoined    = "joined"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus counters, histograms, and gauges of the tracker.
type Metrics struct {
	FlightQueries   *prometheus.CounterVec // labels: outcome={fetched,cached,throttled,joined,error}
	RecordsRejected prometheus.Counter
	UpstreamLatency *prometheus.HistogramVec // labels: endpoint={positions,tracks,airport,reverse}

	// Airport resolution.
	AirportLookups *prometheus.CounterVec // labels: tier={cache,provider,static,miss}
	ProviderErrors *prometheus.CounterVec // labels: provider

	GeocodeCache *prometheus.CounterVec // labels: result={hit,miss}

	// Poller and publishers.
	PollerRunning      prometheus.Gauge
	SnapshotFlights    prometheus.Gauge
	SnapshotsPublished *prometheus.CounterVec // labels: sink
	PublishErrors      *prometheus.CounterVec // labels: sink
	StreamClients      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry creates the metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FlightQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_queries_total",
			Help:      "Flight list queries by outcome.",
		}, []string{"outcome"}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Upstream flight records dropped by validation.",
		}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		AirportLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airport_lookups_total",
			Help:      "Airport resolutions by the tier that answered.",
		}, []string{"tier"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airport_provider_errors_total",
			Help:      "Airport provider failures by provider.",
		}, []string{"provider"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the watch-area poller is active, 0 when shut down.",
		}),
		SnapshotFlights: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_flights",
			Help:      "Number of flights in the latest watch-area snapshot.",
		}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Snapshots delivered by sink.",
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Snapshot delivery failures by sink.",
		}, []string{"sink"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket stream clients.",
		}),
	}

	reg.MustRegister(
		m.FlightQueries,
		m.RecordsRejected,
		m.UpstreamLatency,
		m.AirportLookups,
		m.ProviderErrors,
		m.GeocodeCache,
		m.PollerRunning,
		m.SnapshotFlights,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.StreamClients,
	)

	return m
}
