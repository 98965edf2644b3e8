package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one
// import run.
type Metrics struct {
	RowsProcessed prometheus.Counter
	RowErrors     prometheus.Counter

	// CoordinateSource counts facilities by how their position was resolved:
	// source={lv95,geocoded,none}.
	CoordinateSource *prometheus.CounterVec

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={found,not_found}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	CacheEntries    prometheus.Gauge
	CacheSaves      prometheus.Counter

	// Output metrics.
	RecordsWritten *prometheus.CounterVec // labels: dataset={facilities,production,trade}
	WriteDuration  prometheus.Histogram
}

// NewMetrics creates and registers all import metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsProcessed,
		m.RowErrors,
		m.CoordinateSource,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.CacheEntries,
		m.CacheSaves,
		m.RecordsWritten,
		m.WriteDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "facility_rows_processed_total",
			Help:      "Total facility registry rows read.",
		}),
		RowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "facility_row_errors_total",
			Help:      "Malformed facility rows skipped.",
		}),
		CoordinateSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "facility_coordinate_source_total",
			Help:      "Facilities by position resolution strategy.",
		}, []string{"source"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "geocode_requests_total",
			Help:      "Nominatim lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "energy_etl",
			Name:      "geocode_cache_entries",
			Help:      "Entries currently held in the geocode cache.",
		}),
		CacheSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "geocode_cache_saves_total",
			Help:      "Times the geocode cache was persisted to disk.",
		}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "energy_etl",
			Name:      "records_written_total",
			Help:      "Records written to output files by dataset.",
		}, []string{"dataset"}),
		WriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "energy_etl",
			Name:      "output_write_duration_seconds",
			Help:      "Duration of one atomic compressed write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
