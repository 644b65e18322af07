package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one run. Each Metrics owns its
// registry, so a run's figures never mix with another's.
type Metrics struct {
	registry *prometheus.Registry

	Rows          prometheus.Counter
	Bytes         prometheus.Counter
	Chunks        prometheus.Gauge
	Stations      prometheus.Gauge
	ChunkDuration prometheus.Histogram
	RunDuration   prometheus.Gauge
	LastSuccess   prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brc",
			Name:      "rows_total",
			Help:      "Records aggregated.",
		}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brc",
			Name:      "bytes_total",
			Help:      "Input bytes scanned by chunk aggregators.",
		}),
		Chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brc",
			Name:      "chunks",
			Help:      "Byte ranges the input was split into.",
		}),
		Stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brc",
			Name:      "stations",
			Help:      "Distinct stations in the merged result.",
		}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brc",
			Name:      "chunk_duration_seconds",
			Help:      "Time to aggregate one byte range.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brc",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time from opening the input to the merged result.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brc",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
	}

	m.registry.MustRegister(
		m.Rows,
		m.Bytes,
		m.Chunks,
		m.Stations,
		m.ChunkDuration,
		m.RunDuration,
		m.LastSuccess,
	)

	return m
}

// Gatherer exposes the registry, e.g. for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes every metric in the text exposition format, for a
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
