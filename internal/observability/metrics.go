package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dataset build pipeline.
type Metrics struct {
	BuildRunning  prometheus.Gauge
	DownloadBytes prometheus.Counter

	// Topology build metrics.
	GaugesFiltered *prometheus.CounterVec // labels: outcome={feasible,invalid_discharge,incomplete_coverage}
	BypassEdges    prometheus.Counter
	FinalEdges     prometheus.Gauge
	FeasibleGauges prometheus.Gauge
	StageDuration  *prometheus.HistogramVec // labels: stage={acquire,filter,repair,persist}
}

// NewMetrics creates and registers all build metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BuildRunning,
		m.DownloadBytes,
		m.GaugesFiltered,
		m.BypassEdges,
		m.FinalEdges,
		m.FeasibleGauges,
		m.StageDuration,
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
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lamah",
			Name:      "build_running",
			Help:      "1 while a dataset build is in progress, 0 otherwise.",
		}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lamah",
			Name:      "download_bytes_total",
			Help:      "Total bytes downloaded from the remote archive.",
		}),
		GaugesFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lamah",
			Name:      "gauges_filtered_total",
			Help:      "Gauges evaluated by the feasibility filter, by outcome.",
		}, []string{"outcome"}),
		BypassEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lamah",
			Name:      "bypass_edges_total",
			Help:      "Bypass edges synthesized while removing infeasible gauges.",
		}),
		FinalEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lamah",
			Name:      "adjacency_edges",
			Help:      "Edges in the persisted adjacency table.",
		}),
		FeasibleGauges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lamah",
			Name:      "feasible_gauges",
			Help:      "Gauges that passed the feasibility filter.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lamah",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each build stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"stage"}),
	}
}
