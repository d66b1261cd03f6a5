package core

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "coachkit"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	ImportsAnalyzed  *prometheus.CounterVec
	ImportsConfirmed *prometheus.CounterVec
	ImportedClients  prometheus.Counter
	SkippedRows      prometheus.Counter
	OpenImports      prometheus.Gauge
	TextGenDuration  *prometheus.HistogramVec
	TextGenFailures  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method.",
		}, []string{"method"}),
		ImportsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "import",
			Name:      "analyzed_total",
			Help:      "Spreadsheet analyses by outcome.",
		}, []string{"outcome"}),
		ImportsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "import",
			Name:      "confirmed_total",
			Help:      "Import confirmations by outcome.",
		}, []string{"outcome"}),
		ImportedClients: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "import",
			Name:      "clients_total",
			Help:      "Clients created by imports.",
		}),
		SkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "import",
			Name:      "skipped_rows_total",
			Help:      "Rows dropped during import because they had no usable name.",
		}),
		OpenImports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "import",
			Name:      "open_sessions",
			Help:      "Import sessions waiting for confirmation.",
		}),
		TextGenDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "textgen",
			Name:      "request_duration_seconds",
			Help:      "Latency of text generation requests by purpose.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"purpose"}),
		TextGenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "textgen",
			Name:      "failures_total",
			Help:      "Failed text generation requests by purpose.",
		}, []string{"purpose"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.ImportsAnalyzed,
		m.ImportsConfirmed,
		m.ImportedClients,
		m.SkippedRows,
		m.OpenImports,
		m.TextGenDuration,
		m.TextGenFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
