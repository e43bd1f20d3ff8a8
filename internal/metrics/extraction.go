package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "extraction_requests_total",
			Help:      "Total number of document extraction requests",
		},
		[]string{"model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "extraction_request_duration_seconds",
			Help:      "Document extraction request duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"model"},
	)

	ExtractionChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "extraction_chunks_total",
			Help:      "Chunks produced by extraction, by outcome (embedded / embed_failed)",
		},
		[]string{"outcome"},
	)
)

var extMetricsRegistered bool

// RegisterExtractionMetrics registers Prometheus extraction metrics. Must be called once from main.
func RegisterExtractionMetrics() {
	if extMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(ExtractionChunksTotal)
	extMetricsRegistered = true
}
