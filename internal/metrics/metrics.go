package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "queries_total",
			Help:      "Total number of questions by outcome",
		},
		[]string{"outcome"}, // found / not_found / no_keywords / auth / listing
	)

	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "documents_total",
			Help:      "Candidate documents processed by result",
		},
		[]string{"result"}, // matched / skipped / decode_failed / download_failed
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "llm_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "llm_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(QueriesTotal)
		prometheus.MustRegister(DocumentsTotal)
		prometheus.MustRegister(LLMRequestsTotal)
		prometheus.MustRegister(LLMRequestDuration)
	})
}
