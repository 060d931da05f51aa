package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Knowledge base Prometheus metrics.
var (
	KnowledgeDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "knowledge_documents",
			Help:      "Number of documents in the loaded knowledge index",
		},
	)

	KnowledgeQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_queries_total",
			Help:      "Knowledge base queries by outcome",
		},
		[]string{"result"}, // ok, empty, unavailable, embed_error, dimension_mismatch
	)

	KnowledgeQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "knowledge_query_duration_seconds",
			Help:      "Knowledge base query duration in seconds, embedding included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	KnowledgeRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_rebuilds_total",
			Help:      "Knowledge index builds and loads by source and status",
		},
		[]string{"source", "status"}, // source: build, snapshot
	)
)

var knowledgeOnce sync.Once

// RegisterKnowledgeMetrics registers Prometheus knowledge base metrics. Safe to call more than once.
func RegisterKnowledgeMetrics() {
	knowledgeOnce.Do(func() {
		prometheus.MustRegister(
			KnowledgeDocuments,
			KnowledgeQueriesTotal,
			KnowledgeQueryDuration,
			KnowledgeRebuildsTotal,
		)
	})
}
