package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMRequestDuration tracks chat-completion latency per provider.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "operia_llm_request_duration_seconds",
			Help:    "LLM chat-completion call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~100s
		},
		[]string{"provider", "status"},
	)

	// ExtractionCount counts extraction pipeline runs.
	ExtractionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operia_extractions_total",
			Help: "Total number of extraction pipeline runs",
		},
		[]string{"source", "status"}, // status: success, failed
	)

	// ProposalCount counts decoded proposals by type.
	ProposalCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operia_proposals_total",
			Help: "Total number of proposals decoded from model replies",
		},
		[]string{"type"},
	)

	// SummaryCount counts summary pipeline runs.
	SummaryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operia_daily_summaries_total",
			Help: "Total number of daily summary pipeline runs",
		},
		[]string{"status"}, // status: success, failed
	)

	// HTTPRequestDuration tracks gateway request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "operia_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method", "route", "status"},
	)

	// QueueTaskCount counts queue tasks consumed by the worker.
	QueueTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operia_queue_tasks_total",
			Help: "Total number of queue tasks processed",
		},
		[]string{"type", "status"}, // status: success, retried, failed
	)
)

// ObserveLLMRequest records one chat-completion call.
func ObserveLLMRequest(provider, status string, duration time.Duration) {
	LLMRequestDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// IncrementExtraction records one extraction pipeline run.
func IncrementExtraction(source, status string) {
	ExtractionCount.WithLabelValues(source, status).Inc()
}

// IncrementProposals records decoded proposals of one type.
func IncrementProposals(proposalType string, count int) {
	ProposalCount.WithLabelValues(proposalType).Add(float64(count))
}

// IncrementSummary records one summary pipeline run.
func IncrementSummary(status string) {
	SummaryCount.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records one HTTP request handled by the gateway.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// IncrementQueueTask records one queue task handled by the worker.
func IncrementQueueTask(taskType, status string) {
	QueueTaskCount.WithLabelValues(taskType, status).Inc()
}
