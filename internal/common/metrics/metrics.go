// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingres_chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"outcome"},
	)

	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingres_chat_duration_seconds",
			Help:    "End-to-end chat handling duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingres_llm_calls_total",
			Help: "Total number of language model calls",
		},
		[]string{"operation", "outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingres_llm_call_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 9),
		},
		[]string{"operation"},
	)

	DatasetLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingres_dataset_lookups_total",
			Help: "Deterministic dataset lookups by result",
		},
		[]string{"result"},
	)

	InterpretCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingres_interpret_cache_total",
			Help: "Interpretation cache lookups by result",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingres_sessions_active",
			Help: "Number of chat sessions held by the in-memory store",
		},
	)
)
