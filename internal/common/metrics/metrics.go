// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SummaryJobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_jobs_completed_total",
			Help: "Total number of per-survey summary jobs that succeeded",
		},
	)

	SummaryJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_jobs_failed_total",
			Help: "Total number of per-survey summary jobs that failed permanently",
		},
		[]string{"error_code"},
	)

	SummaryJobRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_job_retries_total",
			Help: "Total number of retried summary job attempts",
		},
	)

	SummaryJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "summary_job_duration_seconds",
			Help: "Duration of per-survey summary job processing in seconds",
		},
	)

	SummaryJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "summary_jobs_active",
			Help: "Number of summary jobs currently running",
		},
	)

	BatchesDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_batches_dispatched_total",
			Help: "Total number of summary batches dispatched",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_notifications_sent_total",
			Help: "Total number of summary notifications delivered",
		},
		[]string{"channel"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_notifications_failed_total",
			Help: "Total number of summary notifications that failed to deliver",
		},
		[]string{"channel"},
	)
)
