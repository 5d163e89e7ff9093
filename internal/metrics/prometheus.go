package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	DispatchBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_dispatch_batches_total",
			Help: "Total number of news summary batches dispatched",
		},
		[]string{"result"}, // success, failure
	)

	DispatchSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_dispatch_sends_total",
			Help: "Total number of per-recipient send attempts",
		},
		[]string{"status"}, // sent, failed
	)

	DispatchSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsmail_dispatch_skipped_total",
			Help: "Total number of recipients skipped for missing content",
		},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsmail_dispatch_duration_seconds",
			Help:    "Duration of a whole dispatch batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Step metrics
var (
	StepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_step_runs_total",
			Help: "Total number of checkpointed step invocations",
		},
		[]string{"step", "outcome"}, // executed, replayed, failed
	)
)

// Scheduler metrics
var (
	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_scheduler_runs_total",
			Help: "Total number of scheduled batch runs",
		},
		[]string{"result"}, // success, failure, source_error
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsmail_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsmail_api_auth_failures_total",
			Help: "Total number of API authentication failures",
		},
	)
)

// Database metrics
var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsmail_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsmail_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsmail_db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsmail_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"query"},
	)
)
