// Package observability exposes Prometheus metrics for the refresh pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts refresh batch invocations.
	RunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_runs_total",
			Help: "Total number of refresh runs started",
		},
	)

	// RunDuration tracks wall-clock duration of a full refresh run.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_run_duration_seconds",
			Help:    "Refresh run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// CategoriesTotal counts per-category outcomes by status.
	CategoriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_categories_total",
			Help: "Total categories processed, by outcome status",
		},
		[]string{"status"},
	)

	// ProviderCallsTotal counts outbound text-generation calls.
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_provider_calls_total",
			Help: "Total provider calls, by result",
		},
		[]string{"result"},
	)

	// BackoffWaitsTotal counts rate-limit backoff suspensions.
	BackoffWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_backoff_waits_total",
			Help: "Total backoff waits caused by provider throttling",
		},
	)
)

// Provider call result label values.
const (
	ResultOK        = "ok"
	ResultRateLimit = "rate_limited"
	ResultError     = "error"
)
