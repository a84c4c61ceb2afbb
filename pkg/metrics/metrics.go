package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PapersStored counts paper create/append writes.
	PapersStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperguard_papers_stored_total",
		Help: "Number of paper store operations (creates and appends).",
	})

	// VersionsAppended counts versions added via the add-version endpoint.
	VersionsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperguard_versions_appended_total",
		Help: "Number of versions appended to existing papers.",
	})

	// Checks counts plagiarism checks by outcome: quota_exceeded, flagged,
	// clean, error.
	Checks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paperguard_plagiarism_checks_total",
		Help: "Number of plagiarism check requests by outcome.",
	}, []string{"outcome"})

	// ChainUnavailable counts gateway calls that failed open.
	ChainUnavailable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperguard_chain_unavailable_total",
		Help: "Number of authorization gateway calls that failed open.",
	})

	// HTTPDuration tracks request latency by method and status class.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paperguard_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
