// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pubops_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubops_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HistoryRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubops_history_records_total",
			Help: "Change records appended, by entity type",
		},
		[]string{"entity_type"},
	)

	AccessScopeResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubops_access_scope_resolutions_total",
			Help: "Access scope resolutions by outcome (unrestricted, scoped, empty, error)",
		},
		[]string{"result"},
	)

	ConsolidationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubops_consolidation_decisions_total",
			Help: "Contributor consolidation decisions (moved, dropped, deleted, skipped)",
		},
		[]string{"decision"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RequestsTotal,
		HistoryRecordsTotal,
		AccessScopeResolutions,
		ConsolidationDecisions,
	)
}
