package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helpdesk_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Tenant isolation metrics. CrossTenantRequests counts operator requests that
// ran under an override scope; SpoofAttemptsStripped counts requests whose
// query or body carried tenant fields the guard removed.
var (
	CrossTenantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_cross_tenant_requests_total",
			Help: "Requests executed under a cross-tenant override scope",
		},
		[]string{"role"},
	)

	OverrideDenials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_tenant_override_denials_total",
			Help: "Privileged override attempts against nonexistent tenants",
		},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_audit_write_failures_total",
			Help: "Audit entries that could not be persisted",
		},
	)
)
