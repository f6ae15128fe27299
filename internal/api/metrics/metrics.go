// Package metrics defines and registers all custom Prometheus metrics for the
// credential and session authority. It is the single source of truth for
// metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authority"

// LoginsTotal counts terminal authentication outcomes.
// Labels:
//   - method: "password" or "federated"
//   - outcome: "success" or the failure kind (e.g. "invalid_credentials",
//     "two_factor_required", "banned", "rate_limited")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// SessionRevalidationsTotal counts per-request session revalidations.
// Label:
//   - result: "valid", "invalidated", or "error"
var SessionRevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_revalidations_total",
		Help:      "Total number of session revalidations, by result.",
	},
	[]string{"result"},
)

// SessionRefreshesTotal counts client-initiated partial session updates.
var SessionRefreshesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refreshes_total",
		Help:      "Total number of client-initiated session refreshes.",
	},
)

// AuditEventsDroppedTotal counts audit events lost to buffer overflow or
// append failures. A non-zero rate here means the audit trail has gaps.
// Label:
//   - reason: "buffer_full" or "append_failed"
var AuditEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped, by reason.",
	},
	[]string{"reason"},
)

// AuthenticationDuration measures end-to-end authentication latency. The
// bcrypt comparison dominates; watch this histogram when tuning cost.
// Label:
//   - method: "password" or "federated"
var AuthenticationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "authentication_duration_seconds",
		Help:      "Duration of authentication from request decode to principal.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method"},
)
