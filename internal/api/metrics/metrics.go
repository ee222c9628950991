// Package metrics defines and registers all custom Prometheus metrics for
// the expense portal. It is the single source of truth for metric names,
// labels, and help strings; metrics register with the default registry at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Backend gateway metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the backend API.
// Labels:
//   - endpoint: normalized backend path (identifiers collapsed to ":id")
//   - outcome: "ok", "error", "unauthorized", or "transport_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures backend round-trip time per endpoint.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls from dispatch to response headers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ForcedLogoutsTotal counts sessions torn down because an authenticated
// backend call returned 401.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of sessions destroyed after a 401 from the backend.",
	},
)

// SessionsActive tracks the number of live sessions in the store.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of signed-in sessions.",
	},
)

// ── Attachment metrics ────────────────────────────────────────────────────────

// AttachmentTokensTotal counts capability-token operations.
// Labels:
//   - op: "issue" or "redeem"
//   - result: "ok" or "denied"
var AttachmentTokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachment_tokens_total",
		Help:      "Total number of attachment capability-token operations.",
	},
	[]string{"op", "result"},
)

// StatusUpdatesTotal counts admin review actions forwarded to the backend.
// Labels:
//   - target: requested status ("Approved", "Rejected", "Paid")
//   - result: "ok" or "error"
var StatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_updates_total",
		Help:      "Total number of status transitions requested, by target and result.",
	},
	[]string{"target", "result"},
)
