// Package metrics defines and registers all custom Prometheus metrics for the
// user-admin service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init and
// are exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "useradmin"

// ── Access control ────────────────────────────────────────────────────────────

// AuthorizationDecisionsTotal counts authorization checks.
// Labels:
//   - action: the gated action (e.g. "users:create")
//   - result: "allowed" or "denied"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization checks, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Users ─────────────────────────────────────────────────────────────────────

// UserMutationsTotal counts user-directory mutations.
// Labels:
//   - operation: "create", "delete" or "update_role"
//   - result: "ok" or a short failure reason (e.g. "duplicate_email", "not_found")
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user directory mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Sessions ──────────────────────────────────────────────────────────────────

// SessionsIssuedTotal counts sessions created by sign-in or sign-up.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of sessions issued.",
	},
)

// SignInThrottledTotal counts sign-in attempts refused by the failure throttle.
var SignInThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_throttled_total",
		Help:      "Total number of sign-in attempts refused after too many failures.",
	},
)

// SessionPropagationFailuresTotal counts role changes that were persisted but
// could not be pushed to the user's live sessions.
var SessionPropagationFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_propagation_failures_total",
		Help:      "Total number of role changes not propagated to live sessions.",
	},
)

// ── Audit ─────────────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "stored", "dropped" or "failed"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by outcome.",
	},
	[]string{"result"},
)

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method, route (echo path template), status
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
