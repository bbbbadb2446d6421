// Package metrics defines and registers all custom Prometheus metrics for the
// learning portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the LMS backend.
// Labels:
//   - resource: first path segment of the call (e.g. "courses", "users")
//   - method: HTTP method
//   - outcome: "ok", "rejected", "malformed" or "network_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the LMS backend, by outcome.",
	},
	[]string{"resource", "method", "outcome"},
)

// BackendRequestDuration measures round-trip latency to the backend.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the LMS backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "method"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionRestoresTotal counts session restorations.
// Label:
//   - outcome: "no_token", "restored" or "rejected"
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of session restorations, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login and registration attempts.
// Labels:
//   - action: "login" or "register"
//   - outcome: "success", "failure" or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and registration attempts.",
	},
	[]string{"action", "outcome"},
)

// GuardDecisionsTotal counts route guard decisions.
// Labels:
//   - guard: "auth", "role" or "guest"
//   - decision: "allow", "wait", "login", "landing"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"guard", "decision"},
)
