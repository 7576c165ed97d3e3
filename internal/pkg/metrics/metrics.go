// Package metrics defines and registers all custom Prometheus metrics for the
// booking API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// ── Session store ─────────────────────────────────────────────────────────────

// SessionMutationsTotal counts create/update/delete attempts on sessions.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "ok" or an error kind (e.g. "forbidden", "not_found", "validation")
var SessionMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_mutations_total",
		Help:      "Total number of session create/update/delete attempts, by result.",
	},
	[]string{"operation", "result"},
)

// ── Participation engine ──────────────────────────────────────────────────────

// ParticipationChangesTotal counts roster transitions.
// Labels:
//   - operation: "participate" or "unparticipate"
//   - result: "ok" or an error kind (e.g. "already_participating")
var ParticipationChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "participation_changes_total",
		Help:      "Total number of participation toggles, by result.",
	},
	[]string{"operation", "result"},
)

// GuardDenialsTotal counts requests rejected by the access policy.
// Label:
//   - action: the denied action (e.g. "session:delete")
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of actions denied by the access policy.",
	},
	[]string{"action"},
)

// LockWaitSeconds measures how long callers wait for a per-session or
// per-user lock.
var LockWaitSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lock_wait_seconds",
		Help:      "Time spent acquiring a per-session or per-user lock.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
	},
)

// ── Member directory ──────────────────────────────────────────────────────────

// UserDeletionsTotal counts account deletion attempts.
// Label:
//   - result: "ok" or an error kind (e.g. "forbidden", "not_found")
var UserDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_deletions_total",
		Help:      "Total number of account deletion attempts, by result.",
	},
	[]string{"result"},
)

// ── Audit trail ───────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each dispatcher worker channel.
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
//   - result: "stored", "dropped" (queue full) or "failed" (persistence error)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of roster audit events, by outcome.",
	},
	[]string{"result"},
)
