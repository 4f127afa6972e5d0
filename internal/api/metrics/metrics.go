// Package metrics defines and registers all custom Prometheus metrics for the
// membership auth API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const namespace = "membership_auth"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts decided login attempts.
// Labels:
//   - outcome: "succeeded", "invalid_credentials", "account_locked", "account_not_active"
//   - role: "ADMIN", "MEMBER", or "" when the email matched no identity
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of decided login attempts, by outcome and role.",
	},
	[]string{"outcome", "role"},
)

// LoginErrorsTotal counts attempts that failed on infrastructure rather than credentials.
var LoginErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_errors_total",
		Help:      "Total number of login attempts aborted by an internal error.",
	},
)

// LoginDuration measures how long a login attempt takes end-to-end.
// Label:
//   - outcome: as in LoginAttemptsTotal, or "error"
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login attempts including password hashing.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// AccountsLockedTotal counts lock windows opened by repeated failures.
var AccountsLockedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_locked_total",
		Help:      "Total number of temporary account locks, by role.",
	},
	[]string{"role"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthorizationDeniedTotal counts requests rejected by the authorization gate.
// Label:
//   - reason: "missing_header", "invalid_token", "role_mismatch"
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by the authorization gate.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts login events discarded because the audit queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of login audit events dropped on a full queue.",
	},
)

// auditObserver counts lock openings on their way to the audit trail.
type auditObserver struct {
	next ports.LoginAuditor
}

// ObserveLoginEvents wraps next so that every event opening a lock window is
// counted in AccountsLockedTotal before being forwarded.
func ObserveLoginEvents(next ports.LoginAuditor) ports.LoginAuditor {
	return auditObserver{next: next}
}

func (o auditObserver) Record(event domain.LoginEvent) {
	if event.Locked {
		AccountsLockedTotal.WithLabelValues(string(event.Role)).Inc()
	}
	o.next.Record(event)
}
