// Package metrics defines and registers all custom Prometheus metrics for the
// advisory API. It is the single source of truth for metric names, labels,
// and help strings.
//
// The collectors register with the default Prometheus registry on package
// init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

const namespace = "advisory"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// RequestsCreatedTotal counts newly submitted consultation requests.
// Label:
//   - risk_profile: "prudente", "equilibrato" or "dinamico"
var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of consultation requests created, by risk profile.",
	},
	[]string{"risk_profile"},
)

// StatusTransitionsTotal counts committed status changes.
// Labels:
//   - from, to: request statuses
//   - actor: "owner" (client cancel) or "staff" (advisor/admin patch)
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of audited request status transitions.",
	},
	[]string{"from", "to", "actor"},
)

// TransitionRejectionsTotal counts workflow operations refused before any write.
// Label:
//   - reason: "invalid_transition", "not_found" or "forbidden"
var TransitionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_rejections_total",
		Help:      "Total number of rejected workflow operations, by reason.",
	},
	[]string{"reason"},
)

// RequestsDeletedTotal counts hard deletes.
// Label:
//   - status: status of the request when it was removed
var RequestsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_deleted_total",
		Help:      "Total number of consultation requests deleted by their owner.",
	},
	[]string{"status"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// Observer feeds the collectors above from the core services.
type Observer struct{}

func (Observer) RequestCreated(risk domain.RiskProfile) {
	RequestsCreatedTotal.WithLabelValues(string(risk)).Inc()
}

func (Observer) StatusChanged(from, to domain.RequestStatus, actor domain.Actor) {
	StatusTransitionsTotal.WithLabelValues(string(from), string(to), string(actor)).Inc()
}

func (Observer) TransitionRejected(reason string) {
	TransitionRejectionsTotal.WithLabelValues(reason).Inc()
}

func (Observer) RequestDeleted(status domain.RequestStatus) {
	RequestsDeletedTotal.WithLabelValues(string(status)).Inc()
}

func (Observer) LoginAttempt(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}
