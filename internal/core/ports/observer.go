package ports

import "github.com/aurora-advisory/advisory-api/internal/core/domain"

// WorkflowObserver receives workflow outcomes, typically to feed metrics.
type WorkflowObserver interface {
	RequestCreated(risk domain.RiskProfile)
	StatusChanged(from, to domain.RequestStatus, actor domain.Actor)
	TransitionRejected(reason string)
	RequestDeleted(status domain.RequestStatus)
}

// Login attempt outcomes reported to a LoginObserver.
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
	LoginThrottled = "throttled"
)

type LoginObserver interface {
	LoginAttempt(result string)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) RequestCreated(domain.RiskProfile) {}
func (NopObserver) StatusChanged(domain.RequestStatus, domain.RequestStatus, domain.Actor) {}
func (NopObserver) TransitionRejected(string) {}
func (NopObserver) RequestDeleted(domain.RequestStatus) {}
func (NopObserver) LoginAttempt(string) {}
