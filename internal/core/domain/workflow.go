package domain

import "time"

// Actor classifies who is applying a transition, relative to the request.
type Actor string

const (
	ActorOwner Actor = "owner"
	ActorStaff Actor = "staff"
)

// transitionRule allows a move from one status to another. An empty status
// on either side matches any status.
type transitionRule struct {
	from RequestStatus
	to   RequestStatus
}

func (r transitionRule) matches(from, to RequestStatus) bool {
	return (r.from == "" || r.from == from) && (r.to == "" || r.to == to)
}

// transitionRules is the full workflow graph per actor. Owners may only
// withdraw a request nobody has picked up yet; staff may set any status
// from any status, including the status the request already has.
var transitionRules = map[Actor][]transitionRule{
	ActorOwner: {
		{from: StatusPending, to: StatusCancelled},
	},
	ActorStaff: {
		{},
	},
}

// CanTransition reports whether actor may move a request from one status to another.
func CanTransition(actor Actor, from, to RequestStatus) bool {
	if !to.Valid() {
		return false
	}
	for _, rule := range transitionRules[actor] {
		if rule.matches(from, to) {
			return true
		}
	}
	return false
}

// StatusLog is an append-only audit record of one status transition.
type StatusLog struct {
	ID              int64          `json:"id"`
	RequestID       int64          `json:"request_id"`
	ChangedByUserID int64          `json:"changed_by_user_id"`
	OldStatus       *RequestStatus `json:"old_status"`
	NewStatus       RequestStatus  `json:"new_status"`
	ChangedAt       time.Time      `json:"changed_at"`
}

// NewStatusLog records that changedBy moved req to next at the given time.
func NewStatusLog(req *ConsultationRequest, changedBy int64, next RequestStatus, at time.Time) *StatusLog {
	old := req.Status
	return &StatusLog{
		RequestID:       req.ID,
		ChangedByUserID: changedBy,
		OldStatus:       &old,
		NewStatus:       next,
		ChangedAt:       at.UTC(),
	}
}
