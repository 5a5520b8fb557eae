package domain

import (
	"strings"
	"time"
)

// RequestStatus represents the lifecycle state of a consultation request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusInReview  RequestStatus = "in_review"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// RequestStatuses lists every status in workflow order.
var RequestStatuses = []RequestStatus{StatusPending, StatusInReview, StatusCompleted, StatusCancelled}

// ParseRequestStatus validates untrusted input against the canonical status set.
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(strings.TrimSpace(s))
	if !status.Valid() {
		return "", NewValidationError("status", "must be one of: pending, in_review, completed, cancelled")
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	for _, known := range RequestStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Worked reports whether an advisor has claimed or finished the request.
// Owners can neither cancel nor delete a worked request.
func (s RequestStatus) Worked() bool {
	return s == StatusInReview || s == StatusCompleted
}

// RiskProfile is the investor risk appetite declared on a request.
type RiskProfile string

const (
	RiskPrudent  RiskProfile = "prudente"
	RiskBalanced RiskProfile = "equilibrato"
	RiskDynamic  RiskProfile = "dinamico"
)

var riskProfiles = []RiskProfile{RiskPrudent, RiskBalanced, RiskDynamic}

// ParseRiskProfile validates untrusted input against the known risk profiles.
func ParseRiskProfile(field, s string) (RiskProfile, error) {
	rp := RiskProfile(strings.TrimSpace(s))
	for _, known := range riskProfiles {
		if rp == known {
			return rp, nil
		}
	}
	return "", NewValidationError(field, "must be one of: prudente, equilibrato, dinamico")
}

const (
	MinHorizonYears = 1
	MaxHorizonYears = 60
)

// ConsultationRequest is the workflow aggregate. UserID never changes after creation.
type ConsultationRequest struct {
	ID                  int64         `json:"id"`
	UserID              int64         `json:"user_id"`
	Goal                string        `json:"goal"`
	Amount              float64       `json:"amount"`
	MonthlyContribution *float64      `json:"monthly_contribution"`
	RiskProfile         RiskProfile   `json:"risk_profile"`
	TimeHorizonYears    int           `json:"time_horizon_years"`
	Notes               *string       `json:"notes"`
	Status              RequestStatus `json:"status"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// RequestView is a request joined with its owner's identity.
type RequestView struct {
	ConsultationRequest
	OwnerEmail string `json:"user_email"`
	OwnerRole  Role   `json:"user_role"`
}

// RequestDraft carries client-supplied fields for a new request.
type RequestDraft struct {
	Goal                string
	Amount              float64
	MonthlyContribution *float64
	RiskProfile         string
	TimeHorizonYears    int
	Notes               *string
}

// NewConsultationRequest validates draft and builds a pending request owned by ownerID.
func NewConsultationRequest(ownerID int64, draft RequestDraft, now time.Time) (*ConsultationRequest, error) {
	goal := strings.TrimSpace(draft.Goal)
	if goal == "" {
		return nil, NewValidationError("goal", "is required")
	}
	if len(goal) > 255 {
		return nil, NewValidationError("goal", "must be at most 255 characters")
	}
	if draft.Amount <= 0 {
		return nil, NewValidationError("amount", "must be greater than 0")
	}
	if draft.MonthlyContribution != nil && *draft.MonthlyContribution < 0 {
		return nil, NewValidationError("monthly_contribution", "must be greater than or equal to 0")
	}
	if draft.TimeHorizonYears < MinHorizonYears || draft.TimeHorizonYears > MaxHorizonYears {
		return nil, NewValidationError("time_horizon_years", "must be between 1 and 60")
	}
	risk, err := ParseRiskProfile("risk_profile", draft.RiskProfile)
	if err != nil {
		return nil, err
	}

	var notes *string
	if draft.Notes != nil {
		if trimmed := strings.TrimSpace(*draft.Notes); trimmed != "" {
			notes = &trimmed
		}
	}

	now = now.UTC()
	return &ConsultationRequest{
		UserID:              ownerID,
		Goal:                goal,
		Amount:              draft.Amount,
		MonthlyContribution: draft.MonthlyContribution,
		RiskProfile:         risk,
		TimeHorizonYears:    draft.TimeHorizonYears,
		Notes:               notes,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// RequestStats summarises request counts per status for the advisor dashboard.
type RequestStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	InReview  int64 `json:"in_review"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// NewRequestStats folds per-status counts into a RequestStats.
func NewRequestStats(counts map[RequestStatus]int64) RequestStats {
	var st RequestStats
	for status, n := range counts {
		st.Total += n
		switch status {
		case StatusPending:
			st.Pending = n
		case StatusInReview:
			st.InReview = n
		case StatusCompleted:
			st.Completed = n
		case StatusCancelled:
			st.Cancelled = n
		}
	}
	return st
}
