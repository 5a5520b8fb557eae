package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ClientProfile holds the personal details of a user. One per user.
type ClientProfile struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	DateOfBirth      *string      `json:"date_of_birth"`
	Phone            *string      `json:"phone"`
	Income           *int64       `json:"income"`
	MainGoal         *string      `json:"main_goal"`
	TimeHorizonYears *int         `json:"time_horizon_years"`
	RiskProfile      *RiskProfile `json:"risk_profile"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ProfileDraft carries client-supplied profile fields; every upsert replaces all of them.
type ProfileDraft struct {
	FirstName        string
	LastName         string
	DateOfBirth      *string
	Phone            *string
	Income           *int64
	MainGoal         *string
	TimeHorizonYears *int
	RiskProfile      *string
}

// NewClientProfile validates draft and builds the profile for userID.
func NewClientProfile(userID int64, draft ProfileDraft, now time.Time) (*ClientProfile, error) {
	first := strings.TrimSpace(draft.FirstName)
	last := strings.TrimSpace(draft.LastName)
	if first == "" {
		return nil, NewValidationError("first_name", "is required")
	}
	if last == "" {
		return nil, NewValidationError("last_name", "is required")
	}

	p := &ClientProfile{
		UserID:    userID,
		FirstName: first,
		LastName:  last,
		Phone:     trimmedOrNil(draft.Phone),
		MainGoal:  trimmedOrNil(draft.MainGoal),
		UpdatedAt: now.UTC(),
	}

	if dob := trimmedOrNil(draft.DateOfBirth); dob != nil {
		if _, err := time.Parse(dateLayout, *dob); err != nil {
			return nil, NewValidationError("date_of_birth", "must be a date in YYYY-MM-DD format")
		}
		p.DateOfBirth = dob
	}
	if draft.Income != nil {
		if *draft.Income < 0 {
			return nil, NewValidationError("income", "must be greater than or equal to 0")
		}
		p.Income = draft.Income
	}
	if draft.TimeHorizonYears != nil {
		if y := *draft.TimeHorizonYears; y < MinHorizonYears || y > MaxHorizonYears {
			return nil, NewValidationError("time_horizon_years", "must be between 1 and 60")
		}
		p.TimeHorizonYears = draft.TimeHorizonYears
	}
	if rp := trimmedOrNil(draft.RiskProfile); rp != nil {
		risk, err := ParseRiskProfile("risk_profile", *rp)
		if err != nil {
			return nil, err
		}
		p.RiskProfile = &risk
	}
	return p, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
