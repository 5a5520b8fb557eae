package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createRequestBody struct {
	Goal                string   `json:"goal"                 validate:"required,max=255"`
	Amount              float64  `json:"amount"               validate:"gt=0"`
	MonthlyContribution *float64 `json:"monthly_contribution" validate:"omitempty,gte=0"`
	RiskProfile         string   `json:"risk_profile"         validate:"required,oneof=prudente equilibrato dinamico"`
	TimeHorizonYears    int      `json:"time_horizon_years"   validate:"min=1,max=60"`
	Notes               *string  `json:"notes"                validate:"omitempty,max=2000"`
}

type setStatusBody struct {
	Status string `json:"status" validate:"required,oneof=pending in_review completed cancelled"`
}

type listRequestsQuery struct {
	Status string `query:"status"`
	Q      string `query:"q"`
	Sort   string `query:"sort"`
	Order  string `query:"order"`
	Skip   int    `query:"skip"`
	Limit  *int   `query:"limit"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to the
// domain structs.

type requestResponse struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	UserEmail           string    `json:"user_email,omitempty"`
	UserRole            string    `json:"user_role,omitempty"`
	Goal                string    `json:"goal"`
	Amount              float64   `json:"amount"`
	MonthlyContribution *float64  `json:"monthly_contribution"`
	RiskProfile         string    `json:"risk_profile"`
	TimeHorizonYears    int       `json:"time_horizon_years"`
	Notes               *string   `json:"notes"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type requestListResponse struct {
	Items []requestResponse `json:"items"`
	Total int64             `json:"total"`
}

type cancelResponse struct {
	OK        bool   `json:"ok"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type statusLogResponse struct {
	ID              int64     `json:"id"`
	RequestID       int64     `json:"request_id"`
	ChangedByUserID int64     `json:"changed_by_user_id"`
	OldStatus       *string   `json:"old_status"`
	NewStatus       string    `json:"new_status"`
	ChangedAt       time.Time `json:"changed_at"`
}

type requestStatsResponse struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	InReview  int64 `json:"in_review"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}
