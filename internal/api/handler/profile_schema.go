package handler

import "time"

type profileBody struct {
	FirstName        string  `json:"first_name"         validate:"required,max=100"`
	LastName         string  `json:"last_name"          validate:"required,max=100"`
	DateOfBirth      *string `json:"date_of_birth"      validate:"omitempty,datetime=2006-01-02"`
	Phone            *string `json:"phone"              validate:"omitempty,max=50"`
	Income           *int64  `json:"income"             validate:"omitempty,gte=0"`
	MainGoal         *string `json:"main_goal"          validate:"omitempty,max=255"`
	TimeHorizonYears *int    `json:"time_horizon_years" validate:"omitempty,min=1,max=60"`
	RiskProfile      *string `json:"risk_profile"       validate:"omitempty,oneof=prudente equilibrato dinamico"`
}

type profileResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	DateOfBirth      *string   `json:"date_of_birth"`
	Phone            *string   `json:"phone"`
	Income           *int64    `json:"income"`
	MainGoal         *string   `json:"main_goal"`
	TimeHorizonYears *int      `json:"time_horizon_years"`
	RiskProfile      *string   `json:"risk_profile"`
	UpdatedAt        time.Time `json:"updated_at"`
}
