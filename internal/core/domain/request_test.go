package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validDraft() RequestDraft {
	return RequestDraft{
		Goal:             "  Pension fund  ",
		Amount:           1000,
		RiskProfile:      "equilibrato",
		TimeHorizonYears: 10,
	}
}

func TestNewConsultationRequest_Pending(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	notes := "   "

	d := validDraft()
	d.Notes = &notes
	req, err := NewConsultationRequest(9, d, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.UserID != 9 {
		t.Fatalf("expected owner 9, got %d", req.UserID)
	}
	if req.Goal != "Pension fund" {
		t.Fatalf("goal not trimmed: %q", req.Goal)
	}
	if req.Notes != nil {
		t.Fatalf("blank notes should be dropped, got %q", *req.Notes)
	}
	if !req.CreatedAt.Equal(now) || !req.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not set from clock")
	}
}

func TestNewConsultationRequest_Validation(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name  string
		edit  func(*RequestDraft)
		field string
	}{
		{"empty goal", func(d *RequestDraft) { d.Goal = "  " }, "goal"},
		{"long goal", func(d *RequestDraft) { d.Goal = strings.Repeat("g", 256) }, "goal"},
		{"zero amount", func(d *RequestDraft) { d.Amount = 0 }, "amount"},
		{"negative contribution", func(d *RequestDraft) { d.MonthlyContribution = &negative }, "monthly_contribution"},
		{"horizon too short", func(d *RequestDraft) { d.TimeHorizonYears = 0 }, "time_horizon_years"},
		{"horizon too long", func(d *RequestDraft) { d.TimeHorizonYears = 61 }, "time_horizon_years"},
		{"unknown risk", func(d *RequestDraft) { d.RiskProfile = "aggressive" }, "risk_profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)
			_, err := NewConsultationRequest(1, d, time.Now())
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestNewConsultationRequest_HorizonBounds(t *testing.T) {
	for _, years := range []int{MinHorizonYears, MaxHorizonYears} {
		d := validDraft()
		d.TimeHorizonYears = years
		if _, err := NewConsultationRequest(1, d, time.Now()); err != nil {
			t.Fatalf("horizon %d should be accepted: %v", years, err)
		}
	}
}

func TestRequestStatus_Worked(t *testing.T) {
	if StatusPending.Worked() || StatusCancelled.Worked() {
		t.Fatal("pending and cancelled are not worked states")
	}
	if !StatusInReview.Worked() || !StatusCompleted.Worked() {
		t.Fatal("in_review and completed are worked states")
	}
}

func TestNewRequestStats(t *testing.T) {
	st := NewRequestStats(map[RequestStatus]int64{
		StatusPending:   3,
		StatusInReview:  2,
		StatusCompleted: 1,
		StatusCancelled: 4,
	})
	if st.Total != 10 || st.Pending != 3 || st.InReview != 2 || st.Completed != 1 || st.Cancelled != 4 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestNewClientProfile(t *testing.T) {
	dob := "1990-04-12"
	risk := "dinamico"
	years := 15
	p, err := NewClientProfile(3, ProfileDraft{
		FirstName:        " Ada ",
		LastName:         "Lovelace",
		DateOfBirth:      &dob,
		TimeHorizonYears: &years,
		RiskProfile:      &risk,
	}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FirstName != "Ada" || p.UserID != 3 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.RiskProfile == nil || *p.RiskProfile != RiskDynamic {
		t.Fatalf("risk profile not parsed")
	}

	bad := "12/04/1990"
	_, err = NewClientProfile(3, ProfileDraft{FirstName: "Ada", LastName: "L", DateOfBirth: &bad}, time.Now())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad date, got %v", err)
	}
}
