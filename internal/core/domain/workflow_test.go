package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition_Owner(t *testing.T) {
	tests := []struct {
		from, to RequestStatus
		want     bool
	}{
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInReview, false},
		{StatusInReview, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanTransition(ActorOwner, tt.from, tt.to); got != tt.want {
			t.Errorf("owner %s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCanTransition_StaffIsUnrestricted(t *testing.T) {
	for _, from := range RequestStatuses {
		for _, to := range RequestStatuses {
			if !CanTransition(ActorStaff, from, to) {
				t.Errorf("staff %s -> %s should be allowed", from, to)
			}
		}
	}
}

func TestCanTransition_RejectsUnknownTarget(t *testing.T) {
	if CanTransition(ActorStaff, StatusPending, RequestStatus("archived")) {
		t.Fatal("unknown target status must be rejected")
	}
	if CanTransition(Actor("guest"), StatusPending, StatusCancelled) {
		t.Fatal("unknown actor must be rejected")
	}
}

func TestNewStatusLog_CapturesPriorStatus(t *testing.T) {
	req := &ConsultationRequest{ID: 7, Status: StatusInReview}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	log := NewStatusLog(req, 42, StatusCompleted, at)

	if log.RequestID != 7 || log.ChangedByUserID != 42 {
		t.Fatalf("unexpected ids: %+v", log)
	}
	if log.OldStatus == nil || *log.OldStatus != StatusInReview {
		t.Fatalf("expected old status in_review, got %v", log.OldStatus)
	}
	if log.NewStatus != StatusCompleted {
		t.Fatalf("expected new status completed, got %s", log.NewStatus)
	}
	if log.ChangedAt.Location() != time.UTC {
		t.Fatalf("changed_at must be UTC")
	}

	req.Status = StatusCompleted
	if *log.OldStatus != StatusInReview {
		t.Fatalf("old status must not alias the request status")
	}
}

func TestParseRequestStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_review", "completed", " cancelled "} {
		if _, err := ParseRequestStatus(s); err != nil {
			t.Errorf("ParseRequestStatus(%q) returned %v", s, err)
		}
	}
	_, err := ParseRequestStatus("done")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
