package handler

import (
	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

func toRequestDraft(b createRequestBody) domain.RequestDraft {
	return domain.RequestDraft{
		Goal:                b.Goal,
		Amount:              b.Amount,
		MonthlyContribution: b.MonthlyContribution,
		RiskProfile:         b.RiskProfile,
		TimeHorizonYears:    b.TimeHorizonYears,
		Notes:               b.Notes,
	}
}

func toListInput(q listRequestsQuery) ports.ListRequestsInput {
	return ports.ListRequestsInput{
		Status: q.Status,
		Search: q.Q,
		Sort:   q.Sort,
		Order:  q.Order,
		Skip:   q.Skip,
		Limit:  q.Limit,
	}
}

func toRequestResponse(v domain.RequestView) requestResponse {
	return requestResponse{
		ID:                  v.ID,
		UserID:              v.UserID,
		UserEmail:           v.OwnerEmail,
		UserRole:            string(v.OwnerRole),
		Goal:                v.Goal,
		Amount:              v.Amount,
		MonthlyContribution: v.MonthlyContribution,
		RiskProfile:         string(v.RiskProfile),
		TimeHorizonYears:    v.TimeHorizonYears,
		Notes:               v.Notes,
		Status:              string(v.Status),
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func toRequestResponses(views []domain.RequestView) []requestResponse {
	out := make([]requestResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toRequestResponse(v))
	}
	return out
}

func toStatusLogResponses(logs []domain.StatusLog) []statusLogResponse {
	out := make([]statusLogResponse, 0, len(logs))
	for _, l := range logs {
		item := statusLogResponse{
			ID:              l.ID,
			RequestID:       l.RequestID,
			ChangedByUserID: l.ChangedByUserID,
			NewStatus:       string(l.NewStatus),
			ChangedAt:       l.ChangedAt,
		}
		if l.OldStatus != nil {
			old := string(*l.OldStatus)
			item.OldStatus = &old
		}
		out = append(out, item)
	}
	return out
}
