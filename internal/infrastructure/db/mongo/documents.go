package mongo

import (
	"time"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

type userDoc struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type profileDoc struct {
	ID               int64     `bson:"_id"`
	UserID           int64     `bson:"user_id"`
	FirstName        string    `bson:"first_name"`
	LastName         string    `bson:"last_name"`
	DateOfBirth      *string   `bson:"date_of_birth"`
	Phone            *string   `bson:"phone"`
	Income           *int64    `bson:"income"`
	MainGoal         *string   `bson:"main_goal"`
	TimeHorizonYears *int      `bson:"time_horizon_years"`
	RiskProfile      *string   `bson:"risk_profile"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func newProfileDoc(p *domain.ClientProfile) profileDoc {
	d := profileDoc{
		ID:               p.ID,
		UserID:           p.UserID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		DateOfBirth:      p.DateOfBirth,
		Phone:            p.Phone,
		Income:           p.Income,
		MainGoal:         p.MainGoal,
		TimeHorizonYears: p.TimeHorizonYears,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.RiskProfile != nil {
		rp := string(*p.RiskProfile)
		d.RiskProfile = &rp
	}
	return d
}

func (d profileDoc) toDomain() *domain.ClientProfile {
	p := &domain.ClientProfile{
		ID:               d.ID,
		UserID:           d.UserID,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		DateOfBirth:      d.DateOfBirth,
		Phone:            d.Phone,
		Income:           d.Income,
		MainGoal:         d.MainGoal,
		TimeHorizonYears: d.TimeHorizonYears,
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	if d.RiskProfile != nil {
		rp := domain.RiskProfile(*d.RiskProfile)
		p.RiskProfile = &rp
	}
	return p
}

type requestDoc struct {
	ID                  int64     `bson:"_id"`
	UserID              int64     `bson:"user_id"`
	Goal                string    `bson:"goal"`
	Amount              float64   `bson:"amount"`
	MonthlyContribution *float64  `bson:"monthly_contribution"`
	RiskProfile         string    `bson:"risk_profile"`
	TimeHorizonYears    int       `bson:"time_horizon_years"`
	Notes               *string   `bson:"notes"`
	Status              string    `bson:"status"`
	CreatedAt           time.Time `bson:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func newRequestDoc(r *domain.ConsultationRequest) requestDoc {
	return requestDoc{
		ID:                  r.ID,
		UserID:              r.UserID,
		Goal:                r.Goal,
		Amount:              r.Amount,
		MonthlyContribution: r.MonthlyContribution,
		RiskProfile:         string(r.RiskProfile),
		TimeHorizonYears:    r.TimeHorizonYears,
		Notes:               r.Notes,
		Status:              string(r.Status),
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
}

func (d requestDoc) toDomain() domain.ConsultationRequest {
	return domain.ConsultationRequest{
		ID:                  d.ID,
		UserID:              d.UserID,
		Goal:                d.Goal,
		Amount:              d.Amount,
		MonthlyContribution: d.MonthlyContribution,
		RiskProfile:         domain.RiskProfile(d.RiskProfile),
		TimeHorizonYears:    d.TimeHorizonYears,
		Notes:               d.Notes,
		Status:              domain.RequestStatus(d.Status),
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
}

// requestViewDoc is a request after the $lookup of its owner.
type requestViewDoc struct {
	Request    requestDoc `bson:",inline"`
	OwnerEmail string     `bson:"owner_email"`
	OwnerRole  string     `bson:"owner_role"`
}

func (d requestViewDoc) toDomain() domain.RequestView {
	return domain.RequestView{
		ConsultationRequest: d.Request.toDomain(),
		OwnerEmail:          d.OwnerEmail,
		OwnerRole:           domain.Role(d.OwnerRole),
	}
}

type statusLogDoc struct {
	ID              int64     `bson:"_id"`
	RequestID       int64     `bson:"request_id"`
	ChangedByUserID int64     `bson:"changed_by_user_id"`
	OldStatus       *string   `bson:"old_status"`
	NewStatus       string    `bson:"new_status"`
	ChangedAt       time.Time `bson:"changed_at"`
}

func newStatusLogDoc(l *domain.StatusLog) statusLogDoc {
	d := statusLogDoc{
		ID:              l.ID,
		RequestID:       l.RequestID,
		ChangedByUserID: l.ChangedByUserID,
		NewStatus:       string(l.NewStatus),
		ChangedAt:       l.ChangedAt.UTC(),
	}
	if l.OldStatus != nil {
		old := string(*l.OldStatus)
		d.OldStatus = &old
	}
	return d
}

func (d statusLogDoc) toDomain() domain.StatusLog {
	l := domain.StatusLog{
		ID:              d.ID,
		RequestID:       d.RequestID,
		ChangedByUserID: d.ChangedByUserID,
		NewStatus:       domain.RequestStatus(d.NewStatus),
		ChangedAt:       d.ChangedAt.UTC(),
	}
	if d.OldStatus != nil {
		old := domain.RequestStatus(*d.OldStatus)
		l.OldStatus = &old
	}
	return l
}
