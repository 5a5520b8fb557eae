package postgres

import (
	"time"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

const dateLayout = "2006-01-02"

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:client;check:chk_users_role,role IN ('client','advisor','admin')"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func newUserModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

type profileModel struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64      `gorm:"column:user_id;not null;uniqueIndex"`
	User             *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	FirstName        string     `gorm:"column:first_name;type:varchar(100);not null"`
	LastName         string     `gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth      *time.Time `gorm:"column:date_of_birth;type:date"`
	Phone            *string    `gorm:"column:phone;type:varchar(50)"`
	Income           *int64     `gorm:"column:income"`
	MainGoal         *string    `gorm:"column:main_goal;type:varchar(255)"`
	TimeHorizonYears *int       `gorm:"column:time_horizon_years"`
	RiskProfile      *string    `gorm:"column:risk_profile;type:varchar(20)"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null"`
}

func (profileModel) TableName() string { return "client_profiles" }

func (m profileModel) toDomain() *domain.ClientProfile {
	p := &domain.ClientProfile{
		ID:               m.ID,
		UserID:           m.UserID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Phone:            m.Phone,
		Income:           m.Income,
		MainGoal:         m.MainGoal,
		TimeHorizonYears: m.TimeHorizonYears,
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.DateOfBirth != nil {
		s := m.DateOfBirth.Format(dateLayout)
		p.DateOfBirth = &s
	}
	if m.RiskProfile != nil {
		rp := domain.RiskProfile(*m.RiskProfile)
		p.RiskProfile = &rp
	}
	return p
}

func newProfileModel(p *domain.ClientProfile) (profileModel, error) {
	m := profileModel{
		ID:               p.ID,
		UserID:           p.UserID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Phone:            p.Phone,
		Income:           p.Income,
		MainGoal:         p.MainGoal,
		TimeHorizonYears: p.TimeHorizonYears,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *p.DateOfBirth)
		if err != nil {
			return profileModel{}, domain.NewValidationError("date_of_birth", "must be formatted as YYYY-MM-DD")
		}
		m.DateOfBirth = &dob
	}
	if p.RiskProfile != nil {
		rp := string(*p.RiskProfile)
		m.RiskProfile = &rp
	}
	return m, nil
}

type requestModel struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID              int64      `gorm:"column:user_id;not null;index"`
	User                *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Goal                string     `gorm:"column:goal;type:varchar(255);not null"`
	Amount              float64    `gorm:"column:amount;not null"`
	MonthlyContribution *float64   `gorm:"column:monthly_contribution"`
	RiskProfile         string     `gorm:"column:risk_profile;type:varchar(20);not null"`
	TimeHorizonYears    int        `gorm:"column:time_horizon_years;not null"`
	Notes               *string    `gorm:"column:notes;type:text"`
	Status              string     `gorm:"column:status;type:varchar(20);not null;default:pending;index;check:chk_requests_status,status IN ('pending','in_review','completed','cancelled')"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null;index"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null"`
}

func (requestModel) TableName() string { return "consultation_requests" }

func (m requestModel) toDomain() domain.ConsultationRequest {
	return domain.ConsultationRequest{
		ID:                  m.ID,
		UserID:              m.UserID,
		Goal:                m.Goal,
		Amount:              m.Amount,
		MonthlyContribution: m.MonthlyContribution,
		RiskProfile:         domain.RiskProfile(m.RiskProfile),
		TimeHorizonYears:    m.TimeHorizonYears,
		Notes:               m.Notes,
		Status:              domain.RequestStatus(m.Status),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func newRequestModel(r *domain.ConsultationRequest) requestModel {
	return requestModel{
		ID:                  r.ID,
		UserID:              r.UserID,
		Goal:                r.Goal,
		Amount:              r.Amount,
		MonthlyContribution: r.MonthlyContribution,
		RiskProfile:         string(r.RiskProfile),
		TimeHorizonYears:    r.TimeHorizonYears,
		Notes:               r.Notes,
		Status:              string(r.Status),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// requestViewRow is a request joined with its owner.
type requestViewRow struct {
	ID                  int64
	UserID              int64
	Goal                string
	Amount              float64
	MonthlyContribution *float64
	RiskProfile         string
	TimeHorizonYears    int
	Notes               *string
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	OwnerEmail          string
	OwnerRole           string
}

func (r requestViewRow) toDomain() domain.RequestView {
	m := requestModel{
		ID:                  r.ID,
		UserID:              r.UserID,
		Goal:                r.Goal,
		Amount:              r.Amount,
		MonthlyContribution: r.MonthlyContribution,
		RiskProfile:         r.RiskProfile,
		TimeHorizonYears:    r.TimeHorizonYears,
		Notes:               r.Notes,
		Status:              r.Status,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	return domain.RequestView{
		ConsultationRequest: m.toDomain(),
		OwnerEmail:          r.OwnerEmail,
		OwnerRole:           domain.Role(r.OwnerRole),
	}
}

// statusLogModel has no foreign key to consultation_requests: audit rows
// outlive a hard delete of their request.
type statusLogModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID       int64     `gorm:"column:request_id;not null;index"`
	ChangedByUserID int64     `gorm:"column:changed_by_user_id;not null"`
	OldStatus       *string   `gorm:"column:old_status;type:varchar(20)"`
	NewStatus       string    `gorm:"column:new_status;type:varchar(20);not null"`
	ChangedAt       time.Time `gorm:"column:changed_at;not null;index"`
}

func (statusLogModel) TableName() string { return "consultation_request_status_logs" }

func (m statusLogModel) toDomain() domain.StatusLog {
	l := domain.StatusLog{
		ID:              m.ID,
		RequestID:       m.RequestID,
		ChangedByUserID: m.ChangedByUserID,
		NewStatus:       domain.RequestStatus(m.NewStatus),
		ChangedAt:       m.ChangedAt.UTC(),
	}
	if m.OldStatus != nil {
		old := domain.RequestStatus(*m.OldStatus)
		l.OldStatus = &old
	}
	return l
}

func newStatusLogModel(l *domain.StatusLog) statusLogModel {
	m := statusLogModel{
		RequestID:       l.RequestID,
		ChangedByUserID: l.ChangedByUserID,
		NewStatus:       string(l.NewStatus),
		ChangedAt:       l.ChangedAt,
	}
	if l.OldStatus != nil {
		old := string(*l.OldStatus)
		m.OldStatus = &old
	}
	return m
}
