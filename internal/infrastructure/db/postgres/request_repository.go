package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

const viewColumns = `r.id, r.user_id, r.goal, r.amount, r.monthly_contribution, r.risk_profile,
	r.time_horizon_years, r.notes, r.status, r.created_at, r.updated_at,
	u.email AS owner_email, u.role AS owner_role`

var sortColumns = map[string]string{
	ports.SortCreatedAt: "r.created_at",
	ports.SortUpdatedAt: "r.updated_at",
	ports.SortAmount:    "r.amount",
}

// RequestRepository implements ports.RequestRepository on PostgreSQL.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.ConsultationRequest) error {
	m := newRequestModel(req)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return fmt.Errorf("postgres: insert request: %w", err)
	}
	req.ID = m.ID
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id, ownerID int64) (*domain.RequestView, error) {
	q := r.views(ctx).Where("r.id = ?", id)
	if ownerID != 0 {
		q = q.Where("r.user_id = ?", ownerID)
	}

	var rows []requestViewRow
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: find request: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrRequestNotFound
	}
	v := rows[0].toDomain()
	return &v, nil
}

func (r *RequestRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.RequestView, error) {
	var rows []requestViewRow
	err := r.views(ctx).
		Where("r.user_id = ?", ownerID).
		Order("r.created_at DESC").
		Order("r.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: list owner requests: %w", err)
	}
	return toViews(rows), nil
}

func (r *RequestRepository) List(ctx context.Context, f ports.ListRequestsFilter) ([]domain.RequestView, int64, error) {
	var total int64
	if err := applyListFilter(r.joined(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("postgres: count requests: %w", err)
	}

	var rows []requestViewRow
	q := applyListFilter(r.views(ctx), f)
	q = orderAndPage(q, f)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("postgres: list requests: %w", err)
	}
	return toViews(rows), total, nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&requestModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: count by status: %w", err)
	}

	out := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.RequestStatus(row.Status)] = row.N
	}
	return out, nil
}

func (r *RequestRepository) ApplyTransition(ctx context.Context, id, ownerID int64, fn ports.TransitionFunc) (*domain.RequestView, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRequest(tx, id, ownerID)
		if err != nil {
			return err
		}

		req := row.toDomain()
		entry, err := fn(&req)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		if err := tx.Model(&requestModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":     string(req.Status),
				"updated_at": req.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("postgres: update status: %w", err)
		}

		logRow := newStatusLogModel(entry)
		if err := tx.Create(&logRow).Error; err != nil {
			return fmt.Errorf("postgres: insert status log: %w", err)
		}
		entry.ID = logRow.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id, 0)
}

func (r *RequestRepository) DeleteIf(ctx context.Context, id, ownerID int64, guard ports.DeleteGuard) (*domain.ConsultationRequest, error) {
	var deleted domain.ConsultationRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRequest(tx, id, ownerID)
		if err != nil {
			return err
		}

		deleted = row.toDomain()
		if err := guard(&deleted); err != nil {
			return err
		}

		if err := tx.Delete(&requestModel{}, id).Error; err != nil {
			return fmt.Errorf("postgres: delete request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *RequestRepository) History(ctx context.Context, requestID int64) ([]domain.StatusLog, error) {
	var rows []statusLogModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("changed_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: list status logs: %w", err)
	}

	out := make([]domain.StatusLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RequestRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("consultation_requests AS r").
		Joins("JOIN users AS u ON u.id = r.user_id")
}

// views selects requests joined with their owner.
func (r *RequestRepository) views(ctx context.Context) *gorm.DB {
	return r.joined(ctx).Select(viewColumns)
}

// lockRequest loads a request with SELECT ... FOR UPDATE.
func lockRequest(tx *gorm.DB, id, ownerID int64) (*requestModel, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	if ownerID != 0 {
		q = q.Where("user_id = ?", ownerID)
	}

	var row requestModel
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("postgres: lock request: %w", err)
	}
	return &row, nil
}

func applyListFilter(q *gorm.DB, f ports.ListRequestsFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("r.status = ?", string(f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		q = q.Where("(r.goal ILIKE ? OR r.notes ILIKE ? OR u.email ILIKE ?)", pattern, pattern, pattern)
	}
	return q
}

func orderAndPage(q *gorm.DB, f ports.ListRequestsFilter) *gorm.DB {
	col, ok := sortColumns[f.Sort]
	if !ok {
		col = sortColumns[ports.SortCreatedAt]
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: f.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "r.id", Raw: true}, Desc: f.Desc})
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toViews(rows []requestViewRow) []domain.RequestView {
	out := make([]domain.RequestView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
