package rate

import (
	"context"
	"database/sql"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rate_repo.go -destination=mock/rate_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Rate) error
	FindByEmployee(ctx context.Context, companyID, employeeID string) ([]Rate, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]Rate, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, rate *Rate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID string) ([]Rate, error) {
	var rows []Rate
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("effective_date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Rate, error) {
	var rows []Rate
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("employee_id, effective_date DESC").
		Find(&rows).Error
	return rows, err
}
