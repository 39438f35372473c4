package schedule

import (
	"context"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	FindByEmployee(ctx context.Context, companyID, employeeID string) ([]ExpectedWorkday, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID string) ([]ExpectedWorkday, error) {
	var rows []ExpectedWorkday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("weekday ASC").
		Find(&rows).Error
	return rows, err
}
