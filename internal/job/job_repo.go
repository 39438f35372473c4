package job

import (
	"context"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=job_repo.go -destination=mock/job_repo_mock.go -package=mock
type Repository interface {
	// FindCompletedInRange returns completed jobs with service_date in
	// [start, end), assignments preloaded.
	FindCompletedInRange(ctx context.Context, companyID string, start, end time.Time) ([]Job, error)
	FindCompletedByEmployeeInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]Job, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindCompletedInRange(
	ctx context.Context,
	companyID string,
	start, end time.Time,
) ([]Job, error) {
	var rows []Job
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Scopes(tenant.Scope(companyID)).
		Where("completed = ?", true).
		Where("service_date >= ? AND service_date < ?", start, end).
		Order("service_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindCompletedByEmployeeInRange(
	ctx context.Context,
	companyID, employeeID string,
	start, end time.Time,
) ([]Job, error) {
	var rows []Job
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Scopes(tenant.Scope(companyID)).
		Joins("JOIN job_assignments ON job_assignments.job_id = jobs.id").
		Where("job_assignments.employee_id = ?", employeeID).
		Where("completed = ?", true).
		Where("service_date >= ? AND service_date < ?", start, end).
		Order("service_date ASC").
		Find(&rows).Error
	return rows, err
}
