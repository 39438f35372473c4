package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *ClockEvent) error
	FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ClockEvent, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]ClockEvent, error)
	FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]ClockEvent, error)
	// FindClosedInRange returns events with a clock_out and work_date in
	// [start, end) — the payable evidence for the synchronizer.
	FindClosedInRange(ctx context.Context, companyID string, start, end time.Time) ([]ClockEvent, error)
	FindByEmployeeInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]ClockEvent, error)
	Update(ctx context.Context, e *ClockEvent) error
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

func (r *repository) Create(ctx context.Context, e *ClockEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ClockEvent, error) {
	var e ClockEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", date.Format("2006-01-02")).
		First(&e).Error
	return &e, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]ClockEvent, error) {
	var rows []ClockEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("work_date DESC, clock_in DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]ClockEvent, error) {
	var rows []ClockEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("work_date DESC, clock_in DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindClosedInRange(ctx context.Context, companyID string, start, end time.Time) ([]ClockEvent, error) {
	var rows []ClockEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("clock_out IS NOT NULL").
		Where("work_date >= ? AND work_date < ?", start, end).
		Order("work_date ASC, clock_in ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployeeInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]ClockEvent, error) {
	var rows []ClockEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("work_date >= ? AND work_date < ?", start, end).
		Order("work_date ASC, clock_in ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, e *ClockEvent) error {
	return r.db.WithContext(ctx).Save(e).Error
}
