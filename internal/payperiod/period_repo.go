package payperiod

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=period_repo.go -destination=mock/period_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// GetOrCreate returns the period covering exactly [start, end] for
	// the company, creating it as DRAFT when absent. The unique index on
	// (company_id, start_date, end_date) makes concurrent creates
	// converge on one row.
	GetOrCreate(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*PayPeriod, bool, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayPeriod, error)
	FindAllByCompany(ctx context.Context, companyID string, status string) ([]PayPeriod, error)
	// UpdateStatus is a compare-and-set on the status column: it only
	// moves from -> to and reports whether a row actually changed.
	UpdateStatus(ctx context.Context, companyID, periodID, from, to string) (bool, error)
	// LockForFinalize takes the period row lock and returns the current
	// status. Entry writers hold the same row shared for the life of
	// their transactions, so once this returns the period's entry set
	// cannot change until the caller's transaction ends. Transaction-only.
	LockForFinalize(ctx context.Context, companyID, periodID string) (string, error)
	// Finalize locks the period and freezes its totals in one guarded
	// update. Only an APPROVED period can flip.
	Finalize(ctx context.Context, f Finalization) (bool, error)
	// CreateExpense books the accounting artifact; a period_id collision
	// means a previous finalize already booked it.
	CreateExpense(ctx context.Context, e *PayrollExpense) (bool, error)
	FindExpenseByPeriod(ctx context.Context, companyID, periodID string) (*PayrollExpense, error)
	MarkExpenseExported(ctx context.Context, periodID string) (bool, error)
}

type Finalization struct {
	CompanyID       string
	PeriodID        string
	TotalHours      float64
	TotalEarnings   int64
	TotalDeductions int64
	NetAmount       int64
	FinalizedBy     string
	FinalizedAt     time.Time
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

func (r *repository) GetOrCreate(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*PayPeriod, bool, error) {
	row := &PayPeriod{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		StartDate: start,
		EndDate:   end,
		PayDate:   payDate,
		Status:    StatusDraft,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "start_date"}, {Name: "end_date"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return row, true, nil
	}

	var existing PayPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("start_date = ?", start).
		Where("end_date = ?", end).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayPeriod, error) {
	var p PayPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, status string) ([]PayPeriod, error) {
	db := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC")
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var rows []PayPeriod
	err := db.Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStatus(ctx context.Context, companyID, periodID, from, to string) (bool, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, `
			UPDATE pay_periods
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND company_id = $3 AND status = $4 AND deleted_at IS NULL`,
			to, periodID, companyID, from,
		)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	res := r.db.WithContext(ctx).
		Model(&PayPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", periodID).
		Where("status = ?", from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) LockForFinalize(ctx context.Context, companyID, periodID string) (string, error) {
	if r.tx == nil {
		return "", sql.ErrTxDone
	}
	var status string
	err := r.tx.QueryRowContext(ctx, `
		SELECT status FROM pay_periods
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
		FOR UPDATE`,
		periodID, companyID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return status, err
}

func (r *repository) Finalize(ctx context.Context, f Finalization) (bool, error) {
	if r.tx == nil {
		return false, sql.ErrTxDone
	}
	res, err := r.tx.ExecContext(ctx, `
		UPDATE pay_periods
		SET status = $1,
		    frozen_total_hours = $2,
		    frozen_total_earnings = $3,
		    frozen_total_deductions = $4,
		    frozen_net_amount = $5,
		    finalized_at = $6,
		    finalized_by = $7,
		    updated_at = NOW()
		WHERE id = $8 AND company_id = $9 AND status = $10 AND deleted_at IS NULL`,
		StatusLocked,
		f.TotalHours, f.TotalEarnings, f.TotalDeductions, f.NetAmount,
		f.FinalizedAt, f.FinalizedBy,
		f.PeriodID, f.CompanyID, StatusApproved,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) CreateExpense(ctx context.Context, e *PayrollExpense) (bool, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, `
			INSERT INTO payroll_expenses (id, company_id, period_id, amount_cents, description, exported, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
			ON CONFLICT (period_id) DO NOTHING`,
			e.ID, e.CompanyID, e.PeriodID, e.AmountCents, e.Description,
		)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "period_id"}},
			DoNothing: true,
		}).
		Create(e)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindExpenseByPeriod(ctx context.Context, companyID, periodID string) (*PayrollExpense, error) {
	var e PayrollExpense
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "period_id = ?", periodID).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) MarkExpenseExported(ctx context.Context, periodID string) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&PayrollExpense{}).
		Where("period_id = ?", periodID).
		Where("exported = ?", false).
		Updates(map[string]any{
			"exported":    true,
			"exported_at": now,
		})
	return res.RowsAffected > 0, res.Error
}
