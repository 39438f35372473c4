package entry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=entry_repo.go -destination=mock/entry_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *CompensableEntry) error
	// CreateIdempotent inserts a synchronized entry, treating a sync-key
	// collision as "already represented". Returns false when the row
	// already existed — the caller counts it as skipped, not failed.
	CreateIdempotent(ctx context.Context, e *CompensableEntry) (bool, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*CompensableEntry, error)
	FindByPeriod(ctx context.Context, companyID, periodID string) ([]CompensableEntry, error)
	FindByPeriodAndEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]CompensableEntry, error)
	DeleteBySyncKey(ctx context.Context, companyID, syncKey string) (bool, error)
	// MarkEmployeeApproved flips the employee flag on the employee's own
	// entries and reports how many rows actually changed.
	MarkEmployeeApproved(ctx context.Context, companyID, employeeID string, entryIDs []string) (int64, error)
	// ClaimIntoRun conditionally assigns an entry to a run. The WHERE
	// guard on approved_in_run_id IS NULL is the concurrency control: of
	// two racing claims only one can see rows affected = 1.
	ClaimIntoRun(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error)
	// OverrideAmount applies an admin correction guarded by the entry's
	// last-seen updated_at; a stale guard means a concurrent write won.
	OverrideAmount(ctx context.Context, o OverrideUpdate) (bool, error)
	PeriodStatus(ctx context.Context, companyID, periodID string) (string, error)
	// LockPeriodStatus reads the owning period's status while taking a
	// shared lock on its row. Finalize takes the same row exclusively, so
	// a write guarded by this lock cannot interleave with a finalize.
	// Transaction-only.
	LockPeriodStatus(ctx context.Context, companyID, periodID string) (string, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)
}

type OverrideUpdate struct {
	CompanyID         string
	EntryID           string
	NewAmountCents    int64
	OriginalAmount    int64
	Reason            *string
	By                string
	ExpectedUpdatedAt time.Time
	KeepOriginal      bool // true when an earlier override already recorded it
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

const insertEntrySQL = `
	INSERT INTO pay_entries (
		id, company_id, period_id, employee_id, entry_type, category,
		amount_cents, hours, units, job_id, work_date, sync_key, source,
		rate_snapshot_id, rate_snapshot_type, rate_snapshot_amount,
		employee_approved, admin_approved, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())`

func insertEntryArgs(e *CompensableEntry) []any {
	return []any{
		e.ID, e.CompanyID, e.PeriodID, e.EmployeeID, e.EntryType, e.Category,
		e.AmountCents, e.Hours, e.Units, e.JobID, e.WorkDate, e.SyncKey, e.Source,
		e.RateSnapshotID, e.RateSnapshotType, e.RateSnapshotAmount,
		e.EmployeeApproved, e.AdminApproved,
	}
}

func (r *repository) Create(ctx context.Context, e *CompensableEntry) error {
	if r.tx != nil {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		_, err := r.tx.ExecContext(ctx, insertEntrySQL, insertEntryArgs(e)...)
		return err
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) CreateIdempotent(ctx context.Context, e *CompensableEntry) (bool, error) {
	if r.tx != nil {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		res, err := r.tx.ExecContext(ctx, insertEntrySQL+` ON CONFLICT (sync_key) DO NOTHING`, insertEntryArgs(e)...)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sync_key"}},
			DoNothing: true,
		}).
		Create(e)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CompensableEntry, error) {
	var e CompensableEntry
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]CompensableEntry, error) {
	var rows []CompensableEntry
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Order("employee_id, work_date, created_at").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByPeriodAndEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]CompensableEntry, error) {
	var rows []CompensableEntry
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Where("employee_id = ?", employeeID).
		Order("work_date, created_at").
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteBySyncKey(ctx context.Context, companyID, syncKey string) (bool, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, `
			UPDATE pay_entries
			SET deleted_at = NOW()
			WHERE company_id = $1 AND sync_key = $2 AND deleted_at IS NULL`,
			companyID, syncKey,
		)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("sync_key = ?", syncKey).
		Delete(&CompensableEntry{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkEmployeeApproved(ctx context.Context, companyID, employeeID string, entryIDs []string) (int64, error) {
	if r.tx != nil {
		var total int64
		for _, id := range entryIDs {
			res, err := r.tx.ExecContext(ctx, `
				UPDATE pay_entries
				SET employee_approved = TRUE, updated_at = NOW()
				WHERE id = $1 AND company_id = $2 AND employee_id = $3
				  AND employee_approved = FALSE AND deleted_at IS NULL`,
				id, companyID, employeeID,
			)
			if err != nil {
				return total, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	}

	res := r.db.WithContext(ctx).
		Model(&CompensableEntry{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("id IN ?", entryIDs).
		Where("employee_approved = ?", false).
		Update("employee_approved", true)
	return res.RowsAffected, res.Error
}

func (r *repository) ClaimIntoRun(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error) {
	if r.tx != nil {
		query := `
			UPDATE pay_entries
			SET approved_in_run_id = $1, admin_approved = TRUE, updated_at = NOW()
			WHERE id = $2 AND company_id = $3
			  AND approved_in_run_id IS NULL AND deleted_at IS NULL`
		if requireEmployeeApproved {
			query += ` AND employee_approved = TRUE`
		}
		res, err := r.tx.ExecContext(ctx, query, runID, entryID, companyID)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	db := r.db.WithContext(ctx).
		Model(&CompensableEntry{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", entryID).
		Where("approved_in_run_id IS NULL")
	if requireEmployeeApproved {
		db = db.Where("employee_approved = ?", true)
	}

	res := db.Updates(map[string]any{
		"approved_in_run_id": runID,
		"admin_approved":     true,
	})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) OverrideAmount(ctx context.Context, o OverrideUpdate) (bool, error) {
	if r.tx != nil {
		query := `
			UPDATE pay_entries
			SET amount_cents = $1, override_reason = $2, override_by = $3, updated_at = NOW()`
		args := []any{o.NewAmountCents, o.Reason, o.By}
		if !o.KeepOriginal {
			query += `, override_original_amount = $4
			WHERE id = $5 AND company_id = $6 AND updated_at = $7 AND deleted_at IS NULL`
			args = append(args, o.OriginalAmount, o.EntryID, o.CompanyID, o.ExpectedUpdatedAt)
		} else {
			query += `
			WHERE id = $4 AND company_id = $5 AND updated_at = $6 AND deleted_at IS NULL`
			args = append(args, o.EntryID, o.CompanyID, o.ExpectedUpdatedAt)
		}
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}

	updates := map[string]any{
		"amount_cents":    o.NewAmountCents,
		"override_reason": o.Reason,
		"override_by":     o.By,
	}
	if !o.KeepOriginal {
		updates["override_original_amount"] = o.OriginalAmount
	}

	res := r.db.WithContext(ctx).
		Model(&CompensableEntry{}).
		Scopes(tenant.Scope(o.CompanyID)).
		Where("id = ?", o.EntryID).
		Where("updated_at = ?", o.ExpectedUpdatedAt).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) PeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	var status string
	err := r.db.WithContext(ctx).
		Table("pay_periods").
		Select("status").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", periodID).
		Scan(&status).Error
	return status, err
}

func (r *repository) LockPeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	if r.tx == nil {
		return "", sql.ErrTxDone
	}
	var status string
	err := r.tx.QueryRowContext(ctx, `
		SELECT status FROM pay_periods
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
		FOR SHARE`,
		periodID, companyID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return status, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
