package payperiod_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/audit"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payperiod"
	perioderrors "go-payroll/internal/payperiod/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePeriodRepository struct {
	findByIDAndCompanyFn  func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error)
	updateStatusFn        func(ctx context.Context, companyID, periodID, from, to string) (bool, error)
	lockForFinalizeFn     func(ctx context.Context, companyID, periodID string) (string, error)
	finalizeFn            func(ctx context.Context, f payperiod.Finalization) (bool, error)
	createExpenseFn       func(ctx context.Context, e *payperiod.PayrollExpense) (bool, error)
	findExpenseByPeriodFn func(ctx context.Context, companyID, periodID string) (*payperiod.PayrollExpense, error)
}

func (f *fakePeriodRepository) WithTx(tx *sql.Tx) payperiod.Repository { return f }
func (f *fakePeriodRepository) GetOrCreate(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*payperiod.PayPeriod, bool, error) {
	return &payperiod.PayPeriod{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(companyID),
		StartDate: start,
		EndDate:   end,
		PayDate:   payDate,
		Status:    payperiod.StatusDraft,
	}, true, nil
}
func (f *fakePeriodRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}
func (f *fakePeriodRepository) FindAllByCompany(ctx context.Context, companyID string, status string) ([]payperiod.PayPeriod, error) {
	return nil, nil
}
func (f *fakePeriodRepository) UpdateStatus(ctx context.Context, companyID, periodID, from, to string) (bool, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, companyID, periodID, from, to)
	}
	return true, nil
}
func (f *fakePeriodRepository) LockForFinalize(ctx context.Context, companyID, periodID string) (string, error) {
	if f.lockForFinalizeFn != nil {
		return f.lockForFinalizeFn(ctx, companyID, periodID)
	}
	return payperiod.StatusApproved, nil
}
func (f *fakePeriodRepository) Finalize(ctx context.Context, fin payperiod.Finalization) (bool, error) {
	if f.finalizeFn != nil {
		return f.finalizeFn(ctx, fin)
	}
	return true, nil
}
func (f *fakePeriodRepository) CreateExpense(ctx context.Context, e *payperiod.PayrollExpense) (bool, error) {
	if f.createExpenseFn != nil {
		return f.createExpenseFn(ctx, e)
	}
	return true, nil
}
func (f *fakePeriodRepository) FindExpenseByPeriod(ctx context.Context, companyID, periodID string) (*payperiod.PayrollExpense, error) {
	if f.findExpenseByPeriodFn != nil {
		return f.findExpenseByPeriodFn(ctx, companyID, periodID)
	}
	return nil, nil
}
func (f *fakePeriodRepository) MarkExpenseExported(ctx context.Context, periodID string) (bool, error) {
	return true, nil
}

type fakeEntryRepository struct {
	claimIntoRunFn func(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error)
	findByPeriodFn func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error)
}

func (f *fakeEntryRepository) WithTx(tx *sql.Tx) entry.Repository { return f }
func (f *fakeEntryRepository) Create(ctx context.Context, e *entry.CompensableEntry) error {
	return nil
}
func (f *fakeEntryRepository) CreateIdempotent(ctx context.Context, e *entry.CompensableEntry) (bool, error) {
	return true, nil
}
func (f *fakeEntryRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*entry.CompensableEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
	if f.findByPeriodFn != nil {
		return f.findByPeriodFn(ctx, companyID, periodID)
	}
	return nil, nil
}
func (f *fakeEntryRepository) FindByPeriodAndEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]entry.CompensableEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepository) DeleteBySyncKey(ctx context.Context, companyID, syncKey string) (bool, error) {
	return false, nil
}
func (f *fakeEntryRepository) MarkEmployeeApproved(ctx context.Context, companyID, employeeID string, entryIDs []string) (int64, error) {
	return int64(len(entryIDs)), nil
}
func (f *fakeEntryRepository) ClaimIntoRun(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error) {
	if f.claimIntoRunFn != nil {
		return f.claimIntoRunFn(ctx, companyID, runID, entryID, requireEmployeeApproved)
	}
	return true, nil
}
func (f *fakeEntryRepository) OverrideAmount(ctx context.Context, o entry.OverrideUpdate) (bool, error) {
	return true, nil
}
func (f *fakeEntryRepository) PeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	return payperiod.StatusDraft, nil
}
func (f *fakeEntryRepository) LockPeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	return payperiod.StatusDraft, nil
}
func (f *fakeEntryRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return true, nil
}

type fakeEmployeeRepository struct{}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) ExistsInCompany(ctx context.Context, companyID, id string) (bool, error) {
	return true, nil
}
func (f *fakeEmployeeRepository) NamesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	names := map[string]string{}
	for _, id := range ids {
		names[id] = "Employee " + id[:8]
	}
	return names, nil
}

type fakeRateGate struct {
	missing []string
}

func (f *fakeRateGate) MissingRateEmployeeIDs(ctx context.Context, companyID, periodID string) ([]string, error) {
	return f.missing, nil
}

type fakeAuditRepository struct {
	events []audit.AuditEvent
}

func (f *fakeAuditRepository) WithTx(tx *sql.Tx) audit.Repository { return f }
func (f *fakeAuditRepository) Create(ctx context.Context, e *audit.AuditEvent) error {
	f.events = append(f.events, *e)
	return nil
}
func (f *fakeAuditRepository) FindByCompany(ctx context.Context, companyID string, limit int) ([]audit.AuditEvent, error) {
	return f.events, nil
}
func (f *fakeAuditRepository) FindByEntity(ctx context.Context, companyID, entityID string) ([]audit.AuditEvent, error) {
	return f.events, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type periodServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   payperiod.Service
	repo      *fakePeriodRepository
	entryRepo *fakeEntryRepository
	rateGate  *fakeRateGate
	auditRepo *fakeAuditRepository
	outbox    *fakeOutboxRepository
}

func setupPeriodServiceTest(t *testing.T, cfg payperiod.Config) *periodServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &periodServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      &fakePeriodRepository{},
		entryRepo: &fakeEntryRepository{},
		rateGate:  &fakeRateGate{},
		auditRepo: &fakeAuditRepository{},
		outbox:    &fakeOutboxRepository{},
	}
	deps.service = payperiod.NewService(
		db, deps.repo, deps.entryRepo, &fakeEmployeeRepository{},
		deps.rateGate, audit.NewService(deps.auditRepo), deps.auditRepo,
		deps.outbox, nil, cfg,
	)
	return deps
}

func statusPeriod(status string) *payperiod.PayPeriod {
	return &payperiod.PayPeriod{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func TestPeriodService_Transition(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("draft to review", func(t *testing.T) {
		deps := setupPeriodServiceTest(t, payperiod.Config{})
		defer deps.db.Close()

		period := statusPeriod(payperiod.StatusDraft)
		calls := 0
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
			calls++
			if calls > 1 {
				updated := *period
				updated.Status = payperiod.StatusReview
				return &updated, nil
			}
			return period, nil
		}

		resp, err := deps.service.Transition(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.TransitionRequest{Status: payperiod.StatusReview})

		assert.NoError(t, err)
		assert.Equal(t, payperiod.StatusReview, resp.Status)
		assert.Len(t, deps.auditRepo.events, 1)
	})

	t.Run("locked is terminal", func(t *testing.T) {
		deps := setupPeriodServiceTest(t, payperiod.Config{})
		defer deps.db.Close()

		period := statusPeriod(payperiod.StatusLocked)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
			return period, nil
		}

		_, err := deps.service.Transition(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.TransitionRequest{Status: payperiod.StatusDraft})

		assert.ErrorIs(t, err, perioderrors.ErrPeriodLocked)
	})

	t.Run("cannot lock via transition", func(t *testing.T) {
		deps := setupPeriodServiceTest(t, payperiod.Config{})
		defer deps.db.Close()

		period := statusPeriod(payperiod.StatusApproved)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
			return period, nil
		}

		_, err := deps.service.Transition(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.TransitionRequest{Status: payperiod.StatusLocked})

		assert.ErrorIs(t, err, perioderrors.ErrInvalidTransition)
	})

	t.Run("skipping review is rejected", func(t *testing.T) {
		deps := setupPeriodServiceTest(t, payperiod.Config{})
		defer deps.db.Close()

		period := statusPeriod(payperiod.StatusDraft)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
			return period, nil
		}

		_, err := deps.service.Transition(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.TransitionRequest{Status: payperiod.StatusApproved})

		assert.ErrorIs(t, err, perioderrors.ErrInvalidTransition)
	})
}

func TestPeriodService_ApproveEntries_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusReview)

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}

	okEntry := uuid.New().String()
	claimedElsewhere := uuid.New().String()
	deps.entryRepo.claimIntoRunFn = func(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error) {
		return entryID != claimedElsewhere, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectRollback()

	_, err := deps.service.ApproveEntries(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.ApproveEntriesRequest{
		EntryIDs: []string{okEntry, claimedElsewhere},
	})

	assert.ErrorIs(t, err, perioderrors.ErrEntriesAlreadyClaimed)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_ApproveEntries_Success(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusReview)
	emp := uuid.New()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}

	var capturedRunID string
	deps.entryRepo.claimIntoRunFn = func(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error) {
		capturedRunID = runID
		return true, nil
	}
	deps.entryRepo.findByPeriodFn = func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
		runID := uuid.MustParse(capturedRunID)
		return []entry.CompensableEntry{
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 2500, ApprovedInRunID: &runID},
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 2500, ApprovedInRunID: &runID},
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 9999},
		}, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectCommit()

	resp, err := deps.service.ApproveEntries(ctx, period.CompanyID.String(), actorID, period.ID.String(), payperiod.ApproveEntriesRequest{
		EntryIDs: []string{uuid.New().String(), uuid.New().String()},
	})

	assert.NoError(t, err)
	assert.Equal(t, capturedRunID, resp.RunID)
	assert.Equal(t, 2, resp.Claimed)
	assert.Equal(t, int64(5000), resp.Totals.TotalEarnings)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_Success(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusApproved)
	emp := uuid.New()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	calls := 0
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		calls++
		if calls > 1 {
			locked := *period
			locked.Status = payperiod.StatusLocked
			net := int64(5000)
			locked.FrozenNetAmount = &net
			return &locked, nil
		}
		return period, nil
	}
	deps.entryRepo.findByPeriodFn = func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
		return []entry.CompensableEntry{
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 2500},
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 2500},
		}, nil
	}

	var frozen payperiod.Finalization
	deps.repo.finalizeFn = func(ctx context.Context, f payperiod.Finalization) (bool, error) {
		frozen = f
		return true, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectCommit()

	resp, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.NoError(t, err)
	assert.False(t, resp.Replayed)
	assert.Equal(t, int64(5000), frozen.NetAmount)
	assert.Equal(t, int64(5000), resp.Expense.AmountCents)
	assert.Equal(t, payperiod.StatusLocked, resp.Period.Status)

	// Finalize emits through the outbox inside the same transaction.
	assert.Len(t, deps.outbox.created, 1)
	assert.Equal(t, events.PeriodFinalizedTopic, deps.outbox.created[0].Topic)
	assert.Equal(t, kafka.OutboxStatusPending, deps.outbox.created[0].Status)
	assert.Len(t, deps.auditRepo.events, 1)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_FreezesEntrySetReadUnderLock(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusApproved)
	emp := uuid.New()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	calls := 0
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		calls++
		if calls > 1 {
			locked := *period
			locked.Status = payperiod.StatusLocked
			net := int64(1850)
			locked.FrozenNetAmount = &net
			return &locked, nil
		}
		return period, nil
	}

	// An override commits while finalize waits for the period row lock:
	// the entry set changes between the status pre-check and the lock.
	var lockTaken bool
	deps.repo.lockForFinalizeFn = func(ctx context.Context, companyID, periodID string) (string, error) {
		lockTaken = true
		return payperiod.StatusApproved, nil
	}
	deps.entryRepo.findByPeriodFn = func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
		amount := int64(100)
		if lockTaken {
			amount = 1850
		}
		return []entry.CompensableEntry{
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: amount},
		}, nil
	}

	var frozen payperiod.Finalization
	deps.repo.finalizeFn = func(ctx context.Context, f payperiod.Finalization) (bool, error) {
		frozen = f
		return true, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectCommit()

	resp, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.NoError(t, err)
	// The frozen totals come from the set read while holding the lock.
	assert.Equal(t, int64(1850), frozen.NetAmount)
	assert.Equal(t, int64(1850), resp.Expense.AmountCents)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_ReplaysWhenLockRevealsLocked(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusApproved)

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	calls := 0
	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		calls++
		if calls > 1 {
			locked := *period
			locked.Status = payperiod.StatusLocked
			net := int64(5000)
			locked.FrozenNetAmount = &net
			return &locked, nil
		}
		return period, nil
	}
	// A concurrent finalize commits first; the lock reveals the flip.
	deps.repo.lockForFinalizeFn = func(ctx context.Context, companyID, periodID string) (string, error) {
		return payperiod.StatusLocked, nil
	}
	deps.repo.findExpenseByPeriodFn = func(ctx context.Context, companyID, periodID string) (*payperiod.PayrollExpense, error) {
		return &payperiod.PayrollExpense{
			ID:          uuid.New(),
			CompanyID:   period.CompanyID,
			PeriodID:    period.ID,
			AmountCents: 5000,
		}, nil
	}
	deps.repo.finalizeFn = func(ctx context.Context, f payperiod.Finalization) (bool, error) {
		t.Fatal("finalize must not write after losing the lock race")
		return false, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectRollback()

	resp, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(5000), resp.Expense.AmountCents)
	assert.Empty(t, deps.outbox.created)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_BlockedByMissingRates(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusApproved)
	unpriced := uuid.New().String()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}
	deps.rateGate.missing = []string{unpriced}

	_, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.ErrorIs(t, err, perioderrors.ErrMissingRates)
	assert.Empty(t, deps.outbox.created)
	// No transaction was opened at all.
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_ReplaysWhenAlreadyLocked(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusLocked)
	net := int64(5000)
	period.FrozenNetAmount = &net

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}
	deps.repo.findExpenseByPeriodFn = func(ctx context.Context, companyID, periodID string) (*payperiod.PayrollExpense, error) {
		return &payperiod.PayrollExpense{
			ID:          uuid.New(),
			CompanyID:   period.CompanyID,
			PeriodID:    period.ID,
			AmountCents: 5000,
		}, nil
	}

	resp, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, int64(5000), resp.Expense.AmountCents)
	// The replay books nothing new.
	assert.Empty(t, deps.outbox.created)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPeriodService_Finalize_RequiresApprovedStatus(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	period := statusPeriod(payperiod.StatusDraft)

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}

	_, err := deps.service.Finalize(ctx, period.CompanyID.String(), actorID, period.ID.String())

	assert.ErrorIs(t, err, perioderrors.ErrNotApproved)
}

func TestPeriodService_GetTotals_FrozenAfterLock(t *testing.T) {
	ctx := context.Background()
	period := statusPeriod(payperiod.StatusLocked)
	hours := 3.0
	earnings := int64(5550)
	deductions := int64(0)
	net := int64(5550)
	period.FrozenTotalHours = &hours
	period.FrozenTotalEarnings = &earnings
	period.FrozenTotalDeductions = &deductions
	period.FrozenNetAmount = &net

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}
	// Live entries disagree with the frozen totals; frozen wins.
	deps.entryRepo.findByPeriodFn = func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
		return []entry.CompensableEntry{
			{ID: uuid.New(), EmployeeID: uuid.New(), EntryType: entry.TypeEarning, AmountCents: 99999},
		}, nil
	}

	resp, err := deps.service.GetTotals(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.True(t, resp.Frozen)
	assert.Equal(t, int64(5550), resp.Totals.NetAmount)
	assert.Equal(t, 3.0, resp.Totals.TotalHours)
}

func TestPeriodService_GetTotals_ComputedWhileOpen(t *testing.T) {
	ctx := context.Background()
	period := statusPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	deps.repo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}
	deps.entryRepo.findByPeriodFn = func(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
		return []entry.CompensableEntry{
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeEarning, AmountCents: 2500},
			{ID: uuid.New(), EmployeeID: emp, EntryType: entry.TypeDeduction, AmountCents: 1000},
		}, nil
	}

	resp, err := deps.service.GetTotals(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.False(t, resp.Frozen)
	assert.Equal(t, int64(1500), resp.Totals.NetAmount)
	assert.Len(t, resp.Employees, 1)
}

func TestPeriodService_GetOrCreate_RejectsInvertedRange(t *testing.T) {
	ctx := context.Background()

	deps := setupPeriodServiceTest(t, payperiod.Config{})
	defer deps.db.Close()

	_, _, err := deps.service.GetOrCreate(ctx, uuid.New().String(), payperiod.CreatePeriodRequest{
		StartDate: "2026-02-14",
		EndDate:   "2026-02-01",
	})

	assert.ErrorIs(t, err, perioderrors.ErrInvalidDateRange)
}
