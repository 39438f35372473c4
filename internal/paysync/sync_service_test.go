package paysync_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/job"
	"go-payroll/internal/payperiod"
	perioderrors "go-payroll/internal/payperiod/errors"
	"go-payroll/internal/paysync"
	"go-payroll/internal/rate"
	"go-payroll/internal/schedule"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePeriodRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error)
	getOrCreateFn        func(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*payperiod.PayPeriod, bool, error)
}

func (f *fakePeriodRepository) WithTx(tx *sql.Tx) payperiod.Repository { return f }
func (f *fakePeriodRepository) GetOrCreate(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*payperiod.PayPeriod, bool, error) {
	if f.getOrCreateFn != nil {
		return f.getOrCreateFn(ctx, companyID, start, end, payDate)
	}
	return nil, false, nil
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
	return true, nil
}
func (f *fakePeriodRepository) LockForFinalize(ctx context.Context, companyID, periodID string) (string, error) {
	return payperiod.StatusDraft, nil
}
func (f *fakePeriodRepository) Finalize(ctx context.Context, fin payperiod.Finalization) (bool, error) {
	return true, nil
}
func (f *fakePeriodRepository) CreateExpense(ctx context.Context, e *payperiod.PayrollExpense) (bool, error) {
	return true, nil
}
func (f *fakePeriodRepository) FindExpenseByPeriod(ctx context.Context, companyID, periodID string) (*payperiod.PayrollExpense, error) {
	return nil, nil
}
func (f *fakePeriodRepository) MarkExpenseExported(ctx context.Context, periodID string) (bool, error) {
	return true, nil
}

// fakeEntryRepository keeps created entries in memory keyed by sync key,
// which makes CreateIdempotent behave like the real unique index.
type fakeEntryRepository struct {
	bySyncKey map[string]*entry.CompensableEntry
	created   []*entry.CompensableEntry
	deleted   []string

	createIdempotentFn func(ctx context.Context, e *entry.CompensableEntry) (bool, error)
	lockPeriodStatusFn func(ctx context.Context, companyID, periodID string) (string, error)
}

func newFakeEntryRepository() *fakeEntryRepository {
	return &fakeEntryRepository{bySyncKey: map[string]*entry.CompensableEntry{}}
}

func (f *fakeEntryRepository) WithTx(tx *sql.Tx) entry.Repository { return f }
func (f *fakeEntryRepository) Create(ctx context.Context, e *entry.CompensableEntry) error {
	return nil
}
func (f *fakeEntryRepository) CreateIdempotent(ctx context.Context, e *entry.CompensableEntry) (bool, error) {
	if f.createIdempotentFn != nil {
		return f.createIdempotentFn(ctx, e)
	}
	if e.SyncKey != nil {
		if _, exists := f.bySyncKey[*e.SyncKey]; exists {
			return false, nil
		}
		f.bySyncKey[*e.SyncKey] = e
	}
	f.created = append(f.created, e)
	return true, nil
}
func (f *fakeEntryRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*entry.CompensableEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepository) FindByPeriod(ctx context.Context, companyID, periodID string) ([]entry.CompensableEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepository) FindByPeriodAndEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]entry.CompensableEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepository) DeleteBySyncKey(ctx context.Context, companyID, syncKey string) (bool, error) {
	if _, exists := f.bySyncKey[syncKey]; !exists {
		return false, nil
	}
	delete(f.bySyncKey, syncKey)
	f.deleted = append(f.deleted, syncKey)
	return true, nil
}
func (f *fakeEntryRepository) MarkEmployeeApproved(ctx context.Context, companyID, employeeID string, entryIDs []string) (int64, error) {
	return 0, nil
}
func (f *fakeEntryRepository) ClaimIntoRun(ctx context.Context, companyID, runID, entryID string, requireEmployeeApproved bool) (bool, error) {
	return true, nil
}
func (f *fakeEntryRepository) OverrideAmount(ctx context.Context, o entry.OverrideUpdate) (bool, error) {
	return true, nil
}
func (f *fakeEntryRepository) PeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	return payperiod.StatusDraft, nil
}
func (f *fakeEntryRepository) LockPeriodStatus(ctx context.Context, companyID, periodID string) (string, error) {
	if f.lockPeriodStatusFn != nil {
		return f.lockPeriodStatusFn(ctx, companyID, periodID)
	}
	return payperiod.StatusDraft, nil
}
func (f *fakeEntryRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	return true, nil
}

type fakeRateRepository struct {
	byEmployee map[string][]rate.Rate
}

func (f *fakeRateRepository) WithTx(tx *sql.Tx) rate.Repository           { return f }
func (f *fakeRateRepository) Create(ctx context.Context, r *rate.Rate) error { return nil }
func (f *fakeRateRepository) FindByEmployee(ctx context.Context, companyID, employeeID string) ([]rate.Rate, error) {
	return f.byEmployee[employeeID], nil
}
func (f *fakeRateRepository) FindAllByCompany(ctx context.Context, companyID string) ([]rate.Rate, error) {
	return nil, nil
}

type fakeJobRepository struct {
	jobs       []job.Job
	byEmployee map[string][]job.Job
}

func (f *fakeJobRepository) FindCompletedInRange(ctx context.Context, companyID string, start, end time.Time) ([]job.Job, error) {
	return f.jobs, nil
}
func (f *fakeJobRepository) FindCompletedByEmployeeInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]job.Job, error) {
	return f.byEmployee[employeeID], nil
}

type fakeClockRepository struct {
	closed     []attendance.ClockEvent
	byEmployee map[string][]attendance.ClockEvent
}

func (f *fakeClockRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeClockRepository) Create(ctx context.Context, e *attendance.ClockEvent) error {
	return nil
}
func (f *fakeClockRepository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.ClockEvent, error) {
	return nil, nil
}
func (f *fakeClockRepository) FindAllByCompany(ctx context.Context, companyID string) ([]attendance.ClockEvent, error) {
	return nil, nil
}
func (f *fakeClockRepository) FindAllByCompanyAndEmployee(ctx context.Context, companyID, employeeID string) ([]attendance.ClockEvent, error) {
	return nil, nil
}
func (f *fakeClockRepository) FindClosedInRange(ctx context.Context, companyID string, start, end time.Time) ([]attendance.ClockEvent, error) {
	return f.closed, nil
}
func (f *fakeClockRepository) FindByEmployeeInRange(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]attendance.ClockEvent, error) {
	return f.byEmployee[employeeID], nil
}
func (f *fakeClockRepository) Update(ctx context.Context, e *attendance.ClockEvent) error {
	return nil
}

type fakeScheduleRepository struct {
	byEmployee map[string][]schedule.ExpectedWorkday
}

func (f *fakeScheduleRepository) FindByEmployee(ctx context.Context, companyID, employeeID string) ([]schedule.ExpectedWorkday, error) {
	return f.byEmployee[employeeID], nil
}

type fakeEmployeeRepository struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return f.employees, nil
}
func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) ExistsInCompany(ctx context.Context, companyID, id string) (bool, error) {
	return true, nil
}
func (f *fakeEmployeeRepository) NamesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

type syncDeps struct {
	service    paysync.Service
	periodRepo *fakePeriodRepository
	entryRepo  *fakeEntryRepository
	rateRepo   *fakeRateRepository
	jobRepo    *fakeJobRepository
	clockRepo  *fakeClockRepository
	schedRepo  *fakeScheduleRepository
	empRepo    *fakeEmployeeRepository
}

func setupSyncTest(period *payperiod.PayPeriod) *syncDeps {
	db, sqlMock, _ := sqlmock.New()
	// Every pass runs in one transaction; preload enough pairs for tests
	// that run several passes back to back.
	for i := 0; i < 6; i++ {
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()
	}

	deps := &syncDeps{
		periodRepo: &fakePeriodRepository{},
		entryRepo:  newFakeEntryRepository(),
		rateRepo:   &fakeRateRepository{byEmployee: map[string][]rate.Rate{}},
		jobRepo:    &fakeJobRepository{byEmployee: map[string][]job.Job{}},
		clockRepo:  &fakeClockRepository{byEmployee: map[string][]attendance.ClockEvent{}},
		schedRepo:  &fakeScheduleRepository{byEmployee: map[string][]schedule.ExpectedWorkday{}},
		empRepo:    &fakeEmployeeRepository{},
	}
	deps.periodRepo.findByIDAndCompanyFn = func(ctx context.Context, companyID, id string) (*payperiod.PayPeriod, error) {
		return period, nil
	}
	deps.periodRepo.getOrCreateFn = func(ctx context.Context, companyID string, start, end time.Time, payDate *time.Time) (*payperiod.PayPeriod, bool, error) {
		return period, false, nil
	}
	deps.entryRepo.lockPeriodStatusFn = func(ctx context.Context, companyID, periodID string) (string, error) {
		return period.Status, nil
	}
	deps.service = paysync.NewService(
		db, deps.periodRepo, deps.entryRepo, deps.rateRepo, deps.jobRepo,
		deps.clockRepo, deps.schedRepo, deps.empRepo,
		paysync.Config{MissedDayDeductionCents: 5000},
	)
	return deps
}

func testPeriod(status string) *payperiod.PayPeriod {
	return &payperiod.PayPeriod{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func perVisitRate(amount int64) rate.Rate {
	return rate.Rate{
		ID:            uuid.New(),
		RateType:      rate.TypePerVisit,
		AmountCents:   amount,
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
	}
}

func hourlyRate(amount int64) rate.Rate {
	r := perVisitRate(amount)
	r.RateType = rate.TypeHourly
	return r
}

func monthlyRate(amount int64) rate.Rate {
	r := perVisitRate(amount)
	r.RateType = rate.TypeMonthly
	return r
}

func completedJob(serviceDate time.Time, hours float64, employees ...uuid.UUID) job.Job {
	j := job.Job{
		ID:                     uuid.New(),
		ServiceDate:            serviceDate,
		ScheduledDurationHours: hours,
		Completed:              true,
	}
	for _, emp := range employees {
		j.Assignments = append(j.Assignments, job.JobAssignment{JobID: j.ID, EmployeeID: emp})
	}
	return j
}

func TestSyncJobs_PerVisitEntries(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{perVisitRate(2500)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, emp),
		completedJob(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), 1, emp),
	}

	result, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, deps.entryRepo.created, 2)
	for _, e := range deps.entryRepo.created {
		assert.Equal(t, int64(2500), e.AmountCents)
		assert.Equal(t, entry.TypeEarning, e.EntryType)
		assert.Equal(t, entry.SourceJobSync, e.Source)
		assert.Equal(t, int64(2500), e.RateSnapshotAmount)
	}
}

func TestSyncJobs_RerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{perVisitRate(2500)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, emp),
	}

	first, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())
	assert.NoError(t, err)
	// The rerun still examines the same evidence, it just creates nothing.
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, deps.entryRepo.created, 1)
}

func TestSyncJobs_HourlyUsesScheduledDuration(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{hourlyRate(1850)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 3, emp),
	}

	result, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	created := deps.entryRepo.created[0]
	assert.Equal(t, int64(5550), created.AmountCents)
	assert.Equal(t, 3.0, created.Hours)
	assert.Equal(t, entry.CategoryHoursWorked, created.Category)
}

func TestSyncJobs_MissingRateRecordedNotPaid(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, emp),
	}

	result, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Len(t, result.MissingRate, 1)
	assert.Equal(t, emp.String(), result.MissingRate[0].EmployeeID)
	assert.Empty(t, deps.entryRepo.created)
}

func TestSyncJobs_MultipleAssigneesEachPaid(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	alice := uuid.New()
	bob := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[alice.String()] = []rate.Rate{perVisitRate(2500)}
	deps.rateRepo.byEmployee[bob.String()] = []rate.Rate{perVisitRate(3000)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, alice, bob),
	}

	result, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Created)
}

func TestSyncJobs_LockedPeriodRejected(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusLocked)

	deps := setupSyncTest(period)

	_, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.ErrorIs(t, err, perioderrors.ErrPeriodLocked)
}

func TestSyncJobs_AbortsWhenPeriodLocksMidPass(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{perVisitRate(2500)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, emp),
	}
	// A finalize commits between the pass's status pre-check and its
	// shared lock on the period row.
	deps.entryRepo.lockPeriodStatusFn = func(ctx context.Context, companyID, periodID string) (string, error) {
		return payperiod.StatusLocked, nil
	}

	_, err := deps.service.SyncJobsForPeriod(ctx, period.CompanyID.String(), period.ID.String())

	assert.ErrorIs(t, err, perioderrors.ErrPeriodLocked)
	assert.Empty(t, deps.entryRepo.created)
}

func TestSyncClockEvents_HourlyEarning(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{hourlyRate(1850)}

	workDate := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	clockIn := workDate.Add(9 * time.Hour)
	clockOut := clockIn.Add(3 * time.Hour)
	deps.clockRepo.closed = []attendance.ClockEvent{{
		ID:         uuid.New(),
		CompanyID:  period.CompanyID,
		EmployeeID: emp,
		WorkDate:   workDate,
		ClockIn:    clockIn,
		ClockOut:   &clockOut,
	}}

	result, err := deps.service.SyncClockEventsForRange(ctx, period.CompanyID.String(), period.StartDate, period.EndDate)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	created := deps.entryRepo.created[0]
	assert.True(t, created.EmployeeApproved, "own punches are pre-approved")
	assert.Equal(t, 3.0, created.Hours)
	assert.Equal(t, int64(5550), created.AmountCents)
	assert.Equal(t, entry.SourceClockSync, created.Source)
}

func TestSyncClockEvents_NonHourlyRateSkipped(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{perVisitRate(2500)}

	workDate := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	clockIn := workDate.Add(9 * time.Hour)
	clockOut := clockIn.Add(4 * time.Hour)
	deps.clockRepo.closed = []attendance.ClockEvent{{
		ID:         uuid.New(),
		EmployeeID: emp,
		WorkDate:   workDate,
		ClockIn:    clockIn,
		ClockOut:   &clockOut,
	}}

	result, err := deps.service.SyncClockEventsForRange(ctx, period.CompanyID.String(), period.StartDate, period.EndDate)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, deps.entryRepo.created)
}

func TestSyncMissedDays_BooksDeductionsForPastScheduledDays(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.empRepo.employees = []employee.Employee{{ID: emp, CompanyID: period.CompanyID, Active: true}}
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{monthlyRate(300000)}
	// Scheduled Mondays only: 2026-02-02 and 2026-02-09 fall in the period.
	deps.schedRepo.byEmployee[emp.String()] = []schedule.ExpectedWorkday{
		{EmployeeID: emp, Weekday: int(time.Monday)},
	}
	// Worked the first Monday (job evidence), missed the second.
	deps.jobRepo.byEmployee[emp.String()] = []job.Job{
		completedJob(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), 1, emp),
	}

	result, err := deps.service.SyncMissedWorkDeductions(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Created)
	created := deps.entryRepo.created[0]
	assert.Equal(t, entry.TypeDeduction, created.EntryType)
	assert.Equal(t, entry.CategoryMissedDay, created.Category)
	assert.Equal(t, int64(5000), created.AmountCents)
	assert.Equal(t, "2026-02-09", created.WorkDate.Format("2006-01-02"))
}

func TestSyncMissedDays_RetractsWhenEvidenceArrives(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.empRepo.employees = []employee.Employee{{ID: emp, CompanyID: period.CompanyID, Active: true}}
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{monthlyRate(300000)}
	deps.schedRepo.byEmployee[emp.String()] = []schedule.ExpectedWorkday{
		{EmployeeID: emp, Weekday: int(time.Monday)},
	}

	first, err := deps.service.SyncMissedWorkDeductions(ctx, period.CompanyID.String(), period.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	// A back-dated clock event lands for the first Monday.
	workDate := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	clockIn := workDate.Add(9 * time.Hour)
	clockOut := clockIn.Add(8 * time.Hour)
	deps.clockRepo.byEmployee[emp.String()] = []attendance.ClockEvent{{
		ID:         uuid.New(),
		EmployeeID: emp,
		WorkDate:   workDate,
		ClockIn:    clockIn,
		ClockOut:   &clockOut,
	}}

	second, err := deps.service.SyncMissedWorkDeductions(ctx, period.CompanyID.String(), period.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, 1, second.Removed)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, deps.entryRepo.deleted, 1)
	assert.Contains(t, deps.entryRepo.deleted[0], "2026-02-02")
}

func TestSyncMissedDays_HourlyEmployeesIgnored(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusDraft)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.empRepo.employees = []employee.Employee{{ID: emp, CompanyID: period.CompanyID, Active: true}}
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{hourlyRate(1850)}
	deps.schedRepo.byEmployee[emp.String()] = []schedule.ExpectedWorkday{
		{EmployeeID: emp, Weekday: int(time.Monday)},
	}

	result, err := deps.service.SyncMissedWorkDeductions(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, deps.entryRepo.created)
}

func TestMissingRateEmployeeIDs_ListsAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusApproved)
	paid := uuid.New()
	unpaid := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[paid.String()] = []rate.Rate{perVisitRate(2500)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, paid, unpaid),
		completedJob(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), 1, unpaid),
	}

	ids, err := deps.service.MissingRateEmployeeIDs(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, []string{unpaid.String()}, ids)
}

func TestMissingRateEmployeeIDs_EmptyWhenAllPriced(t *testing.T) {
	ctx := context.Background()
	period := testPeriod(payperiod.StatusApproved)
	emp := uuid.New()

	deps := setupSyncTest(period)
	deps.rateRepo.byEmployee[emp.String()] = []rate.Rate{perVisitRate(2500)}
	deps.jobRepo.jobs = []job.Job{
		completedJob(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 1, emp),
	}

	ids, err := deps.service.MissingRateEmployeeIDs(ctx, period.CompanyID.String(), period.ID.String())

	assert.NoError(t, err)
	assert.Empty(t, ids)
}
