package paysync

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/job"
	"go-payroll/internal/payperiod"
	perioderrors "go-payroll/internal/payperiod/errors"
	"go-payroll/internal/rate"
	"go-payroll/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	// MissedDayDeductionCents is the flat deduction booked for each
	// scheduled day a monthly-salaried employee left without work
	// evidence.
	MissedDayDeductionCents int64
}

//go:generate mockgen -source=sync_service.go -destination=mock/sync_service_mock.go -package=mock
type Service interface {
	// SyncJobsForPeriod turns completed jobs inside the period into
	// earning entries, one per job assignment. Safe to re-run.
	SyncJobsForPeriod(ctx context.Context, companyID, periodID string) (SyncResult, error)
	// SyncClockEventsForRange turns closed clock events inside [start,
	// end] into hourly earning entries, creating the covering period on
	// first use. Open events are not evidence and are left alone.
	SyncClockEventsForRange(ctx context.Context, companyID string, start, end time.Time) (SyncResult, error)
	// SyncMissedWorkDeductions books flat deductions for scheduled days
	// monthly-salaried employees did not work, and retracts deductions
	// whose day has since gained work evidence.
	SyncMissedWorkDeductions(ctx context.Context, companyID, periodID string) (SyncResult, error)
	// MissingRateEmployeeIDs lists employees whose work evidence in the
	// period cannot be priced. Finalize consults this.
	MissingRateEmployeeIDs(ctx context.Context, companyID, periodID string) ([]string, error)
}

type service struct {
	db           *sql.DB
	periodRepo   payperiod.Repository
	entryRepo    entry.Repository
	rateRepo     rate.Repository
	jobRepo      job.Repository
	clockRepo    attendance.Repository
	scheduleRepo schedule.Repository
	employees    employee.Repository
	cfg          Config
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	periodRepo payperiod.Repository,
	entryRepo entry.Repository,
	rateRepo rate.Repository,
	jobRepo job.Repository,
	clockRepo attendance.Repository,
	scheduleRepo schedule.Repository,
	employees employee.Repository,
	cfg Config,
) Service {
	return &service{
		db:           db,
		periodRepo:   periodRepo,
		entryRepo:    entryRepo,
		rateRepo:     rateRepo,
		jobRepo:      jobRepo,
		clockRepo:    clockRepo,
		scheduleRepo: scheduleRepo,
		employees:    employees,
		cfg:          cfg,
		logger:       zap.L().Named("paysync.service"),
	}
}

// rateCache avoids re-reading an employee's rate rows for every piece of
// evidence in the same pass.
type rateCache struct {
	repo      rate.Repository
	companyID string
	byEmp     map[string][]rate.Rate
}

func newRateCache(repo rate.Repository, companyID string) *rateCache {
	return &rateCache{repo: repo, companyID: companyID, byEmp: map[string][]rate.Rate{}}
}

func (c *rateCache) resolve(ctx context.Context, employeeID string, at time.Time, locationID *uuid.UUID) (rate.Rate, bool, error) {
	rates, ok := c.byEmp[employeeID]
	if !ok {
		var err error
		rates, err = c.repo.FindByEmployee(ctx, c.companyID, employeeID)
		if err != nil {
			return rate.Rate{}, false, err
		}
		c.byEmp[employeeID] = rates
	}
	r, found := rate.Resolve(rates, at, locationID)
	return r, found, nil
}

func (s *service) SyncJobsForPeriod(ctx context.Context, companyID, periodID string) (SyncResult, error) {
	period, err := s.openPeriod(ctx, companyID, periodID)
	if err != nil {
		return SyncResult{}, err
	}

	jobs, err := s.jobRepo.FindCompletedInRange(ctx, companyID, period.StartDate, period.EndDate.AddDate(0, 0, 1))
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{PeriodID: periodID}
	cache := newRateCache(s.rateRepo, companyID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncResult{}, err
	}
	defer tx.Rollback()

	entries, err := s.lockedEntryRepo(ctx, tx, companyID, periodID)
	if err != nil {
		return SyncResult{}, err
	}

	for _, j := range jobs {
		for _, a := range j.Assignments {
			result.Processed++
			empID := a.EmployeeID.String()
			syncKey := entry.JobSyncKey(a.EmployeeID, j.ID)

			r, found, err := cache.resolve(ctx, empID, j.ServiceDate, j.LocationID)
			if err != nil {
				return result, err
			}
			if !found {
				result.MissingRate = append(result.MissingRate, MissingRateItem{
					EmployeeID: empID,
					WorkDate:   j.ServiceDate.Format("2006-01-02"),
					JobID:      j.ID.String(),
				})
				continue
			}
			if r.RateType == rate.TypeMonthly {
				// Salaried employees are not paid per visit.
				result.Skipped++
				continue
			}

			row := jobEntry(*period, j, a.EmployeeID, r, syncKey)
			created, err := entries.CreateIdempotent(ctx, row)
			if err != nil {
				// One bad row must not abort the whole pass.
				result.Failed = append(result.Failed, SyncFailure{SyncKey: syncKey, Reason: err.Error()})
				continue
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return SyncResult{}, err
	}

	s.logSyncResult("job sync finished", result)
	return result, nil
}

func jobEntry(period payperiod.PayPeriod, j job.Job, employeeID uuid.UUID, r rate.Rate, syncKey string) *entry.CompensableEntry {
	snap := r.Snapshot()
	workDate := j.ServiceDate

	row := &entry.CompensableEntry{
		ID:                 uuid.New(),
		CompanyID:          period.CompanyID,
		PeriodID:           period.ID,
		EmployeeID:         employeeID,
		EntryType:          entry.TypeEarning,
		JobID:              &j.ID,
		WorkDate:           &workDate,
		SyncKey:            &syncKey,
		Source:             entry.SourceJobSync,
		RateSnapshotID:     &snap.RateID,
		RateSnapshotType:   snap.RateType,
		RateSnapshotAmount: snap.AmountCents,
	}

	switch r.RateType {
	case rate.TypeHourly:
		row.Category = entry.CategoryHoursWorked
		row.Hours = round2(j.ScheduledDurationHours)
		row.AmountCents = hourlyAmount(r.AmountCents, row.Hours)
	default:
		row.Category = entry.CategoryServiceVisit
		row.Units = 1
		row.AmountCents = r.AmountCents
	}
	return row
}

func (s *service) SyncClockEventsForRange(ctx context.Context, companyID string, start, end time.Time) (SyncResult, error) {
	if !end.After(start) {
		return SyncResult{}, perioderrors.ErrInvalidDateRange
	}

	// The first sync of a window brings its period into existence.
	period, _, err := s.periodRepo.GetOrCreate(ctx, companyID, start, end, nil)
	if err != nil {
		return SyncResult{}, err
	}
	if period.Status == payperiod.StatusLocked {
		return SyncResult{}, perioderrors.ErrPeriodLocked
	}

	events, err := s.clockRepo.FindClosedInRange(ctx, companyID, period.StartDate, period.EndDate.AddDate(0, 0, 1))
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{PeriodID: period.ID.String()}
	cache := newRateCache(s.rateRepo, companyID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncResult{}, err
	}
	defer tx.Rollback()

	entries, err := s.lockedEntryRepo(ctx, tx, companyID, period.ID.String())
	if err != nil {
		return SyncResult{}, err
	}

	for _, ev := range events {
		result.Processed++
		empID := ev.EmployeeID.String()
		syncKey := entry.ClockSyncKey(ev.EmployeeID, ev.WorkDate)

		r, found, err := cache.resolve(ctx, empID, ev.WorkDate, ev.LocationID)
		if err != nil {
			return result, err
		}
		if !found {
			result.MissingRate = append(result.MissingRate, MissingRateItem{
				EmployeeID: empID,
				WorkDate:   ev.WorkDate.Format("2006-01-02"),
			})
			continue
		}
		if r.RateType != rate.TypeHourly {
			// Per-visit and monthly employees are paid through jobs and
			// salary, not tracked hours.
			result.Skipped++
			continue
		}

		hours := round2(ev.ClockOut.Sub(ev.ClockIn).Hours())
		if hours <= 0 {
			result.Failed = append(result.Failed, SyncFailure{SyncKey: syncKey, Reason: "non-positive duration"})
			continue
		}

		snap := r.Snapshot()
		workDate := ev.WorkDate
		row := &entry.CompensableEntry{
			ID:                 uuid.New(),
			CompanyID:          period.CompanyID,
			PeriodID:           period.ID,
			EmployeeID:         ev.EmployeeID,
			EntryType:          entry.TypeEarning,
			Category:           entry.CategoryHoursWorked,
			AmountCents:        hourlyAmount(r.AmountCents, hours),
			Hours:              hours,
			WorkDate:           &workDate,
			SyncKey:            &syncKey,
			Source:             entry.SourceClockSync,
			RateSnapshotID:     &snap.RateID,
			RateSnapshotType:   snap.RateType,
			RateSnapshotAmount: snap.AmountCents,
			// The punch is the employee's own attestation.
			EmployeeApproved: true,
		}

		created, err := entries.CreateIdempotent(ctx, row)
		if err != nil {
			result.Failed = append(result.Failed, SyncFailure{SyncKey: syncKey, Reason: err.Error()})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return SyncResult{}, err
	}

	s.logSyncResult("clock sync finished", result)
	return result, nil
}

func (s *service) SyncMissedWorkDeductions(ctx context.Context, companyID, periodID string) (SyncResult, error) {
	period, err := s.openPeriod(ctx, companyID, periodID)
	if err != nil {
		return SyncResult{}, err
	}

	staff, err := s.employees.FindAllByCompany(ctx, companyID)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{PeriodID: periodID}
	cache := newRateCache(s.rateRepo, companyID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncResult{}, err
	}
	defer tx.Rollback()

	entries, err := s.lockedEntryRepo(ctx, tx, companyID, periodID)
	if err != nil {
		return SyncResult{}, err
	}

	endEx := period.EndDate.AddDate(0, 0, 1)
	// A day is only "missed" once it is over.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if endEx.After(today) {
		endEx = today
	}

	for _, emp := range staff {
		if !emp.Active {
			continue
		}
		empID := emp.ID.String()

		r, found, err := cache.resolve(ctx, empID, period.EndDate, nil)
		if err != nil {
			return result, err
		}
		if !found || r.RateType != rate.TypeMonthly {
			// Missed-day deductions only apply to salaried staff; hourly
			// and per-visit employees simply earn nothing for a day off.
			continue
		}

		pattern, err := s.scheduleRepo.FindByEmployee(ctx, companyID, empID)
		if err != nil {
			return result, err
		}
		if len(pattern) == 0 {
			continue
		}

		worked, err := s.workedDays(ctx, companyID, emp.ID, period.StartDate, period.EndDate.AddDate(0, 0, 1))
		if err != nil {
			return result, err
		}

		for _, day := range schedule.ExpectedDaysIn(pattern, period.StartDate, endEx) {
			result.Processed++
			dayKey := day.Format("2006-01-02")
			syncKey := entry.MissedDaySyncKey(emp.ID, day)

			if worked[dayKey] {
				// Evidence arrived after a previous pass booked the
				// deduction; retract it so the passes converge.
				removed, err := entries.DeleteBySyncKey(ctx, companyID, syncKey)
				if err != nil {
					result.Failed = append(result.Failed, SyncFailure{SyncKey: syncKey, Reason: err.Error()})
					continue
				}
				if removed {
					result.Removed++
				}
				continue
			}

			workDate := day
			snap := r.Snapshot()
			row := &entry.CompensableEntry{
				ID:                 uuid.New(),
				CompanyID:          period.CompanyID,
				PeriodID:           period.ID,
				EmployeeID:         emp.ID,
				EntryType:          entry.TypeDeduction,
				Category:           entry.CategoryMissedDay,
				AmountCents:        s.cfg.MissedDayDeductionCents,
				WorkDate:           &workDate,
				SyncKey:            &syncKey,
				Source:             entry.SourceMissedDayAuto,
				RateSnapshotID:     &snap.RateID,
				RateSnapshotType:   snap.RateType,
				RateSnapshotAmount: snap.AmountCents,
			}

			created, err := entries.CreateIdempotent(ctx, row)
			if err != nil {
				result.Failed = append(result.Failed, SyncFailure{SyncKey: syncKey, Reason: err.Error()})
				continue
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return SyncResult{}, err
	}

	s.logSyncResult("missed day sync finished", result)
	return result, nil
}

func (s *service) MissingRateEmployeeIDs(ctx context.Context, companyID, periodID string) ([]string, error) {
	period, err := s.periodRepo.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}
	endEx := period.EndDate.AddDate(0, 0, 1)

	cache := newRateCache(s.rateRepo, companyID)
	missing := map[string]bool{}

	jobs, err := s.jobRepo.FindCompletedInRange(ctx, companyID, period.StartDate, endEx)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		for _, a := range j.Assignments {
			empID := a.EmployeeID.String()
			if missing[empID] {
				continue
			}
			if _, found, err := cache.resolve(ctx, empID, j.ServiceDate, j.LocationID); err != nil {
				return nil, err
			} else if !found {
				missing[empID] = true
			}
		}
	}

	events, err := s.clockRepo.FindClosedInRange(ctx, companyID, period.StartDate, endEx)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		empID := ev.EmployeeID.String()
		if missing[empID] {
			continue
		}
		if _, found, err := cache.resolve(ctx, empID, ev.WorkDate, ev.LocationID); err != nil {
			return nil, err
		} else if !found {
			missing[empID] = true
		}
	}

	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *service) workedDays(ctx context.Context, companyID string, employeeID uuid.UUID, start, endEx time.Time) (map[string]bool, error) {
	worked := map[string]bool{}

	events, err := s.clockRepo.FindByEmployeeInRange(ctx, companyID, employeeID.String(), start, endEx)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if ev.ClockOut != nil {
			worked[ev.WorkDate.Format("2006-01-02")] = true
		}
	}

	jobs, err := s.jobRepo.FindCompletedByEmployeeInRange(ctx, companyID, employeeID.String(), start, endEx)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		worked[j.ServiceDate.Format("2006-01-02")] = true
	}
	return worked, nil
}

// lockedEntryRepo opens a pass's transactional entry repository with the
// period row held shared, so a finalize cannot lock the period while the
// pass is still writing into it.
func (s *service) lockedEntryRepo(ctx context.Context, tx *sql.Tx, companyID, periodID string) (entry.Repository, error) {
	entries := s.entryRepo.WithTx(tx)
	status, err := entries.LockPeriodStatus(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	switch status {
	case "":
		return nil, perioderrors.ErrPeriodNotFound
	case payperiod.StatusLocked:
		return nil, perioderrors.ErrPeriodLocked
	}
	return entries, nil
}

func (s *service) openPeriod(ctx context.Context, companyID, periodID string) (*payperiod.PayPeriod, error) {
	period, err := s.periodRepo.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}
	if period.Status == payperiod.StatusLocked {
		return nil, perioderrors.ErrPeriodLocked
	}
	return period, nil
}

func (s *service) logSyncResult(msg string, r SyncResult) {
	s.logger.Info(msg,
		zap.String("period_id", r.PeriodID),
		zap.Int("processed", r.Processed),
		zap.Int("created", r.Created),
		zap.Int("skipped", r.Skipped),
		zap.Int("removed", r.Removed),
		zap.Int("missing_rate", len(r.MissingRate)),
		zap.Int("failed", len(r.Failed)),
	)
}

func hourlyAmount(rateCents int64, hours float64) int64 {
	return int64(math.Round(float64(rateCents) * hours))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
