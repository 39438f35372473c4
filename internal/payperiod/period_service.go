package payperiod

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/audit"
	"go-payroll/internal/employee"
	"go-payroll/internal/entry"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	perioderrors "go-payroll/internal/payperiod/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const totalsCacheTTL = 10 * time.Minute

// MissingRateChecker reports employees whose synchronized work in the
// period has no applicable pay rate. Finalize refuses to lock while the
// list is non-empty.
type MissingRateChecker interface {
	MissingRateEmployeeIDs(ctx context.Context, companyID, periodID string) ([]string, error)
}

type Config struct {
	// RequireEmployeeApproval makes approval runs claim only entries the
	// employee has confirmed first.
	RequireEmployeeApproval bool
}

//go:generate mockgen -source=period_service.go -destination=mock/period_service_mock.go -package=mock
type Service interface {
	GetOrCreate(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, bool, error)
	GetAll(ctx context.Context, companyID, status string) ([]PeriodResponse, error)
	GetByID(ctx context.Context, companyID, periodID string) (PeriodResponse, error)
	Transition(ctx context.Context, companyID, actorID, periodID string, req TransitionRequest) (PeriodResponse, error)
	// ApproveEntries claims the listed entries into a fresh approval run,
	// all-or-nothing: if any entry is already claimed the whole run rolls
	// back.
	ApproveEntries(ctx context.Context, companyID, actorID, periodID string, req ApproveEntriesRequest) (ApprovalRunResponse, error)
	GetTotals(ctx context.Context, companyID, periodID string) (TotalsResponse, error)
	// Finalize locks an approved period: freezes totals, books the
	// payroll expense and emits the finalized event, all in one
	// transaction. Re-finalizing a locked period replays the stored
	// outcome instead of failing.
	Finalize(ctx context.Context, companyID, actorID, periodID string) (FinalizeResponse, error)
	GetExpense(ctx context.Context, companyID, periodID string) (ExpenseResponse, error)
	MarkExpenseExported(ctx context.Context, periodID string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	entryRepo entry.Repository
	employees employee.Repository
	rateGate  MissingRateChecker
	audit     audit.Service
	auditRepo audit.Repository
	outbox    kafka.OutboxRepository
	rdb       *redis.Client
	cfg       Config
	sf        singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	entryRepo entry.Repository,
	employees employee.Repository,
	rateGate MissingRateChecker,
	auditService audit.Service,
	auditRepo audit.Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	cfg Config,
) Service {
	return &service{
		db:        db,
		repo:      repo,
		entryRepo: entryRepo,
		employees: employees,
		rateGate:  rateGate,
		audit:     auditService,
		auditRepo: auditRepo,
		outbox:    outbox,
		rdb:       rdb,
		cfg:       cfg,
		logger:    zap.L().Named("payperiod.service"),
	}
}

func (s *service) GetOrCreate(ctx context.Context, companyID string, req CreatePeriodRequest) (PeriodResponse, bool, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return PeriodResponse{}, false, perioderrors.ErrInvalidDateRange
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return PeriodResponse{}, false, perioderrors.ErrInvalidDateRange
	}
	if !end.After(start) {
		return PeriodResponse{}, false, perioderrors.ErrInvalidDateRange
	}
	var payDate *time.Time
	if req.PayDate != "" {
		d, err := time.Parse("2006-01-02", req.PayDate)
		if err != nil || d.Before(end) {
			return PeriodResponse{}, false, perioderrors.ErrInvalidDateRange
		}
		payDate = &d
	}

	row, created, err := s.repo.GetOrCreate(ctx, companyID, start, end, payDate)
	if err != nil {
		return PeriodResponse{}, false, err
	}
	if created {
		s.logger.Info("pay period created",
			zap.String("period_id", row.ID.String()),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
	}
	return mapToResponse(*row), created, nil
}

func (s *service) GetAll(ctx context.Context, companyID, status string) ([]PeriodResponse, error) {
	if status != "" && !validStatus(status) {
		return nil, perioderrors.ErrInvalidStatus
	}
	rows, err := s.repo.FindAllByCompany(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	res := make([]PeriodResponse, len(rows))
	for i, p := range rows {
		res[i] = mapToResponse(p)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, periodID string) (PeriodResponse, error) {
	row, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Transition(ctx context.Context, companyID, actorID, periodID string, req TransitionRequest) (PeriodResponse, error) {
	row, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	if row.Status == StatusLocked {
		return PeriodResponse{}, perioderrors.ErrPeriodLocked
	}
	if req.Status == StatusLocked {
		// Locking happens through finalize only, never as a bare
		// transition.
		return PeriodResponse{}, perioderrors.ErrInvalidTransition
	}
	if !transitionAllowed(row.Status, req.Status) {
		return PeriodResponse{}, perioderrors.ErrInvalidTransition
	}

	ok, err := s.repo.UpdateStatus(ctx, companyID, periodID, row.Status, req.Status)
	if err != nil {
		return PeriodResponse{}, err
	}
	if !ok {
		// The guard lost to a concurrent transition; re-read and report
		// against the fresh state.
		return PeriodResponse{}, perioderrors.ErrInvalidTransition
	}

	s.audit.Log(ctx, audit.Record{
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     audit.ActionPeriodTransition,
		EntityType: "pay_period",
		EntityID:   periodID,
		Before:     map[string]string{"status": row.Status},
		After:      map[string]string{"status": req.Status},
	})

	updated, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	return mapToResponse(*updated), nil
}

func (s *service) ApproveEntries(ctx context.Context, companyID, actorID, periodID string, req ApproveEntriesRequest) (ApprovalRunResponse, error) {
	row, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return ApprovalRunResponse{}, err
	}
	if row.Status == StatusLocked {
		return ApprovalRunResponse{}, perioderrors.ErrPeriodLocked
	}

	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ApprovalRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.entryRepo.WithTx(tx)
	for _, entryID := range req.EntryIDs {
		claimed, err := qtx.ClaimIntoRun(ctx, companyID, runID, entryID, s.cfg.RequireEmployeeApproval)
		if err != nil {
			return ApprovalRunResponse{}, err
		}
		if !claimed {
			// Already in another run, missing employee approval, or not
			// this company's entry. All-or-nothing: abandon the run.
			return ApprovalRunResponse{}, perioderrors.ErrEntriesAlreadyClaimed.WithDetails(map[string]string{
				"entry_id": entryID,
			})
		}
	}
	if err := tx.Commit(); err != nil {
		return ApprovalRunResponse{}, err
	}

	entries, err := s.entryRepo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return ApprovalRunResponse{}, err
	}
	totals := CalcRunTotals(entries, runID)

	s.audit.Log(ctx, audit.Record{
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     audit.ActionEntriesApproved,
		EntityType: "pay_period",
		EntityID:   periodID,
		After: map[string]any{
			"run_id":    runID,
			"entry_ids": req.EntryIDs,
		},
	})

	s.logger.Info("approval run completed",
		zap.String("period_id", periodID),
		zap.String("run_id", runID),
		zap.Int("claimed", len(req.EntryIDs)),
	)
	return ApprovalRunResponse{
		RunID:   runID,
		Claimed: len(req.EntryIDs),
		Totals:  totals,
	}, nil
}

func (s *service) GetTotals(ctx context.Context, companyID, periodID string) (TotalsResponse, error) {
	key := totalsCacheKey(companyID, periodID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp TotalsResponse
			if json.Unmarshal(cached, &resp) == nil {
				return resp, nil
			}
		}
	}

	// Collapse concurrent recomputations of the same period into one
	// database pass.
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.computeTotals(ctx, companyID, periodID)
	})
	if err != nil {
		return TotalsResponse{}, err
	}
	resp := v.(TotalsResponse)

	// Only a locked period's totals are immutable enough to cache.
	if s.rdb != nil && resp.Frozen {
		if payload, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, key, payload, totalsCacheTTL)
		}
	}
	return resp, nil
}

func (s *service) computeTotals(ctx context.Context, companyID, periodID string) (TotalsResponse, error) {
	row, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return TotalsResponse{}, err
	}

	entries, err := s.entryRepo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return TotalsResponse{}, err
	}

	resp := TotalsResponse{
		PeriodID:  periodID,
		Status:    row.Status,
		Employees: CalcEmployeeTotals(entries),
	}
	if frozen := frozenTotals(row); frozen != nil {
		resp.Frozen = true
		resp.Totals = *frozen
		return resp, nil
	}
	resp.Totals = CalcTotals(entries)
	return resp, nil
}

func (s *service) Finalize(ctx context.Context, companyID, actorID, periodID string) (FinalizeResponse, error) {
	row, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return FinalizeResponse{}, err
	}
	if row.Status == StatusLocked {
		return s.replayFinalize(ctx, companyID, *row)
	}
	if row.Status != StatusApproved {
		return FinalizeResponse{}, perioderrors.ErrNotApproved
	}

	missing, err := s.rateGate.MissingRateEmployeeIDs(ctx, companyID, periodID)
	if err != nil {
		return FinalizeResponse{}, err
	}
	if len(missing) > 0 {
		names, err := s.employees.NamesByIDs(ctx, companyID, missing)
		if err != nil {
			return FinalizeResponse{}, err
		}
		details := make([]map[string]string, 0, len(missing))
		for _, id := range missing {
			details = append(details, map[string]string{
				"employee_id":   id,
				"employee_name": names[id],
			})
		}
		return FinalizeResponse{}, perioderrors.ErrMissingRates.WithDetails(details)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return FinalizeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	status, err := qtx.LockForFinalize(ctx, companyID, periodID)
	if err != nil {
		return FinalizeResponse{}, err
	}
	if status != StatusApproved {
		// Lost to a concurrent finalize or transition while waiting for
		// the row lock.
		tx.Rollback()
		if status == StatusLocked {
			fresh, err := s.findPeriod(ctx, companyID, periodID)
			if err != nil {
				return FinalizeResponse{}, err
			}
			return s.replayFinalize(ctx, companyID, *fresh)
		}
		return FinalizeResponse{}, perioderrors.ErrNotApproved
	}

	// Every entry writer holds the period row shared for the life of its
	// transaction, so with the row held exclusively here the set read now
	// is exactly the set being frozen.
	entries, err := s.entryRepo.FindByPeriod(ctx, companyID, periodID)
	if err != nil {
		return FinalizeResponse{}, err
	}
	totals := CalcTotals(entries)

	locked, err := qtx.Finalize(ctx, Finalization{
		CompanyID:       companyID,
		PeriodID:        periodID,
		TotalHours:      totals.TotalHours,
		TotalEarnings:   totals.TotalEarnings,
		TotalDeductions: totals.TotalDeductions,
		NetAmount:       totals.NetAmount,
		FinalizedBy:     actorID,
		FinalizedAt:     now,
	})
	if err != nil {
		return FinalizeResponse{}, err
	}
	if !locked {
		return FinalizeResponse{}, perioderrors.ErrNotApproved
	}

	expense := &PayrollExpense{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(companyID),
		PeriodID:    uuid.MustParse(periodID),
		AmountCents: totals.NetAmount,
		Description: fmt.Sprintf("Payroll %s to %s", row.StartDate.Format("2006-01-02"), row.EndDate.Format("2006-01-02")),
	}
	if _, err := qtx.CreateExpense(ctx, expense); err != nil {
		return FinalizeResponse{}, err
	}

	event := events.PeriodFinalizedEvent{
		EventType:       "period.finalized",
		RequestID:       contextutil.GetRequestID(ctx),
		PeriodID:        periodID,
		CompanyID:       companyID,
		FinalizedBy:     actorID,
		TotalHours:      totals.TotalHours,
		TotalEarnings:   totals.TotalEarnings,
		TotalDeductions: totals.TotalDeductions,
		NetAmount:       totals.NetAmount,
		OccurredAt:      now,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return FinalizeResponse{}, err
	}
	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "pay_period",
		AggregateID:   periodID,
		EventType:     event.EventType,
		Topic:         events.PeriodFinalizedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(outboxEvent); err != nil {
		return FinalizeResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		return FinalizeResponse{}, err
	}

	if err := s.audit.LogTx(ctx, s.auditRepo.WithTx(tx), audit.Record{
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     audit.ActionPeriodFinalized,
		EntityType: "pay_period",
		EntityID:   periodID,
		Before:     map[string]string{"status": StatusApproved},
		After:      totals,
	}); err != nil {
		return FinalizeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return FinalizeResponse{}, err
	}

	if s.rdb != nil {
		s.rdb.Del(ctx, totalsCacheKey(companyID, periodID))
	}

	s.logger.Info("pay period finalized",
		zap.String("period_id", periodID),
		zap.Int64("net_amount_cents", totals.NetAmount),
		zap.String("finalized_by", actorID),
	)

	fresh, err := s.findPeriod(ctx, companyID, periodID)
	if err != nil {
		return FinalizeResponse{}, err
	}
	return FinalizeResponse{
		Period:  mapToResponse(*fresh),
		Expense: mapExpense(*expense),
	}, nil
}

func (s *service) replayFinalize(ctx context.Context, companyID string, row PayPeriod) (FinalizeResponse, error) {
	expense, err := s.repo.FindExpenseByPeriod(ctx, companyID, row.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FinalizeResponse{}, perioderrors.ErrExpenseNotFound
		}
		return FinalizeResponse{}, err
	}
	return FinalizeResponse{
		Period:   mapToResponse(row),
		Expense:  mapExpense(*expense),
		Replayed: true,
	}, nil
}

func (s *service) GetExpense(ctx context.Context, companyID, periodID string) (ExpenseResponse, error) {
	expense, err := s.repo.FindExpenseByPeriod(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExpenseResponse{}, perioderrors.ErrExpenseNotFound
		}
		return ExpenseResponse{}, err
	}
	return mapExpense(*expense), nil
}

func (s *service) MarkExpenseExported(ctx context.Context, periodID string) error {
	ok, err := s.repo.MarkExpenseExported(ctx, periodID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("expense already exported or absent",
			zap.String("period_id", periodID),
		)
	}
	return nil
}

func (s *service) findPeriod(ctx context.Context, companyID, periodID string) (*PayPeriod, error) {
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}
	return row, nil
}

func validStatus(s string) bool {
	switch s {
	case StatusDraft, StatusReview, StatusApproved, StatusLocked:
		return true
	}
	return false
}

func totalsCacheKey(companyID, periodID string) string {
	return fmt.Sprintf("payroll:totals:%s:%s", companyID, periodID)
}

func frozenTotals(p *PayPeriod) *Totals {
	if p.FrozenNetAmount == nil {
		return nil
	}
	t := &Totals{NetAmount: *p.FrozenNetAmount}
	if p.FrozenTotalHours != nil {
		t.TotalHours = *p.FrozenTotalHours
	}
	if p.FrozenTotalEarnings != nil {
		t.TotalEarnings = *p.FrozenTotalEarnings
	}
	if p.FrozenTotalDeductions != nil {
		t.TotalDeductions = *p.FrozenTotalDeductions
	}
	return t
}

func mapToResponse(p PayPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:        p.ID.String(),
		CompanyID: p.CompanyID.String(),
		StartDate: p.StartDate.Format("2006-01-02"),
		EndDate:   p.EndDate.Format("2006-01-02"),
		Status:    p.Status,
		Frozen:    frozenTotals(&p),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.PayDate != nil {
		v := p.PayDate.Format("2006-01-02")
		resp.PayDate = &v
	}
	if p.FinalizedAt != nil {
		v := p.FinalizedAt.UTC().Format(time.RFC3339)
		resp.FinalizedAt = &v
	}
	if p.FinalizedBy != nil {
		v := p.FinalizedBy.String()
		resp.FinalizedBy = &v
	}
	return resp
}

func mapExpense(e PayrollExpense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID.String(),
		PeriodID:    e.PeriodID.String(),
		AmountCents: e.AmountCents,
		Description: e.Description,
		Exported:    e.Exported,
	}
	if e.ExportedAt != nil {
		v := e.ExportedAt.UTC().Format(time.RFC3339)
		resp.ExportedAt = &v
	}
	return resp
}
