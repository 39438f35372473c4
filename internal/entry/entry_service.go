package entry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/audit"
	entryerrors "go-payroll/internal/entry/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const periodStatusLocked = "LOCKED"

//go:generate mockgen -source=entry_service.go -destination=mock/entry_service_mock.go -package=mock
type Service interface {
	CreateManual(ctx context.Context, companyID, actorID string, req CreateManualEntryRequest) (EntryResponse, error)
	GetByPeriod(ctx context.Context, companyID, periodID, actorID string, canReadAll bool) ([]EntryResponse, error)
	// ApproveOwn lets an employee confirm their own entries. Only rows
	// owned by the caller and still unapproved flip; the count of flipped
	// rows is returned.
	ApproveOwn(ctx context.Context, companyID, employeeID string, req ApproveOwnEntriesRequest) (int64, error)
	// Override replaces an earning entry's amount with an admin
	// correction. The first override records the pre-override amount and
	// later overrides keep that first original.
	Override(ctx context.Context, companyID, actorID, entryID string, req OverrideEntryRequest) (EntryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	audit  audit.Service
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, auditService audit.Service, outbox kafka.OutboxRepository) Service {
	return &service{
		db:     db,
		repo:   repo,
		audit:  auditService,
		outbox: outbox,
		logger: zap.L().Named("entry.service"),
	}
}

func (s *service) CreateManual(ctx context.Context, companyID, actorID string, req CreateManualEntryRequest) (EntryResponse, error) {
	if req.AmountCents == 0 {
		return EntryResponse{}, entryerrors.ErrInvalidAmount
	}
	if req.EntryType != TypeEarning && req.EntryType != TypeDeduction {
		return EntryResponse{}, entryerrors.ErrInvalidEntryType
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		return EntryResponse{}, err
	}
	if !belongs {
		return EntryResponse{}, entryerrors.ErrEmployeeNotInCompany
	}

	category := req.Category
	if category == "" {
		category = CategoryAdjustment
	}

	row := &CompensableEntry{
		ID:          uuid.New(),
		CompanyID:   uuid.MustParse(companyID),
		PeriodID:    uuid.MustParse(req.PeriodID),
		EmployeeID:  uuid.MustParse(req.EmployeeID),
		EntryType:   req.EntryType,
		Category:    category,
		AmountCents: req.AmountCents,
		Hours:       req.Hours,
		Source:      SourceManual,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := lockOpenPeriod(ctx, qtx, companyID, req.PeriodID); err != nil {
		return EntryResponse{}, err
	}
	if err := qtx.Create(ctx, row); err != nil {
		return EntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	s.audit.Log(ctx, audit.Record{
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     audit.ActionEntryCreated,
		EntityType: "pay_entry",
		EntityID:   row.ID.String(),
		After:      mapToResponse(*row),
	})

	s.logger.Info("manual entry created",
		zap.String("entry_id", row.ID.String()),
		zap.String("period_id", req.PeriodID),
		zap.String("entry_type", req.EntryType),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetByPeriod(ctx context.Context, companyID, periodID, actorID string, canReadAll bool) ([]EntryResponse, error) {
	if err := s.requirePeriod(ctx, companyID, periodID); err != nil {
		return nil, err
	}

	var (
		rows []CompensableEntry
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindByPeriod(ctx, companyID, periodID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, apperror.InvalidField("Actor Id")
		}
		rows, err = s.repo.FindByPeriodAndEmployee(ctx, companyID, periodID, actorID)
	}
	if err != nil {
		return nil, err
	}

	res := make([]EntryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) ApproveOwn(ctx context.Context, companyID, employeeID string, req ApproveOwnEntriesRequest) (int64, error) {
	checkedPeriods := make(map[string]bool)
	for _, id := range req.EntryIDs {
		row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, entryerrors.ErrEntryNotFound
			}
			return 0, err
		}
		if row.EmployeeID.String() != employeeID {
			return 0, entryerrors.ErrNotEntryOwner
		}
		periodID := row.PeriodID.String()
		if !checkedPeriods[periodID] {
			if err := s.requireOpenPeriod(ctx, companyID, periodID); err != nil {
				return 0, err
			}
			checkedPeriods[periodID] = true
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for periodID := range checkedPeriods {
		if err := lockOpenPeriod(ctx, qtx, companyID, periodID); err != nil {
			return 0, err
		}
	}

	updated, err := qtx.MarkEmployeeApproved(ctx, companyID, employeeID, req.EntryIDs)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.audit.Log(ctx, audit.Record{
		CompanyID:  companyID,
		ActorID:    employeeID,
		Action:     audit.ActionEntryApprovedSelf,
		EntityType: "pay_entry",
		EntityID:   req.EntryIDs[0],
		After:      map[string]any{"entry_ids": req.EntryIDs, "updated": updated},
	})
	return updated, nil
}

func (s *service) Override(ctx context.Context, companyID, actorID, entryID string, req OverrideEntryRequest) (EntryResponse, error) {
	if req.AmountCents <= 0 {
		return EntryResponse{}, entryerrors.ErrInvalidAmount
	}

	row, err := s.repo.FindByIDAndCompany(ctx, companyID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EntryResponse{}, entryerrors.ErrEntryNotFound
		}
		return EntryResponse{}, err
	}
	if row.EntryType != TypeEarning {
		return EntryResponse{}, entryerrors.ErrOverrideEarningOnly
	}
	if err := s.requireOpenPeriod(ctx, companyID, row.PeriodID.String()); err != nil {
		return EntryResponse{}, err
	}

	// The original amount is set once, by the first override ever applied
	// to this entry. Re-overriding keeps it.
	originalAmount := row.AmountCents
	keepOriginal := row.OverrideOriginalAmount != nil
	if keepOriginal {
		originalAmount = *row.OverrideOriginalAmount
	}

	before := mapToResponse(*row)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := lockOpenPeriod(ctx, qtx, companyID, row.PeriodID.String()); err != nil {
		return EntryResponse{}, err
	}
	ok, err := qtx.OverrideAmount(ctx, OverrideUpdate{
		CompanyID:         companyID,
		EntryID:           entryID,
		NewAmountCents:    req.AmountCents,
		OriginalAmount:    originalAmount,
		Reason:            req.Reason,
		By:                actorID,
		ExpectedUpdatedAt: row.UpdatedAt,
		KeepOriginal:      keepOriginal,
	})
	if err != nil {
		return EntryResponse{}, err
	}
	if !ok {
		return EntryResponse{}, entryerrors.ErrConcurrentModification
	}

	event := events.EntryOverriddenEvent{
		EventType:      "entry.overridden",
		RequestID:      contextutil.GetRequestID(ctx),
		EntryID:        entryID,
		PeriodID:       row.PeriodID.String(),
		CompanyID:      companyID,
		EmployeeID:     row.EmployeeID.String(),
		OriginalAmount: originalAmount,
		NewAmount:      req.AmountCents,
		OverriddenBy:   actorID,
		OccurredAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return EntryResponse{}, err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "pay_entry",
		AggregateID:   entryID,
		EventType:     event.EventType,
		Topic:         events.EntryOverriddenTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(outboxEvent); err != nil {
		return EntryResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		return EntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	updated, err := s.repo.FindByIDAndCompany(ctx, companyID, entryID)
	if err != nil {
		return EntryResponse{}, err
	}

	s.audit.Log(ctx, audit.Record{
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     audit.ActionEntryOverridden,
		EntityType: "pay_entry",
		EntityID:   entryID,
		Before:     before,
		After:      mapToResponse(*updated),
	})

	s.logger.Info("entry amount overridden",
		zap.String("entry_id", entryID),
		zap.Int64("new_amount_cents", req.AmountCents),
		zap.String("overridden_by", actorID),
	)
	return mapToResponse(*updated), nil
}

func (s *service) requirePeriod(ctx context.Context, companyID, periodID string) error {
	status, err := s.repo.PeriodStatus(ctx, companyID, periodID)
	if err != nil {
		return err
	}
	if status == "" {
		return entryerrors.ErrPeriodNotFound
	}
	return nil
}

func (s *service) requireOpenPeriod(ctx context.Context, companyID, periodID string) error {
	status, err := s.repo.PeriodStatus(ctx, companyID, periodID)
	if err != nil {
		return err
	}
	return openPeriodStatus(status)
}

// lockOpenPeriod pins the period row shared for the rest of the
// transaction, so a concurrent finalize cannot lock the period between
// this check and the write it guards.
func lockOpenPeriod(ctx context.Context, repo Repository, companyID, periodID string) error {
	status, err := repo.LockPeriodStatus(ctx, companyID, periodID)
	if err != nil {
		return err
	}
	return openPeriodStatus(status)
}

func openPeriodStatus(status string) error {
	switch status {
	case "":
		return entryerrors.ErrPeriodNotFound
	case periodStatusLocked:
		return entryerrors.ErrPeriodLocked
	default:
		return nil
	}
}

func mapToResponse(e CompensableEntry) EntryResponse {
	resp := EntryResponse{
		ID:                 e.ID.String(),
		CompanyID:          e.CompanyID.String(),
		PeriodID:           e.PeriodID.String(),
		EmployeeID:         e.EmployeeID.String(),
		EntryType:          e.EntryType,
		Category:           e.Category,
		AmountCents:        e.AmountCents,
		Hours:              e.Hours,
		Units:              e.Units,
		Source:             e.Source,
		RateSnapshotType:   e.RateSnapshotType,
		RateSnapshotAmount: e.RateSnapshotAmount,
		EmployeeApproved:   e.EmployeeApproved,
		AdminApproved:      e.AdminApproved,
		CreatedAt:          e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if e.JobID != nil {
		v := e.JobID.String()
		resp.JobID = &v
	}
	if e.WorkDate != nil {
		v := e.WorkDate.Format("2006-01-02")
		resp.WorkDate = &v
	}
	if e.ApprovedInRunID != nil {
		v := e.ApprovedInRunID.String()
		resp.ApprovedInRunID = &v
	}
	if e.OverrideOriginalAmount != nil {
		info := &OverrideInfo{
			OriginalAmountCents: *e.OverrideOriginalAmount,
			Reason:              e.OverrideReason,
		}
		if e.OverrideBy != nil {
			info.By = e.OverrideBy.String()
		}
		resp.Override = info
	}
	return resp
}
