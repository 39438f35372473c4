package attendance

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyClockedIn = apperror.New(
		apperror.CodeConflict,
		"already clocked in for today",
		http.StatusConflict,
	)
	ErrNoOpenClockIn = apperror.New(
		apperror.CodeInvalidState,
		"clock in not found for today",
		http.StatusBadRequest,
	)
	ErrAlreadyClockedOut = apperror.New(
		apperror.CodeInvalidState,
		"already clocked out for today",
		http.StatusBadRequest,
	)
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (ClockEventResponse, error)
	ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (ClockEventResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ClockEventResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) ClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (ClockEventResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClockEventResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	existing, err := qtx.FindByEmployeeAndDate(ctx, companyID, employeeID, today)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return ClockEventResponse{}, err
	}
	if err == nil && existing != nil {
		return ClockEventResponse{}, ErrAlreadyClockedIn
	}

	source := req.Source
	if source == "" {
		source = "MANUAL"
	}

	row := &ClockEvent{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		EmployeeID: uuid.MustParse(employeeID),
		WorkDate:   today,
		ClockIn:    now,
		Source:     source,
		Notes:      req.Notes,
	}
	if req.LocationID != nil && *req.LocationID != "" {
		locID, err := uuid.Parse(*req.LocationID)
		if err != nil {
			return ClockEventResponse{}, apperror.InvalidField("Location Id")
		}
		row.LocationID = &locID
	}

	if err := qtx.Create(ctx, row); err != nil {
		return ClockEventResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ClockEventResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (ClockEventResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClockEventResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	row, err := qtx.FindByEmployeeAndDate(ctx, companyID, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClockEventResponse{}, ErrNoOpenClockIn
		}
		return ClockEventResponse{}, err
	}
	if row.ClockOut != nil {
		return ClockEventResponse{}, ErrAlreadyClockedOut
	}

	row.ClockOut = &now
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		return ClockEventResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return ClockEventResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]ClockEventResponse, error) {
	var (
		rows []ClockEvent
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, apperror.InvalidField("Actor Id")
		}
		rows, err = s.repo.FindAllByCompanyAndEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		return nil, err
	}
	res := make([]ClockEventResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func mapToResponse(e ClockEvent) ClockEventResponse {
	resp := ClockEventResponse{
		ID:         e.ID.String(),
		CompanyID:  e.CompanyID.String(),
		EmployeeID: e.EmployeeID.String(),
		WorkDate:   e.WorkDate.Format("2006-01-02"),
		ClockIn:    e.ClockIn.Format(time.RFC3339),
		Source:     e.Source,
		Notes:      e.Notes,
	}
	if e.LocationID != nil {
		v := e.LocationID.String()
		resp.LocationID = &v
	}
	if e.ClockOut != nil {
		v := e.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	if e.Employee != nil {
		resp.EmployeeName = e.Employee.FullName
	}
	return resp
}
