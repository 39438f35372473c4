package rate

import (
	"context"
	"database/sql"
	"time"

	rateerrors "go-payroll/internal/rate/errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source=rate_service.go -destination=mock/rate_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateRateRequest) (RateResponse, error)
	GetAll(ctx context.Context, companyID string) ([]RateResponse, error)
	GetByEmployee(ctx context.Context, companyID, employeeID string) ([]RateResponse, error)
	// ResolveAt previews which rate the synchronizer would apply for an
	// employee at a point in time.
	ResolveAt(ctx context.Context, companyID string, q ResolveQuery) (RateResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateRateRequest,
) (RateResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if !ValidRateType(req.RateType) {
		return RateResponse{}, rateerrors.ErrInvalidRateType
	}
	if req.AmountCents <= 0 {
		return RateResponse{}, rateerrors.ErrInvalidAmount
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return RateResponse{}, rateerrors.ErrEmployeeNotInCompany
	}

	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return RateResponse{}, rateerrors.ErrInvalidEffectiveDate
	}

	row := &Rate{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		EmployeeID:    employeeID,
		RateType:      req.RateType,
		AmountCents:   req.AmountCents,
		EffectiveDate: effectiveDate,
	}
	if req.LocationID != nil && *req.LocationID != "" {
		locID, err := uuid.Parse(*req.LocationID)
		if err != nil {
			return RateResponse{}, rateerrors.ErrEmployeeNotInCompany
		}
		row.LocationID = &locID
	}

	if err := qtx.Create(ctx, row); err != nil {
		return RateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RateResponse{}, err
	}

	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]RateResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByEmployee(ctx context.Context, companyID, employeeID string) ([]RateResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) ResolveAt(ctx context.Context, companyID string, q ResolveQuery) (RateResponse, error) {
	at, err := time.Parse("2006-01-02", q.At)
	if err != nil {
		return RateResponse{}, rateerrors.ErrInvalidEffectiveDate
	}

	var locationID *uuid.UUID
	if q.LocationID != nil && *q.LocationID != "" {
		locID, err := uuid.Parse(*q.LocationID)
		if err != nil {
			return RateResponse{}, rateerrors.ErrEmployeeNotInCompany
		}
		locationID = &locID
	}

	rows, err := s.repo.FindByEmployee(ctx, companyID, q.EmployeeID)
	if err != nil {
		return RateResponse{}, err
	}

	resolved, ok := Resolve(rows, at, locationID)
	if !ok {
		return RateResponse{}, rateerrors.ErrNoApplicableRate
	}
	return mapToResponse(resolved), nil
}

func mapToResponse(r Rate) RateResponse {
	resp := RateResponse{
		ID:            r.ID.String(),
		CompanyID:     r.CompanyID.String(),
		EmployeeID:    r.EmployeeID.String(),
		RateType:      r.RateType,
		AmountCents:   r.AmountCents,
		EffectiveDate: r.EffectiveDate.Format("2006-01-02"),
	}
	if r.LocationID != nil {
		v := r.LocationID.String()
		resp.LocationID = &v
	}
	return resp
}

func mapToListResponse(rows []Rate) []RateResponse {
	resp := make([]RateResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp
}
