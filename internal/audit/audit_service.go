package audit

import (
	"context"
	"encoding/json"
	"time"

	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is the write-side input. Before/After take any JSON-marshalable
// value; nil is fine for creations.
type Record struct {
	CompanyID  string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
}

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	// Log appends an audit row and mirrors it to the audit logger. It
	// never fails the caller's operation: persistence errors are logged
	// and swallowed — losing one audit line must not roll back a payroll
	// mutation that already committed.
	Log(ctx context.Context, rec Record)
	// LogTx is the transactional variant for mutations whose audit line
	// must commit atomically with the change (finalize).
	LogTx(ctx context.Context, repo Repository, rec Record) error
	GetAll(ctx context.Context, companyID string, limit int) ([]EventResponse, error)
	GetByEntity(ctx context.Context, companyID, entityID string) ([]EventResponse, error)
}

type EventResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: zap.L().Named("audit"),
	}
}

func (s *service) Log(ctx context.Context, rec Record) {
	if err := s.LogTx(ctx, s.repo, rec); err != nil {
		s.logger.Error("append audit event failed",
			zap.String("action", rec.Action),
			zap.String("entity_id", rec.EntityID),
			zap.Error(err),
		)
	}
}

func (s *service) LogTx(ctx context.Context, repo Repository, rec Record) error {
	row, err := buildEvent(ctx, rec)
	if err != nil {
		return err
	}

	if err := repo.Create(ctx, row); err != nil {
		return err
	}

	s.logger.Info("audit event",
		zap.String("action", rec.Action),
		zap.String("actor_id", rec.ActorID),
		zap.String("entity_type", rec.EntityType),
		zap.String("entity_id", rec.EntityID),
	)
	return nil
}

func (s *service) GetAll(ctx context.Context, companyID string, limit int) ([]EventResponse, error) {
	rows, err := s.repo.FindByCompany(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByEntity(ctx context.Context, companyID, entityID string) ([]EventResponse, error) {
	rows, err := s.repo.FindByEntity(ctx, companyID, entityID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func buildEvent(ctx context.Context, rec Record) (*AuditEvent, error) {
	companyID, err := uuid.Parse(rec.CompanyID)
	if err != nil {
		return nil, err
	}
	actorID, err := uuid.Parse(rec.ActorID)
	if err != nil {
		return nil, err
	}
	entityID, err := uuid.Parse(rec.EntityID)
	if err != nil {
		return nil, err
	}

	var before, after []byte
	if rec.Before != nil {
		if before, err = json.Marshal(rec.Before); err != nil {
			return nil, err
		}
	}
	if rec.After != nil {
		if after, err = json.Marshal(rec.After); err != nil {
			return nil, err
		}
	}

	return &AuditEvent{
		ID:         uuid.New(),
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   entityID,
		Before:     before,
		After:      after,
		RequestID:  contextutil.GetRequestID(ctx),
	}, nil
}

func mapToResponse(e AuditEvent) EventResponse {
	return EventResponse{
		ID:         e.ID.String(),
		ActorID:    e.ActorID.String(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID.String(),
		Before:     e.Before,
		After:      e.After,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(rows []AuditEvent) []EventResponse {
	resp := make([]EventResponse, len(rows))
	for i, e := range rows {
		resp[i] = mapToResponse(e)
	}
	return resp
}
