package audit

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *AuditEvent) error
	FindByCompany(ctx context.Context, companyID string, limit int) ([]AuditEvent, error)
	FindByEntity(ctx context.Context, companyID, entityID string) ([]AuditEvent, error)
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

func (r *repository) Create(ctx context.Context, e *AuditEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO audit_events
				(id, company_id, actor_id, action, entity_type, entity_id, before, after, request_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, e.CompanyID, e.ActorID, e.Action, e.EntityType, e.EntityID,
			e.Before, e.After, e.RequestID, e.CreatedAt,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByCompany(ctx context.Context, companyID string, limit int) ([]AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []AuditEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEntity(ctx context.Context, companyID, entityID string) ([]AuditEvent, error) {
	var rows []AuditEvent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
