package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one append-only line of who changed what. Rows are never
// updated or deleted.
type AuditEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action     string         `gorm:"type:varchar(60);not null;index"`
	EntityType string         `gorm:"type:varchar(40);not null"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Before     []byte         `gorm:"type:jsonb"`
	After      []byte         `gorm:"type:jsonb"`
	RequestID  string    `gorm:"type:varchar(64)"`
	CreatedAt  time.Time
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

const (
	ActionEntryCreated      = "entry_created"
	ActionEntryOverridden   = "entry_overridden"
	ActionEntryApprovedSelf = "entry_employee_approved"
	ActionEntriesApproved   = "entries_approved_into_run"
	ActionPeriodTransition  = "period_status_changed"
	ActionPeriodFinalized   = "period_finalized"
)
