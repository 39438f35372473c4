package payperiod

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "DRAFT"
	StatusReview   = "REVIEW"
	StatusApproved = "APPROVED"
	StatusLocked   = "LOCKED"
)

// allowedTransitions is the forward-only lifecycle. LOCKED is terminal;
// there is no unlock.
var allowedTransitions = map[string][]string{
	StatusDraft:    {StatusReview},
	StatusReview:   {StatusApproved, StatusDraft},
	StatusApproved: {StatusLocked, StatusReview},
	StatusLocked:   {},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PayPeriod is one payable window for one company. The frozen totals
// columns stay NULL until finalize locks the period.
type PayPeriod struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_period_company_window"`
	StartDate time.Time  `gorm:"type:date;not null;uniqueIndex:idx_period_company_window"`
	EndDate   time.Time  `gorm:"type:date;not null;uniqueIndex:idx_period_company_window"`
	PayDate   *time.Time `gorm:"type:date"`
	Status    string     `gorm:"type:varchar(20);not null;default:'DRAFT'"`

	FrozenTotalHours      *float64 `gorm:"type:decimal(10,2)"`
	FrozenTotalEarnings   *int64   `gorm:"type:bigint"`
	FrozenTotalDeductions *int64   `gorm:"type:bigint"`
	FrozenNetAmount       *int64   `gorm:"type:bigint"`

	FinalizedAt *time.Time
	FinalizedBy *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PayPeriod) TableName() string {
	return "pay_periods"
}

// PayrollExpense is the accounting artifact produced by finalize. The
// unique index on period_id is what keeps a finalize retry from booking
// the expense twice.
type PayrollExpense struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	AmountCents int64     `gorm:"type:bigint;not null"`
	Description string    `gorm:"type:text"`
	Exported    bool      `gorm:"not null;default:false"`
	ExportedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollExpense) TableName() string {
	return "payroll_expenses"
}
