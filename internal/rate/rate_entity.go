package rate

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeHourly   = "HOURLY"
	TypePerVisit = "PER_VISIT"
	TypeMonthly  = "MONTHLY"
)

// Rate is one effective-dated pay rate for an employee. A nil LocationID
// means the rate applies company-wide; a set one scopes it to a single
// service location. Amounts are integer cents.
type Rate struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	RateType      string         `gorm:"type:varchar(20);not null"`
	AmountCents   int64          `gorm:"type:bigint;not null"`
	EffectiveDate time.Time      `gorm:"type:date;not null;index"`
	LocationID    *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Rate) TableName() string {
	return "pay_rates"
}

func ValidRateType(t string) bool {
	switch t {
	case TypeHourly, TypePerVisit, TypeMonthly:
		return true
	default:
		return false
	}
}

// Snapshot is the copy of a resolved rate written onto an entry at
// creation time. Entries never follow the live rate row again, so later
// rate edits cannot change what has already been earned.
type Snapshot struct {
	RateID      uuid.UUID
	RateType    string
	AmountCents int64
}

func (r Rate) Snapshot() Snapshot {
	return Snapshot{
		RateID:      r.ID,
		RateType:    r.RateType,
		AmountCents: r.AmountCents,
	}
}
