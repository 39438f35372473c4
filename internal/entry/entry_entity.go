package entry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeEarning   = "EARNING"
	TypeDeduction = "DEDUCTION"

	SourceJobSync       = "JOB_SYNC"
	SourceClockSync     = "CLOCK_SYNC"
	SourceManual        = "MANUAL"
	SourceMissedDayAuto = "MISSED_DAY_AUTO"

	CategoryServiceVisit = "service_visit"
	CategoryHoursWorked  = "hours_worked"
	CategoryMissedDay    = "missed_day"
	CategoryAdjustment   = "adjustment"
)

// CompensableEntry is one payable or deductible ledger line for one
// employee within one pay period. The rate snapshot columns are filled at
// creation and never re-resolved.
type CompensableEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_entry_company_period"`
	PeriodID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_entry_company_period"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index"`
	EntryType  string     `gorm:"type:varchar(20);not null"`
	Category   string     `gorm:"type:varchar(40);not null"`
	AmountCents int64     `gorm:"type:bigint;not null"`
	Hours      float64    `gorm:"type:decimal(6,2);not null;default:0"`
	Units      int64      `gorm:"type:bigint;not null;default:0"`
	JobID      *uuid.UUID `gorm:"type:uuid;index"`
	WorkDate   *time.Time `gorm:"type:date;index"`

	// SyncKey is the idempotence key for synchronized entries
	// (job:<emp>:<job>, clock:<emp>:<day>, missed:<emp>:<day>). Manual
	// entries leave it NULL. The unique index is what makes re-running a
	// sync — or two syncs racing — unable to pay the same work twice.
	SyncKey *string `gorm:"type:varchar(120);uniqueIndex"`
	Source  string  `gorm:"type:varchar(30);not null"`

	RateSnapshotID     *uuid.UUID `gorm:"type:uuid"`
	RateSnapshotType   string     `gorm:"type:varchar(20)"`
	RateSnapshotAmount int64      `gorm:"type:bigint;not null;default:0"`

	EmployeeApproved bool       `gorm:"not null;default:false"`
	AdminApproved    bool       `gorm:"not null;default:false"`
	ApprovedInRunID  *uuid.UUID `gorm:"type:uuid;index"`

	// Override bookkeeping. OverrideOriginalAmount keeps the first
	// pre-override amount; repeated overrides never overwrite it.
	OverrideOriginalAmount *int64     `gorm:"type:bigint"`
	OverrideReason         *string    `gorm:"type:text"`
	OverrideBy             *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CompensableEntry) TableName() string {
	return "pay_entries"
}

func JobSyncKey(employeeID, jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s:%s", employeeID, jobID)
}

func ClockSyncKey(employeeID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("clock:%s:%s", employeeID, day.Format("2006-01-02"))
}

func MissedDaySyncKey(employeeID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("missed:%s:%s", employeeID, day.Format("2006-01-02"))
}
