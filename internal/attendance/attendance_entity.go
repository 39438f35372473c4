package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClockEvent is one clock-in/clock-out pair for one employee on one day.
// An event with a nil ClockOut is still open and is not payable evidence.
type ClockEvent struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index"`
	LocationID *uuid.UUID     `gorm:"column:location_id;type:uuid;index"`
	WorkDate   time.Time      `gorm:"column:work_date;type:date;not null;index"`
	ClockIn    time.Time      `gorm:"column:clock_in;type:timestamptz;not null"`
	ClockOut   *time.Time     `gorm:"column:clock_out;type:timestamptz"`
	Source     string         `gorm:"column:source;type:varchar(30);not null;default:MANUAL"`
	Notes      *string        `gorm:"column:notes;type:text"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
	Employee   *EmployeeRef   `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (ClockEvent) TableName() string {
	return "clock_events"
}

type EmployeeRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
