package job

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is a completed service visit recorded by the operations subsystem.
// It is work evidence: the payroll engine reads it and never writes it.
type Job struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID              uuid.UUID      `gorm:"type:uuid;not null;index"`
	LocationID             *uuid.UUID     `gorm:"type:uuid;index"`
	ServiceDate            time.Time      `gorm:"type:date;not null;index"`
	ScheduledDurationHours float64        `gorm:"type:decimal(6,2);not null;default:0"`
	Completed              bool           `gorm:"not null;default:false;index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              gorm.DeletedAt `gorm:"index"`

	Assignments []JobAssignment `gorm:"foreignKey:JobID"`
}

func (Job) TableName() string {
	return "jobs"
}

// JobAssignment links the employees who worked a job. A job can be staffed
// by more than one employee; each of them is paid for it.
type JobAssignment struct {
	JobID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (JobAssignment) TableName() string {
	return "job_assignments"
}
