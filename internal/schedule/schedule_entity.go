package schedule

import (
	"time"

	"github.com/google/uuid"
)

// ExpectedWorkday is the scheduling subsystem's weekly pattern: which
// weekdays an employee is expected to work. Weekday follows time.Weekday
// (0 = Sunday).
type ExpectedWorkday struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_schedule_employee_weekday,unique"`
	Weekday    int       `gorm:"not null;index:idx_schedule_employee_weekday,unique"`
	CreatedAt  time.Time
}

func (ExpectedWorkday) TableName() string {
	return "expected_workdays"
}

// ExpectedDaysIn expands the weekly pattern over [start, end) into concrete
// calendar days.
func ExpectedDaysIn(pattern []ExpectedWorkday, start, end time.Time) []time.Time {
	byWeekday := make(map[time.Weekday]bool, len(pattern))
	for _, p := range pattern {
		byWeekday[time.Weekday(p.Weekday)] = true
	}

	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if byWeekday[d.Weekday()] {
			days = append(days, d)
		}
	}
	return days
}
