package events

import "time"

const EntryOverriddenTopic = "payroll.entry.overridden.v1"

type EntryOverriddenEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	EntryID        string    `json:"entry_id"`
	PeriodID       string    `json:"period_id"`
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	OriginalAmount int64     `json:"original_amount"`
	NewAmount      int64     `json:"new_amount"`
	OverriddenBy   string    `json:"overridden_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}
