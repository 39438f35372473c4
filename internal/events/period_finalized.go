package events

import "time"

const PeriodFinalizedTopic = "payroll.period.finalized.v1"

type PeriodFinalizedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	PeriodID        string    `json:"period_id"`
	CompanyID       string    `json:"company_id"`
	FinalizedBy     string    `json:"finalized_by"`
	TotalHours      float64   `json:"total_hours"`
	TotalEarnings   int64     `json:"total_earnings"`
	TotalDeductions int64     `json:"total_deductions"`
	NetAmount       int64     `json:"net_amount"`
	OccurredAt      time.Time `json:"occurred_at"`
}
