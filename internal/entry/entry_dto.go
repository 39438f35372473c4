package entry

type CreateManualEntryRequest struct {
	PeriodID    string  `json:"period_id" binding:"required,uuid"`
	EmployeeID  string  `json:"employee_id" binding:"required,uuid"`
	EntryType   string  `json:"entry_type" binding:"required,oneof=EARNING DEDUCTION"`
	Category    string  `json:"category"`
	AmountCents int64   `json:"amount_cents" binding:"required"`
	Hours       float64 `json:"hours"`
	Notes       *string `json:"notes"`
}

type OverrideEntryRequest struct {
	AmountCents int64   `json:"amount_cents" binding:"required"`
	Reason      *string `json:"reason"`
}

type ApproveOwnEntriesRequest struct {
	EntryIDs []string `json:"entry_ids" binding:"required,min=1,dive,uuid"`
}

type OverrideInfo struct {
	OriginalAmountCents int64   `json:"original_amount_cents"`
	Reason              *string `json:"reason,omitempty"`
	By                  string  `json:"by"`
}

type EntryResponse struct {
	ID                 string        `json:"id"`
	CompanyID          string        `json:"company_id"`
	PeriodID           string        `json:"period_id"`
	EmployeeID         string        `json:"employee_id"`
	EntryType          string        `json:"entry_type"`
	Category           string        `json:"category"`
	AmountCents        int64         `json:"amount_cents"`
	Hours              float64       `json:"hours"`
	Units              int64         `json:"units"`
	JobID              *string       `json:"job_id,omitempty"`
	WorkDate           *string       `json:"work_date,omitempty"`
	Source             string        `json:"source"`
	RateSnapshotType   string        `json:"rate_snapshot_type,omitempty"`
	RateSnapshotAmount int64         `json:"rate_snapshot_amount"`
	EmployeeApproved   bool          `json:"employee_approved"`
	AdminApproved      bool          `json:"admin_approved"`
	ApprovedInRunID    *string       `json:"approved_in_run_id,omitempty"`
	Override           *OverrideInfo `json:"override,omitempty"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
}
