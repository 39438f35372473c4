package payperiod

type CreatePeriodRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	PayDate   string `json:"pay_date" binding:"omitempty,datetime=2006-01-02"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT REVIEW APPROVED LOCKED"`
}

type ApproveEntriesRequest struct {
	EntryIDs []string `json:"entry_ids" binding:"required,min=1,dive,uuid"`
}

type PeriodResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"company_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	PayDate     *string `json:"pay_date,omitempty"`
	Status      string  `json:"status"`
	Frozen      *Totals `json:"frozen_totals,omitempty"`
	FinalizedAt *string `json:"finalized_at,omitempty"`
	FinalizedBy *string `json:"finalized_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type TotalsResponse struct {
	PeriodID  string           `json:"period_id"`
	Status    string           `json:"status"`
	Frozen    bool             `json:"frozen"`
	Totals    Totals           `json:"totals"`
	Employees []EmployeeTotals `json:"employees"`
}

type ApprovalRunResponse struct {
	RunID   string `json:"run_id"`
	Claimed int    `json:"claimed"`
	Totals  Totals `json:"totals"`
}

type ExpenseResponse struct {
	ID          string  `json:"id"`
	PeriodID    string  `json:"period_id"`
	AmountCents int64   `json:"amount_cents"`
	Description string  `json:"description"`
	Exported    bool    `json:"exported"`
	ExportedAt  *string `json:"exported_at,omitempty"`
}

type FinalizeResponse struct {
	Period   PeriodResponse  `json:"period"`
	Expense  ExpenseResponse `json:"expense"`
	Replayed bool            `json:"replayed"`
}
