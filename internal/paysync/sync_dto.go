package paysync

// SyncResult is the outcome of one synchronization pass. A pass is
// idempotent: re-running it moves created work into skipped and leaves
// the ledger unchanged. Processed counts every piece of evidence the
// pass examined, whatever became of it.
type SyncResult struct {
	PeriodID    string            `json:"period_id"`
	Processed   int               `json:"processed"`
	Created     int               `json:"created"`
	Skipped     int               `json:"skipped"`
	Removed     int               `json:"removed"`
	MissingRate []MissingRateItem `json:"missing_rate,omitempty"`
	Failed      []SyncFailure     `json:"failed,omitempty"`
}

// MissingRateItem names a piece of work evidence that could not be
// priced. The work stays unpaid until a rate covering its date exists
// and the sync runs again.
type MissingRateItem struct {
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`
	JobID      string `json:"job_id,omitempty"`
}

// ClockSyncRequest names the inclusive date window to scan. The covering
// pay period is created on first use.
type ClockSyncRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type SyncFailure struct {
	SyncKey string `json:"sync_key"`
	Reason  string `json:"reason"`
}

type MissingRatesResponse struct {
	PeriodID    string   `json:"period_id"`
	EmployeeIDs []string `json:"employee_ids"`
}
