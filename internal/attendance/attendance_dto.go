package attendance

type ClockInRequest struct {
	LocationID *string `json:"location_id" binding:"omitempty,uuid"`
	Source     string  `json:"source"`
	Notes      *string `json:"notes"`
}

type ClockOutRequest struct {
	Notes *string `json:"notes"`
}

type ClockEventResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	LocationID   *string `json:"location_id,omitempty"`
	WorkDate     string  `json:"work_date"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     *string `json:"clock_out,omitempty"`
	Source       string  `json:"source"`
	Notes        *string `json:"notes,omitempty"`
}
