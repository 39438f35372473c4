package rate

type CreateRateRequest struct {
	EmployeeID    string  `json:"employee_id" binding:"required,uuid"`
	RateType      string  `json:"rate_type" binding:"required"`
	AmountCents   int64   `json:"amount_cents" binding:"required"`
	EffectiveDate string  `json:"effective_date" binding:"required"`
	LocationID    *string `json:"location_id" binding:"omitempty,uuid"`
}

type RateResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	EmployeeID    string  `json:"employee_id"`
	RateType      string  `json:"rate_type"`
	AmountCents   int64   `json:"amount_cents"`
	EffectiveDate string  `json:"effective_date"`
	LocationID    *string `json:"location_id,omitempty"`
}

type ResolveQuery struct {
	EmployeeID string  `form:"employee_id" binding:"required,uuid"`
	At         string  `form:"at" binding:"required"`
	LocationID *string `form:"location_id" binding:"omitempty,uuid"`
}
