package rateerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidRateType = apperror.New(
		apperror.CodeInvalidInput,
		"rate_type must be one of HOURLY, PER_VISIT, MONTHLY",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount_cents must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid effective_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrNoApplicableRate = apperror.New(
		apperror.CodeNotFound,
		"no applicable rate for employee at the given time",
		http.StatusNotFound,
	)
)
