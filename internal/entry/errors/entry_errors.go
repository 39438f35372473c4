package entryerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay entry not found",
		http.StatusNotFound,
	)
	ErrPeriodLocked = apperror.New(
		apperror.CodeInvalidState,
		"pay period is locked and can no longer be modified",
		http.StatusBadRequest,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay period not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrInvalidEntryType = apperror.New(
		apperror.CodeInvalidInput,
		"entry_type must be EARNING or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount_cents must not be zero",
		http.StatusBadRequest,
	)
	ErrOverrideEarningOnly = apperror.New(
		apperror.CodeInvalidState,
		"only earning entries can be overridden",
		http.StatusBadRequest,
	)
	ErrNotEntryOwner = apperror.New(
		apperror.CodeForbidden,
		"entries can only be approved by their owner",
		http.StatusForbidden,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"entry was modified concurrently, please retry",
		http.StatusConflict,
	)
)
