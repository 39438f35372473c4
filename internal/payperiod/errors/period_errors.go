package perioderrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay period not found",
		http.StatusNotFound,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be after start_date",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"unknown pay period status",
		http.StatusBadRequest,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"status transition is not allowed",
		http.StatusBadRequest,
	)
	ErrPeriodLocked = apperror.New(
		apperror.CodeInvalidState,
		"pay period is locked and can no longer be modified",
		http.StatusBadRequest,
	)
	ErrNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"pay period must be approved before it can be finalized",
		http.StatusBadRequest,
	)
	ErrEntriesAlreadyClaimed = apperror.New(
		apperror.CodeConflict,
		"one or more entries already belong to an approval run",
		http.StatusConflict,
	)
	ErrMissingRates = apperror.New(
		apperror.CodeInvalidState,
		"period has employees with hours but no applicable rate",
		http.StatusBadRequest,
	)
	ErrExpenseNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll expense not found for this period",
		http.StatusNotFound,
	)
)
