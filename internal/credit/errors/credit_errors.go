package crediterrors

import (
	"net/http"

	"go-lcms/internal/shared/apperror"
)

var (
	ErrCreditNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave credit bucket not found",
		http.StatusNotFound,
	)
	ErrInvalidBucket = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown leave credit bucket",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrAllotmentBelowUsed = apperror.New(
		apperror.CodeConflict,
		"Allotted days cannot be lower than days already used",
		http.StatusConflict,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"Days must be a positive number",
		http.StatusBadRequest,
	)
)
