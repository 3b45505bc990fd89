package leaveerrors

import (
	"fmt"
	"net/http"

	"go-lcms/internal/shared/apperror"
)

// Validation
var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave type must be one of vacation, sick, personal, emergency, maternity, service",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"start date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must be on or after start date",
		http.StatusBadRequest,
	)
	ErrNumberOfDaysMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"number of days does not match the selected dates",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reason notes are required",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidDocumentIndex = apperror.New(
		apperror.CodeInvalidInput,
		"document index out of range",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
)

var ErrLeaveNotFound = apperror.New(
	apperror.CodeNotFound,
	"leave request not found",
	http.StatusNotFound,
)

var ErrDocumentNotFound = apperror.New(
	apperror.CodeNotFound,
	"supporting document not found",
	http.StatusNotFound,
)

// Invalid state
var (
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave request cannot move to that status from its current status",
		http.StatusConflict,
	)
	ErrNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be edited",
		http.StatusConflict,
	)
	ErrNotCancellable = apperror.New(
		apperror.CodeInvalidState,
		"leave request can no longer be cancelled",
		http.StatusConflict,
	)
	ErrAlreadyStarted = apperror.New(
		apperror.CodeInvalidState,
		"approved leave can only be cancelled before its start date",
		http.StatusConflict,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeInvalidState,
		"leave request was changed by someone else, reload and retry",
		http.StatusConflict,
	)
)

// Permission
var (
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requesting employee can do this",
		http.StatusForbidden,
	)
	ErrRoleCannotDecide = apperror.New(
		apperror.CodeForbidden,
		"only supervisors and hr can decide leave requests",
		http.StatusForbidden,
	)
	ErrOutsideDepartment = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another department",
		http.StatusForbidden,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"you cannot decide your own leave request",
		http.StatusForbidden,
	)
)

var ErrApproverLookupFailed = apperror.New(
	apperror.CodeApproverLookupFailed,
	"could not resolve the approver",
	http.StatusBadGateway,
)

var ErrInsufficientCredits = apperror.New(
	apperror.CodeInsufficientCredits,
	"insufficient leave credits",
	http.StatusUnprocessableEntity,
)

// InsufficientCreditsError carries the numbers the client shows back to the user.
type InsufficientCreditsError struct {
	Bucket    string
	Available int
	Requested int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient leave credits: %d day(s) available, %d requested", e.Available, e.Requested)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}

func (e *InsufficientCreditsError) ErrorDetails() any {
	return map[string]any{
		"bucket":    e.Bucket,
		"available": e.Available,
		"requested": e.Requested,
	}
}
