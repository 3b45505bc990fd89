package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// Detailer is implemented by errors that carry structured data for the client,
// e.g. available vs requested credits.
type Detailer interface {
	ErrorDetails() any
}

// ToHTTP maps any error to the response envelope fields. Unknown errors become 500.
func ToHTTP(err error) HTTPError {
	if err == nil {
		return HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return HTTPError{
			Status:  ErrInternal.HTTPStatus,
			Code:    ErrInternal.Code,
			Message: ErrInternal.Message,
		}
	}

	httpErr := HTTPError{
		Status:  appErr.HTTPStatus,
		Code:    appErr.Code,
		Message: appErr.Message,
	}

	var d Detailer
	if errors.As(err, &d) {
		httpErr.Message = err.Error()
		httpErr.Details = d.ErrorDetails()
	}
	return httpErr
}
