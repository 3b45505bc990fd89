package documenterrors

import (
	"net/http"

	"go-lcms/internal/shared/apperror"
)

var (
	ErrEmptyFile = apperror.New(
		apperror.CodeInvalidInput,
		"supporting document is empty",
		http.StatusBadRequest,
	)
	ErrFileTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"supporting document exceeds 10 MiB",
		http.StatusBadRequest,
	)
	ErrUnsupportedType = apperror.New(
		apperror.CodeInvalidInput,
		"supporting document must be pdf, doc, docx, jpeg or png",
		http.StatusBadRequest,
	)
	ErrInvalidPath = apperror.New(
		apperror.CodeInvalidInput,
		"invalid document path",
		http.StatusBadRequest,
	)
	ErrBlobNotFound = apperror.New(
		apperror.CodeNotFound,
		"document not found",
		http.StatusNotFound,
	)
	ErrUploadFailed = apperror.New(
		apperror.CodeServiceUnavailable,
		"document storage is unavailable",
		http.StatusServiceUnavailable,
	)
)
