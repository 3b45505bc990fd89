package employee

import (
	"errors"
	"strings"

	employeeerrors "go-lcms/internal/employee/errors"
	"go-lcms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_email" {
			return employeeerrors.ErrEmployeeAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unique constraint failed: employees.email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.WrapWith(apperror.ErrStoreUnavailable, err)
}
