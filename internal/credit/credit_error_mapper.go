package credit

import (
	"errors"

	crediterrors "go-lcms/internal/credit/errors"
	"go-lcms/internal/shared/apperror"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crediterrors.ErrCreditNotFound
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.WrapWith(apperror.ErrStoreUnavailable, err)
}
