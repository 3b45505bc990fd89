package app

import (
	"context"
	"errors"

	"go-lcms/internal/auth"
	"go-lcms/internal/config"
	"go-lcms/internal/employee"
	employeeerrors "go-lcms/internal/employee/errors"
	"go-lcms/internal/session"

	"go.uber.org/zap"
)

const bootstrapDepartment = "HR"

// seedBootstrapHR makes sure BOOTSTRAP_HR_EMAIL exists as an HR employee with a
// login. Running it again against a seeded store is a no-op.
func seedBootstrapHR(
	ctx context.Context,
	cfg config.Config,
	employees employee.Service,
	authService auth.Service,
	logger *zap.Logger,
) error {
	if cfg.BootstrapHREmail == "" {
		return nil
	}
	log := logger.Named("app.seed")

	emp, err := employees.GetByEmail(ctx, cfg.BootstrapHREmail)
	switch {
	case err == nil:
		log.Debug("bootstrap hr already present", zap.String("employee_id", emp.ID))
		return nil
	case !errors.Is(err, employeeerrors.ErrEmployeeNotFound):
		return err
	}

	emp, err = employees.Create(ctx, employee.CreateEmployeeRequest{
		Name:       cfg.BootstrapHRName,
		Email:      cfg.BootstrapHREmail,
		Department: bootstrapDepartment,
		Role:       string(session.RoleHR),
	})
	if err != nil {
		return err
	}
	if _, err := authService.Register(ctx, auth.RegisterRequest{
		EmployeeID: emp.ID,
		Password:   cfg.BootstrapHRPassword,
	}); err != nil {
		return err
	}

	log.Info("bootstrap hr seeded", zap.String("employee_id", emp.ID), zap.String("email", emp.Email))
	return nil
}
