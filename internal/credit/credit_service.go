package credit

import (
	"context"
	"database/sql"
	"errors"

	crediterrors "go-lcms/internal/credit/errors"
	"go-lcms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// Balances lists every bucket; buckets with no ledger row read as zero.
	Balances(ctx context.Context, employeeID string) (BalancesResponse, error)
	Allot(ctx context.Context, employeeID, bucket string, days int) (CreditResponse, error)
	SeedDefaults(ctx context.Context, employeeID string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("credit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Balances(ctx context.Context, employeeID string) (BalancesResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalancesResponse{}, crediterrors.ErrInvalidEmployeeID
	}
	s.logger.Debug("get balances requested", zap.String("employee_id", employeeID))

	credits, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("get balances failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalancesResponse{}, mapRepositoryError(err)
	}

	return NewBalancesResponse(employeeID, credits), nil
}

func (s *service) Allot(ctx context.Context, employeeID, bucket string, days int) (CreditResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return CreditResponse{}, crediterrors.ErrInvalidEmployeeID
	}
	b, ok := ParseBucket(bucket)
	if !ok {
		return CreditResponse{}, crediterrors.ErrInvalidBucket
	}
	if days < 0 {
		return CreditResponse{}, crediterrors.ErrInvalidDays
	}
	s.logger.Debug("allot credits requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("bucket", bucket),
		zap.Int("days", days),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("allot credits begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.CreateMissing(ctx, []LeaveCredit{{ID: uuid.New(), EmployeeID: empID, Bucket: b}}); err != nil {
		s.logger.Error("allot credits ensure bucket failed", zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}

	updated, err := qtx.SetDays(ctx, employeeID, b, days)
	if err != nil {
		s.logger.Error("allot credits update failed", zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}
	if !updated {
		s.logger.Warn("allot credits below used",
			zap.String("employee_id", employeeID),
			zap.String("bucket", bucket),
			zap.Int("days", days),
		)
		return CreditResponse{}, crediterrors.ErrAllotmentBelowUsed
	}

	c, err := qtx.FindBucket(ctx, employeeID, b)
	if err != nil {
		s.logger.Error("allot credits reload failed", zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("allot credits commit failed", zap.String("request_id", rid), zap.Error(err))
		return CreditResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("allot credits success",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("bucket", bucket),
		zap.Int("days", c.Days),
		zap.Int("remaining", c.Remaining),
	)
	return mapToResponse(*c), nil
}

// SeedDefaults creates any missing bucket with DefaultAllotment; existing rows
// are left untouched so it is safe to run more than once.
func (s *service) SeedDefaults(ctx context.Context, employeeID string) error {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return crediterrors.ErrInvalidEmployeeID
	}

	if err := s.repo.CreateMissing(ctx, DefaultCredits(empID)); err != nil {
		s.logger.Error("seed default credits failed", zap.String("employee_id", employeeID), zap.Error(err))
		return mapRepositoryError(err)
	}
	s.logger.Info("seed default credits success", zap.String("employee_id", employeeID))
	return nil
}

// DefaultCredits builds the DefaultAllotment rows for one employee.
func DefaultCredits(employeeID uuid.UUID) []LeaveCredit {
	credits := make([]LeaveCredit, 0, len(Buckets))
	for _, b := range Buckets {
		days := DefaultAllotment[b]
		credits = append(credits, LeaveCredit{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Bucket:     b,
			Days:       days,
			Remaining:  days,
		})
	}
	return credits
}

// NewBalancesResponse lists every bucket in display order; buckets with no
// ledger row read as zero.
func NewBalancesResponse(employeeID string, credits []LeaveCredit) BalancesResponse {
	byBucket := make(map[Bucket]LeaveCredit, len(credits))
	for _, c := range credits {
		byBucket[c.Bucket] = c
	}

	resp := BalancesResponse{EmployeeID: employeeID, Credits: make([]CreditResponse, 0, len(Buckets))}
	for _, b := range Buckets {
		c, ok := byBucket[b]
		if !ok {
			c = LeaveCredit{Bucket: b}
		}
		resp.Credits = append(resp.Credits, mapToResponse(c))
	}
	return resp
}

// IsNotFound reports whether err is a missing ledger row.
func IsNotFound(err error) bool {
	return errors.Is(mapRepositoryError(err), crediterrors.ErrCreditNotFound)
}

func mapToResponse(c LeaveCredit) CreditResponse {
	return CreditResponse{
		Bucket:    string(c.Bucket),
		Days:      c.Days,
		Used:      c.Used,
		Remaining: c.Remaining,
	}
}
