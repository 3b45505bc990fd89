package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go-lcms/internal/credit"
	employeeerrors "go-lcms/internal/employee/errors"
	"go-lcms/internal/events"
	"go-lcms/internal/messaging/kafka"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeDetailKeyPrefix = "employees:detail:"
	employeeDetailTTL       = time.Hour
)

func GetEmployeeDetailKey(id string) string {
	return EmployeeDetailKeyPrefix + id
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	// GetByID is the directory lookup used to resolve approvers and snapshot
	// requester identity.
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByEmail(ctx context.Context, email string) (EmployeeResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	credits credit.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	credits credit.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		credits: credits,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

// Create stores the employee and seeds the default credit ledger in one
// transaction, queueing employee_created on the outbox when one is configured.
func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	role, ok := session.ParseRole(req.Role)
	if !ok {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("department", req.Department),
		zap.String("role", string(role)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	empl := &Employee{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Department:  strings.TrimSpace(req.Department),
		Designation: strings.TrimSpace(req.Designation),
		Role:        string(role),
	}

	if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.credits.WithTx(tx).CreateMissing(ctx, credit.DefaultCredits(empl.ID)); err != nil {
		s.logger.Error("create employee seed credits failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.EmployeeCreatedEvent{
			EventType:  "employee_created",
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			Email:      empl.Email,
			Role:       empl.Role,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "employee",
			AggregateID:   empl.ID.String(),
			EventType:     event.EventType,
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)
	return mapToResponse(*empl), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	cacheKey := GetEmployeeDetailKey(id)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		s.logger.Debug("get employee by id from store", zap.String("employee_id", id))
		empl, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		resp := mapToResponse(*empl)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, employeeDetailTTL).Err(); err != nil {
					s.logger.Warn("cache employee failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}

	return v.(EmployeeResponse), nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          empl.ID.String(),
		Name:        empl.Name,
		Email:       empl.Email,
		Department:  empl.Department,
		Designation: empl.Designation,
		Role:        empl.Role,
	}
}
