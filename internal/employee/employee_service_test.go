package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	creditMock "go-lcms/internal/credit/mock"
	"go-lcms/internal/employee"
	employeeerrors "go-lcms/internal/employee/errors"
	employeeMock "go-lcms/internal/employee/mock"
	"go-lcms/internal/events"
	"go-lcms/internal/messaging/kafka"
	kafkaMock "go-lcms/internal/messaging/kafka/mock"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	credits   *creditMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	dbRedis, redisMock := redismock.NewClientMock()

	repo := employeeMock.NewMockRepository(ctrl)
	credits := creditMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   employee.NewService(db, repo, credits, outbox, dbRedis),
		repo:      repo,
		credits:   credits,
		outbox:    outbox,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

type outboxMatcher struct {
	rid string
}

func (m outboxMatcher) Matches(x any) bool {
	ev, ok := x.(kafka.OutboxEvent)
	if !ok {
		return false
	}
	return ev.RequestID == m.rid &&
		ev.Topic == events.EmployeeCreatedTopic &&
		ev.EventType == "employee_created" &&
		ev.Status == kafka.OutboxStatusPending
}

func (m outboxMatcher) String() string { return "outbox employee_created with request id " + m.rid }

func TestEmployeeService_Create(t *testing.T) {
	req := employee.CreateEmployeeRequest{
		Name:        "  Juan Dela Cruz ",
		Email:       "Juan@Example.com",
		Department:  "Finance",
		Designation: "Analyst",
		Role:        "employee",
	}

	t.Run("success seeds credits and queues outbox event", func(t *testing.T) {
		deps := setupServiceTest(t)
		rid := "REQ-123"
		ctx := contextutil.WithRequestID(context.Background(), rid)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "Juan Dela Cruz", e.Name)
				assert.Equal(t, "juan@example.com", e.Email)
				assert.NotEqual(t, uuid.Nil, e.ID)
				return nil
			})
		deps.credits.EXPECT().WithTx(gomock.Any()).Return(deps.credits)
		deps.credits.EXPECT().CreateMissing(ctx, gomock.Len(6)).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, outboxMatcher{rid: rid}).Return(nil)

		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "Finance", resp.Department)
		assert.Equal(t, "employee", resp.Role)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"})

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative credit seed failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.credits.EXPECT().WithTx(gomock.Any()).Return(deps.credits)
		deps.credits.EXPECT().CreateMissing(ctx, gomock.Any()).Return(errors.New("disk full"))

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid role", func(t *testing.T) {
		deps := setupServiceTest(t)
		bad := req
		bad.Role = "admin"

		_, err := deps.service.Create(context.Background(), bad)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidRole)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success cache hit skips store", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		cached, _ := json.Marshal(employee.EmployeeResponse{ID: id, Name: "Caca", Department: "IT", Role: "supervisor"})
		deps.redismock.ExpectGet(employee.GetEmployeeDetailKey(id)).SetVal(string(cached))

		resp, err := deps.service.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "Caca", resp.Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		key := employee.GetEmployeeDetailKey(id.String())
		empl := &employee.Employee{ID: id, Name: "Deni", Email: "deni@example.com", Department: "IT", Role: "employee"}
		expected := employee.EmployeeResponse{ID: id.String(), Name: "Deni", Email: "deni@example.com", Department: "IT", Role: "employee"}
		payload, _ := json.Marshal(expected)

		deps.redismock.ExpectGet(key).RedisNil()
		deps.repo.EXPECT().FindByID(gomock.Any(), id.String()).Return(empl, nil)
		deps.redismock.ExpectSet(key, payload, time.Hour).SetVal("OK")

		resp, err := deps.service.GetByID(ctx, id.String())

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.redismock.ExpectGet(employee.GetEmployeeDetailKey(id)).RedisNil()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}
