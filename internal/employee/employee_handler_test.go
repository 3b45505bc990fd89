package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-lcms/internal/employee"
	employeeerrors "go-lcms/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeService struct {
	CreateFn     func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetByIDFn    func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	GetByEmailFn func(ctx context.Context, email string) (employee.EmployeeResponse, error)
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeEmployeeService) GetByEmail(ctx context.Context, email string) (employee.EmployeeResponse, error) {
	return f.GetByEmailFn(ctx, email)
}

type apiEnvelope struct {
	Ok    bool                      `json:"ok"`
	Data  employee.EmployeeResponse `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(svc employee.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := employee.NewHandler(svc)
	r := gin.New()
	r.POST("/employees", h.Create)
	r.GET("/employees/:id", h.GetById)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		svc := &fakeEmployeeService{
			CreateFn: func(_ context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "Maria", req.Name)
				return employee.EmployeeResponse{ID: id, Name: req.Name, Role: req.Role}, nil
			},
		}
		body := `{"name":"Maria","email":"maria@example.com","department":"HR","role":"hr"}`
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Ok)
		assert.Equal(t, id, env.Data.ID)
	})

	t.Run("negative invalid role", func(t *testing.T) {
		body := `{"name":"Maria","email":"maria@example.com","department":"HR","role":"boss"}`
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(&fakeEmployeeService{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Message, "Role must be one of")
	})

	t.Run("negative conflict", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(context.Context, employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
			},
		}
		body := `{"name":"Maria","email":"maria@example.com","department":"HR","role":"hr"}`
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestEmployeeHandler_GetById(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		svc := &fakeEmployeeService{
			GetByIDFn: func(_ context.Context, got string) (employee.EmployeeResponse, error) {
				assert.Equal(t, id, got)
				return employee.EmployeeResponse{ID: id, Name: "Ana"}, nil
			},
		}
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+id, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ana", decodeEnvelope(t, w).Data.Name)
	})

	t.Run("negative not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(context.Context, string) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, w).Error.Code)
	})
}
