package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-lcms/internal/credit"
	"go-lcms/internal/document"
	"go-lcms/internal/leave"
	leaveerrors "go-lcms/internal/leave/errors"
	"go-lcms/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveService struct {
	submitFn         func(ctx context.Context, sess session.Session, req leave.LeaveDraft, files []document.File) (leave.LeaveResponse, error)
	editFn           func(ctx context.Context, sess session.Session, id string, req leave.EditLeaveRequest, files []document.File) (leave.LeaveResponse, error)
	decideFn         func(ctx context.Context, sess session.Session, id string, req leave.DecisionRequest) (leave.LeaveResponse, error)
	cancelFn         func(ctx context.Context, sess session.Session, id string, reason string) (leave.LeaveResponse, error)
	getByIDFn        func(ctx context.Context, sess session.Session, id string) (leave.LeaveResponse, error)
	listForEmployeeFn func(ctx context.Context, sess session.Session, employeeID string) ([]leave.LeaveResponse, error)
	listPendingFn    func(ctx context.Context, sess session.Session, role session.Role, scope string) ([]leave.LeaveResponse, error)
	listReviewedFn   func(ctx context.Context, sess session.Session, department string) ([]leave.LeaveResponse, error)
	balancesFn       func(ctx context.Context, sess session.Session) (credit.BalancesResponse, error)
	openDocumentFn   func(ctx context.Context, sess session.Session, key string) (leave.DocumentContent, error)
}

func (f *fakeLeaveService) Submit(ctx context.Context, sess session.Session, req leave.LeaveDraft, files []document.File) (leave.LeaveResponse, error) {
	return f.submitFn(ctx, sess, req, files)
}

func (f *fakeLeaveService) Edit(ctx context.Context, sess session.Session, id string, req leave.EditLeaveRequest, files []document.File) (leave.LeaveResponse, error) {
	return f.editFn(ctx, sess, id, req, files)
}

func (f *fakeLeaveService) Decide(ctx context.Context, sess session.Session, id string, req leave.DecisionRequest) (leave.LeaveResponse, error) {
	return f.decideFn(ctx, sess, id, req)
}

func (f *fakeLeaveService) Cancel(ctx context.Context, sess session.Session, id string, reason string) (leave.LeaveResponse, error) {
	return f.cancelFn(ctx, sess, id, reason)
}

func (f *fakeLeaveService) GetByID(ctx context.Context, sess session.Session, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, sess, id)
}

func (f *fakeLeaveService) ListForEmployee(ctx context.Context, sess session.Session, employeeID string) ([]leave.LeaveResponse, error) {
	return f.listForEmployeeFn(ctx, sess, employeeID)
}

func (f *fakeLeaveService) ListPendingForRole(ctx context.Context, sess session.Session, role session.Role, scope string) ([]leave.LeaveResponse, error) {
	return f.listPendingFn(ctx, sess, role, scope)
}

func (f *fakeLeaveService) ListReviewedBySupervisor(ctx context.Context, sess session.Session, department string) ([]leave.LeaveResponse, error) {
	return f.listReviewedFn(ctx, sess, department)
}

func (f *fakeLeaveService) Balances(ctx context.Context, sess session.Session) (credit.BalancesResponse, error) {
	return f.balancesFn(ctx, sess)
}

func (f *fakeLeaveService) OpenDocument(ctx context.Context, sess session.Session, key string) (leave.DocumentContent, error) {
	return f.openDocumentFn(ctx, sess, key)
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func withSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess != nil {
			c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), *sess))
		}
		c.Next()
	}
}

func setupLeaveRouter(svc leave.Service, sess *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := leave.NewHandler(svc, 100*time.Millisecond)

	r := gin.New()
	r.Use(withSession(sess))
	r.POST("/leaves", h.Submit)
	r.PUT("/leaves/:id", h.Edit)
	r.POST("/leaves/:id/decision", h.Decide)
	r.POST("/leaves/:id/cancel", h.Cancel)
	r.GET("/leaves/pending", h.ListPending)
	r.GET("/leaves/balances", h.Balances)
	r.GET("/leaves/:id", h.GetByID)
	r.GET("/files/*key", h.Document)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestLeaveHandler_Submit(t *testing.T) {
	emp := &session.Session{UserID: "emp-1", Email: "ana@lcms.test", Role: session.RoleEmployee}
	body := `{"leave_type":"vacation","start_date":"2030-03-04","end_date":"2030-03-06","reason_notes":"Family trip"}`

	t.Run("success json", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(_ context.Context, sess session.Session, req leave.LeaveDraft, files []document.File) (leave.LeaveResponse, error) {
				assert.Equal(t, "emp-1", sess.UserID)
				assert.Equal(t, "vacation", req.LeaveType)
				assert.Empty(t, files)
				return leave.LeaveResponse{ID: "l-1", Status: "pending_supervisor", NumberOfDays: 3}, nil
			},
		}
		r := setupLeaveRouter(svc, emp)

		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), `"status":"pending_supervisor"`)
	})

	t.Run("success multipart passes documents through", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(_ context.Context, _ session.Session, req leave.LeaveDraft, files []document.File) (leave.LeaveResponse, error) {
				assert.Equal(t, "sick", req.LeaveType)
				require.Len(t, files, 2)
				assert.Equal(t, "note.pdf", files[0].Name)
				assert.Equal(t, pdfBytes, files[0].Content)
				return leave.LeaveResponse{ID: "l-2"}, nil
			},
		}
		r := setupLeaveRouter(svc, emp)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("leave_type", "sick"))
		require.NoError(t, mw.WriteField("start_date", "2030-03-04"))
		require.NoError(t, mw.WriteField("end_date", "2030-03-04"))
		require.NoError(t, mw.WriteField("reason_notes", "Fever"))
		for _, name := range []string{"note.pdf", "scan.pdf"} {
			part, err := mw.CreateFormFile("documents", name)
			require.NoError(t, err)
			_, err = part.Write(pdfBytes)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/leaves", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative missing fields", func(t *testing.T) {
		r := setupLeaveRouter(&fakeLeaveService{}, emp)

		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"leave_type":"vacation"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	})

	t.Run("negative insufficient credits carries details", func(t *testing.T) {
		svc := &fakeLeaveService{
			submitFn: func(context.Context, session.Session, leave.LeaveDraft, []document.File) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, &leaveerrors.InsufficientCreditsError{Bucket: "regularLeave", Available: 2, Requested: 3}
			},
		}
		r := setupLeaveRouter(svc, emp)

		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Equal(t, "INSUFFICIENT_CREDITS", env.Error.Code)
		assert.Equal(t, "regularLeave", env.Error.Details["bucket"])
		assert.EqualValues(t, 2, env.Error.Details["available"])
		assert.EqualValues(t, 3, env.Error.Details["requested"])
	})

	t.Run("negative no session", func(t *testing.T) {
		r := setupLeaveRouter(&fakeLeaveService{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLeaveHandler_Decide(t *testing.T) {
	hr := &session.Session{UserID: "hr-1", Role: session.RoleHR}

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(_ context.Context, sess session.Session, id string, req leave.DecisionRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, session.RoleHR, sess.Role)
				assert.Equal(t, "l-1", id)
				assert.Equal(t, "approve", req.Decision)
				return leave.LeaveResponse{ID: id, Status: "approved"}, nil
			},
		}
		r := setupLeaveRouter(svc, hr)

		req := httptest.NewRequest(http.MethodPost, "/leaves/l-1/decision", strings.NewReader(`{"decision":"approve"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative unknown decision", func(t *testing.T) {
		r := setupLeaveRouter(&fakeLeaveService{}, hr)

		req := httptest.NewRequest(http.MethodPost, "/leaves/l-1/decision", strings.NewReader(`{"decision":"maybe"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative already decided", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(context.Context, session.Session, string, leave.DecisionRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrInvalidTransition
			},
		}
		r := setupLeaveRouter(svc, hr)

		req := httptest.NewRequest(http.MethodPost, "/leaves/l-1/decision", strings.NewReader(`{"decision":"approve"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", decode(t, w).Error.Code)
	})

	t.Run("negative approver lookup", func(t *testing.T) {
		svc := &fakeLeaveService{
			decideFn: func(context.Context, session.Session, string, leave.DecisionRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrApproverLookupFailed
			},
		}
		r := setupLeaveRouter(svc, hr)

		req := httptest.NewRequest(http.MethodPost, "/leaves/l-1/decision", strings.NewReader(`{"decision":"reject"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestLeaveHandler_Cancel(t *testing.T) {
	emp := &session.Session{UserID: "emp-1", Role: session.RoleEmployee}

	t.Run("success without body", func(t *testing.T) {
		svc := &fakeLeaveService{
			cancelFn: func(_ context.Context, _ session.Session, id, reason string) (leave.LeaveResponse, error) {
				assert.Equal(t, "", reason)
				return leave.LeaveResponse{ID: id, Status: "cancelled"}, nil
			},
		}
		r := setupLeaveRouter(svc, emp)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/l-1/cancel", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success with reason", func(t *testing.T) {
		svc := &fakeLeaveService{
			cancelFn: func(_ context.Context, _ session.Session, id, reason string) (leave.LeaveResponse, error) {
				assert.Equal(t, "plans changed", reason)
				return leave.LeaveResponse{ID: id}, nil
			},
		}
		r := setupLeaveRouter(svc, emp)

		req := httptest.NewRequest(http.MethodPost, "/leaves/l-1/cancel", strings.NewReader(`{"reason":"plans changed"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative already started", func(t *testing.T) {
		svc := &fakeLeaveService{
			cancelFn: func(context.Context, session.Session, string, string) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrAlreadyStarted
			},
		}
		r := setupLeaveRouter(svc, emp)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/l-1/cancel", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLeaveHandler_ListPending(t *testing.T) {
	sup := &session.Session{UserID: "sup-1", Role: session.RoleSupervisor}

	t.Run("success paginates and defaults role", func(t *testing.T) {
		svc := &fakeLeaveService{
			listPendingFn: func(_ context.Context, _ session.Session, role session.Role, scope string) ([]leave.LeaveResponse, error) {
				assert.Equal(t, session.RoleSupervisor, role)
				assert.Equal(t, "IT", scope)
				items := make([]leave.LeaveResponse, 5)
				for i := range items {
					items[i] = leave.LeaveResponse{ID: string(rune('a' + i))}
				}
				return items, nil
			},
		}
		r := setupLeaveRouter(svc, sup)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/pending?department=IT&page=2&page_size=2", nil))

		require.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		var rows []leave.LeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "c", rows[0].ID)
		assert.Contains(t, string(env.Meta), `"totalPages":3`)
	})

	t.Run("oversized paging query does not fail", func(t *testing.T) {
		svc := &fakeLeaveService{
			listPendingFn: func(context.Context, session.Session, session.Role, string) ([]leave.LeaveResponse, error) {
				return []leave.LeaveResponse{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
			},
		}
		r := setupLeaveRouter(svc, sup)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/pending?page=9223372036854775807&page_size=4611686018427387903", nil))

		require.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		var rows []leave.LeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		assert.Empty(t, rows)
		assert.Contains(t, string(env.Meta), `"pageSize":100`)
	})

	t.Run("negative unknown role", func(t *testing.T) {
		r := setupLeaveRouter(&fakeLeaveService{}, sup)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/pending?role=ceo", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative outside department", func(t *testing.T) {
		svc := &fakeLeaveService{
			listPendingFn: func(context.Context, session.Session, session.Role, string) ([]leave.LeaveResponse, error) {
				return nil, leaveerrors.ErrOutsideDepartment
			},
		}
		r := setupLeaveRouter(svc, sup)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/pending?department=Finance", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLeaveHandler_GetAndBalances(t *testing.T) {
	emp := &session.Session{UserID: "emp-1", Role: session.RoleEmployee}

	svc := &fakeLeaveService{
		getByIDFn: func(_ context.Context, _ session.Session, id string) (leave.LeaveResponse, error) {
			if id == "missing" {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound
			}
			return leave.LeaveResponse{ID: id}, nil
		},
		balancesFn: func(_ context.Context, sess session.Session) (credit.BalancesResponse, error) {
			return credit.NewBalancesResponse(sess.UserID, nil), nil
		},
	}
	r := setupLeaveRouter(svc, emp)

	t.Run("success get", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/l-9", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success balances", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaves/balances", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"serviceLeave"`)
	})
}

func TestLeaveHandler_Document(t *testing.T) {
	emp := &session.Session{UserID: "emp-1", Role: session.RoleEmployee}
	key := "leave-requests/6b1f0c52-34a1-4b8e-9d3c-0d6c1e2f7a10/1760000000123-a1b2-medical.pdf"

	t.Run("success streams the file", func(t *testing.T) {
		svc := &fakeLeaveService{
			openDocumentFn: func(_ context.Context, sess session.Session, got string) (leave.DocumentContent, error) {
				assert.Equal(t, "emp-1", sess.UserID)
				assert.Equal(t, "/"+key, got)
				return leave.DocumentContent{Name: "medical.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")}, nil
			},
		}
		r := setupLeaveRouter(svc, emp)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/"+key, nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename=medical.pdf`)
		assert.Equal(t, "%PDF-1.4", w.Body.String())
	})

	t.Run("negative not a viewer", func(t *testing.T) {
		svc := &fakeLeaveService{
			openDocumentFn: func(context.Context, session.Session, string) (leave.DocumentContent, error) {
				return leave.DocumentContent{}, leaveerrors.ErrNotOwner
			},
		}
		r := setupLeaveRouter(svc, emp)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/"+key, nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
