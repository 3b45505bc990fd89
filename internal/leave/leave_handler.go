package leave

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-lcms/internal/document"
	documenterrors "go-lcms/internal/document/errors"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const documentsField = "documents"

type Handler struct {
	service        Service
	sessions       session.Source
	sessionTimeout time.Duration
	logger         *zap.Logger
}

func NewHandler(service Service, sessionTimeout time.Duration, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{
		service:        service,
		sessions:       session.ContextSource{},
		sessionTimeout: sessionTimeout,
		logger:         l,
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("http leave validation failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", apperror.MapValidationError(err).Error(), nil)
}

func (h *Handler) session(c *gin.Context) (session.Session, bool) {
	sess, err := session.Await(c.Request.Context(), h.sessions, h.sessionTimeout)
	if err != nil {
		h.writeServiceError(c, err)
		return session.Session{}, false
	}
	return sess, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readDocuments loads every uploaded part. Reading stops one byte past the
// size limit so oversized files fail validation without being fully buffered.
func readDocuments(c *gin.Context) ([]document.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.InvalidField(documentsField)
	}

	headers := form.File[documentsField]
	files := make([]document.File, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, document.File{Name: fh.Filename, Content: content})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > document.MaxFileSize {
		return nil, documenterrors.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.InvalidField(documentsField)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, document.MaxFileSize+1))
	if err != nil {
		return nil, apperror.InvalidField(documentsField)
	}
	return content, nil
}

func (h *Handler) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.logger.Debug("http submit leave", zap.String("employee_id", sess.UserID))

	var (
		req   LeaveDraft
		files []document.File
		err   error
	)
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			h.writeBindError(c, err)
			return
		}
		if files, err = readDocuments(c); err != nil {
			h.writeServiceError(c, err)
			return
		}
	} else if err = c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), sess, req, files)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Edit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("id")
	h.logger.Debug("http edit leave", zap.String("leave_id", id), zap.String("employee_id", sess.UserID))

	var (
		req   EditLeaveRequest
		files []document.File
		err   error
	)
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			h.writeBindError(c, err)
			return
		}
		if files, err = readDocuments(c); err != nil {
			h.writeServiceError(c, err)
			return
		}
	} else if err = c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Edit(c.Request.Context(), sess, id, req, files)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}
	h.logger.Debug("http decide leave",
		zap.String("leave_id", id),
		zap.String("actor_id", sess.UserID),
		zap.String("decision", req.Decision),
	)

	resp, err := h.service.Decide(c.Request.Context(), sess, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var req CancelLeaveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.Cancel(c.Request.Context(), sess, id, req.Reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Document streams an attachment addressed by its blob key.
func (h *Handler) Document(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	doc, err := h.service.OpenDocument(c.Request.Context(), sess, c.Param("key"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, contentType, doc.Content)
}

func (h *Handler) ListMine(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := h.service.ListForEmployee(c.Request.Context(), sess, sess.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writePage(c, resp)
}

func (h *Handler) ListForEmployee(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := h.service.ListForEmployee(c.Request.Context(), sess, c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writePage(c, resp)
}

// ListPending defaults the queue to the caller's own role.
func (h *Handler) ListPending(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	role := sess.Role
	if q := c.Query("role"); q != "" {
		parsed, ok := session.ParseRole(q)
		if !ok {
			h.writeServiceError(c, apperror.InvalidField("role"))
			return
		}
		role = parsed
	}

	resp, err := h.service.ListPendingForRole(c.Request.Context(), sess, role, c.Query("department"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writePage(c, resp)
}

func (h *Handler) ListReviewed(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := h.service.ListReviewedBySupervisor(c.Request.Context(), sess, c.Query("department"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.writePage(c, resp)
}

func (h *Handler) Balances(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := h.service.Balances(c.Request.Context(), sess)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) writePage(c *gin.Context, items []LeaveResponse) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	rows, meta := response.Paginate(items, page, pageSize)
	response.Success(c, http.StatusOK, rows, &meta)
}
