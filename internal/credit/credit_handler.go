package credit

import (
	"net/http"

	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("credit.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("credit request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Mine(c *gin.Context) {
	employeeID := c.GetString("user_id")
	h.logger.Debug("http get my credits", zap.String("employee_id", employeeID))

	resp, err := h.service.Balances(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ByEmployee(c *gin.Context) {
	employeeID := c.Param("employeeId")
	h.logger.Debug("http get employee credits", zap.String("employee_id", employeeID))

	resp, err := h.service.Balances(c.Request.Context(), employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Allot(c *gin.Context) {
	employeeID := c.Param("employeeId")
	bucket := c.Param("bucket")
	h.logger.Debug("http allot credits",
		zap.String("employee_id", employeeID),
		zap.String("bucket", bucket),
	)

	var req AllotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http allot credits validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", apperror.MapValidationError(err).Error(), nil)
		return
	}

	resp, err := h.service.Allot(c.Request.Context(), employeeID, bucket, *req.Days)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
