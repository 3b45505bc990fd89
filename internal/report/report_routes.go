package report

import (
	"go-lcms/internal/middleware"
	"go-lcms/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret []byte,
	logger *zap.Logger,
) {
	reports := r.Group("/leaves")
	reports.Use(middleware.AuthMiddleware(jwtSecret))
	reports.Use(middleware.ContextLogger(logger))
	{
		reports.GET("/export",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionExport),
			handler.ExportLeaves,
		)
	}
}
