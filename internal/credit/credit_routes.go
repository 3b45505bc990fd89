package credit

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
	credits := r.Group("/credits")
	credits.Use(middleware.AuthMiddleware(jwtSecret))
	credits.Use(middleware.ContextLogger(logger))
	{
		credits.GET("/mine",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, rbac.ResourceCredit, rbac.ActionRead),
			handler.Mine,
		)
		credits.GET("/:employeeId",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceCredit, rbac.ActionManage),
			handler.ByEmployee,
		)
		credits.PUT("/:employeeId/:bucket",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceCredit, rbac.ActionManage),
			handler.Allot,
		)
	}
}
