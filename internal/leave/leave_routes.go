package leave

import (
	"go-lcms/internal/middleware"
	"go-lcms/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret []byte,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(jwtSecret))
	leaves.Use(middleware.ExtractUserID())
	leaves.Use(middleware.ContextLogger(logger))
	{
		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.Idempotency(rdb, logger),
			handler.Submit,
		)
		leaves.GET("/mine",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.ListMine,
		)
		leaves.GET("/balances",
			middleware.RBACAuthorize(rbacService, rbac.ResourceCredit, rbac.ActionRead),
			handler.Balances,
		)
		leaves.GET("/pending",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview),
			handler.ListPending,
		)
		leaves.GET("/reviewed",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview),
			handler.ListReviewed,
		)
		leaves.GET("/employee/:employeeId",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.ListForEmployee,
		)
		leaves.GET("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.GetByID,
		)
		leaves.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionUpdate),
			middleware.Idempotency(rdb, logger),
			handler.Edit,
		)
		leaves.POST("/:id/cancel",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCancel),
			middleware.Idempotency(rdb, logger),
			handler.Cancel,
		)
		leaves.POST("/:id/decision",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide),
			middleware.Idempotency(rdb, logger),
			handler.Decide,
		)
	}
}

// RegisterDocumentRoutes serves stored attachments under basePath. Access
// follows the same viewer rules as GET /leaves/:id.
func RegisterDocumentRoutes(
	r gin.IRouter,
	basePath string,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret []byte,
	logger *zap.Logger,
) {
	files := r.Group(basePath)
	files.Use(middleware.AuthMiddleware(jwtSecret))
	files.Use(middleware.ContextLogger(logger))
	{
		files.GET("/*key",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.Document,
		)
	}
}
