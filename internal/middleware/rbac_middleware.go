package middleware

import (
	autherrors "go-lcms/internal/auth/errors"
	"go-lcms/internal/rbac"
	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by rbac.Service; kept local so tests can stub it.
type RBACService interface {
	Enforce(req rbac.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.AbortWithError(c, apperror.ErrUnauthorized)
			return
		}

		allowed, err := service.Enforce(rbac.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.AbortWithError(c, apperror.WrapWith(apperror.ErrInternal, err))
			return
		}
		if !allowed {
			response.Error(c, autherrors.ErrForbidden.HTTPStatus, autherrors.ErrForbidden.Code, autherrors.ErrForbidden.Message,
				map[string]string{"required": resource + ":" + action})
			c.Abort()
			return
		}
		c.Next()
	}
}
