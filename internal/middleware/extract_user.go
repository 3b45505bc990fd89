package middleware

import (
	autherrors "go-lcms/internal/auth/errors"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ExtractUserID requires an authenticated session and exposes its user id as
// user_id_validated for the idempotency and logging middlewares.
func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromContext(c.Request.Context())
		if !ok {
			response.AbortWithError(c, session.ErrNotAuthenticated)
			return
		}
		if s.UserID != c.GetString("user_id") {
			response.AbortWithError(c, autherrors.ErrInvalidUserID)
			return
		}

		c.Set("user_id_validated", s.UserID)
		c.Next()
	}
}
