package middleware

import (
	"strings"

	autherrors "go-lcms/internal/auth/errors"
	"go-lcms/internal/auth/token"
	"go-lcms/internal/session"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the access token from the Authorization header (or the
// access_token cookie) and puts the resulting session on the request context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			response.AbortWithError(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := token.Parse(secret, tokenString, token.TypeAccess)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		role, ok := session.ParseRole(claims.Role)
		if !ok {
			response.AbortWithError(c, autherrors.ErrInvalidToken)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", string(role))

		ctx := session.WithSession(c.Request.Context(), session.Session{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   role,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := session.Role(c.GetString("role"))
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		response.AbortWithError(c, autherrors.ErrForbidden)
	}
}
