package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/service/auth"
)

const userContextKey = "current_user"

// RequireAuth resolves the bearer token and stores the user in the
// request context. Requests without a valid session are rejected.
func RequireAuth(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not in the allow
// list. Must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// CurrentUser returns the authenticated user, or the zero value on
// public routes.
func CurrentUser(c *gin.Context) models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(models.User); ok {
			return user
		}
	}
	return models.User{}
}
