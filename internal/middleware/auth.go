package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskforge/internal/constants"
	apierrors "taskforge/internal/errors"
	"taskforge/internal/jwt"
)

// RequireAuth validates the Bearer token and stores the caller's user ID in
// the request context. Every owner check downstream reads that ID, never a
// client-supplied value.
func RequireAuth(tokens *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, constants.BearerPrefix) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := tokens.GetUserID(strings.TrimPrefix(authHeader, constants.BearerPrefix))
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
