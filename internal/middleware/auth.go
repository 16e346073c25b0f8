package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/myancal/backend/internal/service"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// RequireAuth rejects requests without a valid bearer session.
func RequireAuth(validator service.TokenValidator) gin.HandlerFunc {
	return authenticate(validator, true)
}

// OptionalAuth resolves a session when one is sent. A malformed or invalid
// token is still rejected.
func OptionalAuth(validator service.TokenValidator) gin.HandlerFunc {
	return authenticate(validator, false)
}

func authenticate(validator service.TokenValidator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userEmailKey, claims.Email)
		c.Request = c.Request.WithContext(service.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// UserID returns the session user set by the auth middleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
