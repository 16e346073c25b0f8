package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/service"
)

const adminKey = "authorized_admin"

// AdminAuthorizer mints the admin capability for a user.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, userID uuid.UUID) (service.AuthorizedAdmin, error)
}

// RequireAdmin must follow RequireAuth. It checks the admin flag once and
// stores the capability for handlers.
func RequireAdmin(authz AdminAuthorizer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		admin, err := authz.Authorize(c.Request.Context(), userID)
		if errors.Is(err, service.ErrForbidden) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden - Admin access required"})
			return
		}
		if err != nil {
			logger.Error("Admin authorization failed", zap.String("user_id", userID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to authorize"})
			return
		}

		c.Set(adminKey, admin)
		c.Next()
	}
}

// Admin returns the capability stored by RequireAdmin.
func Admin(c *gin.Context) (service.AuthorizedAdmin, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return service.AuthorizedAdmin{}, false
	}
	admin, ok := v.(service.AuthorizedAdmin)
	return admin, ok
}

// OptionalAdmin stores the capability when the session user is an admin and
// never aborts. Lookup errors are treated as not admin.
func OptionalAdmin(authz AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := UserID(c); ok {
			if admin, err := authz.Authorize(c.Request.Context(), userID); err == nil {
				c.Set(adminKey, admin)
			}
		}
		c.Next()
	}
}
