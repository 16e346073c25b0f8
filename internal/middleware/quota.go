package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myancal/backend/internal/service"
)

// QuotaChecker reports whether the provider quota allows another call.
type QuotaChecker interface {
	CheckRateLimit(ctx context.Context) service.RateLimitResult
}

// AIQuota answers 429 when the provider quota is used up. It runs before
// request validation so exhausted quota is reported first.
func AIQuota(checker QuotaChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := checker.CheckRateLimit(c.Request.Context())
		if !res.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": res.Reason,
				"usage":   res.Usage,
			})
			return
		}
		c.Next()
	}
}
