package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/testhelpers/mocks"
)

func TestAIQuota(t *testing.T) {
	newRouter := func(checker QuotaChecker) (*gin.Engine, *bool) {
		reached := false
		r := gin.New()
		r.POST("/extract", AIQuota(checker), func(c *gin.Context) {
			reached = true
			c.Status(http.StatusOK)
		})
		return r, &reached
	}

	t.Run("allowed", func(t *testing.T) {
		usage := &mocks.MockUsageTracker{}
		usage.On("CheckRateLimit", mock.Anything).Return(service.RateLimitResult{Allowed: true})
		r, reached := newRouter(usage)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/extract", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *reached)
		usage.AssertExpectations(t)
	})

	t.Run("exhausted", func(t *testing.T) {
		usage := &mocks.MockUsageTracker{}
		usage.On("CheckRateLimit", mock.Anything).Return(service.RateLimitResult{
			Reason: "Daily limit reached (1500/1500 requests)",
			Usage:  &service.UsageSnapshot{RequestsToday: 1500},
		})
		r, reached := newRouter(usage)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/extract", nil))
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.False(t, *reached)

		var body struct {
			Error   string                 `json:"error"`
			Message string                 `json:"message"`
			Usage   *service.UsageSnapshot `json:"usage"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Rate limit exceeded", body.Error)
		assert.Equal(t, "Daily limit reached (1500/1500 requests)", body.Message)
		require.NotNil(t, body.Usage)
		assert.Equal(t, int64(1500), body.Usage.RequestsToday)
	})
}
