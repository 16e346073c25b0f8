package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var limiterNow = time.Date(2026, 3, 10, 12, 0, 30, 0, time.UTC)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewExtractionRateLimiter(client, limit, time.Minute, zap.NewNop())
	rl.now = func() time.Time { return limiterNow }
	return rl, mr
}

func TestIsAllowed(t *testing.T) {
	rl, mr := newTestLimiter(t, 2)
	ctx := context.Background()
	reset := time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC)

	allowed, remaining, resetAt, err := rl.IsAllowed(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, reset, resetAt)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, remaining)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "user:a")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "user:b")
	require.NoError(t, err)
	assert.True(t, allowed, "clients are counted separately")

	key := "rate_limit:ai:user:a:" + strconv.FormatInt(limiterNow.Truncate(time.Minute).Unix(), 10)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	rl.now = func() time.Time { return reset }
	allowed, _, _, err = rl.IsAllowed(ctx, "user:a")
	require.NoError(t, err)
	assert.True(t, allowed, "next window starts fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, mr := newTestLimiter(t, 1)
	r := gin.New()
	r.POST("/extract", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/extract", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
	assert.Contains(t, w.Body.String(), `"retry_after":30`)

	mr.SetError("LOADING")
	w = send()
	assert.Equal(t, http.StatusOK, w.Code, "redis errors let requests through")
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewExtractionRateLimiter(nil, 1, time.Minute, zap.NewNop())
	r := gin.New()
	r.POST("/extract", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/extract", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}
