package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
	"github.com/myancal/backend/internal/testhelpers"
)

var usageNow = time.Date(2026, 3, 10, 12, 30, 30, 0, time.UTC)

func newTestTracker(t *testing.T, rpm, rpd int) (*UsageTracker, *gorm.DB) {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	tracker := NewUsageTracker(db, RateLimits{RequestsPerMinute: rpm, RequestsPerDay: rpd, Tier: "Free"}, "", zap.NewNop())
	tracker.now = func() time.Time { return usageNow }
	return tracker, db
}

func insertUsage(t *testing.T, db *gorm.DB, at time.Time, n int, success bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		row := models.APIUsage{
			CreatedAt:      at,
			APIProvider:    "gemini",
			ModelName:      "gemini-2.5-flash",
			Endpoint:       "extract-ingredients",
			TotalTokens:    10,
			Success:        success,
			ResponseTimeMs: 100,
		}
		require.NoError(t, db.Create(&row).Error)
	}
}

func TestCheckRateLimitMinuteBoundary(t *testing.T) {
	ctx := context.Background()
	tracker, db := newTestTracker(t, 15, 1500)

	insertUsage(t, db, usageNow.Add(-10*time.Second), 14, true)
	res := tracker.CheckRateLimit(ctx)
	assert.True(t, res.Allowed, "14/15 is allowed")
	require.NotNil(t, res.Usage)
	assert.EqualValues(t, 14, res.Usage.RequestsThisMinute)

	insertUsage(t, db, usageNow.Add(-5*time.Second), 1, false)
	res = tracker.CheckRateLimit(ctx)
	assert.False(t, res.Allowed, "15/15 is blocked")
	assert.Equal(t, "Rate limit exceeded: 15 requests per minute. Please wait.", res.Reason)
	assert.EqualValues(t, 15, res.Usage.RequestsThisMinute)
}

func TestCheckRateLimitDaily(t *testing.T) {
	tracker, db := newTestTracker(t, 15, 5)

	// Earlier today, outside the current minute.
	insertUsage(t, db, usageNow.Add(-2*time.Hour), 5, true)
	// Yesterday does not count.
	insertUsage(t, db, usageNow.Add(-24*time.Hour), 3, true)

	res := tracker.CheckRateLimit(context.Background())
	assert.False(t, res.Allowed)
	assert.Equal(t, "Daily limit exceeded: 5 requests per day. Please try again tomorrow.", res.Reason)
	assert.EqualValues(t, 0, res.Usage.RequestsThisMinute)
	assert.EqualValues(t, 5, res.Usage.RequestsToday)
}

func TestCheckRateLimitFailsOpen(t *testing.T) {
	tracker, db := newTestTracker(t, 1, 1)
	require.NoError(t, db.Migrator().DropTable(&models.APIUsage{}))

	res := tracker.CheckRateLimit(context.Background())
	assert.True(t, res.Allowed)
	assert.Nil(t, res.Usage)
}

func TestTrackUsage(t *testing.T) {
	tracker, db := newTestTracker(t, 15, 1500)
	userID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tracker.TrackUsage(ctx, UsageRecord{
		Endpoint:       "extract-ingredients",
		RequestType:    "ingredient_extraction",
		UserID:         &userID,
		RequestTokens:  120,
		ResponseTokens: 80,
		Success:        true,
		ResponseTime:   1500 * time.Millisecond,
	})

	var rows []models.APIUsage
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "recorded after the caller's context is done")
	row := rows[0]
	assert.Equal(t, "gemini", row.APIProvider)
	assert.Equal(t, "gemini-2.5-flash", row.ModelName)
	assert.Equal(t, 200, row.TotalTokens)
	assert.EqualValues(t, 1500, row.ResponseTimeMs)
	require.NotNil(t, row.UserID)
	assert.Equal(t, userID, *row.UserID)

	t.Run("failures are swallowed", func(t *testing.T) {
		require.NoError(t, db.Migrator().DropTable(&models.APIUsage{}))
		assert.NotPanics(t, func() {
			tracker.TrackUsage(context.Background(), UsageRecord{Endpoint: "estimate-nutrition"})
		})
	})
}

func TestSnapshot(t *testing.T) {
	tracker, db := newTestTracker(t, 15, 1500)
	u1, u2 := uuid.New(), uuid.New()

	insertUsage(t, db, usageNow.Add(-20*time.Second), 2, true)
	insertUsage(t, db, usageNow.Add(-20*time.Minute), 1, false)
	insertUsage(t, db, usageNow.Add(-3*time.Hour), 1, true)
	for _, id := range []uuid.UUID{u1, u1, u2} {
		id := id
		require.NoError(t, db.Create(&models.APIUsage{
			CreatedAt: usageNow.Add(-time.Hour), APIProvider: "gemini", ModelName: "m",
			Endpoint: "meal-insights", UserID: &id, Success: true,
		}).Error)
	}

	snap, err := tracker.Snapshot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.RequestsThisMinute)
	assert.EqualValues(t, 3, snap.RequestsThisHour)
	assert.EqualValues(t, 7, snap.RequestsToday)
	assert.EqualValues(t, 6, snap.SuccessfulToday)
	assert.EqualValues(t, 1, snap.FailedToday)
	assert.EqualValues(t, 40, snap.TokensToday)
	assert.EqualValues(t, 2, snap.UniqueUsersToday)
	require.NotNil(t, snap.LastRequestAt)
	assert.True(t, snap.LastRequestAt.Equal(usageNow.Add(-20*time.Second)))
}

func TestUsageStats(t *testing.T) {
	tracker, db := newTestTracker(t, 15, 1500)

	insertUsage(t, db, usageNow.Add(-time.Hour), 2, true)
	insertUsage(t, db, usageNow.Add(-time.Hour), 1, false)
	insertUsage(t, db, usageNow.AddDate(0, 0, -2), 1, true)
	insertUsage(t, db, usageNow.AddDate(0, 0, -10), 1, true)

	stats, err := tracker.UsageStats(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, stats.Daily, 7)

	today := stats.Daily[0]
	assert.Equal(t, "2026-03-10", today.Date)
	assert.EqualValues(t, 3, today.TotalRequests)
	assert.EqualValues(t, 2, today.Successful)
	assert.EqualValues(t, 1, today.Failed)
	assert.EqualValues(t, 30, today.TotalTokens)
	assert.Equal(t, 100.0, today.AvgResponseTimeMs)

	assert.Equal(t, "2026-03-09", stats.Daily[1].Date)
	assert.Zero(t, stats.Daily[1].TotalRequests)
	assert.EqualValues(t, 1, stats.Daily[2].TotalRequests)
	assert.Equal(t, "2026-03-04", stats.Daily[6].Date)

	require.NotNil(t, stats.Current)
	assert.EqualValues(t, 3, stats.Current.RequestsToday)
}

func TestWarningLevelFor(t *testing.T) {
	tests := []struct {
		pct  int
		want WarningLevel
	}{
		{0, WarningNone},
		{49, WarningNone},
		{50, WarningLow},
		{74, WarningLow},
		{75, WarningMedium},
		{89, WarningMedium},
		{90, WarningHigh},
		{99, WarningHigh},
		{100, WarningCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WarningLevelFor(tt.pct), "pct %d", tt.pct)
	}
}

func TestUsagePercentage(t *testing.T) {
	assert.Equal(t, 0, UsagePercentage(5, 0))
	assert.Equal(t, 50, UsagePercentage(750, 1500))
	assert.Equal(t, 93, UsagePercentage(14, 15))
	assert.Equal(t, 100, UsagePercentage(20, 15))
}
