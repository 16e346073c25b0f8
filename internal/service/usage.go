package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

const (
	defaultProvider = "gemini"
	defaultModel    = "gemini-2.5-flash"
)

// WarningLevel buckets a quota percentage.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningLow      WarningLevel = "low"
	WarningMedium   WarningLevel = "medium"
	WarningHigh     WarningLevel = "high"
	WarningCritical WarningLevel = "critical"
)

// RateLimits is the external provider quota.
type RateLimits struct {
	RequestsPerMinute int    `json:"rpm"`
	RequestsPerDay    int    `json:"rpd"`
	Tier              string `json:"tier"`
}

// UsageSnapshot is the current aggregate of the usage ledger.
type UsageSnapshot struct {
	RequestsThisMinute int64      `json:"requests_this_minute"`
	RequestsThisHour   int64      `json:"requests_this_hour"`
	RequestsToday      int64      `json:"requests_today"`
	SuccessfulToday    int64      `json:"successful_today"`
	FailedToday        int64      `json:"failed_today"`
	TokensToday        int64      `json:"tokens_today"`
	UniqueUsersToday   int64      `json:"unique_users_today"`
	LastRequestAt      *time.Time `json:"last_request_at"`
}

// RateLimitResult is the outcome of a quota check.
type RateLimitResult struct {
	Allowed bool           `json:"allowed"`
	Reason  string         `json:"reason,omitempty"`
	Usage   *UsageSnapshot `json:"usage,omitempty"`
}

// UsageRecord describes one provider call.
type UsageRecord struct {
	Provider       string
	Model          string
	Endpoint       string
	RequestType    string
	UserID         *uuid.UUID
	RequestTokens  int
	ResponseTokens int
	Success        bool
	ErrorMessage   string
	ResponseTime   time.Duration
}

// DailyUsage is one day of ledger activity.
type DailyUsage struct {
	Date              string  `json:"date"`
	TotalRequests     int64   `json:"total_requests"`
	Successful        int64   `json:"successful_requests"`
	Failed            int64   `json:"failed_requests"`
	TotalTokens       int64   `json:"total_tokens"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

// UsageStats is the admin view of the ledger.
type UsageStats struct {
	Current *UsageSnapshot `json:"current"`
	Daily   []DailyUsage   `json:"daily"`
}

// UsageTracker gates calls against the provider quota and records every call.
type UsageTracker struct {
	db     *gorm.DB
	limits RateLimits
	model  string
	logger *zap.Logger
	now    func() time.Time
}

// NewUsageTracker creates a tracker with the given limits. model is the
// default model name for records that leave it empty.
func NewUsageTracker(db *gorm.DB, limits RateLimits, model string, logger *zap.Logger) *UsageTracker {
	if model == "" {
		model = defaultModel
	}
	return &UsageTracker{
		db:     db,
		limits: limits,
		model:  model,
		logger: logger.Named("usage"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Limits returns the configured quota.
func (t *UsageTracker) Limits() RateLimits {
	return t.limits
}

// CheckRateLimit compares current usage with the quota. Errors reading the
// ledger allow the call.
func (t *UsageTracker) CheckRateLimit(ctx context.Context) RateLimitResult {
	snap, err := t.Snapshot(ctx)
	if err != nil {
		t.logger.Warn("Usage check failed, allowing request", zap.Error(err))
		return RateLimitResult{Allowed: true}
	}

	if snap.RequestsThisMinute >= int64(t.limits.RequestsPerMinute) {
		return RateLimitResult{
			Reason: fmt.Sprintf("Rate limit exceeded: %d requests per minute. Please wait.", t.limits.RequestsPerMinute),
			Usage:  snap,
		}
	}
	if snap.RequestsToday >= int64(t.limits.RequestsPerDay) {
		return RateLimitResult{
			Reason: fmt.Sprintf("Daily limit exceeded: %d requests per day. Please try again tomorrow.", t.limits.RequestsPerDay),
			Usage:  snap,
		}
	}
	return RateLimitResult{Allowed: true, Usage: snap}
}

// TrackUsage appends a ledger row. Failures are logged and swallowed.
func (t *UsageTracker) TrackUsage(ctx context.Context, rec UsageRecord) {
	row := models.APIUsage{
		CreatedAt:      t.now(),
		APIProvider:    rec.Provider,
		ModelName:      rec.Model,
		Endpoint:       rec.Endpoint,
		RequestType:    rec.RequestType,
		UserID:         rec.UserID,
		RequestTokens:  rec.RequestTokens,
		ResponseTokens: rec.ResponseTokens,
		TotalTokens:    rec.RequestTokens + rec.ResponseTokens,
		Success:        rec.Success,
		ErrorMessage:   rec.ErrorMessage,
		ResponseTimeMs: rec.ResponseTime.Milliseconds(),
	}
	if row.APIProvider == "" {
		row.APIProvider = defaultProvider
	}
	if row.ModelName == "" {
		row.ModelName = t.model
	}

	// Record even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		t.logger.Warn("Failed to track API usage",
			zap.String("endpoint", rec.Endpoint),
			zap.Error(err))
	}
}

// Snapshot aggregates the ledger for the current minute, hour and UTC day.
func (t *UsageTracker) Snapshot(ctx context.Context) (*UsageSnapshot, error) {
	now := t.now()
	minuteStart := now.Truncate(time.Minute)
	hourStart := now.Truncate(time.Hour)
	dayStart := startOfDay(now)

	db := t.db.WithContext(ctx)
	since := func(ts time.Time) *gorm.DB {
		return db.Model(&models.APIUsage{}).Where("created_at >= ?", ts)
	}

	snap := &UsageSnapshot{}
	if err := since(minuteStart).Count(&snap.RequestsThisMinute).Error; err != nil {
		return nil, fmt.Errorf("failed to count minute usage: %w", err)
	}
	if err := since(hourStart).Count(&snap.RequestsThisHour).Error; err != nil {
		return nil, fmt.Errorf("failed to count hour usage: %w", err)
	}
	if err := since(dayStart).Count(&snap.RequestsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count daily usage: %w", err)
	}
	if err := since(dayStart).Where("success = ?", true).Count(&snap.SuccessfulToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count successful usage: %w", err)
	}
	snap.FailedToday = snap.RequestsToday - snap.SuccessfulToday

	if err := since(dayStart).Select("COALESCE(SUM(total_tokens), 0)").Scan(&snap.TokensToday).Error; err != nil {
		return nil, fmt.Errorf("failed to sum tokens: %w", err)
	}
	if err := since(dayStart).Where("user_id IS NOT NULL").Distinct("user_id").Count(&snap.UniqueUsersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var last models.APIUsage
	err := db.Order("created_at DESC").Limit(1).Find(&last).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read last request: %w", err)
	}
	if last.ID != uuid.Nil {
		ts := last.CreatedAt
		snap.LastRequestAt = &ts
	}
	return snap, nil
}

// UsageStats returns the current snapshot and one row per day for the last
// days days, newest first. Days without calls are zero rows.
func (t *UsageTracker) UsageStats(ctx context.Context, days int) (*UsageStats, error) {
	if days <= 0 {
		days = 30
	}
	snap, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	today := startOfDay(t.now())
	from := today.AddDate(0, 0, -(days - 1))

	var rows []models.APIUsage
	err = t.db.WithContext(ctx).
		Select("created_at", "success", "total_tokens", "response_time_ms").
		Where("created_at >= ?", from).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily usage: %w", err)
	}

	type acc struct {
		DailyUsage
		totalMs int64
	}
	buckets := make(map[string]*acc, days)
	daily := make([]DailyUsage, 0, days)
	for i := 0; i < days; i++ {
		key := today.AddDate(0, 0, -i).Format(dateLayout)
		buckets[key] = &acc{DailyUsage: DailyUsage{Date: key}}
	}
	for _, r := range rows {
		b, ok := buckets[r.CreatedAt.UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		b.TotalRequests++
		if r.Success {
			b.Successful++
		} else {
			b.Failed++
		}
		b.TotalTokens += int64(r.TotalTokens)
		b.totalMs += r.ResponseTimeMs
	}
	for i := 0; i < days; i++ {
		b := buckets[today.AddDate(0, 0, -i).Format(dateLayout)]
		if b.TotalRequests > 0 {
			b.AvgResponseTimeMs = Round2(float64(b.totalMs) / float64(b.TotalRequests))
		}
		daily = append(daily, b.DailyUsage)
	}

	return &UsageStats{Current: snap, Daily: daily}, nil
}

// UsagePercentage is current/limit as a whole percentage capped at 100.
func UsagePercentage(current, limit int64) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(float64(current)/float64(limit)*100)))
}

// WarningLevelFor maps a percentage to a warning level. Breakpoints belong to
// the higher level.
func WarningLevelFor(pct int) WarningLevel {
	switch {
	case pct >= 100:
		return WarningCritical
	case pct >= 90:
		return WarningHigh
	case pct >= 75:
		return WarningMedium
	case pct >= 50:
		return WarningLow
	default:
		return WarningNone
	}
}

const dateLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
