package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/myancal/backend/internal/service"
)

// MockAIService is a testify mock of the model client.
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) ExtractIngredients(ctx context.Context, text, lang string) (*service.Extraction, error) {
	args := m.Called(ctx, text, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Extraction), args.Error(1)
}

func (m *MockAIService) EstimateNutrition(ctx context.Context, name, category string) service.NutritionEstimate {
	args := m.Called(ctx, name, category)
	return args.Get(0).(service.NutritionEstimate)
}

func (m *MockAIService) MatchDishTemplate(ctx context.Context, input string, candidates []service.TemplateCandidate) (*service.TemplateMatch, error) {
	args := m.Called(ctx, input, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TemplateMatch), args.Error(1)
}

func (m *MockAIService) GenerateMealInsights(ctx context.Context, summary *service.DailySummary, lang string) string {
	args := m.Called(ctx, summary, lang)
	return args.String(0)
}

// MockEnrichmentService is a testify mock of the enrichment pipeline.
type MockEnrichmentService struct {
	mock.Mock
}

func (m *MockEnrichmentService) Enrich(ctx context.Context, ext *service.Extraction) *service.EnrichmentResult {
	args := m.Called(ctx, ext)
	return args.Get(0).(*service.EnrichmentResult)
}

// MockUsageTracker is a testify mock of the quota gate.
type MockUsageTracker struct {
	mock.Mock
}

func (m *MockUsageTracker) CheckRateLimit(ctx context.Context) service.RateLimitResult {
	args := m.Called(ctx)
	return args.Get(0).(service.RateLimitResult)
}

func (m *MockUsageTracker) TrackUsage(ctx context.Context, rec service.UsageRecord) {
	m.Called(ctx, rec)
}

func (m *MockUsageTracker) UsageStats(ctx context.Context, days int) (*service.UsageStats, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UsageStats), args.Error(1)
}

func (m *MockUsageTracker) Limits() service.RateLimits {
	args := m.Called()
	return args.Get(0).(service.RateLimits)
}

var (
	_ service.IAIService         = (*MockAIService)(nil)
	_ service.IEnrichmentService = (*MockEnrichmentService)(nil)
	_ service.IUsageTracker      = (*MockUsageTracker)(nil)
)
