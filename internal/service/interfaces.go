package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/myancal/backend/internal/models"
	"github.com/myancal/backend/internal/types"
)

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*types.SessionClaims, error)
}

// IUsageTracker is the quota gate and ledger.
type IUsageTracker interface {
	CheckRateLimit(ctx context.Context) RateLimitResult
	TrackUsage(ctx context.Context, rec UsageRecord)
	UsageStats(ctx context.Context, days int) (*UsageStats, error)
	Limits() RateLimits
}

// IAIService is the generative model client.
type IAIService interface {
	ExtractIngredients(ctx context.Context, text, lang string) (*Extraction, error)
	EstimateNutrition(ctx context.Context, name, category string) NutritionEstimate
	MatchDishTemplate(ctx context.Context, input string, candidates []TemplateCandidate) (*TemplateMatch, error)
	GenerateMealInsights(ctx context.Context, summary *DailySummary, lang string) string
}

// IEnrichmentService resolves extracted ingredients.
type IEnrichmentService interface {
	Enrich(ctx context.Context, ext *Extraction) *EnrichmentResult
}

// IIngredientService is the catalog.
type IIngredientService interface {
	FindBestMatch(ctx context.Context, nameMM, nameEN string) (*models.Ingredient, error)
	Search(ctx context.Context, q SearchQuery) ([]models.Ingredient, error)
	AdminList(ctx context.Context, admin AuthorizedAdmin, filter, search string) ([]models.Ingredient, error)
	SetVerified(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID, verified bool) (*models.Ingredient, error)
	Create(ctx context.Context, admin AuthorizedAdmin, in IngredientInput) (*models.Ingredient, error)
	AddCookingMethod(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID, in CookingMethodInput) (*models.CookingMethod, error)
	Delete(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID) error
}

// IMealService stores meals.
type IMealService interface {
	CreateMeal(ctx context.Context, in CreateMealInput) (*models.Meal, error)
	ListMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error)
	GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) error
	AttachPhoto(ctx context.Context, userID, mealID uuid.UUID, key string) error
	DailySummary(ctx context.Context, userID uuid.UUID, date time.Time) (*DailySummary, error)
}

// ITemplateService serves dish templates.
type ITemplateService interface {
	ListPublic(ctx context.Context, category string, limit int) ([]models.DishTemplate, error)
	Match(ctx context.Context, text string) (*TemplateMatchResult, error)
}

// IAdminService manages users.
type IAdminService interface {
	Authorize(ctx context.Context, userID uuid.UUID) (AuthorizedAdmin, error)
	ListUsers(ctx context.Context, admin AuthorizedAdmin, search string) ([]models.User, error)
	SetAdmin(ctx context.Context, admin AuthorizedAdmin, userID uuid.UUID, isAdmin bool) (*models.User, error)
	Stats(ctx context.Context, admin AuthorizedAdmin) (*AdminStats, error)
}

// IPhotoStorage issues presigned meal photo URLs.
type IPhotoStorage interface {
	Enabled() bool
	PresignUpload(ctx context.Context, userID, mealID uuid.UUID, contentType string) (*PhotoUpload, error)
	PresignView(ctx context.Context, key string) (string, error)
}

var (
	_ IUsageTracker      = (*UsageTracker)(nil)
	_ IAIService         = (*GeminiService)(nil)
	_ IEnrichmentService = (*EnrichmentService)(nil)
	_ IIngredientService = (*IngredientService)(nil)
	_ IMealService       = (*MealService)(nil)
	_ ITemplateService   = (*TemplateService)(nil)
	_ IAdminService      = (*AdminService)(nil)
	_ IPhotoStorage      = (*PhotoStorage)(nil)
	_ TokenValidator     = (*SessionService)(nil)
	_ EstimateCache      = (*RedisEstimateCache)(nil)
)
