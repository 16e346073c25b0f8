package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/myancal/backend/internal/models"
)

// IngredientMatcher finds the catalog entry for a name pair.
type IngredientMatcher interface {
	FindBestMatch(ctx context.Context, nameMM, nameEN string) (*models.Ingredient, error)
}

// NutritionEstimator produces a per-100g estimate for an unknown ingredient.
type NutritionEstimator interface {
	EstimateNutrition(ctx context.Context, name, category string) NutritionEstimate
}

// EnrichedIngredient is an extracted ingredient with its nutrition source.
// Exactly one of DatabaseMatch and AIEstimate is set.
type EnrichedIngredient struct {
	ExtractedIngredient
	DatabaseMatch   *models.Ingredient     `json:"database_match"`
	AIEstimate      *NutritionEstimate     `json:"ai_estimate"`
	Matched         bool                   `json:"matched"`
	ConfidenceLevel models.ConfidenceLevel `json:"confidence_level"`
	CookingMethodID *uuid.UUID             `json:"cooking_method_id,omitempty"`
}

// Per100g returns the values of whichever source is present, catalog first.
func (e *EnrichedIngredient) Per100g() Nutrition {
	if e.DatabaseMatch != nil {
		return IngredientNutrition(e.DatabaseMatch)
	}
	if e.AIEstimate != nil {
		return e.AIEstimate.Per100g()
	}
	return DefaultNutritionEstimate.Per100g()
}

// EnrichmentResult is the response of the extraction pipeline.
type EnrichmentResult struct {
	DishName         string               `json:"dish_name"`
	CookingMethod    string               `json:"cooking_method"`
	Ingredients      []EnrichedIngredient `json:"ingredients"`
	TotalIngredients int                  `json:"total_ingredients"`
	MatchedCount     int                  `json:"matched_count"`
}

// EnrichmentService attaches catalog matches or AI estimates to extracted
// ingredients.
type EnrichmentService struct {
	matcher     IngredientMatcher
	estimator   NutritionEstimator
	cache       EstimateCache
	concurrency int
	logger      *zap.Logger
}

// NewEnrichmentService creates the pipeline. cache may be nil.
func NewEnrichmentService(matcher IngredientMatcher, estimator NutritionEstimator, cache EstimateCache, concurrency int, logger *zap.Logger) *EnrichmentService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &EnrichmentService{
		matcher:     matcher,
		estimator:   estimator,
		cache:       cache,
		concurrency: concurrency,
		logger:      logger.Named("enrichment"),
	}
}

// Enrich resolves every ingredient concurrently. Order is preserved and the
// result always has a nutrition source for each ingredient.
func (s *EnrichmentService) Enrich(ctx context.Context, ext *Extraction) *EnrichmentResult {
	out := make([]EnrichedIngredient, len(ext.Ingredients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range ext.Ingredients {
		i := i
		g.Go(func() error {
			out[i] = s.enrichOne(gctx, ext.Ingredients[i], ext.CookingMethod)
			return nil
		})
	}
	_ = g.Wait()

	res := &EnrichmentResult{
		DishName:         ext.DishName,
		CookingMethod:    ext.CookingMethod,
		Ingredients:      out,
		TotalIngredients: len(out),
	}
	for _, ing := range out {
		if ing.Matched {
			res.MatchedCount++
		}
	}
	return res
}

func (s *EnrichmentService) enrichOne(ctx context.Context, ing ExtractedIngredient, cookingMethod string) EnrichedIngredient {
	e := EnrichedIngredient{ExtractedIngredient: ing}

	match, err := s.matcher.FindBestMatch(ctx, ing.NameMM, ing.NameEN)
	if err != nil {
		s.logger.Warn("Catalog lookup failed, treating as unmatched",
			zap.String("name_en", ing.NameEN),
			zap.Error(err))
	}
	if match != nil {
		e.DatabaseMatch = match
		e.Matched = true
		e.ConfidenceLevel = models.ConfidenceExact
		e.CookingMethodID = pickCookingMethod(match.CookingMethods, cookingMethod)
		return e
	}

	est := s.estimate(ctx, estimateName(ing), "")
	e.AIEstimate = &est
	e.ConfidenceLevel = ClassifyConfidence(false, &est)
	return e
}

func (s *EnrichmentService) estimate(ctx context.Context, name, category string) NutritionEstimate {
	key := estimateCacheKey(name, category)
	if s.cache != nil {
		if est, ok := s.cache.Get(ctx, key); ok {
			return *est
		}
	}

	est := s.estimator.EstimateNutrition(ctx, name, category)
	if s.cache != nil && !est.Fallback {
		s.cache.Set(ctx, key, est)
	}
	return est
}

func estimateName(ing ExtractedIngredient) string {
	if ing.NameEN != "" {
		return ing.NameEN
	}
	return ing.NameMM
}

// pickCookingMethod returns the method whose name overlaps the dish's
// cooking method, e.g. "fried" and "Deep Fried".
func pickCookingMethod(methods []models.CookingMethod, cooking string) *uuid.UUID {
	cooking = strings.ToLower(strings.TrimSpace(cooking))
	if cooking == "" {
		return nil
	}
	for _, m := range methods {
		name := strings.ToLower(m.MethodName)
		if name == "" {
			continue
		}
		if strings.Contains(name, cooking) || strings.Contains(cooking, name) {
			id := m.ID
			return &id
		}
	}
	return nil
}
