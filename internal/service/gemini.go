package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	opExtractIngredients = "extract-ingredients"
	opEstimateNutrition  = "estimate-nutrition"
	opMatchTemplate      = "match-template"
	opMealInsights       = "meal-insights"

	templateMatchThreshold = 0.6
	maxRawInError          = 500
)

const (
	insightsFallbackMM = "သင်၏ အစားအသောက် မှတ်တမ်းကို ဆက်လက် မှတ်သားပါ။"
	insightsFallbackEN = "Keep logging your meals to track your progress."
)

// DefaultNutritionEstimate is used when the model cannot estimate an ingredient.
var DefaultNutritionEstimate = NutritionEstimate{
	CaloriesPer100g: 100,
	ProteinG:        5,
	FatG:            3,
	CarbsG:          15,
	FiberG:          1,
	Confidence:      0.3,
	Fallback:        true,
}

// ChatCompleter is the subset of the OpenAI-compatible client in use.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// UsageRecorder receives one record per provider call.
type UsageRecorder interface {
	TrackUsage(ctx context.Context, rec UsageRecord)
}

// ExtractedIngredient is the model's candidate for one ingredient.
type ExtractedIngredient struct {
	NameMM            string  `json:"name_mm"`
	NameEN            string  `json:"name_en"`
	EstimatedPortionG float64 `json:"estimated_portion_g"`
	Confidence        float64 `json:"confidence"`
}

// Extraction is the structured reading of a dish description.
type Extraction struct {
	DishName      string                `json:"dish_name"`
	CookingMethod string                `json:"cooking_method"`
	Ingredients   []ExtractedIngredient `json:"ingredients"`
}

// NutritionEstimate is a per-100g estimate. Fallback marks the fixed default.
type NutritionEstimate struct {
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinG        float64 `json:"protein_g"`
	FatG            float64 `json:"fat_g"`
	CarbsG          float64 `json:"carbs_g"`
	FiberG          float64 `json:"fiber_g"`
	Confidence      float64 `json:"confidence"`
	Fallback        bool    `json:"fallback"`
}

// Per100g returns the estimate as Nutrition.
func (e NutritionEstimate) Per100g() Nutrition {
	return Nutrition{
		Calories: e.CaloriesPer100g,
		Protein:  e.ProteinG,
		Fat:      e.FatG,
		Carbs:    e.CarbsG,
		Fiber:    e.FiberG,
	}
}

// TemplateCandidate is a template offered to the model for matching.
type TemplateCandidate struct {
	ID       uuid.UUID
	NameMM   string
	NameEN   string
	Category string
}

// TemplateMatch is an accepted template match.
type TemplateMatch struct {
	TemplateID uuid.UUID `json:"template_id"`
	Confidence float64   `json:"confidence"`
}

// GeminiService calls the generative model through its OpenAI-compatible API.
type GeminiService struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	usage   UsageRecorder
	logger  *zap.Logger
}

// NewGeminiClient returns an OpenAI-compatible client for baseURL.
func NewGeminiClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return openai.NewClientWithConfig(cfg)
}

// NewGeminiService creates the model client wrapper. usage may be nil.
func NewGeminiService(client ChatCompleter, model string, timeout time.Duration, usage UsageRecorder, logger *zap.Logger) *GeminiService {
	if model == "" {
		model = defaultModel
	}
	return &GeminiService{
		client:  client,
		model:   model,
		timeout: timeout,
		usage:   usage,
		logger:  logger.Named("gemini"),
	}
}

type modelCall struct {
	op          string
	requestType string
	prompt      string
	temperature float32
}

// complete runs one chat completion and records it in the usage ledger.
func (s *GeminiService) complete(ctx context.Context, call modelCall) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: call.prompt},
		},
		Temperature: call.temperature,
	})
	elapsed := time.Since(start)

	content := ""
	if err == nil {
		if len(resp.Choices) == 0 {
			err = errors.New("empty response from model")
		} else {
			content = resp.Choices[0].Message.Content
		}
	}

	s.record(ctx, call, resp.Usage, elapsed, err)

	if err != nil {
		s.logger.Warn("Model call failed",
			zap.String("op", call.op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}

	s.logger.Debug("Model call completed",
		zap.String("op", call.op),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", elapsed))
	return content, nil
}

func (s *GeminiService) record(ctx context.Context, call modelCall, u openai.Usage, elapsed time.Duration, err error) {
	if s.usage == nil {
		return
	}
	rec := UsageRecord{
		Provider:       defaultProvider,
		Model:          s.model,
		Endpoint:       call.op,
		RequestType:    call.requestType,
		RequestTokens:  u.PromptTokens,
		ResponseTokens: u.CompletionTokens,
		Success:        err == nil,
		ResponseTime:   elapsed,
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	if id, ok := UserIDFromContext(ctx); ok {
		rec.UserID = &id
	}
	s.usage.TrackUsage(ctx, rec)
}

// callModelForJSON sends the prompt and decodes the first JSON value in the
// reply into T. Any failure is an *ExtractionError.
func callModelForJSON[T any](ctx context.Context, s *GeminiService, call modelCall) (T, error) {
	var zero T

	content, err := s.complete(ctx, call)
	if err != nil {
		return zero, &ExtractionError{Op: call.op, Err: err}
	}

	result, err := parseJSON[T](content)
	if err != nil {
		raw := content
		if len(raw) > maxRawInError {
			raw = raw[:maxRawInError]
		}
		s.logger.Warn("Model returned unusable JSON", zap.String("op", call.op), zap.String("raw", raw))
		return zero, &ExtractionError{Op: call.op, Raw: raw, Err: err}
	}
	return result, nil
}

// ExtractIngredients reads a dish description into ingredient candidates.
func (s *GeminiService) ExtractIngredients(ctx context.Context, text, lang string) (*Extraction, error) {
	ext, err := callModelForJSON[Extraction](ctx, s, modelCall{
		op:          opExtractIngredients,
		requestType: "ingredient_extraction",
		prompt:      extractionPrompt(text, lang),
		temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	kept := ext.Ingredients[:0]
	for _, ing := range ext.Ingredients {
		ing.NameEN = strings.TrimSpace(ing.NameEN)
		ing.NameMM = strings.TrimSpace(ing.NameMM)
		if ing.NameEN == "" && ing.NameMM == "" {
			continue
		}
		ing.Confidence = clamp01(ing.Confidence)
		if ing.EstimatedPortionG < 0 {
			ing.EstimatedPortionG = 0
		}
		kept = append(kept, ing)
	}
	ext.Ingredients = kept
	ext.DishName = strings.TrimSpace(ext.DishName)
	ext.CookingMethod = strings.TrimSpace(ext.CookingMethod)
	return &ext, nil
}

// EstimateNutrition asks the model for per-100g values. It never fails: any
// error yields DefaultNutritionEstimate.
func (s *GeminiService) EstimateNutrition(ctx context.Context, name, category string) NutritionEstimate {
	// Calories shadows the embedded field so a reply without it is detectable.
	type reply struct {
		NutritionEstimate
		Calories *float64 `json:"calories_per_100g"`
	}
	r, err := callModelForJSON[reply](ctx, s, modelCall{
		op:          opEstimateNutrition,
		requestType: "nutrition_estimation",
		prompt:      nutritionPrompt(name, category),
		temperature: 0.1,
	})
	if err == nil && r.Calories == nil {
		err = errors.New("reply has no calories_per_100g")
	}
	est := r.NutritionEstimate
	if err == nil {
		est.CaloriesPer100g = *r.Calories
	}
	if err != nil || !est.valid() {
		s.logger.Info("Using default nutrition estimate", zap.String("ingredient", name), zap.Error(err))
		return DefaultNutritionEstimate
	}
	est.Confidence = clamp01(est.Confidence)
	est.Fallback = false
	return est
}

func (e NutritionEstimate) valid() bool {
	return e.CaloriesPer100g >= 0 && e.ProteinG >= 0 && e.FatG >= 0 && e.CarbsG >= 0 && e.FiberG >= 0
}

// MatchDishTemplate picks the template the input most likely describes.
// It returns nil when nothing matches with enough confidence.
func (s *GeminiService) MatchDishTemplate(ctx context.Context, input string, candidates []TemplateCandidate) (*TemplateMatch, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type reply struct {
		Index      *int    `json:"index"`
		Confidence float64 `json:"confidence"`
	}
	r, err := callModelForJSON[reply](ctx, s, modelCall{
		op:          opMatchTemplate,
		requestType: "template_matching",
		prompt:      templateMatchPrompt(input, candidates),
		temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}
	if r.Index == nil || *r.Index < 1 || *r.Index > len(candidates) || r.Confidence < templateMatchThreshold {
		return nil, nil
	}
	return &TemplateMatch{
		TemplateID: candidates[*r.Index-1].ID,
		Confidence: clamp01(r.Confidence),
	}, nil
}

// GenerateMealInsights returns short advice for a day of meals, or a fixed
// encouragement when the model is unavailable.
func (s *GeminiService) GenerateMealInsights(ctx context.Context, summary *DailySummary, lang string) string {
	text, err := s.complete(ctx, modelCall{
		op:          opMealInsights,
		requestType: "meal_insights",
		prompt:      insightsPrompt(summary, lang),
		temperature: 0.7,
	})
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if lang == "en" {
			return insightsFallbackEN
		}
		return insightsFallbackMM
	}
	return text
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
