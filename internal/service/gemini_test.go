package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCompleter replies with canned contents in order.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	content := ""
	if len(f.replies) > 0 {
		content = f.replies[0]
		f.replies = f.replies[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}}},
		Usage:   openai.Usage{PromptTokens: 40, CompletionTokens: 10, TotalTokens: 50},
	}, nil
}

type recordingTracker struct {
	mu      sync.Mutex
	records []UsageRecord
}

func (r *recordingTracker) TrackUsage(ctx context.Context, rec UsageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func newTestGemini(c ChatCompleter, rec UsageRecorder) *GeminiService {
	return NewGeminiService(c, "gemini-test", time.Second, rec, zap.NewNop())
}

func TestExtractIngredients(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"```json\n" + `{
		"dish_name": " ကြက်သားဟင်း ",
		"cooking_method": "curry",
		"ingredients": [
			{"name_mm": "ကြက်သား", "name_en": " Chicken Breast ", "estimated_portion_g": 150, "confidence": 1.4},
			{"name_mm": "", "name_en": "", "estimated_portion_g": 10, "confidence": 0.5},
			{"name_mm": "ထမင်း", "name_en": "White Rice", "estimated_portion_g": -5, "confidence": 0.8}
		]
	}` + "\n```"}}
	rec := &recordingTracker{}
	svc := newTestGemini(fake, rec)

	userID := uuid.New()
	ext, err := svc.ExtractIngredients(WithUserID(context.Background(), userID), "ကြက်သားဟင်း နဲ့ ထမင်း", "mm")
	require.NoError(t, err)

	assert.Equal(t, "ကြက်သားဟင်း", ext.DishName)
	assert.Equal(t, "curry", ext.CookingMethod)
	require.Len(t, ext.Ingredients, 2)
	assert.Equal(t, "Chicken Breast", ext.Ingredients[0].NameEN)
	assert.Equal(t, 1.0, ext.Ingredients[0].Confidence)
	assert.Zero(t, ext.Ingredients[1].EstimatedPortionG)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "gemini-test", fake.requests[0].Model)
	assert.Contains(t, fake.requests[0].Messages[0].Content, "ကြက်သားဟင်း နဲ့ ထမင်း")

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.True(t, r.Success)
	assert.Equal(t, opExtractIngredients, r.Endpoint)
	assert.Equal(t, 40, r.RequestTokens)
	assert.Equal(t, 10, r.ResponseTokens)
	require.NotNil(t, r.UserID)
	assert.Equal(t, userID, *r.UserID)
}

func TestExtractIngredientsFailsClosed(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		rec := &recordingTracker{}
		svc := newTestGemini(&fakeCompleter{err: errors.New("503 overloaded")}, rec)

		_, err := svc.ExtractIngredients(context.Background(), "mohinga", "en")
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, opExtractIngredients, extErr.Op)

		require.Len(t, rec.records, 1)
		assert.False(t, rec.records[0].Success)
		assert.Contains(t, rec.records[0].ErrorMessage, "503")
	})

	t.Run("unparseable reply", func(t *testing.T) {
		svc := newTestGemini(&fakeCompleter{replies: []string{"Sorry, I can't do that."}}, nil)

		_, err := svc.ExtractIngredients(context.Background(), "mohinga", "en")
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "Sorry, I can't do that.", extErr.Raw)
		assert.ErrorIs(t, err, errNoJSON)
	})
}

func TestEstimateNutrition(t *testing.T) {
	t.Run("estimate", func(t *testing.T) {
		fake := &fakeCompleter{replies: []string{`{"calories_per_100g": 130, "protein_g": 2.7, "fat_g": 0.3, "carbs_g": 28, "fiber_g": 0.4, "confidence": 0.9}`}}
		est := newTestGemini(fake, nil).EstimateNutrition(context.Background(), "White Rice", "grain")

		assert.False(t, est.Fallback)
		assert.Equal(t, 130.0, est.CaloriesPer100g)
		assert.Equal(t, 0.9, est.Confidence)
		assert.Contains(t, fake.requests[0].Messages[0].Content, "grain")
	})

	t.Run("provider error falls back", func(t *testing.T) {
		est := newTestGemini(&fakeCompleter{err: errors.New("timeout")}, nil).EstimateNutrition(context.Background(), "Mystery", "")
		assert.Equal(t, DefaultNutritionEstimate, est)
	})

	t.Run("missing calories falls back", func(t *testing.T) {
		est := newTestGemini(&fakeCompleter{replies: []string{`{"error":"unknown ingredient"}`}}, nil).EstimateNutrition(context.Background(), "Mystery", "")
		assert.Equal(t, DefaultNutritionEstimate, est)
	})

	t.Run("zero calories is an estimate", func(t *testing.T) {
		est := newTestGemini(&fakeCompleter{replies: []string{`{"calories_per_100g": 0, "confidence": 0.95}`}}, nil).EstimateNutrition(context.Background(), "Water", "drink")
		assert.False(t, est.Fallback)
		assert.Equal(t, 0.0, est.CaloriesPer100g)
		assert.Equal(t, 0.95, est.Confidence)
	})

	t.Run("garbage falls back", func(t *testing.T) {
		est := newTestGemini(&fakeCompleter{replies: []string{"no idea"}}, nil).EstimateNutrition(context.Background(), "Mystery", "")
		assert.True(t, est.Fallback)
		assert.Equal(t, 100.0, est.CaloriesPer100g)
	})
}

func TestMatchDishTemplate(t *testing.T) {
	candidates := []TemplateCandidate{
		{ID: uuid.New(), NameEN: "Mohinga", NameMM: "မုန့်ဟင်းခါး"},
		{ID: uuid.New(), NameEN: "Shan Noodles", NameMM: "ရှမ်းခေါက်ဆွဲ"},
	}

	tests := []struct {
		name  string
		reply string
		want  *TemplateMatch
	}{
		{"confident match", `{"index": 2, "confidence": 0.8}`, &TemplateMatch{TemplateID: candidates[1].ID, Confidence: 0.8}},
		{"below threshold", `{"index": 1, "confidence": 0.5}`, nil},
		{"no match", `{"index": null, "confidence": 0}`, nil},
		{"out of range", `{"index": 3, "confidence": 0.9}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGemini(&fakeCompleter{replies: []string{tt.reply}}, nil)
			got, err := svc.MatchDishTemplate(context.Background(), "shan khauk swe", candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no candidates skips the call", func(t *testing.T) {
		fake := &fakeCompleter{}
		got, err := newTestGemini(fake, nil).MatchDishTemplate(context.Background(), "anything", nil)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, fake.requests)
	})
}

func TestGenerateMealInsights(t *testing.T) {
	summary := &DailySummary{Date: "2026-03-10", MealCount: 1, CalorieTarget: 2000, Totals: Nutrition{Calories: 650}}

	text := newTestGemini(&fakeCompleter{replies: []string{"  Eat more vegetables.  "}}, nil).GenerateMealInsights(context.Background(), summary, "en")
	assert.Equal(t, "Eat more vegetables.", text)

	failing := newTestGemini(&fakeCompleter{err: errors.New("down")}, nil)
	assert.Equal(t, insightsFallbackEN, failing.GenerateMealInsights(context.Background(), summary, "en"))
	assert.Equal(t, insightsFallbackMM, failing.GenerateMealInsights(context.Background(), summary, "mm"))
}

func TestGeminiClientOverHTTP(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: `{"dish_name":"Mohinga","cooking_method":"boiled","ingredients":[{"name_mm":"မုန့်ဖတ်","name_en":"Rice Noodles","estimated_portion_g":200,"confidence":0.9}]}`,
				},
			}},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 34, TotalTokens: 46},
		})
	}))
	defer srv.Close()

	rec := &recordingTracker{}
	svc := NewGeminiService(NewGeminiClient("test-key", srv.URL+"/v1beta/openai/"), "", time.Second, rec, zap.NewNop())

	ext, err := svc.ExtractIngredients(context.Background(), "mohinga", "en")
	require.NoError(t, err)
	require.Len(t, ext.Ingredients, 1)
	assert.Equal(t, "Rice Noodles", ext.Ingredients[0].NameEN)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.True(t, strings.HasSuffix(gotPath, "/v1beta/openai/chat/completions"), gotPath)
	require.Len(t, rec.records, 1)
	assert.Equal(t, 34, rec.records[0].ResponseTokens)
	assert.Equal(t, defaultModel, rec.records[0].Model)
}
