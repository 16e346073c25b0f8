package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myancal/backend/internal/models"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 2.56, Round2(2.5551))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 100.0, Round2(99.999))
}

func TestScalePortion(t *testing.T) {
	per100 := Nutrition{Calories: 130, Protein: 2.7, Fat: 0.3, Carbs: 28, Fiber: 0.4}

	got := ScalePortion(per100, 150)
	assert.Equal(t, Nutrition{Calories: 195, Protein: 4.05, Fat: 0.45, Carbs: 42, Fiber: 0.6}, got)
	assert.Equal(t, Nutrition{}, ScalePortion(per100, 0))
}

func TestScalePortionIsMonotonic(t *testing.T) {
	per100 := Nutrition{Calories: 143.7, Protein: 12.33, Fat: 9.91, Carbs: 0.72, Fiber: 0.05}

	prev := ScalePortion(per100, 0)
	for grams := 0.5; grams <= 1000; grams += 0.5 {
		cur := ScalePortion(per100, grams)
		assert.GreaterOrEqual(t, cur.Calories, prev.Calories, "calories at %vg", grams)
		assert.GreaterOrEqual(t, cur.Protein, prev.Protein, "protein at %vg", grams)
		assert.GreaterOrEqual(t, cur.Fat, prev.Fat, "fat at %vg", grams)
		assert.GreaterOrEqual(t, cur.Carbs, prev.Carbs, "carbs at %vg", grams)
		assert.GreaterOrEqual(t, cur.Fiber, prev.Fiber, "fiber at %vg", grams)
		prev = cur
	}
}

func TestClassifyConfidence(t *testing.T) {
	fallback := DefaultNutritionEstimate
	tests := []struct {
		name     string
		matched  bool
		estimate *NutritionEstimate
		want     models.ConfidenceLevel
	}{
		{"catalog match", true, nil, models.ConfidenceExact},
		{"catalog match wins over estimate", true, &NutritionEstimate{Confidence: 0.1}, models.ConfidenceExact},
		{"confident estimate", false, &NutritionEstimate{Confidence: 0.85}, models.ConfidenceEstimated},
		{"threshold is approximate", false, &NutritionEstimate{Confidence: 0.7}, models.ConfidenceApproximate},
		{"weak estimate", false, &NutritionEstimate{Confidence: 0.4}, models.ConfidenceApproximate},
		{"failed estimate", false, &fallback, models.ConfidenceGuessed},
		{"no source", false, nil, models.ConfidenceGuessed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyConfidence(tt.matched, tt.estimate))
		})
	}
}

func TestNutritionAddRounded(t *testing.T) {
	a := Nutrition{Calories: 100.111, Protein: 1}
	b := Nutrition{Calories: 50.222, Fiber: 0.005}
	assert.Equal(t, Nutrition{Calories: 150.33, Protein: 1, Fiber: 0.01}, a.Add(b).Rounded())
}
