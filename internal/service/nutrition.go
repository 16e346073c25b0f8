package service

import (
	"math"

	"github.com/myancal/backend/internal/models"
)

const (
	estimatedConfidenceThreshold = 0.7
)

// Nutrition is a set of macro values, either per 100g or for a portion.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Fat      float64 `json:"fat_g"`
	Carbs    float64 `json:"carbs_g"`
	Fiber    float64 `json:"fiber_g"`
}

// Add returns the element-wise sum.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Carbs:    n.Carbs + o.Carbs,
		Fiber:    n.Fiber + o.Fiber,
	}
}

// Rounded rounds every field to two decimals.
func (n Nutrition) Rounded() Nutrition {
	return Nutrition{
		Calories: Round2(n.Calories),
		Protein:  Round2(n.Protein),
		Fat:      Round2(n.Fat),
		Carbs:    Round2(n.Carbs),
		Fiber:    Round2(n.Fiber),
	}
}

// Round2 rounds half up at the hundredths digit.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ScalePortion scales per-100g values to a portion and rounds each field.
func ScalePortion(per100g Nutrition, grams float64) Nutrition {
	m := grams / 100
	return Nutrition{
		Calories: Round2(per100g.Calories * m),
		Protein:  Round2(per100g.Protein * m),
		Fat:      Round2(per100g.Fat * m),
		Carbs:    Round2(per100g.Carbs * m),
		Fiber:    Round2(per100g.Fiber * m),
	}
}

// IngredientNutrition returns the catalog per-100g values.
func IngredientNutrition(ing *models.Ingredient) Nutrition {
	return Nutrition{
		Calories: ing.CaloriesPer100g,
		Protein:  ing.ProteinPer100g,
		Fat:      ing.FatPer100g,
		Carbs:    ing.CarbsPer100g,
		Fiber:    ing.FiberPer100g,
	}
}

// ClassifyConfidence labels the provenance of an item's nutrition.
// A catalog match is exact; an AI estimate is graded by its own confidence,
// and a fallback default (or no source at all) is a guess.
func ClassifyConfidence(matched bool, estimate *NutritionEstimate) models.ConfidenceLevel {
	switch {
	case matched:
		return models.ConfidenceExact
	case estimate == nil || estimate.Fallback:
		return models.ConfidenceGuessed
	case estimate.Confidence > estimatedConfidenceThreshold:
		return models.ConfidenceEstimated
	default:
		return models.ConfidenceApproximate
	}
}
