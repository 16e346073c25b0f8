package service

import (
	"fmt"
	"strings"
)

func extractionPrompt(text, lang string) string {
	dishLang := "Myanmar"
	if lang == "en" {
		dishLang = "English"
	}
	return fmt.Sprintf(`You are a Myanmar food expert. Analyze this dish description and extract ingredients.

Dish: %q

Instructions:
1. Identify all main ingredients (ignore minor spices/seasonings)
2. Provide both Myanmar (Unicode) and English names
3. Estimate typical portion size in grams for each ingredient
4. Determine cooking method if mentioned
5. Assign confidence score (0.0-1.0)

Return ONLY a valid JSON object in this exact format:
{
  "dish_name": "dish name in %s",
  "ingredients": [
    {"name_mm": "ကြက်သား", "name_en": "Chicken", "estimated_portion_g": 150, "confidence": 0.95}
  ],
  "cooking_method": "curry"
}

Focus on common Myanmar ingredients. Be specific (e.g., "Chicken Breast" not just "Chicken").`, text, dishLang)
}

func nutritionPrompt(name, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimate nutritional values per 100g for: %q\n", name)
	if category != "" {
		fmt.Fprintf(&b, "Category: %s\n", category)
	}
	b.WriteString(`
Return ONLY valid JSON in this format:
{"calories_per_100g": 165, "protein_g": 31, "fat_g": 3.6, "carbs_g": 0, "fiber_g": 0, "confidence": 0.85}

Base estimates on USDA database values for similar foods. Be conservative.`)
	return b.String()
}

func templateMatchPrompt(input string, candidates []TemplateCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User input: %q\n\nAvailable dish templates:\n", input)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s / %s (%s)\n", i+1, c.NameMM, c.NameEN, c.Category)
	}
	b.WriteString(`
Find the best matching template. Return JSON:
{"index": 5, "confidence": 0.9}

If no good match (confidence < 0.6), return:
{"index": null, "confidence": 0}`)
	return b.String()
}

func insightsPrompt(s *DailySummary, lang string) string {
	language := "Myanmar"
	if lang == "en" {
		language = "English"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this daily nutrition data and provide helpful insights in %s language:\n\n", language)
	b.WriteString("Daily Summary:\n")
	fmt.Fprintf(&b, "- Calories: %.0f / %d kcal\n", s.Totals.Calories, s.CalorieTarget)
	fmt.Fprintf(&b, "- Protein: %.1fg\n- Fat: %.1fg\n- Carbs: %.1fg\n\nMeals:\n", s.Totals.Protein, s.Totals.Fat, s.Totals.Carbs)
	for _, m := range s.Meals {
		fmt.Fprintf(&b, "%s: %.0f kcal - %s\n", m.MealType, m.Calories, strings.Join(m.Items, ", "))
	}
	fmt.Fprintf(&b, "\nProvide 2-3 friendly, actionable insights in %s language. Be encouraging and culturally relevant.\n", language)
	b.WriteString("Keep it concise (max 100 words total).")
	return b.String()
}
