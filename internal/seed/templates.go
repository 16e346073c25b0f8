package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

// DefaultTemplates are the public dishes shipped with the catalog.
var DefaultTemplates = []models.DishTemplate{
	{
		NameEnglish:     "Chicken Curry with Rice",
		NameMyanmar:     "ကြက်သား ဟင်း နှင့် ထမင်း",
		Category:        "curry",
		Description:     "Traditional Myanmar chicken curry served with white rice",
		TypicalCalories: 650,
		TypicalProtein:  45,
		TypicalFat:      25,
		TypicalCarbs:    65,
		Ingredients: models.TemplateIngredients{
			{NameEN: "Chicken Breast", NameMM: "ကြက်သားရင်", PortionG: 150, CookingMethod: "Curry", PortionDescription: "1 medium piece"},
			{NameEN: "White Rice", NameMM: "ထမင်းဖြူ", PortionG: 200, CookingMethod: "Boiled", PortionDescription: "1 cup cooked"},
			{NameEN: "Onion", NameMM: "ကြက်သွန်နီ", PortionG: 50, CookingMethod: "Sauteed", PortionDescription: "1 small"},
			{NameEN: "Cooking Oil", NameMM: "ဆီ", PortionG: 15, CookingMethod: "Pure", PortionDescription: "1 tbsp"},
		},
	},
	{
		NameEnglish:     "Mohinga",
		NameMyanmar:     "မုန့်ဟင်းခါး",
		Category:        "noodles",
		Description:     "National dish of Myanmar, rice noodles in fish soup",
		TypicalCalories: 450,
		TypicalProtein:  25,
		TypicalFat:      18,
		TypicalCarbs:    55,
		Ingredients: models.TemplateIngredients{
			{NameEN: "Rice Noodles", NameMM: "မုန့်ဖတ်", PortionG: 200, CookingMethod: "Boiled", PortionDescription: "1 bowl"},
			{NameEN: "Catfish", NameMM: "ငါးခူ", PortionG: 100, CookingMethod: "Cooked", PortionDescription: "1/2 cup flaked"},
			{NameEN: "Egg Chicken", NameMM: "ကြက်ဥ", PortionG: 50, CookingMethod: "Boiled", PortionDescription: "1 egg"},
		},
	},
	{
		NameEnglish:     "Shan Noodles",
		NameMyanmar:     "ရှမ်းခေါက်ဆွဲ",
		Category:        "noodles",
		Description:     "Shan-style rice noodles with chicken or pork",
		TypicalCalories: 520,
		TypicalProtein:  30,
		TypicalFat:      20,
		TypicalCarbs:    58,
		Ingredients: models.TemplateIngredients{
			{NameEN: "Rice Noodles", NameMM: "မုန့်ဖတ်", PortionG: 200, CookingMethod: "Boiled", PortionDescription: "1 bowl"},
			{NameEN: "Chicken Breast", NameMM: "ကြက်သားရင်", PortionG: 120, CookingMethod: "Grilled", PortionDescription: "1 medium piece"},
			{NameEN: "Peanuts", NameMM: "မြေပဲ", PortionG: 30, CookingMethod: "Roasted", PortionDescription: "2 tbsp"},
		},
	},
	{
		NameEnglish:     "Tea Leaf Salad",
		NameMyanmar:     "လက်ဖက်သုတ်",
		Category:        "salad",
		Description:     "Traditional pickled tea leaf salad",
		TypicalCalories: 280,
		TypicalProtein:  12,
		TypicalFat:      18,
		TypicalCarbs:    22,
		Ingredients: models.TemplateIngredients{
			{NameEN: "Tea Leaves", NameMM: "လက်ဖက်ရွက်", PortionG: 50, CookingMethod: "Pickled", PortionDescription: "1/4 cup"},
			{NameEN: "Peanuts", NameMM: "မြေပဲ", PortionG: 30, CookingMethod: "Fried_salted", PortionDescription: "2 tbsp"},
			{NameEN: "Tomato", NameMM: "ခရမ်းချဉ်သီး", PortionG: 100, CookingMethod: "Raw", PortionDescription: "1 medium"},
			{NameEN: "Cabbage", NameMM: "ဂေါ်ဖီထုပ်", PortionG: 80, CookingMethod: "Raw", PortionDescription: "1 cup shredded"},
		},
	},
}

// SeedTemplates inserts the default templates that are not yet present by
// English name and returns how many were created.
func SeedTemplates(ctx context.Context, db *gorm.DB, logger *zap.Logger) (int, error) {
	created := 0
	for _, tmpl := range DefaultTemplates {
		tmpl := tmpl
		tmpl.IsPublic = true
		tmpl.IsVerified = true

		var count int64
		if err := db.WithContext(ctx).Model(&models.DishTemplate{}).
			Where("name_english = ?", tmpl.NameEnglish).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to check template %q: %w", tmpl.NameEnglish, err)
		}
		if count > 0 {
			continue
		}
		if err := db.WithContext(ctx).Create(&tmpl).Error; err != nil {
			return created, fmt.Errorf("failed to create template %q: %w", tmpl.NameEnglish, err)
		}
		created++
		logger.Info("Created dish template", zap.String("name", tmpl.NameEnglish))
	}
	return created, nil
}
