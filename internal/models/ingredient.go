package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Data sources for catalog ingredients.
const (
	DataSourceDatabase = "database"
	DataSourceAI       = "ai"
	DataSourceUser     = "user"
)

// Ingredient is a catalog food with macros per 100g.
type Ingredient struct {
	ID              uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	NameEnglish     string          `gorm:"size:255;not null;index" json:"name_english"`
	NameMyanmar     string          `gorm:"size:255;index" json:"name_myanmar"`
	Category        string          `gorm:"size:100" json:"category"`
	Subcategory     string          `gorm:"size:100" json:"subcategory,omitempty"`
	CaloriesPer100g float64         `gorm:"not null;default:0" json:"calories_per_100g"`
	ProteinPer100g  float64         `gorm:"not null;default:0" json:"protein_per_100g"`
	FatPer100g      float64         `gorm:"not null;default:0" json:"fat_per_100g"`
	CarbsPer100g    float64         `gorm:"not null;default:0" json:"carbs_per_100g"`
	FiberPer100g    float64         `gorm:"not null;default:0" json:"fiber_per_100g"`
	SodiumMgPer100g float64         `gorm:"not null;default:0" json:"sodium_mg_per_100g"`
	DataSource      string          `gorm:"size:20;not null;default:'user'" json:"data_source"`
	ConfidenceScore float64         `gorm:"not null;default:0.5" json:"confidence_score"`
	Verified        bool            `gorm:"not null;default:false;index" json:"verified"`
	VerifiedBy      *uuid.UUID      `gorm:"type:varchar(36)" json:"verified_by"`
	VerifiedAt      *time.Time      `json:"verified_at"`
	UsageCount      int             `gorm:"not null;default:0;index" json:"usage_count"`
	LastUsedAt      *time.Time      `json:"last_used_at"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CookingMethods  []CookingMethod `gorm:"foreignKey:IngredientID" json:"cooking_methods,omitempty"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// CookingMethod is a named preparation of one ingredient.
type CookingMethod struct {
	ID                    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	IngredientID          uuid.UUID `gorm:"type:varchar(36);not null;index" json:"ingredient_id"`
	MethodName            string    `gorm:"size:100;not null" json:"method_name"`
	CaloriesPer100gCooked float64   `gorm:"not null;default:0" json:"calories_per_100g_cooked"`
	CalorieMultiplier     float64   `gorm:"not null" json:"calorie_multiplier"`
	WaterContentPercent   *float64  `json:"water_content_percent"`
	AddedFatG             float64   `gorm:"not null;default:0" json:"added_fat_g"`
	Notes                 string    `gorm:"type:text" json:"notes,omitempty"`
}

// NewCookingMethod builds a method for the ingredient with the multiplier
// derived from the ingredient's raw calories.
func NewCookingMethod(ing *Ingredient, name string, cookedCalories float64) CookingMethod {
	return CookingMethod{
		IngredientID:          ing.ID,
		MethodName:            name,
		CaloriesPer100gCooked: cookedCalories,
		CalorieMultiplier:     CalorieMultiplier(ing.CaloriesPer100g, cookedCalories),
	}
}

func (m *CookingMethod) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// CalorieMultiplier is cooked/raw rounded to two decimals, or 1.0 when raw
// is zero.
func CalorieMultiplier(raw, cooked float64) float64 {
	if raw == 0 {
		return 1.0
	}
	return math.Round(cooked/raw*100) / 100
}
