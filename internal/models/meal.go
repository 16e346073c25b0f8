package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
	MealTypeOther     = "other"
)

// ConfidenceLevel describes where a meal item's nutrition values came from.
type ConfidenceLevel string

const (
	ConfidenceExact       ConfidenceLevel = "exact"
	ConfidenceEstimated   ConfidenceLevel = "estimated"
	ConfidenceApproximate ConfidenceLevel = "approximate"
	ConfidenceGuessed     ConfidenceLevel = "guessed"
)

// Meal is one logged eating occasion. Totals equal the sum of its items.
type Meal struct {
	ID                    uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
	UserID                uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	MealName              string         `gorm:"size:255" json:"meal_name"`
	MealType              string         `gorm:"size:20;not null;default:'other'" json:"meal_type"`
	EatenAt               time.Time      `gorm:"not null;index" json:"eaten_at"`
	TotalCalories         float64        `gorm:"not null;default:0" json:"total_calories"`
	TotalProtein          float64        `gorm:"not null;default:0" json:"total_protein_g"`
	TotalFat              float64        `gorm:"not null;default:0" json:"total_fat_g"`
	TotalCarbs            float64        `gorm:"not null;default:0" json:"total_carbs_g"`
	TotalFiber            float64        `gorm:"not null;default:0" json:"total_fiber_g"`
	PhotoURL              string         `gorm:"size:512" json:"photo_url,omitempty"`
	Notes                 string         `gorm:"type:text" json:"notes,omitempty"`
	AIGenerated           bool           `gorm:"not null;default:false" json:"ai_generated"`
	CreatedFromTemplateID *uuid.UUID     `gorm:"type:varchar(36)" json:"created_from_template_id,omitempty"`
	Items                 []MealItem     `gorm:"foreignKey:MealID" json:"meal_items"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// MealItem is one ingredient portion within a meal.
type MealItem struct {
	ID                    uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt             time.Time       `json:"created_at"`
	MealID                uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"meal_id"`
	IngredientID          *uuid.UUID      `gorm:"type:varchar(36);index" json:"ingredient_id"`
	Ingredient            *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	IngredientNameEnglish string          `gorm:"size:255" json:"ingredient_name_english"`
	IngredientNameMyanmar string          `gorm:"size:255" json:"ingredient_name_myanmar"`
	CookingMethodID       *uuid.UUID      `gorm:"type:varchar(36)" json:"cooking_method_id,omitempty"`
	PortionGrams          float64         `gorm:"not null" json:"portion_grams"`
	PortionDescription    string          `gorm:"size:255" json:"portion_description,omitempty"`
	Calories              float64         `gorm:"not null;default:0" json:"calories"`
	Protein               float64         `gorm:"not null;default:0" json:"protein_g"`
	Fat                   float64         `gorm:"not null;default:0" json:"fat_g"`
	Carbs                 float64         `gorm:"not null;default:0" json:"carbs_g"`
	Fiber                 float64         `gorm:"not null;default:0" json:"fiber_g"`
	ConfidenceLevel       ConfidenceLevel `gorm:"size:20;not null" json:"confidence_level"`
	AISuggested           bool            `gorm:"not null;default:false" json:"ai_suggested"`
	UserConfirmed         bool            `gorm:"not null;default:false" json:"user_confirmed"`
}

func (i *MealItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
