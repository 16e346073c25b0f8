package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateIngredient is one line of a precomposed dish.
type TemplateIngredient struct {
	NameEN             string  `json:"name_en"`
	NameMM             string  `json:"name_mm"`
	PortionG           float64 `json:"portion_g"`
	CookingMethod      string  `json:"cooking_method,omitempty"`
	PortionDescription string  `json:"portion_description,omitempty"`
}

// TemplateIngredients is stored as a JSON document.
type TemplateIngredients []TemplateIngredient

// Value implements the driver.Valuer interface
func (t TemplateIngredients) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (t *TemplateIngredients) Scan(value interface{}) error {
	if value == nil {
		*t = TemplateIngredients{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for template ingredients: %T", value)
	}

	return json.Unmarshal(bytes, t)
}

// DishTemplate is a popular dish with a typical ingredient breakdown.
type DishTemplate struct {
	ID              uuid.UUID           `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`
	NameEnglish     string              `gorm:"size:255;not null;uniqueIndex" json:"name_english"`
	NameMyanmar     string              `gorm:"size:255" json:"name_myanmar"`
	Category        string              `gorm:"size:100;index" json:"category"`
	Description     string              `gorm:"type:text" json:"description,omitempty"`
	Ingredients     TemplateIngredients `gorm:"type:text;not null" json:"ingredients"`
	TypicalCalories float64             `gorm:"not null;default:0" json:"typical_calories"`
	TypicalProtein  float64             `gorm:"not null;default:0" json:"typical_protein_g"`
	TypicalFat      float64             `gorm:"not null;default:0" json:"typical_fat_g"`
	TypicalCarbs    float64             `gorm:"not null;default:0" json:"typical_carbs_g"`
	UsageCount      int                 `gorm:"not null;default:0" json:"usage_count"`
	PopularityScore float64             `gorm:"not null;default:0;index" json:"popularity_score"`
	IsPublic        bool                `gorm:"not null;index" json:"is_public"`
	IsVerified      bool                `gorm:"not null;default:false" json:"is_verified"`
}

func (d *DishTemplate) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
