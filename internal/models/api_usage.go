package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIUsage is one row of the append-only usage ledger, written for every
// call to the generative model provider.
type APIUsage struct {
	ID             uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
	APIProvider    string     `gorm:"size:50;not null" json:"api_provider"`
	ModelName      string     `gorm:"size:100;not null" json:"model_name"`
	Endpoint       string     `gorm:"size:100;not null" json:"endpoint"`
	RequestType    string     `gorm:"size:100" json:"request_type"`
	UserID         *uuid.UUID `gorm:"type:varchar(36);index" json:"user_id"`
	RequestTokens  int        `gorm:"not null;default:0" json:"request_tokens"`
	ResponseTokens int        `gorm:"not null;default:0" json:"response_tokens"`
	TotalTokens    int        `gorm:"not null;default:0" json:"total_tokens"`
	Success        bool       `gorm:"not null" json:"success"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	ResponseTimeMs int64      `gorm:"not null;default:0" json:"response_time_ms"`
}

func (APIUsage) TableName() string {
	return "api_usage"
}

func (u *APIUsage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// All returns every model managed by the schema, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&CookingMethod{},
		&DishTemplate{},
		&Meal{},
		&MealItem{},
		&APIUsage{},
	}
}
