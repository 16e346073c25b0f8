package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the catalog record for an account. Accounts are created by the
// external session issuer; this table only carries profile and role data.
type User struct {
	ID                 uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Email              string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName           string         `gorm:"size:255" json:"full_name"`
	DisplayName        string         `gorm:"size:100" json:"display_name"`
	PreferredLanguage  string         `gorm:"size:2;not null;default:'mm'" json:"preferred_language"`
	DailyCalorieTarget int            `gorm:"not null;default:2000" json:"daily_calorie_target"`
	IsAdmin            bool           `gorm:"not null;default:false" json:"is_admin"`
	Points             int            `gorm:"not null;default:0" json:"points"`
	Level              int            `gorm:"not null;default:1" json:"level"`
	StreakDays         int            `gorm:"not null;default:0" json:"streak_days"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
