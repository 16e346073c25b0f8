package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
	"github.com/myancal/backend/internal/types"
)

// TestJWTSecret signs tokens produced by SessionToken.
const TestJWTSecret = "test-jwt-secret"

// CreateUser inserts a user. Pass admin to grant the admin flag.
func CreateUser(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test " + email, IsAdmin: admin}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateIngredient inserts a verified catalog ingredient with the given
// per-100g calories and fixed macros.
func CreateIngredient(t *testing.T, db *gorm.DB, nameEN, nameMM string, calories float64) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{
		NameEnglish:     nameEN,
		NameMyanmar:     nameMM,
		Category:        "test",
		CaloriesPer100g: calories,
		ProteinPer100g:  10,
		FatPer100g:      5,
		CarbsPer100g:    20,
		FiberPer100g:    1,
		DataSource:      models.DataSourceDatabase,
		ConfidenceScore: 1,
		Verified:        true,
	}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ing
}

// SessionToken returns an HS256 session token for userID signed with
// TestJWTSecret.
func SessionToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
