package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

const (
	minSearchRunes     = 2
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	adminListLimit     = 100
)

// Admin listing filters.
const (
	FilterAll      = "all"
	FilterVerified = "verified"
	FilterPending  = "pending"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// SearchQuery is a catalog search request.
type SearchQuery struct {
	Term string
	// Lang restricts matching to the Myanmar ("mm") or English ("en") name.
	Lang              string
	Limit             int
	IncludeUnverified bool
}

// IngredientInput creates a catalog ingredient.
type IngredientInput struct {
	NameEnglish     string  `json:"name_english" binding:"required"`
	NameMyanmar     string  `json:"name_myanmar"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory"`
	CaloriesPer100g float64 `json:"calories_per_100g" binding:"gte=0"`
	ProteinPer100g  float64 `json:"protein_per_100g" binding:"gte=0"`
	FatPer100g      float64 `json:"fat_per_100g" binding:"gte=0"`
	CarbsPer100g    float64 `json:"carbs_per_100g" binding:"gte=0"`
	FiberPer100g    float64 `json:"fiber_per_100g" binding:"gte=0"`
	SodiumMgPer100g float64 `json:"sodium_mg_per_100g" binding:"gte=0"`
	Notes           string  `json:"notes"`
}

// CookingMethodInput adds a preparation to an ingredient.
type CookingMethodInput struct {
	MethodName            string   `json:"method_name" binding:"required"`
	CaloriesPer100gCooked float64  `json:"calories_per_100g_cooked" binding:"gte=0"`
	WaterContentPercent   *float64 `json:"water_content_percent"`
	AddedFatG             float64  `json:"added_fat_g" binding:"gte=0"`
	Notes                 string   `json:"notes"`
}

// IngredientService reads and curates the ingredient catalog.
type IngredientService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewIngredientService(db *gorm.DB, logger *zap.Logger) *IngredientService {
	return &IngredientService{
		db:     db,
		logger: logger.Named("ingredients"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindBestMatch returns the most used non-deleted ingredient whose Myanmar
// or English name contains the given name, or nil when none does.
func (s *IngredientService) FindBestMatch(ctx context.Context, nameMM, nameEN string) (*models.Ingredient, error) {
	nameMM = strings.TrimSpace(nameMM)
	nameEN = strings.TrimSpace(nameEN)

	var conds []string
	var args []interface{}
	if nameMM != "" {
		conds = append(conds, `LOWER(name_myanmar) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(nameMM))
	}
	if nameEN != "" {
		conds = append(conds, `LOWER(name_english) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(nameEN))
	}
	if len(conds) == 0 {
		return nil, nil
	}

	var found []models.Ingredient
	err := s.db.WithContext(ctx).
		Preload("CookingMethods").
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Order("usage_count DESC").
		Limit(1).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match ingredient: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Search finds catalog ingredients by name, verified only unless
// IncludeUnverified is set.
func (s *IngredientService) Search(ctx context.Context, q SearchQuery) ([]models.Ingredient, error) {
	term := strings.TrimSpace(q.Term)
	if utf8.RuneCountInString(term) < minSearchRunes {
		return nil, invalidInput("search query must be at least 2 characters")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	pattern := likePattern(term)
	tx := s.db.WithContext(ctx).Model(&models.Ingredient{})
	switch q.Lang {
	case "mm":
		tx = tx.Where(`LOWER(name_myanmar) LIKE ? ESCAPE '\'`, pattern)
	case "en":
		tx = tx.Where(`LOWER(name_english) LIKE ? ESCAPE '\'`, pattern)
	default:
		tx = tx.Where(`(LOWER(name_myanmar) LIKE ? ESCAPE '\' OR LOWER(name_english) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if !q.IncludeUnverified {
		tx = tx.Where("verified = ?", true)
	}

	results := []models.Ingredient{}
	if err := tx.Order("usage_count DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return results, nil
}

// AdminList lists catalog entries for review, newest first.
func (s *IngredientService) AdminList(ctx context.Context, admin AuthorizedAdmin, filter, search string) ([]models.Ingredient, error) {
	tx := s.db.WithContext(ctx).Model(&models.Ingredient{})
	// Unknown filters list everything.
	switch filter {
	case FilterVerified:
		tx = tx.Where("verified = ?", true)
	case FilterPending:
		tx = tx.Where("verified = ?", false)
	}

	if search = strings.TrimSpace(search); utf8.RuneCountInString(search) >= minSearchRunes {
		p := likePattern(search)
		tx = tx.Where(`(LOWER(name_myanmar) LIKE ? ESCAPE '\' OR LOWER(name_english) LIKE ? ESCAPE '\')`, p, p)
	}

	results := []models.Ingredient{}
	if err := tx.Order("created_at DESC").Limit(adminListLimit).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return results, nil
}

// SetVerified records or clears the verification of an ingredient.
func (s *IngredientService) SetVerified(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID, verified bool) (*models.Ingredient, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"verified": verified}
	if verified {
		updates["verified_by"] = admin.UserID()
		updates["verified_at"] = s.now()
	} else {
		updates["verified_by"] = nil
		updates["verified_at"] = nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}

	s.logger.Info("Ingredient verification changed",
		zap.String("ingredient_id", id.String()),
		zap.Bool("verified", verified),
		zap.String("admin_id", admin.UserID().String()))
	return s.get(ctx, id)
}

// Create adds an admin-entered ingredient. Admin entries are verified.
func (s *IngredientService) Create(ctx context.Context, admin AuthorizedAdmin, in IngredientInput) (*models.Ingredient, error) {
	if strings.TrimSpace(in.NameEnglish) == "" {
		return nil, invalidInput("name_english is required")
	}

	now := s.now()
	adminID := admin.UserID()
	ing := &models.Ingredient{
		NameEnglish:     strings.TrimSpace(in.NameEnglish),
		NameMyanmar:     strings.TrimSpace(in.NameMyanmar),
		Category:        in.Category,
		Subcategory:     in.Subcategory,
		CaloriesPer100g: in.CaloriesPer100g,
		ProteinPer100g:  in.ProteinPer100g,
		FatPer100g:      in.FatPer100g,
		CarbsPer100g:    in.CarbsPer100g,
		FiberPer100g:    in.FiberPer100g,
		SodiumMgPer100g: in.SodiumMgPer100g,
		DataSource:      models.DataSourceUser,
		ConfidenceScore: 1.0,
		Verified:        true,
		VerifiedBy:      &adminID,
		VerifiedAt:      &now,
		Notes:           in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ing, nil
}

// AddCookingMethod attaches a preparation with a derived calorie multiplier.
func (s *IngredientService) AddCookingMethod(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID, in CookingMethodInput) (*models.CookingMethod, error) {
	ing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	m := models.NewCookingMethod(ing, strings.TrimSpace(in.MethodName), in.CaloriesPer100gCooked)
	m.WaterContentPercent = in.WaterContentPercent
	m.AddedFatG = in.AddedFatG
	m.Notes = in.Notes
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to create cooking method: %w", err)
	}
	return &m, nil
}

// Delete tombstones an ingredient.
func (s *IngredientService) Delete(ctx context.Context, admin AuthorizedAdmin, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Ingredient{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete ingredient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info("Ingredient deleted",
		zap.String("ingredient_id", id.String()),
		zap.String("admin_id", admin.UserID().String()))
	return nil
}

func (s *IngredientService) get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.WithContext(ctx).Preload("CookingMethods").First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ing, nil
}
