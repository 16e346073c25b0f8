package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

const defaultCalorieTarget = 2000

var mealTypes = map[string]bool{
	models.MealTypeBreakfast: true,
	models.MealTypeLunch:     true,
	models.MealTypeDinner:    true,
	models.MealTypeSnack:     true,
	models.MealTypeOther:     true,
}

// MealIngredientInput is one confirmed ingredient with the user's portion.
type MealIngredientInput struct {
	Ingredient         EnrichedIngredient `json:"ingredient"`
	PortionG           float64            `json:"portion_g"`
	CookingMethodID    *uuid.UUID         `json:"cooking_method_id"`
	PortionDescription string             `json:"portion_description"`
}

// CreateMealInput is a meal ready to be saved.
type CreateMealInput struct {
	UserID     uuid.UUID
	MealName   string
	MealType   string
	EatenAt    time.Time
	Notes      string
	TemplateID *uuid.UUID
	Items      []MealIngredientInput
}

// MealSummary is one meal within a daily summary.
type MealSummary struct {
	MealID   uuid.UUID `json:"meal_id"`
	MealName string    `json:"meal_name"`
	MealType string    `json:"meal_type"`
	Calories float64   `json:"calories"`
	Items    []string  `json:"items"`
}

// DailySummary aggregates one user's meals for a UTC day.
type DailySummary struct {
	Date              string             `json:"date"`
	Totals            Nutrition          `json:"totals"`
	CaloriesByType    map[string]float64 `json:"calories_by_type"`
	MealCount         int                `json:"meal_count"`
	CalorieTarget     int                `json:"calorie_target"`
	RemainingCalories float64            `json:"remaining_calories"`
	Meals             []MealSummary      `json:"meals"`
	Insights          string             `json:"insights,omitempty"`
}

// MealService stores meals with per-portion nutrition.
type MealService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewMealService(db *gorm.DB, logger *zap.Logger) *MealService {
	return &MealService{
		db:     db,
		logger: logger.Named("meals"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateMeal computes item nutrition and writes the meal and its items in
// one transaction. The returned meal includes items and ingredient names.
func (s *MealService) CreateMeal(ctx context.Context, in CreateMealInput) (*models.Meal, error) {
	if in.UserID == uuid.Nil {
		return nil, invalidInput("user_id is required")
	}
	mealType := strings.ToLower(strings.TrimSpace(in.MealType))
	if mealType == "" {
		mealType = models.MealTypeOther
	}
	if !mealTypes[mealType] {
		return nil, invalidInput("meal_type must be breakfast, lunch, dinner, snack or other")
	}

	eatenAt := in.EatenAt
	if eatenAt.IsZero() {
		eatenAt = s.now()
	}

	meal := &models.Meal{
		ID:                    uuid.New(),
		UserID:                in.UserID,
		MealName:              strings.TrimSpace(in.MealName),
		MealType:              mealType,
		EatenAt:               eatenAt.UTC(),
		Notes:                 in.Notes,
		AIGenerated:           true,
		CreatedFromTemplateID: in.TemplateID,
	}

	items, err := s.buildItems(ctx, meal.ID, in.Items)
	if err != nil {
		return nil, err
	}
	var total Nutrition
	for _, it := range items {
		total = total.Add(Nutrition{Calories: it.Calories, Protein: it.Protein, Fat: it.Fat, Carbs: it.Carbs, Fiber: it.Fiber})
	}
	total = total.Rounded()
	meal.TotalCalories = total.Calories
	meal.TotalProtein = total.Protein
	meal.TotalFat = total.Fat
	meal.TotalCarbs = total.Carbs
	meal.TotalFiber = total.Fiber

	state := MealWritePending
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(meal).Error; err != nil {
			return fmt.Errorf("failed to create meal: %w", err)
		}
		state = MealWriteCreated

		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create meal items: %w", err)
		}
		return s.bumpUsage(tx, items, in.TemplateID)
	})
	if err != nil {
		if state == MealWriteCreated {
			state = MealWriteRolledBack
		}
		s.logger.Error("Meal write failed",
			zap.String("user_id", in.UserID.String()),
			zap.String("state", string(state)),
			zap.Error(err))
		return nil, &MealWriteError{State: state, Err: err}
	}

	s.logger.Info("Meal saved",
		zap.String("meal_id", meal.ID.String()),
		zap.String("state", string(MealWriteCommitted)),
		zap.Int("items", len(items)),
		zap.Float64("calories", meal.TotalCalories))

	return s.load(ctx, in.UserID, meal.ID)
}

// buildItems turns inputs into meal items. Items without a positive portion
// are skipped; at least one must remain.
func (s *MealService) buildItems(ctx context.Context, mealID uuid.UUID, inputs []MealIngredientInput) ([]models.MealItem, error) {
	items := make([]models.MealItem, 0, len(inputs))
	base := s.now()
	for _, in := range inputs {
		if in.PortionG <= 0 {
			continue
		}
		item, err := s.buildItem(ctx, mealID, in)
		if err != nil {
			return nil, err
		}
		// Distinct timestamps keep items in input order when listed.
		item.CreatedAt = base.Add(time.Duration(len(items)) * time.Microsecond)
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, invalidInput("at least one ingredient with a positive portion is required")
	}
	return items, nil
}

func (s *MealService) buildItem(ctx context.Context, mealID uuid.UUID, in MealIngredientInput) (models.MealItem, error) {
	src := in.Ingredient

	// Catalog values are re-read so clients cannot alter them.
	var catalog *models.Ingredient
	if src.DatabaseMatch != nil && src.DatabaseMatch.ID != uuid.Nil {
		var ing models.Ingredient
		err := s.db.WithContext(ctx).Preload("CookingMethods").First(&ing, "id = ?", src.DatabaseMatch.ID).Error
		switch {
		case err == nil:
			catalog = &ing
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Warn("Matched ingredient no longer in catalog", zap.String("ingredient_id", src.DatabaseMatch.ID.String()))
		default:
			return models.MealItem{}, fmt.Errorf("failed to load ingredient: %w", err)
		}
	}

	item := models.MealItem{
		MealID:                mealID,
		IngredientNameEnglish: src.NameEN,
		IngredientNameMyanmar: src.NameMM,
		PortionGrams:          in.PortionG,
		PortionDescription:    in.PortionDescription,
		AISuggested:           true,
		UserConfirmed:         true,
	}

	var per100 Nutrition
	multiplier := 1.0
	if catalog != nil {
		id := catalog.ID
		item.IngredientID = &id
		item.ConfidenceLevel = models.ConfidenceExact
		if item.IngredientNameEnglish == "" {
			item.IngredientNameEnglish = catalog.NameEnglish
		}
		if item.IngredientNameMyanmar == "" {
			item.IngredientNameMyanmar = catalog.NameMyanmar
		}
		per100 = IngredientNutrition(catalog)

		methodID := in.CookingMethodID
		if methodID == nil {
			methodID = src.CookingMethodID
		}
		if m := findMethod(catalog.CookingMethods, methodID); m != nil {
			mid := m.ID
			item.CookingMethodID = &mid
			multiplier = m.CalorieMultiplier
		}
	} else {
		item.ConfidenceLevel = ClassifyConfidence(false, src.AIEstimate)
		if src.AIEstimate != nil {
			per100 = src.AIEstimate.Per100g()
		} else {
			per100 = DefaultNutritionEstimate.Per100g()
		}
	}

	n := ScalePortion(per100, in.PortionG)
	if multiplier != 1.0 {
		n.Calories = Round2(per100.Calories * in.PortionG / 100 * multiplier)
	}
	item.Calories = n.Calories
	item.Protein = n.Protein
	item.Fat = n.Fat
	item.Carbs = n.Carbs
	item.Fiber = n.Fiber
	return item, nil
}

func findMethod(methods []models.CookingMethod, id *uuid.UUID) *models.CookingMethod {
	if id == nil {
		return nil
	}
	for i := range methods {
		if methods[i].ID == *id {
			return &methods[i]
		}
	}
	return nil
}

func (s *MealService) bumpUsage(tx *gorm.DB, items []models.MealItem, templateID *uuid.UUID) error {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, it := range items {
		if it.IngredientID != nil && !seen[*it.IngredientID] {
			seen[*it.IngredientID] = true
			ids = append(ids, *it.IngredientID)
		}
	}
	if len(ids) > 0 {
		err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": s.now(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update ingredient usage: %w", err)
		}
	}
	if templateID != nil {
		err := tx.Model(&models.DishTemplate{}).Where("id = ?", *templateID).
			Update("usage_count", gorm.Expr("usage_count + 1")).Error
		if err != nil {
			return fmt.Errorf("failed to update template usage: %w", err)
		}
	}
	return nil
}

// ListMeals returns the user's meals eaten on the UTC day of date, newest first.
func (s *MealService) ListMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error) {
	start := startOfDay(date)
	end := start.Add(24 * time.Hour)

	meals := []models.Meal{}
	err := s.withItems(s.db.WithContext(ctx)).
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, start, end).
		Order("eaten_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// DeleteMeal tombstones one of the user's meals.
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Meal{}, "id = ?", mealID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete meal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachPhoto records the object key of a meal photo.
func (s *MealService) AttachPhoto(ctx context.Context, userID, mealID uuid.UUID, key string) error {
	res := s.db.WithContext(ctx).Model(&models.Meal{}).
		Where("id = ? AND user_id = ?", mealID, userID).
		Update("photo_url", key)
	if res.Error != nil {
		return fmt.Errorf("failed to attach photo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DailySummary totals the user's meals for a UTC day.
func (s *MealService) DailySummary(ctx context.Context, userID uuid.UUID, date time.Time) (*DailySummary, error) {
	meals, err := s.ListMeals(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	target := defaultCalorieTarget
	var user models.User
	err = s.db.WithContext(ctx).Select("id", "daily_calorie_target").First(&user, "id = ?", userID).Error
	switch {
	case err == nil && user.DailyCalorieTarget > 0:
		target = user.DailyCalorieTarget
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	sum := &DailySummary{
		Date:           startOfDay(date).Format(dateLayout),
		CaloriesByType: map[string]float64{},
		MealCount:      len(meals),
		CalorieTarget:  target,
		Meals:          make([]MealSummary, 0, len(meals)),
	}
	for _, m := range meals {
		sum.Totals = sum.Totals.Add(Nutrition{
			Calories: m.TotalCalories,
			Protein:  m.TotalProtein,
			Fat:      m.TotalFat,
			Carbs:    m.TotalCarbs,
			Fiber:    m.TotalFiber,
		})
		sum.CaloriesByType[m.MealType] = Round2(sum.CaloriesByType[m.MealType] + m.TotalCalories)

		ms := MealSummary{MealID: m.ID, MealName: m.MealName, MealType: m.MealType, Calories: m.TotalCalories}
		for _, it := range m.Items {
			name := it.IngredientNameEnglish
			if name == "" {
				name = it.IngredientNameMyanmar
			}
			ms.Items = append(ms.Items, name)
		}
		sum.Meals = append(sum.Meals, ms)
	}
	sum.Totals = sum.Totals.Rounded()
	sum.RemainingCalories = Round2(float64(target) - sum.Totals.Calories)
	return sum, nil
}

// GetMeal returns one of the user's meals with its items.
func (s *MealService) GetMeal(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	return s.load(ctx, userID, mealID)
}

func (s *MealService) load(ctx context.Context, userID, mealID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	err := s.withItems(s.db.WithContext(ctx)).First(&meal, "id = ? AND user_id = ?", mealID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}
	return &meal, nil
}

func (s *MealService) withItems(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Items.Ingredient", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name_english", "name_myanmar", "category")
	})
}
