package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/middleware"
	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/types"
)

const dateLayout = "2006-01-02"

type createMealRequest struct {
	UserID      string                        `json:"user_id"`
	MealName    string                        `json:"meal_name"`
	MealType    string                        `json:"meal_type"`
	EatenAt     *time.Time                    `json:"eaten_at"`
	Notes       string                        `json:"notes"`
	TemplateID  *uuid.UUID                    `json:"template_id"`
	Ingredients []service.MealIngredientInput `json:"ingredients"`
}

type MealHandler struct {
	meals  service.IMealService
	ai     service.IAIService
	usage  service.IUsageTracker
	photos service.IPhotoStorage
	logger *zap.Logger
}

func NewMealHandler(meals service.IMealService, ai service.IAIService, usage service.IUsageTracker, photos service.IPhotoStorage, logger *zap.Logger) *MealHandler {
	return &MealHandler{meals: meals, ai: ai, usage: usage, photos: photos, logger: logger.Named("api.meals")}
}

// RegisterRoutes mounts meal routes. Reads and creation accept an explicit
// user_id; deletion and photos need a session.
func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup, optional, required gin.HandlerFunc) {
	router.POST("", optional, h.CreateMeal)
	router.GET("", optional, h.ListMeals)
	router.GET("/summary", optional, h.DailySummary)
	router.DELETE("/:id", required, h.DeleteMeal)
	router.POST("/:id/photo", required, h.PresignPhotoUpload)
	router.GET("/:id/photo", required, h.PhotoURL)
}

func (h *MealHandler) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, ok := h.resolveUser(c, req.UserID)
	if !ok {
		return
	}
	if userID == uuid.Nil || len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and ingredients are required"})
		return
	}

	in := service.CreateMealInput{
		UserID:     userID,
		MealName:   req.MealName,
		MealType:   req.MealType,
		Notes:      req.Notes,
		TemplateID: req.TemplateID,
		Items:      req.Ingredients,
	}
	if req.EatenAt != nil {
		in.EatenAt = *req.EatenAt
	}

	meal, err := h.meals.CreateMeal(service.WithUserID(c.Request.Context(), userID), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "meal": meal})
}

func (h *MealHandler) ListMeals(c *gin.Context) {
	userID, ok := h.resolveUser(c, c.Query("user_id"))
	if !ok {
		return
	}
	if userID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	meals, err := h.meals.ListMeals(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// DailySummary totals a day. With insights=true it adds model advice when the
// provider quota allows.
func (h *MealHandler) DailySummary(c *gin.Context) {
	userID, ok := h.resolveUser(c, c.Query("user_id"))
	if !ok {
		return
	}
	if userID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	ctx := service.WithUserID(c.Request.Context(), userID)
	summary, err := h.meals.DailySummary(ctx, userID, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if c.Query("insights") == "true" && summary.MealCount > 0 {
		if res := h.usage.CheckRateLimit(ctx); res.Allowed {
			summary.Insights = h.ai.GenerateMealInsights(ctx, summary, normalizeLang(c.Query("lang")))
		} else {
			h.logger.Info("Skipping insights, quota exhausted", zap.String("reason", res.Reason))
		}
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *MealHandler) DeleteMeal(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	mealID, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.meals.DeleteMeal(c.Request.Context(), userID, mealID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PresignPhotoUpload issues an upload URL and records the photo key on the meal.
func (h *MealHandler) PresignPhotoUpload(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	mealID, ok := parseID(c)
	if !ok {
		return
	}

	var req types.PhotoUploadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	upload, err := h.photos.PresignUpload(c.Request.Context(), userID, mealID, req.ContentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.meals.AttachPhoto(c.Request.Context(), userID, mealID, upload.PhotoKey); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// PhotoURL returns a short-lived view URL for the meal's photo.
func (h *MealHandler) PhotoURL(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	mealID, ok := parseID(c)
	if !ok {
		return
	}

	meal, err := h.meals.GetMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if meal.PhotoURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal has no photo"})
		return
	}

	url, err := h.photos.PresignView(c.Request.Context(), meal.PhotoURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// resolveUser picks the acting user from the session or the explicit id.
// A session that disagrees with the explicit id is rejected.
func (h *MealHandler) resolveUser(c *gin.Context, raw string) (uuid.UUID, bool) {
	sessionID, hasSession := middleware.UserID(c)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		if hasSession {
			return sessionID, true
		}
		return uuid.Nil, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return uuid.Nil, false
	}
	if hasSession && id != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "user_id does not match session"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), true
	}
	d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
