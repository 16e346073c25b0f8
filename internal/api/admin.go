package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/middleware"
	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/types"
)

const usageHistoryDays = 30

type AdminHandler struct {
	ingredients service.IIngredientService
	admins      service.IAdminService
	usage       service.IUsageTracker
	logger      *zap.Logger
}

func NewAdminHandler(ingredients service.IIngredientService, admins service.IAdminService, usage service.IUsageTracker, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		ingredients: ingredients,
		admins:      admins,
		usage:       usage,
		logger:      logger.Named("api.admin"),
	}
}

// RegisterRoutes expects RequireAdmin on the group.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ingredients", h.ListIngredients)
	router.POST("/ingredients", h.CreateIngredient)
	router.PATCH("/ingredients/:id/verify", h.VerifyIngredient)
	router.POST("/ingredients/:id/cooking-methods", h.AddCookingMethod)
	router.DELETE("/ingredients/:id", h.DeleteIngredient)
	router.GET("/users", h.ListUsers)
	router.PATCH("/users/:id/admin", h.SetAdmin)
	router.GET("/stats", h.Stats)
	router.GET("/usage", h.Usage)
}

func (h *AdminHandler) admin(c *gin.Context) (service.AuthorizedAdmin, bool) {
	admin, ok := middleware.Admin(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden - Admin access required"})
	}
	return admin, ok
}

func (h *AdminHandler) ListIngredients(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	ingredients, err := h.ingredients.AdminList(c.Request.Context(), admin, c.Query("filter"), c.Query("search"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *AdminHandler) CreateIngredient(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var in service.IngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ingredient, err := h.ingredients.Create(c.Request.Context(), admin, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ingredient": ingredient})
}

func (h *AdminHandler) VerifyIngredient(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.VerifyIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verified is required"})
		return
	}
	ingredient, err := h.ingredients.SetVerified(c.Request.Context(), admin, id, *req.Verified)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

func (h *AdminHandler) AddCookingMethod(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in service.CookingMethodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	method, err := h.ingredients.AddCookingMethod(c.Request.Context(), admin, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cooking_method": method})
}

func (h *AdminHandler) DeleteIngredient(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ingredients.Delete(c.Request.Context(), admin, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	users, err := h.admins.ListUsers(c.Request.Context(), admin, c.Query("search"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) SetAdmin(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_admin is required"})
		return
	}
	user, err := h.admins.SetAdmin(c.Request.Context(), admin, id, *req.IsAdmin)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	stats, err := h.admins.Stats(c.Request.Context(), admin)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Usage reports provider quota consumption with warning levels.
func (h *AdminHandler) Usage(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	stats, err := h.usage.UsageStats(c.Request.Context(), usageHistoryDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	limits := h.usage.Limits()
	rpm := service.UsagePercentage(stats.Current.RequestsThisMinute, int64(limits.RequestsPerMinute))
	rpd := service.UsagePercentage(stats.Current.RequestsToday, int64(limits.RequestsPerDay))

	c.JSON(http.StatusOK, gin.H{
		"current":     stats.Current,
		"percentages": gin.H{"rpm": rpm, "rpd": rpd},
		"warning_levels": gin.H{
			"rpm": service.WarningLevelFor(rpm),
			"rpd": service.WarningLevelFor(rpd),
		},
		"daily":  stats.Daily,
		"limits": limits,
	})
}
