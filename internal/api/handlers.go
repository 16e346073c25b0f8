package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/database"
	"github.com/myancal/backend/internal/middleware"
	"github.com/myancal/backend/internal/service"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	DB          *gorm.DB
	Sessions    service.TokenValidator
	Usage       service.IUsageTracker
	AI          service.IAIService
	Enrichment  service.IEnrichmentService
	Ingredients service.IIngredientService
	Meals       service.IMealService
	Templates   service.ITemplateService
	Admins      service.IAdminService
	Photos      service.IPhotoStorage
	// ClientLimiter may be nil.
	ClientLimiter *middleware.RateLimiter
	Logger        *zap.Logger
}

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))

	optional := middleware.OptionalAuth(deps.Sessions)
	required := middleware.RequireAuth(deps.Sessions)

	aiGate := []gin.HandlerFunc{optional, middleware.AIQuota(deps.Usage)}
	if deps.ClientLimiter != nil {
		aiGate = append(aiGate, deps.ClientLimiter.Middleware())
	}

	api := router.Group("/api")

	NewAIHandler(deps.AI, deps.Enrichment, deps.Logger).
		RegisterRoutes(api.Group("/ai", aiGate...))

	NewTemplateHandler(deps.Templates, deps.Logger).
		RegisterRoutes(api.Group("/templates"), aiGate)

	NewMealHandler(deps.Meals, deps.AI, deps.Usage, deps.Photos, deps.Logger).
		RegisterRoutes(api.Group("/meals"), optional, required)

	NewSearchHandler(deps.Ingredients, deps.Logger).
		RegisterRoutes(api.Group("/search", optional, middleware.OptionalAdmin(deps.Admins)))

	NewAdminHandler(deps.Ingredients, deps.Admins, deps.Usage, deps.Logger).
		RegisterRoutes(api.Group("/admin", required, middleware.RequireAdmin(deps.Admins, deps.Logger)))
}
