package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/middleware"
	"github.com/myancal/backend/internal/service"
)

type SearchHandler struct {
	ingredients service.IIngredientService
	logger      *zap.Logger
}

func NewSearchHandler(ingredients service.IIngredientService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{ingredients: ingredients, logger: logger.Named("api.search")}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ingredients", h.SearchIngredients)
}

// SearchIngredients searches the catalog. Admins also see unverified rows.
func (h *SearchHandler) SearchIngredients(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	_, isAdmin := middleware.Admin(c)

	results, err := h.ingredients.Search(c.Request.Context(), service.SearchQuery{
		Term:              c.Query("q"),
		Lang:              c.Query("lang"),
		Limit:             limit,
		IncludeUnverified: isAdmin,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
