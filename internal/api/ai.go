package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/types"
)

const minTextRunes = 2

type AIHandler struct {
	ai     service.IAIService
	enrich service.IEnrichmentService
	logger *zap.Logger
}

func NewAIHandler(ai service.IAIService, enrich service.IEnrichmentService, logger *zap.Logger) *AIHandler {
	return &AIHandler{ai: ai, enrich: enrich, logger: logger.Named("api.ai")}
}

func (h *AIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/extract-ingredients", h.ExtractIngredients)
}

// ExtractIngredients reads a dish description and resolves each ingredient
// against the catalog, estimating the ones it cannot find.
func (h *AIHandler) ExtractIngredients(c *gin.Context) {
	var req types.ExtractIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}
	if utf8.RuneCountInString(text) < minTextRunes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is too short"})
		return
	}

	ext, err := h.ai.ExtractIngredients(c.Request.Context(), text, normalizeLang(req.Language))
	if err != nil {
		h.logger.Error("Ingredient extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to extract ingredients",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.enrich.Enrich(c.Request.Context(), ext))
}

func normalizeLang(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "en") {
		return "en"
	}
	return "mm"
}
