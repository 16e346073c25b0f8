package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/types"
)

type TemplateHandler struct {
	templates service.ITemplateService
	logger    *zap.Logger
}

func NewTemplateHandler(templates service.ITemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger.Named("api.templates")}
}

// RegisterRoutes mounts the routes; matchGate guards the AI-backed match.
func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup, matchGate []gin.HandlerFunc) {
	router.GET("", h.ListTemplates)
	handlers := append(append([]gin.HandlerFunc{}, matchGate...), h.MatchTemplate)
	router.POST("/match", handlers...)
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	templates, err := h.templates.ListPublic(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) MatchTemplate(c *gin.Context) {
	var req types.MatchTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	match, err := h.templates.Match(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}
