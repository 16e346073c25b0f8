package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/myancal/backend/internal/service"
)

// respondError maps service errors to status codes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var writeErr *service.MealWriteError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, service.ErrSelfAdminChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify your own admin status"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
	case errors.As(err, &writeErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save meal", "message": writeErr.Err.Error()})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
	}
}
