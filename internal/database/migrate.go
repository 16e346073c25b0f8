package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

// RunMigrations creates or updates the schema for every model.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running auto-migration", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
