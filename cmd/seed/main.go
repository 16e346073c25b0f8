package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/myancal/backend/config"
	"github.com/myancal/backend/internal/database"
	"github.com/myancal/backend/internal/seed"
)

func main() {
	csvPath := flag.String("csv", "myanmar_food_database.csv", "path to the food database CSV")
	skipTemplates := flag.Bool("skip-templates", false, "do not create the default dish templates")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("Failed to open CSV", zap.String("path", *csvPath), zap.Error(err))
	}
	defer f.Close()

	if _, err := seed.ImportIngredients(ctx, db, f, logger); err != nil {
		logger.Fatal("Ingredient import failed", zap.Error(err))
	}

	if !*skipTemplates {
		n, err := seed.SeedTemplates(ctx, db, logger)
		if err != nil {
			logger.Fatal("Template seeding failed", zap.Error(err))
		}
		logger.Info("Dish templates seeded", zap.Int("created", n))
	}
}
