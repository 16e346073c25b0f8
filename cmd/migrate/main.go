package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/config"
	"github.com/myancal/backend/internal/database"
	"github.com/myancal/backend/internal/models"
)

func main() {
	status := flag.Bool("status", false, "Report which tables exist without migrating")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if *status {
		missing := 0
		for _, m := range models.All() {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(m); err != nil {
				logger.Fatal("Failed to resolve table", zap.Error(err))
			}
			table := stmt.Schema.Table
			exists := db.Migrator().HasTable(m)
			if !exists {
				missing++
			}
			fmt.Printf("%-20s %v\n", table, exists)
		}
		if missing > 0 {
			os.Exit(2)
		}
		return
	}

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("All migrations applied successfully")
}
