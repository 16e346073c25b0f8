package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/myancal/backend/config"
	"github.com/myancal/backend/internal/api"
	"github.com/myancal/backend/internal/database"
	"github.com/myancal/backend/internal/middleware"
	"github.com/myancal/backend/internal/server"
	"github.com/myancal/backend/internal/service"
)

func main() {
	logger := newLogger()
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewRedisClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache and client limits", zap.Error(err))
			redisClient = nil
		}
	}

	usage := service.NewUsageTracker(db, service.RateLimits{
		RequestsPerMinute: cfg.Limits.RequestsPerMinute,
		RequestsPerDay:    cfg.Limits.RequestsPerDay,
		Tier:              cfg.Limits.Tier,
	}, cfg.Gemini.Model, logger)

	ai := service.NewGeminiService(
		service.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL),
		cfg.Gemini.Model, cfg.Gemini.Timeout, usage, logger)

	ingredients := service.NewIngredientService(db, logger)

	var cache service.EstimateCache
	var limiter *middleware.RateLimiter
	if redisClient != nil {
		cache = service.NewRedisEstimateCache(redisClient, cfg.Limits.EstimateCacheTTL, logger)
		limiter = middleware.NewExtractionRateLimiter(redisClient, cfg.Limits.ClientRequests, cfg.Limits.ClientWindow, logger)
	}

	var presigner service.Presigner
	if cfg.Storage.Enabled() {
		s3Client, err := config.NewS3Client(context.Background(), cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to configure photo storage", zap.Error(err))
		}
		presigner = s3.NewPresignClient(s3Client)
	}

	srv := server.New(cfg.Server, api.Dependencies{
		DB:            db,
		Sessions:      service.NewSessionService(cfg.Auth.JWTSecret),
		Usage:         usage,
		AI:            ai,
		Enrichment:    service.NewEnrichmentService(ingredients, ai, cache, cfg.Limits.EnrichConcurrency, logger),
		Ingredients:   ingredients,
		Meals:         service.NewMealService(db, logger),
		Templates:     service.NewTemplateService(db, ai, logger),
		Admins:        service.NewAdminService(db, logger),
		Photos:        service.NewPhotoStorage(presigner, cfg.Storage.Bucket, cfg.Storage.PresignTTL),
		ClientLimiter: limiter,
		Logger:        logger,
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if config.GetEnvironment().IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
