package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the environment it was loaded in.
// Development and test runs only need values that cannot default sensibly.
func ValidateConfig(cfg *Config) error {
	var errs []error
	require := func(ok bool, field, msg string) {
		if !ok {
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"})
	}

	require(cfg.Limits.RequestsPerMinute > 0, "AI_REQUESTS_PER_MINUTE", "must be positive")
	require(cfg.Limits.RequestsPerDay > 0, "AI_REQUESTS_PER_DAY", "must be positive")
	require(cfg.Limits.EnrichConcurrency > 0, "ENRICH_CONCURRENCY", "must be positive")

	if cfg.Env.IsProduction() {
		require(cfg.Database.Driver == "postgres", "DB_DRIVER", "production requires postgres")
		require(cfg.Database.Password != "", "DB_PASSWORD", "required in production")
		require(cfg.Auth.JWTSecret != "", "JWT_SECRET", "required in production")
		require(cfg.Gemini.APIKey != "", "GEMINI_API_KEY", "required in production")
	}

	return errors.Join(errs...)
}
