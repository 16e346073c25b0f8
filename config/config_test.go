package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("APP_ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15, cfg.Limits.RequestsPerMinute)
	assert.Equal(t, 1500, cfg.Limits.RequestsPerDay)
	assert.Equal(t, "Free", cfg.Limits.Tier)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	secrets := map[string]string{
		"db_password":    "dbpass\n",
		"jwt_secret":     "jwt-from-file",
		"gemini_api_key": "gemini-from-file",
	}
	for name, value := range secrets {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0o600))
	}

	t.Setenv("CI", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "jwt-from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dbpass", cfg.Database.Password)
	assert.Equal(t, "jwt-from-env", cfg.Auth.JWTSecret, "environment wins over secret files")
	assert.Equal(t, "gemini-from-file", cfg.Gemini.APIKey)
}

func TestValidateConfig(t *testing.T) {
	t.Run("production requires secrets", func(t *testing.T) {
		cfg := &Config{Env: Production}
		cfg.Database.Driver = "postgres"
		cfg.Limits = LimitsConfig{RequestsPerMinute: 15, RequestsPerDay: 1500, EnrichConcurrency: 5}

		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &Config{Env: Development}
		cfg.Database.Driver = "mysql"
		cfg.Limits = LimitsConfig{RequestsPerMinute: 15, RequestsPerDay: 1500, EnrichConcurrency: 5}

		var verr ValidationError
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "DB_DRIVER", verr.Field)
	})
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("prod"))
	assert.Equal(t, Production, ParseEnvironment(" Production "))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.True(t, CI.IsTest())
}
