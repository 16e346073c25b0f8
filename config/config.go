package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultSecretsDir = "/run/secrets"

// Config holds all configuration for the application
type Config struct {
	Env Environment

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	Limits   LimitsConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"SERVER_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver   string `env:"DB_DRIVER" env-default:"postgres"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" env-default:"myancal"`
	SSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
	// Path is the sqlite file; ":memory:" is allowed.
	Path string `env:"DB_PATH" env-default:"myancal.db"`
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether any Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

type AuthConfig struct {
	// JWTSecret verifies HS256 session tokens from the session issuer.
	JWTSecret string `env:"JWT_SECRET"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	BaseURL string        `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model   string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT" env-default:"30s"`
}

type LimitsConfig struct {
	RequestsPerMinute int    `env:"AI_REQUESTS_PER_MINUTE" env-default:"15"`
	RequestsPerDay    int    `env:"AI_REQUESTS_PER_DAY" env-default:"1500"`
	Tier              string `env:"AI_TIER" env-default:"Free"`

	// Per-client extraction limit enforced in Redis.
	ClientRequests int           `env:"CLIENT_EXTRACT_LIMIT" env-default:"30"`
	ClientWindow   time.Duration `env:"CLIENT_EXTRACT_WINDOW" env-default:"1h"`

	EnrichConcurrency int           `env:"ENRICH_CONCURRENCY" env-default:"5"`
	EstimateCacheTTL  time.Duration `env:"ESTIMATE_CACHE_TTL" env-default:"168h"`
}

type StorageConfig struct {
	Bucket     string        `env:"S3_BUCKET_NAME"`
	Region     string        `env:"AWS_REGION" env-default:"ap-southeast-1"`
	Endpoint   string        `env:"S3_ENDPOINT"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" env-default:"15m"`
}

// Enabled reports whether meal photo storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// LoadConfig reads the environment, fills empty secrets from the secrets
// directory and validates the result for the current environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.Env = GetEnvironment()

	loadSecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadSecrets reads Docker secrets for any secret the environment left empty.
func loadSecrets(cfg *Config) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = readSecret(name)
		}
	}
	fill(&cfg.Database.Password, "db_password")
	fill(&cfg.Auth.JWTSecret, "jwt_secret")
	fill(&cfg.Gemini.APIKey, "gemini_api_key")
	fill(&cfg.Redis.Password, "redis_password")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
