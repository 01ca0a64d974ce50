package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	TrainingLog TrainingLogConfig
	Engine      EngineConfig
	OTEL        OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// TrainingLogConfig holds the remote training-log service configuration
type TrainingLogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EngineConfig holds session engine tunables
type EngineConfig struct {
	BodyWeight    float64       // profile body weight, 0 means use the default
	EditDebounce  time.Duration // delay before a field edit is synced
	IdleThreshold time.Duration // identity rotation gap
	SnapshotTTL   time.Duration // persisted session staleness cutoff
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		TrainingLog: TrainingLogConfig{
			BaseURL: getEnv("TRAINING_LOG_URL", ""),
			Timeout: getEnvAsDuration("TRAINING_LOG_TIMEOUT", 30*time.Second),
		},
		Engine: EngineConfig{
			BodyWeight:    getEnvAsFloat("BODY_WEIGHT_KG", 0),
			EditDebounce:  getEnvAsDuration("EDIT_DEBOUNCE", 1500*time.Millisecond),
			IdleThreshold: getEnvAsDuration("SESSION_IDLE_THRESHOLD", 4*time.Hour),
			SnapshotTTL:   getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "liftlog"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.TrainingLog.BaseURL == "" {
		return fmt.Errorf("TRAINING_LOG_URL is required")
	}
	if c.Engine.EditDebounce <= 0 {
		return fmt.Errorf("EDIT_DEBOUNCE must be positive")
	}
	if c.Engine.IdleThreshold <= 0 {
		return fmt.Errorf("SESSION_IDLE_THRESHOLD must be positive")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is true")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
