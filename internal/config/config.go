// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ModelFormatJSON = "json"
	ModelFormatONNX = "onnx"
)

type Config struct {
	Port         string
	GinMode      string
	LogLevel     string
	DataDir      string
	MaxBodyBytes int64
	CORSOrigins  []string

	Model     ModelConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
}

// ModelConfig selects and locates the trained classifier artifact.
type ModelConfig struct {
	Format string
	Path   string
	// MetaPath is the JSON sidecar listing feature and class names for ONNX models.
	MetaPath string
	// OrtLibraryPath points at the onnxruntime shared library.
	OrtLibraryPath string
}

type DatabaseConfig struct {
	Enabled bool
	URL     string
	Migrate bool
	// Seed copies the CSV tables from DataDir into an empty database.
	Seed bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "release"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DataDir:      dataDir,
		MaxBodyBytes: int64(maxBody),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		Model: ModelConfig{
			Format:         strings.ToLower(getEnv("MODEL_FORMAT", ModelFormatJSON)),
			Path:           getEnv("MODEL_PATH", filepath.Join(dataDir, "model.json")),
			MetaPath:       getEnv("ONNX_MODEL_META", filepath.Join(dataDir, "model_meta.json")),
			OrtLibraryPath: os.Getenv("ORT_LIBRARY_PATH"),
		},
		Database: DatabaseConfig{
			Enabled: strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
			URL:     os.Getenv("DATABASE_URL"),
			Migrate: !strings.EqualFold(getEnv("DB_MIGRATE", "true"), "false"),
			Seed:    !strings.EqualFold(getEnv("DB_SEED", "true"), "false"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	switch c.Model.Format {
	case ModelFormatJSON, ModelFormatONNX:
	default:
		return fmt.Errorf("unsupported MODEL_FORMAT %q", c.Model.Format)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
