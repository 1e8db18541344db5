// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// An optional YAML file (CONFIG_FILE) can set the same values for
// deployments that prefer a file; environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"` // "debug", "release", or "test"

	// Database settings. Empty DatabaseURL disables extraction history.
	// MigrationsPath points at a directory of SQL migrations on disk.
	DatabaseURL    string `yaml:"database_url"`
	MigrationsPath string `yaml:"migrations_path"`

	// JWT Authentication. Empty JWTSecret leaves the API open.
	JWTSecret string `yaml:"jwt_secret"`

	// Rate limiting: requests per hour per client, 0 disables it
	RateLimit int `yaml:"rate_limit"`

	// Upload limits
	MaxFileSize int64 `yaml:"max_file_size"` // Bytes per uploaded PDF
	MaxFiles    int   `yaml:"max_files"`     // Documents per request

	// BatchConcurrency is how many documents of one request are
	// processed in parallel. 1 keeps processing sequential.
	BatchConcurrency int `yaml:"batch_concurrency"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// minReleaseSecretLen is the shortest JWT secret accepted in release mode.
const minReleaseSecretLen = 32

// defaults returns the configuration used when nothing else is set.
func defaults() *Config {
	return &Config{
		Port:             "8080",
		GinMode:          "debug",
		MigrationsPath:   "", // empty uses the migrations compiled into the binary
		RateLimit:        0,
		MaxFileSize:      50 << 20, // 50MB
		MaxFiles:         10,
		BatchConcurrency: 1,
		AllowedOrigins:   []string{"http://localhost:5173"}, // Vite dev server default
	}
}

// Load reads configuration: defaults, then CONFIG_FILE (if set), then
// environment variables.
//
// Go Pattern: Functions that can fail return (value, error). The caller
// MUST handle the error.
func Load() (*Config, error) {
	cfg := defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.RateLimit = getEnvInt("RATE_LIMIT", cfg.RateLimit)
	cfg.MaxFileSize = getEnvInt64("MAX_FILE_SIZE", cfg.MaxFileSize)
	cfg.MaxFiles = getEnvInt("MAX_FILES", cfg.MaxFiles)
	cfg.BatchConcurrency = getEnvInt("BATCH_CONCURRENCY", cfg.BatchConcurrency)
	if origins := getEnv("CORS_ORIGIN", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays values from a YAML file onto cfg.
func (cfg *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", cfg.MaxFileSize)
	}
	if cfg.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive, got %d", cfg.MaxFiles)
	}
	if cfg.BatchConcurrency <= 0 {
		return fmt.Errorf("batch concurrency must be positive, got %d", cfg.BatchConcurrency)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", cfg.RateLimit)
	}
	if len(cfg.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}

	// Security: a short JWT secret is brute-forceable, so release mode
	// refuses to start with one.
	if cfg.GinMode == "release" && cfg.JWTSecret != "" && len(cfg.JWTSecret) < minReleaseSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minReleaseSecretLen)
	}
	return nil
}

// MaxRequestSize is the body limit for one upload request: every file at
// full size plus room for the multipart framing and form fields.
func (cfg *Config) MaxRequestSize() int64 {
	return cfg.MaxFileSize*int64(cfg.MaxFiles) + 1<<20
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// getEnvInt64 is getEnvInt for byte sizes.
func getEnvInt64(key string, fallback int64) int64 {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fallback
	}
	return val
}

// splitList splits a comma separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
