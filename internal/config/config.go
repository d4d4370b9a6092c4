// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. The same configuration feeds both the
// pipeline binary and the dashboard server; each reads the fields it needs.
type Config struct {
	// UpstreamBaseURL is the table API host, without the /tables suffix.
	UpstreamBaseURL string
	APIKey          string
	LogLevel        string

	// TargetRecordCount caps how many executions a run emits; fetching stops
	// once the cap is reached or the upstream is exhausted.
	TargetRecordCount int
	PageSize          int

	// GroupBy selects the aggregation dimension: "none" or "customer".
	GroupBy string

	OutputDir string
	// OutputBasename overrides the timestamped artifact name; empty keeps the
	// per-run timestamp.
	OutputBasename string

	UpstreamTimeout  time.Duration
	UpstreamRetryMax int

	// FetchRateLimit paces upstream requests, in requests per second.
	FetchRateLimit float64
	// SourcesConcurrency caps concurrent source-table fetches.
	SourcesConcurrency int

	// Dashboard server settings.
	Port      string
	StaticDir string

	// Optional S3-compatible artifact store; uploads are skipped when the
	// endpoint or bucket is unset.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool
}

// S3Enabled reports whether exported artifacts should also be uploaded.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
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

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists.
// Returns default values for any missing environment variables.
// API_KEY is required and the function will return an error if it's not set.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY environment variable is required but not set")
	}

	targetRecordCount := getEnvAsInt("TARGET_RECORD_COUNT", 10000)
	if targetRecordCount <= 0 {
		return nil, errors.New("TARGET_RECORD_COUNT must be a positive integer")
	}

	pageSize := getEnvAsInt("PAGE_SIZE", 500)
	if pageSize <= 0 {
		return nil, errors.New("PAGE_SIZE must be a positive integer")
	}

	groupBy := getEnv("GROUP_BY", "none")
	if groupBy != "none" && groupBy != "customer" {
		return nil, errors.New("GROUP_BY must be either \"none\" or \"customer\"")
	}

	upstreamTimeoutSeconds := getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 120)
	if upstreamTimeoutSeconds <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT_SECONDS must be a positive integer")
	}

	upstreamRetryMax := getEnvAsInt("UPSTREAM_RETRY_MAX", 1)
	if upstreamRetryMax < 0 {
		return nil, errors.New("UPSTREAM_RETRY_MAX must not be negative")
	}

	fetchRateLimit := getEnvAsFloat("FETCH_RATE_LIMIT", 5)
	if fetchRateLimit <= 0 {
		return nil, errors.New("FETCH_RATE_LIMIT must be a positive number of requests per second")
	}

	sourcesConcurrency := getEnvAsInt("SOURCES_CONCURRENCY", 4)
	if sourcesConcurrency <= 0 {
		return nil, errors.New("SOURCES_CONCURRENCY must be a positive integer")
	}

	cfg := &Config{
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://chat-rank-api.amionai.com"),
		APIKey:          apiKey,
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		TargetRecordCount: targetRecordCount,
		PageSize:          pageSize,
		GroupBy:           groupBy,

		OutputDir:      getEnv("OUTPUT_DIR", "output"),
		OutputBasename: getEnv("OUTPUT_BASENAME", ""),

		UpstreamTimeout:  time.Duration(upstreamTimeoutSeconds) * time.Second,
		UpstreamRetryMax: upstreamRetryMax,

		FetchRateLimit:     fetchRateLimit,
		SourcesConcurrency: sourcesConcurrency,

		Port:      getEnv("PORT", "8001"),
		StaticDir: getEnv("STATIC_DIR", "."),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3UseSSL:    getEnvAsBool("S3_USE_SSL", true),
	}

	return cfg, nil
}
