// Package config loads pipeline configuration from environment
// variables with sensible defaults for assessment data.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"surveypipe/internal/errors"
)

// Config holds all pipeline configuration
type Config struct {
	// Paths
	InputDir  string
	OutputDir string

	// Extraction
	CountryCode string
	KeyColumn   string
	ScanWindow  int
	LoadWindow  int

	// Cleaning thresholds
	SentinelCutoff    float64
	CorrelationCutoff float64
	UniformityCutoff  float64
	MissingnessCutoff float64

	// Transform
	ScoreColumn string

	// Run orchestration
	Workers int
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		InputDir:    getEnvOrDefault("PIPELINE_INPUT_DIR", "data"),
		OutputDir:   getEnvOrDefault("PIPELINE_OUTPUT_DIR", "out"),
		CountryCode: getEnvOrDefault("PIPELINE_COUNTRY", "KAZ"),
		KeyColumn:   getEnvOrDefault("PIPELINE_KEY_COLUMN", "CNT"),
		ScanWindow:  getEnvIntOrDefault("PIPELINE_SCAN_WINDOW", 100000),
		LoadWindow:  getEnvIntOrDefault("PIPELINE_LOAD_WINDOW", 10000),

		SentinelCutoff:    getEnvFloatOrDefault("PIPELINE_SENTINEL_CUTOFF", 9990.0),
		CorrelationCutoff: getEnvFloatOrDefault("PIPELINE_CORRELATION_CUTOFF", 0.9),
		UniformityCutoff:  getEnvFloatOrDefault("PIPELINE_UNIFORMITY_CUTOFF", 0.99),
		MissingnessCutoff: getEnvFloatOrDefault("PIPELINE_MISSINGNESS_CUTOFF", 0.5),

		ScoreColumn: getEnvOrDefault("PIPELINE_SCORE_COLUMN", ""),
		Workers:     getEnvIntOrDefault("PIPELINE_WORKERS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CountryCode) == "" {
		return errors.ConfigInvalid("country code must not be empty")
	}
	if strings.TrimSpace(c.KeyColumn) == "" {
		return errors.ConfigInvalid("key column must not be empty")
	}
	if c.ScanWindow <= 0 || c.LoadWindow <= 0 {
		return errors.ConfigInvalid("window sizes must be positive")
	}
	for name, v := range map[string]float64{
		"correlation": c.CorrelationCutoff,
		"uniformity":  c.UniformityCutoff,
		"missingness": c.MissingnessCutoff,
	} {
		if v < 0 || v > 1 {
			return errors.ConfigInvalid(fmt.Sprintf("%s cutoff must be in [0, 1], got %v", name, v))
		}
	}
	if c.Workers <= 0 {
		return errors.ConfigInvalid("worker count must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
