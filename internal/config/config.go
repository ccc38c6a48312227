// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// EngineName keys persisted signals; change it when the rule set changes
	// so historical records stay comparable.
	EngineName string
	// SignalDB is the SQLite signal log path. ":memory:" is valid.
	SignalDB string
	// ProfileFile is an optional YAML file of extra symbol overrides.
	ProfileFile string
	// BarsDir is the directory of per-symbol CSV bar files.
	BarsDir  string
	LogLevel string
	DevMode  bool
}

// Load reads configuration from environment variables (.env supported).
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	signalDB := getEnv("SIGNAL_DB", "signals.db")
	if signalDB != ":memory:" {
		abs, err := filepath.Abs(signalDB)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve signal db path: %w", err)
		}
		signalDB = abs
	}

	cfg := &Config{
		EngineName:  getEnv("ENGINE_NAME", "signalcore"),
		SignalDB:    signalDB,
		ProfileFile: getEnv("PROFILE_FILE", ""),
		BarsDir:     getEnv("BARS_DIR", "bars"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
