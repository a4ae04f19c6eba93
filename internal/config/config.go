package config

import (
	"os"
	"strconv"
	"time"

	"sheetstack/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Compile CompileConfig
	Session SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
}

// CompileConfig holds provenance-column settings for the accumulator
type CompileConfig struct {
	AddSourceColumn  bool
	SourceColumnName string
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  loadServerConfig(),
		Compile: loadCompileConfig(),
		Session: loadSessionConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func loadCompileConfig() CompileConfig {
	return CompileConfig{
		AddSourceColumn:  getEnvBoolOrDefault("ADD_SOURCE_COLUMN", true),
		SourceColumnName: getEnvOrDefault("SOURCE_COLUMN_NAME", "source_file"),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:             getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		CleanupInterval: getEnvDurationOrDefault("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("upload size limit must be positive")
	}
	if config.Compile.AddSourceColumn && config.Compile.SourceColumnName == "" {
		return errors.ConfigInvalid("source column name is required when the source column is enabled")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("session TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
