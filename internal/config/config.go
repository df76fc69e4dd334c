package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"playerscout/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Client   ClientConfig
	Server   ServerConfig
	Backend  BackendConfig
	Database DatabaseConfig
}

// ClientConfig holds the search workflow settings
type ClientConfig struct {
	APIURL         string
	MinDisplay     time.Duration
	RevealDelay    time.Duration
	RequestTimeout time.Duration
}

// ServerConfig holds web UI server settings
type ServerConfig struct {
	Port       string
	GinMode    string
	SessionTTL time.Duration
}

// BackendConfig holds the development statistics service settings
type BackendConfig struct {
	Addr        string
	FixturesDir string
	CORSOrigins []string
	// Analyze fills in player_overview for records stored without one
	Analyze bool
}

// DatabaseConfig holds database connection settings. An empty URL selects the fixtures store.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Client:   loadClientConfig(),
		Server:   loadServerConfig(),
		Backend:  loadBackendConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:         getEnvOrDefault("SCOUT_API_URL", "http://localhost:8000"),
		MinDisplay:     getEnvDurationOrDefault("SCOUT_MIN_DISPLAY", 1500*time.Millisecond),
		RevealDelay:    getEnvDurationOrDefault("SCOUT_REVEAL_DELAY", 800*time.Millisecond),
		RequestTimeout: getEnvDurationOrDefault("SCOUT_REQUEST_TIMEOUT", 15*time.Second),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:       getEnvOrDefault("PORT", "8080"),
		GinMode:    getEnvOrDefault("GIN_MODE", "debug"),
		SessionTTL: getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
	}
}

func loadBackendConfig() BackendConfig {
	return BackendConfig{
		Addr:        getEnvOrDefault("BACKEND_ADDR", ":8000"),
		FixturesDir: getEnvOrDefault("FIXTURES_DIR", "./fixtures"),
		CORSOrigins: getEnvListOrDefault("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
		Analyze:     getEnvBoolOrDefault("BACKEND_ANALYZE", true),
	}
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.Client.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("SCOUT_API_URL must be an absolute URL")
	}
	if config.Client.MinDisplay < 0 || config.Client.RevealDelay < 0 {
		return errors.ConfigInvalid("display delays cannot be negative")
	}
	if config.Client.RequestTimeout <= 0 {
		return errors.ConfigInvalid("SCOUT_REQUEST_TIMEOUT must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Backend.Addr == "" {
		return errors.ConfigInvalid("BACKEND_ADDR is required")
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

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
