// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Directory   DirectoryConfig
	NATS        NATSConfig
	Explore     ExploreConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host                 string
	Port                 int
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	ShutdownTimeout      time.Duration
	CorsOrigins          []string
	CorsAllowCredentials bool
}

// DirectoryConfig holds the upstream location directory configuration
type DirectoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// ExploreConfig holds explore session engine configuration
type ExploreConfig struct {
	EventsTopic      string
	ViewportDebounce time.Duration
	SearchDebounce   time.Duration
	PageSize         int
	ViewportLimit    int
	SearchCacheSize  int
	SuggestionLimit  int
	SessionTTL       time.Duration
	MonitorInterval  time.Duration
	MaxSessions      int
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:                 getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                 getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:          getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:         getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout:      getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:          getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
			CorsAllowCredentials: getEnvAsBool("SERVER_CORS_ALLOW_CREDENTIALS", false),
		},
		Directory: DirectoryConfig{
			BaseURL: getEnv("DIRECTORY_BASE_URL", "http://localhost:8000/api/v1"),
			Timeout: getEnvAsDuration("DIRECTORY_TIMEOUT", 15*time.Second),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Explore: ExploreConfig{
			EventsTopic:      getEnv("EXPLORE_EVENTS_TOPIC", "explore"),
			ViewportDebounce: getEnvAsDuration("EXPLORE_VIEWPORT_DEBOUNCE", 200*time.Millisecond),
			SearchDebounce:   getEnvAsDuration("EXPLORE_SEARCH_DEBOUNCE", 350*time.Millisecond),
			PageSize:         getEnvAsInt("EXPLORE_PAGE_SIZE", 1000),
			ViewportLimit:    getEnvAsInt("EXPLORE_VIEWPORT_LIMIT", 500),
			SearchCacheSize:  getEnvAsInt("EXPLORE_SEARCH_CACHE_SIZE", 30),
			SuggestionLimit:  getEnvAsInt("EXPLORE_SUGGESTION_LIMIT", 8),
			SessionTTL:       getEnvAsDuration("EXPLORE_SESSION_TTL", 30*time.Minute),
			MonitorInterval:  getEnvAsDuration("EXPLORE_MONITOR_INTERVAL", 1*time.Minute),
			MaxSessions:      getEnvAsInt("EXPLORE_MAX_SESSIONS", 1024),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Directory.BaseURL == "" {
		return fmt.Errorf("directory base URL must be set")
	}

	if config.Directory.BaseURL == "http://localhost:8000/api/v1" && config.Environment != "development" {
		return fmt.Errorf("directory base URL must be set in non-development environments")
	}

	if config.Explore.PageSize < 1 {
		return fmt.Errorf("explore page size must be at least 1")
	}

	if config.Explore.ViewportLimit < 1 {
		return fmt.Errorf("explore viewport limit must be at least 1")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
