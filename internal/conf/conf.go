package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Database configuration
	DB DBConfig

	// Retry queue sweep configuration
	Sweep SweepConfig

	// Graph API configuration
	Graph GraphConfig

	// Debug mode
	Debug bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        int
	VerifyToken string // webhook verification token
}

// DBConfig contains database configuration
type DBConfig struct {
	Path string
}

// SweepConfig contains retry queue sweep configuration
type SweepConfig struct {
	Interval        time.Duration
	CleanupInterval time.Duration
}

// GraphConfig contains Graph API configuration
type GraphConfig struct {
	BaseURL string // empty means the real Graph API
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".pagereply", "pagereply.db")
	}

	// HTTP port
	port := 3000
	if val := os.Getenv("PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			port = parsed
		}
	}

	// Sweep interval
	sweepSeconds := 60
	if val := os.Getenv("SWEEP_INTERVAL_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			sweepSeconds = parsed
		}
	}

	// Cleanup interval
	cleanupHours := 6
	if val := os.Getenv("CLEANUP_INTERVAL_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cleanupHours = parsed
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:        port,
			VerifyToken: os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		},
		DB: DBConfig{
			Path: dbPath,
		},
		Sweep: SweepConfig{
			Interval:        time.Duration(sweepSeconds) * time.Second,
			CleanupInterval: time.Duration(cleanupHours) * time.Hour,
		},
		Graph: GraphConfig{
			BaseURL: os.Getenv("GRAPH_API_BASE_URL"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.VerifyToken == "" {
		return &ConfigError{Field: "WEBHOOK_VERIFY_TOKEN", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
