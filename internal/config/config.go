// Package config provides configuration management for the jr3d agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// Default values
	DefaultPort     = 8787
	DefaultLogLevel = "info"
	DefaultDataDir  = ".jr3d"

	// Environment variable names
	EnvPort     = "JR3D_PORT"
	EnvLogLevel = "JR3D_LOG_LEVEL"
	EnvDataDir  = "JR3D_DATA_DIR"

	// Export environment variable names
	EnvEffectsBaseURL   = "JR3D_EFFECTS_BASE_URL"
	EnvFetchTimeout     = "JR3D_FETCH_TIMEOUT"
	EnvFetchConcurrency = "JR3D_FETCH_CONCURRENCY"
	EnvCompressionLevel = "JR3D_COMPRESSION_LEVEL"
	EnvInboxDir         = "JR3D_INBOX_DIR"
	EnvAuthToken        = "JR3D_AUTH_TOKEN"

	// Database filename
	DBFilename = "jr3d.db"

	// Export defaults
	DefaultFetchTimeout     = 30 * time.Second
	DefaultFetchConcurrency = 4
	DefaultCompressionLevel = 6
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ArchivesDir() string
	EffectsBaseURL() string
	FetchTimeout() time.Duration
	FetchConcurrency() int
	CompressionLevel() int
	InboxDir() string
	AuthToken() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	PortValue     int    `env:"JR3D_PORT"`
	LogLevelValue string `env:"JR3D_LOG_LEVEL"`
	DataDirValue  string `env:"JR3D_DATA_DIR"`

	EffectsBaseURLValue   string        `env:"JR3D_EFFECTS_BASE_URL"`
	FetchTimeoutValue     time.Duration `env:"JR3D_FETCH_TIMEOUT"`
	FetchConcurrencyValue int           `env:"JR3D_FETCH_CONCURRENCY"`
	CompressionLevelValue *int          `env:"JR3D_COMPRESSION_LEVEL"`
	InboxDirValue         string        `env:"JR3D_INBOX_DIR"`
	AuthTokenValue        string        `env:"JR3D_AUTH_TOKEN"`
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.PortValue == 0 {
		cfg.PortValue = DefaultPort
	}
	if cfg.PortValue < 1 || cfg.PortValue > 65535 {
		return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
	}

	if cfg.LogLevelValue == "" {
		cfg.LogLevelValue = DefaultLogLevel
	}
	if cfg.DataDirValue == "" {
		cfg.DataDirValue = defaultDataDir()
	}

	if cfg.FetchTimeoutValue == 0 {
		cfg.FetchTimeoutValue = DefaultFetchTimeout
	}
	if cfg.FetchTimeoutValue < 0 {
		return nil, fmt.Errorf("invalid %s: timeout must be positive", EnvFetchTimeout)
	}

	if cfg.FetchConcurrencyValue == 0 {
		cfg.FetchConcurrencyValue = DefaultFetchConcurrency
	}
	if cfg.FetchConcurrencyValue < 1 {
		return nil, fmt.Errorf("invalid %s: concurrency must be at least 1", EnvFetchConcurrency)
	}

	if cfg.CompressionLevelValue == nil {
		level := DefaultCompressionLevel
		cfg.CompressionLevelValue = &level
	}
	if lvl := *cfg.CompressionLevelValue; lvl < 0 || lvl > 9 {
		return nil, fmt.Errorf("invalid %s: compression level must be 0-9, got %d", EnvCompressionLevel, lvl)
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.PortValue
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.LogLevelValue
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.DataDirValue
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.DataDirValue, DBFilename)
}

// ArchivesDir returns the directory exported archives are stored in
func (c *EnvConfig) ArchivesDir() string {
	return filepath.Join(c.DataDirValue, "archives")
}

// EffectsBaseURL returns the resource root public effects are fetched from.
// It is either an http(s) URL or a local directory.
func (c *EnvConfig) EffectsBaseURL() string {
	return c.EffectsBaseURLValue
}

func (c *EnvConfig) FetchTimeout() time.Duration {
	return c.FetchTimeoutValue
}

func (c *EnvConfig) FetchConcurrency() int {
	return c.FetchConcurrencyValue
}

// CompressionLevel returns the deflate level used for archives (0 = store)
func (c *EnvConfig) CompressionLevel() int {
	return *c.CompressionLevelValue
}

// InboxDir returns the directory watched for archives to import; empty disables it
func (c *EnvConfig) InboxDir() string {
	return c.InboxDirValue
}

func (c *EnvConfig) AuthToken() string {
	return c.AuthTokenValue
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
