// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Upstream UpstreamConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	OTP      OTPConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins
}

// UpstreamConfig holds configuration for the upstream SproutMe API.
type UpstreamConfig struct {
	// BaseURL is the root of the upstream API, e.g. https://api.sproutme.app
	BaseURL string
	// Timeout applies to every upstream request.
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls.
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig holds local storage configuration.
type StorageConfig struct {
	// BasePath is the root data directory. Badger, the search index, and
	// the audit database all live under it.
	BasePath   string
	BadgerPath string
	SearchPath string
	AuditPath  string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for session tokens (32 bytes)
	SessionTokenKey []byte
	// SessionDuration is the session token lifetime, e.g. 720h (30 days).
	SessionDuration time.Duration
}

// CatalogConfig holds event catalog configuration.
type CatalogConfig struct {
	// RefreshInterval between upstream catalog fetches (default: 15m).
	RefreshInterval time.Duration
	// SeedFile is an optional local JSON file of events. When set it is
	// watched and overrides the upstream catalog, for development.
	SeedFile string
	// PageSize is the number of events per page (default: 50).
	PageSize int
}

// OTPConfig holds verification code delivery limits.
type OTPConfig struct {
	// SendsPerMinute caps code sends per phone number (default: 3).
	SendsPerMinute float64
	Burst          int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for local storage")
	serverName := flag.String("server-name", "", "Name for the server")

	// Upstream flags
	upstreamURL := flag.String("upstream-url", "", "Base URL of the upstream SproutMe API")
	upstreamTimeout := flag.String("upstream-timeout", "", "Upstream request timeout (default: 30s)")

	// Auth flags
	sessionDuration := flag.String("session-duration", "", "Session token lifetime (e.g., 720h)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed browser origins")

	// Catalog flags
	catalogRefresh := flag.String("catalog-refresh", "", "Catalog refresh interval (default: 15m)")
	catalogSeedFile := flag.String("catalog-seed-file", "", "Local JSON event file overriding the upstream catalog")
	pageSize := flag.String("page-size", "", "Events per page (default: 50)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:        getConfigValue(*serverName, "SERVER_NAME", "SproutMe Server"),
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Upstream: UpstreamConfig{
			BaseURL:           getConfigValue(*upstreamURL, "UPSTREAM_URL", ""),
			RequestsPerSecond: getFloatConfigValue("", "UPSTREAM_RPS", 5),
			Burst:             getIntConfigValue("", "UPSTREAM_BURST", 5),
		},
		Storage: StorageConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Auth: AuthConfig{
			SessionTokenKey: nil, // Set by auth.LoadOrGenerateKey in main.
		},
		Catalog: CatalogConfig{
			SeedFile: getConfigValue(*catalogSeedFile, "CATALOG_SEED_FILE", ""),
			PageSize: getIntConfigValue(*pageSize, "PAGE_SIZE", 50),
		},
		OTP: OTPConfig{
			SendsPerMinute: getFloatConfigValue("", "OTP_SENDS_PER_MINUTE", 3),
			Burst:          getIntConfigValue("", "OTP_BURST", 2),
		},
	}

	// Parse durations.
	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
		what      string
	}{
		{*sessionDuration, "SESSION_DURATION", "720h", &cfg.Auth.SessionDuration, "session duration"},
		{*upstreamTimeout, "UPSTREAM_TIMEOUT", "30s", &cfg.Upstream.Timeout, "upstream timeout"},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout, "read timeout"},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout, "write timeout"},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout, "idle timeout"},
		{*catalogRefresh, "CATALOG_REFRESH", "15m", &cfg.Catalog.RefreshInterval, "catalog refresh interval"},
	}
	for _, d := range durations {
		str := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(str)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.what, str, err)
		}
		*d.dst = parsed
	}

	// Expand and derive storage paths.
	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Expand seed file path if set.
	if cfg.Catalog.SeedFile != "" {
		expanded, err := expandPath(cfg.Catalog.SeedFile, "")
		if err != nil {
			return nil, fmt.Errorf("invalid seed file path: %w", err)
		}
		cfg.Catalog.SeedFile = expanded
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	// UpstreamURL can be empty only when a seed file provides the catalog.
	if c.Upstream.BaseURL == "" && c.Catalog.SeedFile == "" {
		return errors.New("UPSTREAM_URL is required unless a catalog seed file is configured")
	}
	if c.Upstream.BaseURL != "" && !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("invalid upstream URL: %s", c.Upstream.BaseURL)
	}

	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", c.Catalog.PageSize)
	}

	// Auth durations are validated during LoadConfig parsing.
	// Auth key is set by auth.LoadOrGenerateKey in main.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths expands the base path and derives the per-store paths.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "SproutMe", "data")

	expanded, err := expandPath(c.Storage.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.BasePath = expanded
	c.Storage.BadgerPath = filepath.Join(expanded, "badger")
	c.Storage.SearchPath = filepath.Join(expanded, "search")
	c.Storage.AuditPath = filepath.Join(expanded, "audit.db")
	return nil
}

// splitList splits a comma-separated value, trimming whitespace.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
