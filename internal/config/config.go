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
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Feed    FeedConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk storage locations.
// Database, search index, catalog cache and key file all live below BasePath.
type DataConfig struct {
	BasePath string
}

// DatabasePath returns the SQLite database file location.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "storyspine.db")
}

// SearchIndexPath returns the reader discovery index directory.
func (d DataConfig) SearchIndexPath() string {
	return filepath.Join(d.BasePath, "search")
}

// CatalogCachePath returns the catalog cache directory.
func (d DataConfig) CatalogCachePath() string {
	return filepath.Join(d.BasePath, "cache", "catalog")
}

// KeyPath returns the access token key file location.
func (d DataConfig) KeyPath() string {
	return filepath.Join(d.BasePath, "keys", "access.key")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins (default: *)
	AuthRPS      float64       // Per-IP request rate on /auth routes, 0 disables (default: 1)
	AuthBurst    int           // Per-IP burst on /auth routes (default: 5)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
}

// CatalogConfig holds external book catalog configuration.
type CatalogConfig struct {
	BaseURL    string
	APIKey     string        // Optional; unauthenticated requests share a lower quota
	Timeout    time.Duration // Bounded wait per catalog call (default: 8s)
	MaxResults int           // Search result cap (default: 20)
	RPS        float64       // Outbound requests per second (default: 5)
	Burst      int           // Outbound burst (default: 10)
	CacheTTL   time.Duration // Volume cache lifetime (default: 24h); 0 disables the cache
}

// FeedConfig holds feed composition settings.
type FeedConfig struct {
	PageSize       int           // Items per feed page (default: 20)
	TrendingWindow time.Duration // Activity window for trending (default: 336h)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for database, index and cache")

	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma separated allowed origins (default: *)")

	catalogURL := flag.String("catalog-url", "", "Book catalog base URL")
	catalogKey := flag.String("catalog-api-key", "", "Book catalog API key")
	catalogTimeout := flag.String("catalog-timeout", "", "Book catalog request timeout (default: 8s)")
	catalogCacheTTL := flag.String("catalog-cache-ttl", "", "Catalog cache lifetime, 0 disables (default: 24h)")

	feedPageSize := flag.String("feed-page-size", "", "Feed items per page (default: 20)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	return build(settings{
		env:                  *env,
		logLevel:             *logLevel,
		dataPath:             *dataPath,
		accessTokenDuration:  *accessTokenDuration,
		refreshTokenDuration: *refreshTokenDuration,
		serverPort:           *serverPort,
		readTimeout:          *readTimeout,
		writeTimeout:         *writeTimeout,
		idleTimeout:          *idleTimeout,
		corsOrigins:          *corsOrigins,
		catalogURL:           *catalogURL,
		catalogKey:           *catalogKey,
		catalogTimeout:       *catalogTimeout,
		catalogCacheTTL:      *catalogCacheTTL,
		feedPageSize:         *feedPageSize,
	})
}

// settings carries raw flag values into build so tests can skip flag parsing.
type settings struct {
	env                  string
	logLevel             string
	dataPath             string
	accessTokenDuration  string
	refreshTokenDuration string
	serverPort           string
	readTimeout          string
	writeTimeout         string
	idleTimeout          string
	corsOrigins          string
	catalogURL           string
	catalogKey           string
	catalogTimeout       string
	catalogCacheTTL      string
	feedPageSize         string
}

func build(s settings) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(s.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(s.logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(s.dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(s.serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(s.corsOrigins, "CORS_ORIGINS", "*")),
			AuthRPS:     getFloatConfigValue("", "AUTH_RATE_LIMIT_RPS", 1),
			AuthBurst:   getIntConfigValue("", "AUTH_RATE_LIMIT_BURST", 5),
		},
		Catalog: CatalogConfig{
			BaseURL:    getConfigValue(s.catalogURL, "CATALOG_BASE_URL", "https://www.googleapis.com/books/v1"),
			APIKey:     getConfigValue(s.catalogKey, "CATALOG_API_KEY", ""),
			MaxResults: getIntConfigValue("", "CATALOG_MAX_RESULTS", 20),
			RPS:        getFloatConfigValue("", "CATALOG_RPS", 5),
			Burst:      getIntConfigValue("", "CATALOG_BURST", 10),
		},
		Feed: FeedConfig{
			PageSize: getIntConfigValue(s.feedPageSize, "FEED_PAGE_SIZE", 20),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		label     string
		dst       *time.Duration
	}{
		{s.accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", "access token duration", &cfg.Auth.AccessTokenDuration},
		{s.refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", "refresh token duration", &cfg.Auth.RefreshTokenDuration},
		{s.readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{s.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout", &cfg.Server.WriteTimeout},
		{s.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
		{s.catalogTimeout, "CATALOG_TIMEOUT", "8s", "catalog timeout", &cfg.Catalog.Timeout},
		{s.catalogCacheTTL, "CATALOG_CACHE_TTL", "24h", "catalog cache ttl", &cfg.Catalog.CacheTTL},
		{"", "FEED_TRENDING_WINDOW", "336h", "trending window", &cfg.Feed.TrendingWindow},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.label, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

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

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Server.AuthRPS < 0 {
		return errors.New("auth rate limit cannot be negative")
	}
	if c.Server.AuthRPS > 0 && c.Server.AuthBurst < 1 {
		return errors.New("auth rate limit burst must be at least 1")
	}

	if c.Catalog.BaseURL == "" {
		return errors.New("catalog base URL is required")
	}
	if c.Catalog.Timeout <= 0 {
		return errors.New("catalog timeout must be positive")
	}
	if c.Catalog.MaxResults < 1 || c.Catalog.MaxResults > 40 {
		return fmt.Errorf("catalog max results must be between 1 and 40, got %d", c.Catalog.MaxResults)
	}
	if c.Catalog.RPS <= 0 || c.Catalog.Burst < 1 {
		return errors.New("catalog rate limit must be positive")
	}
	if c.Catalog.CacheTTL < 0 {
		return errors.New("catalog cache ttl cannot be negative")
	}

	if c.Feed.PageSize < 1 || c.Feed.PageSize > 100 {
		return fmt.Errorf("feed page size must be between 1 and 100, got %d", c.Feed.PageSize)
	}
	if c.Feed.TrendingWindow <= 0 {
		return errors.New("trending window must be positive")
	}

	// Auth key is set by auth.LoadOrGenerateKey in main.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/StorySpine/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "StorySpine", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
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

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
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

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
