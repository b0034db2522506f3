// Package config loads Rootmarks configuration from command-line flags,
// environment variables, and an optional .env file.
package config

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rootmarks/rootmarks-server/internal/logger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Lookup    LookupConfig
	Analysis  AnalysisConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates everything Rootmarks writes to disk.
type DataConfig struct {
	BasePath string
}

// DatabasePath is the SQLite database file.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "rootmarks.db") }

// CachePath is the badger directory for lookup results.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache", "lookup") }

// ImagesPath is the root for stored plant photos.
func (d DataConfig) ImagesPath() string { return filepath.Join(d.BasePath, "images") }

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// AuthConfig describes how bearer tokens from the identity provider are verified.
type AuthConfig struct {
	// PASETO v4 local key shared with the identity provider (32 bytes).
	TokenKey []byte
	Issuer   string
	Audience string
}

// LookupConfig configures the Google Books lookup.
type LookupConfig struct {
	Endpoint   string // optional override, used by tests and proxies
	APIKey     string
	MaxResults int
	CacheTTL   time.Duration
	Timeout    time.Duration
}

// AnalysisConfig configures the plant image analyzer.
type AnalysisConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// CatalogConfig points at an optional badge catalog override file.
type CatalogConfig struct {
	Path  string
	Watch bool
}

// RateLimitConfig bounds per-user request rates on expensive endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("rootmarks", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for the database, caches and images")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")

	tokenKey := fs.String("token-key", "", "Hex-encoded 32-byte PASETO v4 local key")
	tokenIssuer := fs.String("token-issuer", "", "Expected token issuer")
	tokenAudience := fs.String("token-audience", "", "Expected token audience")

	booksKey := fs.String("google-books-key", "", "Google Books API key (optional)")
	lookupTTL := fs.String("lookup-cache-ttl", "", "Lookup cache TTL (default: 24h)")

	analysisURL := fs.String("analysis-base-url", "", "OpenAI-compatible base URL")
	analysisKey := fs.String("analysis-api-key", "", "Image analysis API key")
	analysisModel := fs.String("analysis-model", "", "Vision model name")

	catalogPath := fs.String("badge-catalog", "", "Path to a YAML badge catalog override")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env is normal.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*origins, "ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			Issuer:   getConfigValue(*tokenIssuer, "TOKEN_ISSUER", "rootmarks-identity"),
			Audience: getConfigValue(*tokenAudience, "TOKEN_AUDIENCE", "rootmarks-api"),
		},
		Lookup: LookupConfig{
			Endpoint:   getConfigValue("", "GOOGLE_BOOKS_ENDPOINT", ""),
			APIKey:     getConfigValue(*booksKey, "GOOGLE_BOOKS_API_KEY", ""),
			MaxResults: getIntConfigValue("", "LOOKUP_MAX_RESULTS", 5),
		},
		Analysis: AnalysisConfig{
			BaseURL: getConfigValue(*analysisURL, "ANALYSIS_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getConfigValue(*analysisKey, "ANALYSIS_API_KEY", ""),
			Model:   getConfigValue(*analysisModel, "ANALYSIS_MODEL", "gpt-4o-mini"),
		},
		Catalog: CatalogConfig{
			Path:  getConfigValue(*catalogPath, "BADGE_CATALOG_PATH", ""),
			Watch: getBoolConfigValue("", "BADGE_CATALOG_WATCH", true),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloatConfigValue("", "RATE_LIMIT_RPS", 1),
			Burst:             getIntConfigValue("", "RATE_LIMIT_BURST", 5),
		},
	}

	durations := []struct {
		flagValue, envKey, fallback string
		dest                        *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*lookupTTL, "LOOKUP_CACHE_TTL", "24h", &cfg.Lookup.CacheTTL},
		{"", "LOOKUP_TIMEOUT", "10s", &cfg.Lookup.Timeout},
		{"", "ANALYSIS_TIMEOUT", "60s", &cfg.Analysis.Timeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dest = parsed
	}

	if keyHex := getConfigValue(*tokenKey, "TOKEN_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid token key: %w", err)
		}
		cfg.Auth.TokenKey = key
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	if !logger.ValidLevel(c.Logger.Level) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	// An absent key is filled in by auth.ResolveKey; a present one must be usable.
	if c.Auth.TokenKey != nil && len(c.Auth.TokenKey) != 32 {
		return fmt.Errorf("token key must be 32 bytes, got %d", len(c.Auth.TokenKey))
	}

	if c.Lookup.MaxResults < 1 || c.Lookup.MaxResults > 40 {
		return fmt.Errorf("lookup max results must be between 1 and 40, got %d", c.Lookup.MaxResults)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit must allow at least one request")
	}

	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "Rootmarks"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Data.BasePath = base

	if c.Catalog.Path != "" {
		catalog, err := expandPath(c.Catalog.Path, "")
		if err != nil {
			return fmt.Errorf("invalid badge catalog path: %w", err)
		}
		c.Catalog.Path = catalog
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
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

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	raw = strings.ToLower(raw)
	return raw == "true" || raw == "1" || raw == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file without overriding
// variables already present in the environment.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- operator-provided path
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

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
