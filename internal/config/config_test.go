package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Data:      DataConfig{BasePath: "/var/lib/rootmarks"},
		Lookup:    LookupConfig{MaxResults: 5},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())

	cfg.Logger.Level = "warning"
	assert.NoError(t, cfg.Validate())

	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_TokenKeyLength(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.TokenKey = make([]byte, 16)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	cfg.Auth.TokenKey = make([]byte, 32)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LookupMaxResults(t *testing.T) {
	cfg := validConfig()
	cfg.Lookup.MaxResults = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Lookup.CacheTTL)
	assert.Equal(t, 5, cfg.Lookup.MaxResults)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Nil(t, cfg.Auth.TokenKey)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{"-port", "9100", "-env-file", ""})
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nANALYSIS_MODEL=\"vision-small\"\nLOOKUP_CACHE_TTL=1h\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("DATA_PATH", dir)
	// Registered so t.Setenv restores them after loadEnvFile sets them.
	t.Setenv("ANALYSIS_MODEL", "")
	t.Setenv("LOOKUP_CACHE_TTL", "")

	cfg, err := Load([]string{"-env-file", envPath})
	require.NoError(t, err)
	assert.Equal(t, "vision-small", cfg.Analysis.Model)
	assert.Equal(t, time.Hour, cfg.Lookup.CacheTTL)
}

func TestLoad_TokenKeyHex(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("TOKEN_KEY", strings.Repeat("ab", 32))

	cfg, err := Load([]string{"-env-file", ""})
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.TokenKey, 32)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	_, err := Load([]string{"-read-timeout", "soon", "-env-file", ""})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/Rootmarks", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Rootmarks"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}

func TestDataConfigPaths(t *testing.T) {
	d := DataConfig{BasePath: "/data"}
	assert.Equal(t, "/data/rootmarks.db", d.DatabasePath())
	assert.Equal(t, "/data/cache/lookup", d.CachePath())
	assert.Equal(t, "/data/images", d.ImagesPath())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitList(""))
}
