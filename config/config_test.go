package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			URL:       "https://api.themoviedb.org/3",
			APIKey:    "valid-api-key",
			Language:  "es-ES",
			Timeout:   10 * time.Second,
			RateBurst: 1,
		},
		Session: SessionConfig{DetailConcurrency: 4},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:        "missing url",
			mutate:      func(c *Config) { c.TMDB.URL = "" },
			errContains: "tmdb.url",
		},
		{
			name:        "missing api key",
			mutate:      func(c *Config) { c.TMDB.APIKey = "" },
			errContains: "tmdb.api_key",
		},
		{
			name:        "placeholder api key",
			mutate:      func(c *Config) { c.TMDB.APIKey = "your-api-key-here" },
			errContains: "tmdb.api_key",
		},
		{
			name:        "zero timeout",
			mutate:      func(c *Config) { c.TMDB.Timeout = 0 },
			errContains: "tmdb.timeout",
		},
		{
			name:        "negative rate limit",
			mutate:      func(c *Config) { c.TMDB.RateLimit = -1 },
			errContains: "tmdb.rate_limit",
		},
		{
			name:        "rate limit without burst",
			mutate:      func(c *Config) { c.TMDB.RateLimit = 5; c.TMDB.RateBurst = 0 },
			errContains: "tmdb.rate_burst",
		},
		{
			name:   "rate limit with burst",
			mutate: func(c *Config) { c.TMDB.RateLimit = 5; c.TMDB.RateBurst = 2 },
		},
		{
			name:        "zero detail concurrency",
			mutate:      func(c *Config) { c.Session.DetailConcurrency = 0 },
			errContains: "session.detail_concurrency",
		},
		{
			name:        "invalid level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			errContains: "invalid logging level",
		},
		{
			name:        "invalid format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			errContains: "invalid logging format",
		},
		{
			name:   "valid presets",
			mutate: func(c *Config) { c.Filter.Presets = map[string]string{"top": "Rating >= 8"} },
		},
		{
			name:        "invalid preset",
			mutate:      func(c *Config) { c.Filter.Presets = map[string]string{"broken": "Rating >="} },
			errContains: "invalid filter preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
tmdb:
  api_key: file-key
  language: en-US
  timeout: 3s
  rate_limit: 4
  rate_burst: 2
session:
  detail_concurrency: 8
filter:
  presets:
    top: "Rating >= 8"
logging:
  level: debug
  format: json
  color: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.URL)
	assert.Equal(t, "file-key", cfg.TMDB.APIKey)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.InDelta(t, 4.0, cfg.TMDB.RateLimit, 0.0001)
	assert.Equal(t, 2, cfg.TMDB.RateBurst)
	assert.Equal(t, 8, cfg.Session.DetailConcurrency)
	assert.Equal(t, map[string]string{"top": "Rating >= 8"}, cfg.Filter.Presets)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Logging.Color)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "tmdb:\n  api_key: file-key\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "es-ES", cfg.TMDB.Language)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Timeout)
	assert.Zero(t, cfg.TMDB.RateLimit)
	assert.Equal(t, 1, cfg.TMDB.RateBurst)
	assert.Equal(t, 4, cfg.Session.DetailConcurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, "tmdb:\n  api_key: file-key\n")
	t.Setenv("CINETRACK_TMDB_API_KEY", "env-key")
	t.Setenv("CINETRACK_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.TMDB.APIKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	t.Run("environment only", func(t *testing.T) {
		t.Setenv("CINETRACK_TMDB_API_KEY", "env-key")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.TMDB.APIKey)
	})

	t.Run("no api key", func(t *testing.T) {
		t.Setenv("CINETRACK_TMDB_API_KEY", "")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tmdb.api_key")
	})
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "tmdb: [unterminated"))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "tmdb:\n  api_key: k\nlogging:\n  level: loud\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
