package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.Production())
	assert.Equal(t, BackendMemory, cfg.RateLimit.Backend)
	assert.Equal(t, 5, cfg.RateLimit.FeedbackLimit)
	assert.Equal(t, 30, cfg.RateLimit.CountLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Minute, cfg.CountCacheTTL)
	assert.Equal(t, 3.0, cfg.Notion.RPS)
	assert.False(t, cfg.Notion.FeedbackConfigured())
	assert.False(t, cfg.NeedsRedis())
	assert.Equal(t, "minute", cfg.RateLimit.StatsBucket)
	assert.False(t, cfg.RateLimit.StatsTrackKeys)
}

func TestParse_ReadsEnvironment(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"APP_ENV":                     "Production",
		"CORS_ALLOW_ORIGINS":          "https://a.example,https://b.example",
		"NOTION_API_KEY":              "secret",
		"NOTION_FEEDBACK_DATABASE_ID": "fb",
		"RATE_LIMIT_BACKEND":          "redis",
		"REDIS_ADDR":                  "localhost:6379",
		"RATE_LIMIT_WINDOW":           "30s",
		"RATE_STATS_BUCKET":           "none",
		"RATE_STATS_TRACK_KEYS":       "true",
	}})
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.Notion.FeedbackConfigured())
	assert.False(t, cfg.Notion.WaitlistConfigured())
	assert.True(t, cfg.NeedsRedis())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "none", cfg.RateLimit.StatsBucket)
	assert.True(t, cfg.RateLimit.StatsTrackKeys)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":    {"RATE_LIMIT_BACKEND": "memcached"},
		"redis without addr": {"RATE_LIMIT_BACKEND": "redis"},
		"stats without addr": {"RATE_STATS_ENABLED": "true"},
		"zero window":        {"RATE_LIMIT_WINDOW": "0s"},
		"negative limit":     {"FEEDBACK_RATE_LIMIT": "-1"},
		"bad duration":       {"COUNT_CACHE_TTL": "soon"},
		"prod without cors":  {"APP_ENV": "production"},
		"prod blank cors":    {"APP_ENV": "production", "CORS_ALLOW_ORIGINS": " , "},
		"bad stats bucket":   {"RATE_STATS_BUCKET": "hour"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse(env.Options{Environment: environ})
			assert.Error(t, err)
		})
	}
}

func TestParse_ProductionRequiresCORSOrigins(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{"APP_ENV": "production"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOW_ORIGINS")

	cfg, err := parse(env.Options{Environment: map[string]string{
		"APP_ENV":            "production",
		"CORS_ALLOW_ORIGINS": "https://a.example",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowOrigins)

	// fora de produção as origens de desenvolvimento bastam
	_, err = parse(env.Options{Environment: map[string]string{"APP_ENV": "development"}})
	assert.NoError(t, err)
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LISTEN_ADDR=:9999\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LISTEN_ADDR", "")
	require.NoError(t, os.Unsetenv("LISTEN_ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
