package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.RunSeed)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/calcfolha",
		JWTSecret:          "dev-secret",
		Environment:        "development",
		CacheTTL:           time.Minute,
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		LogLevel:           "info",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	missingDB := validConfig()
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())

	weakProd := validConfig()
	weakProd.Environment = "production"
	assert.ErrorContains(t, weakProd.Validate(), "JWT_SECRET")

	badLevel := validConfig()
	badLevel.LogLevel = "verbose"
	assert.ErrorContains(t, badLevel.Validate(), "LOG_LEVEL")

	smallBody := validConfig()
	smallBody.MaxBodyBytes = 10
	assert.Error(t, smallBody.Validate())
}
