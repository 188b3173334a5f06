package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "UTC", cfg.ContentTimezone)
	assert.False(t, cfg.LLMFailover)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, []string{"gpt-4o", "gpt-3.5-turbo"}, cfg.LLMFallbackModels)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_FALLBACK_MODELS", " gemini-1.5-pro , ,gemini-1.5-flash")
	t.Setenv("LLM_FAILOVER", "true")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("DIGEST_RECIPIENTS", "a@example.com,b@example.com")
	t.Setenv("CONTENT_TIMEZONE", "Africa/Lagos")

	cfg := FromEnv()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash"}, cfg.LLMFallbackModels)
	assert.True(t, cfg.LLMFailover)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.DigestRecipients)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Lagos", loc.String())
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("LLM_FAILOVER", "maybe")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.False(t, cfg.LLMFailover)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		cfg := FromEnv()
		cfg.DBDriver = "mysql"
		assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := FromEnv()
		cfg.LLMProvider = "llama"
		assert.ErrorContains(t, cfg.Validate(), "LLM_PROVIDER")
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := FromEnv()
		cfg.ContentTimezone = "Mars/Olympus"
		assert.ErrorContains(t, cfg.Validate(), "CONTENT_TIMEZONE")
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "confession"}
	assert.Equal(t, "postgres://u:p@db:5433/confession?sslmode=disable", cfg.PostgresDSN())

	cfg.DBSchema = "devotions"
	assert.Equal(t, "postgres://u:p@db:5433/confession?sslmode=disable&search_path=devotions", cfg.PostgresDSN())
}
