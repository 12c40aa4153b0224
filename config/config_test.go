package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "API_HOST", "API_PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
		"SENTIMENT_BACKEND", "SENTIMENT_MODEL", "IMPORT_BATCH_SIZE", "VALKEY_INIT_ADDRESS",
		"ANALYTICS_CACHE_TTL", "API_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./reviews.db", cfg.Database.Path)
	assert.Equal(t, BackendHugot, cfg.Sentiment.Backend)
	assert.Equal(t, "matthewburke/korean_sentiment", cfg.Sentiment.Model)
	assert.Equal(t, 10, cfg.Import.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Dashboard.APIURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_PORT", "9000")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "reviews")
	t.Setenv("SENTIMENT_BACKEND", "vader")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("ANALYTICS_CACHE_TTL", "5s")
	t.Setenv("API_URL", "http://api:8000/")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:6543/reviews?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, BackendVader, cfg.Sentiment.Backend)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "http://api:8000", cfg.Dashboard.APIURL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("bad int", func(t *testing.T) {
		t.Setenv("API_PORT", "eighty")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "API_PORT")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})

	t.Run("openai without key", func(t *testing.T) {
		t.Setenv("SENTIMENT_BACKEND", "openai")
		t.Setenv("OPENAI_API_KEY", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "OPENAI_API_KEY")
	})

	t.Run("zero batch size", func(t *testing.T) {
		t.Setenv("IMPORT_BATCH_SIZE", "0")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "IMPORT_BATCH_SIZE")
	})
}
