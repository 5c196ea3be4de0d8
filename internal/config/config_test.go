package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PUBLIC_URL", "https://foodgram.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "https://foodgram.example.com", cfg.App.PublicURL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL())
	assert.Equal(t, "foodgram", cfg.MinIO.Bucket)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.CORSOrigins)
}

func TestLoad_CORSOriginsList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
}

func TestLoad_InvalidNumbersFallBackToDefault(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.MinIO.UseSSL)
}

func TestValidate_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	t.Run("default secret refused", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "pw")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("missing db password refused", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "real-secret")
		t.Setenv("DB_PASSWORD", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("complete config accepted", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "real-secret")
		t.Setenv("DB_PASSWORD", "pw")
		_, err := Load()
		assert.NoError(t, err)
	})
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_MAX_CONNECTIONS", "10")
	t.Setenv("DB_MIN_CONNECTIONS", "3")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, int32(3), cfg.MinConns)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.MaxConnLifetime)
}

func TestLoadDatabaseConfig_Errors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("DB_CONNECT_TIMEOUT", "soon")
		_, err := LoadDatabaseConfig()
		assert.ErrorContains(t, err, "DB_CONNECT_TIMEOUT")
	})

	t.Run("min above max", func(t *testing.T) {
		t.Setenv("DB_MAX_CONNECTIONS", "2")
		t.Setenv("DB_MIN_CONNECTIONS", "4")
		_, err := LoadDatabaseConfig()
		assert.Error(t, err)
	})
}
