package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SECRET_KEY", "JWT_SECRET", "JWT_ALG", "JWT_TTL", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_LOGIN_WINDOW"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SECRET_KEY", "s3cret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.SecretKey)
		assert.Equal(t, "HS256", cfg.JWTAlgorithm)
		assert.Equal(t, DefaultTokenTTL, cfg.TokenTTL)
		assert.Equal(t, 15*time.Minute, cfg.RateLimitLoginWindow)
		assert.Empty(t, cfg.CORSAllowedOrigins)
	})

	t.Run("JWT_SECRET fallback", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("JWT_SECRET", "fallback")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "fallback", cfg.SecretKey)
	})

	t.Run("missing secret", func(t *testing.T) {
		setBaseEnv(t)

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingSecretKey)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SECRET_KEY", "s3cret")
		t.Setenv("JWT_ALG", "RS256")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidJWTAlgorithm)
	})

	t.Run("ttl as seconds or duration", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SECRET_KEY", "s3cret")

		t.Setenv("JWT_TTL", "3600")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, cfg.TokenTTL)

		t.Setenv("JWT_TTL", "90m")
		cfg, err = Load()
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	})

	t.Run("invalid ttl", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SECRET_KEY", "s3cret")
		t.Setenv("JWT_TTL", "forever")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidTokenTTL)
	})

	t.Run("allowed origins", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SECRET_KEY", "s3cret")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	})
}
