package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_TOKEN", "")

	cfg, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
	assert.Nil(t, cfg)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, TokenSourceCookie, cfg.Auth.TokenSource)
	assert.False(t, cfg.Auth.EnforceAccessRevocation)
	assert.False(t, cfg.Compaction.Enabled)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoadRejectsUnknownTokenSource(t *testing.T) {
	t.Setenv("JWT_TOKEN", "secret")
	t.Setenv("AUTH_TOKEN_SOURCE", "query")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_TOKEN", "secret")
	t.Setenv("AUTH_TOKEN_SOURCE", "HEADER")
	t.Setenv("AUTH_ENFORCE_ACCESS_REVOCATION", "true")
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_SECONDS", "60")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TokenSourceHeader, cfg.Auth.TokenSource)
	assert.True(t, cfg.Auth.EnforceAccessRevocation)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, time.Minute, cfg.Auth.AccessTokenTTL)
	assert.EqualValues(t, 10, cfg.Postgres.MaxConns)
}

func TestLoadTimeZone(t *testing.T) {
	t.Setenv("JWT_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())

	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}
