package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_TOKEN_TTL", "")
	t.Setenv("MATCH_STRICT", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/dating")
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Match.Strict)
	assert.Equal(t, "redis", cfg.Feed.Notifier)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("AUTH_TOKEN_TTL", "90m")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("MATCH_STRICT", "yes")
	t.Setenv("REDIS_DB", "3")

	cfg := New()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Match.Strict)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Auth.JWTSecret = "short"
	require.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "0123456789abcdef0123"
	cfg.DB.Driver = "postgres"
	require.Error(t, cfg.Validate())

	cfg.DB.Driver = "sqlite"
	cfg.Feed.Notifier = "memory"
	require.NoError(t, cfg.Validate())
}
