package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "", cfg.Audit.Dir)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.False(t, cfg.Auth.SessionsEnabled)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.True(t, cfg.Tasks.Enabled)
	assert.False(t, cfg.AuthorSweep.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.AuthorSweep.Schedule)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/books.db")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("AUTH_TOKEN_EXPIRY", "1h")
	t.Setenv("AUTHOR_SWEEP_ENABLED", "true")
	t.Setenv("AUTHOR_SWEEP_SCHEDULE", "*/5 * * * *")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/books.db", cfg.Database.Path)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.TokenExpiry)
	assert.True(t, cfg.AuthorSweep.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.AuthorSweep.Schedule)
}
