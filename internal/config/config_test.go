package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("JWT_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "0 18 * * *", cfg.ReminderSchedule)
	assert.Equal(t, 6, cfg.CoachRatePerMinute)
	assert.Equal(t, time.Minute, cfg.SuggestionCooldown)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_TTL")

	t.Setenv("JWT_TTL", "1h")
	t.Setenv("SMTP_PORT", "smtp")
	_, err = Load()
	assert.ErrorContains(t, err, "SMTP_PORT")
}
