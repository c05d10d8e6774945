package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "PERSISTENCE_API_URL", "REDIS_ADDR", "SESSION_TTL_MINUTES", "AWS_S3_REPORTS_BUCKET"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000/api", cfg.Persistence.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Persistence.Timeout())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.Editor.SessionTTL())
	assert.Empty(t, cfg.AWS.ReportsBucket)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PERSISTENCE_API_URL", "https://surveys.internal/api/")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DELETE_GUARD_SECONDS", "5")
	t.Setenv("DRAFT_IDLE_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://surveys.internal/api", cfg.Persistence.BaseURL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Editor.DeleteGuardTTL())
	assert.Equal(t, 120*time.Minute, cfg.Editor.DraftIdle())
}
