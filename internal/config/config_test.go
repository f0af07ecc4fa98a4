package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("TIME_ZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
	assert.Contains(t, err.Error(), "TIME_ZONE")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TIME_ZONE", "America/Los_Angeles")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTO_MIGRATE", "TRUE")
	t.Setenv("BASE_URL", "https://api.example/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", cfg.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "https://api.example", cfg.BaseURL)
}
