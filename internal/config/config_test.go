package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEnvironmentDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout())
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval())
	assert.Equal(t, 720, cfg.Refresh.WindowHours)
	assert.True(t, cfg.Stream.Enabled)
	assert.Equal(t, "frontdesk", cfg.Metrics.Namespace)
	assert.Equal(t, ".frontdesk", cfg.StateDir)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("FRONTDESK_API_BASE_URL", "http://clinic.test/api/v1")
	t.Setenv("FRONTDESK_REFRESH_WINDOW_HOURS", "48")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://clinic.test/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 48, cfg.Refresh.WindowHours)
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, 15, cfg.API.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Refresh.IntervalSeconds)
	assert.Equal(t, ".frontdesk", cfg.StateDir)
}
