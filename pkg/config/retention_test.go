package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultRetentionConfig(t *testing.T) {
	cfg := DefaultRetentionConfig()

	assert.Equal(t, 90, cfg.SessionRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.EventRetention)
	assert.Equal(t, 1*time.Hour, cfg.EventCleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionCleanupInterval)
}

func TestRetentionConfigUnmarshalYAML(t *testing.T) {
	t.Run("durations parsed from strings", func(t *testing.T) {
		yamlData := `
session_retention_days: 30
event_retention: 12h
event_cleanup_interval: 30m
session_cleanup_interval: 6h
`
		var r RetentionConfig
		require.NoError(t, yaml.Unmarshal([]byte(yamlData), &r))

		assert.Equal(t, 30, r.SessionRetentionDays)
		assert.Equal(t, 12*time.Hour, r.EventRetention)
		assert.Equal(t, 30*time.Minute, r.EventCleanupInterval)
		assert.Equal(t, 6*time.Hour, r.SessionCleanupInterval)
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		var r RetentionConfig
		err := yaml.Unmarshal([]byte("event_retention: daily"), &r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid event_retention")
	})
}

func TestApplyRetentionEnvOverrides(t *testing.T) {
	t.Run("overrides applied", func(t *testing.T) {
		t.Setenv("TARSY_SESSION_RETENTION_DAYS", "7")
		t.Setenv("TARSY_EVENT_RETENTION", "8h")

		r := DefaultRetentionConfig()
		require.NoError(t, applyRetentionEnvOverrides(r))

		assert.Equal(t, 7, r.SessionRetentionDays)
		assert.Equal(t, 8*time.Hour, r.EventRetention)
		assert.Equal(t, 1*time.Hour, r.EventCleanupInterval)
	})

	t.Run("invalid days rejected", func(t *testing.T) {
		t.Setenv("TARSY_SESSION_RETENTION_DAYS", "forever")

		r := DefaultRetentionConfig()
		err := applyRetentionEnvOverrides(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TARSY_SESSION_RETENTION_DAYS")
	})
}
