package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RetentionConfig controls data retention and cleanup behavior.
// Resolution order: built-in defaults < YAML system.retention < TARSY_* env vars.
type RetentionConfig struct {
	// SessionRetentionDays is how many days to keep completed sessions
	// before the cleanup service deletes them (cascading to stages,
	// interactions, and events).
	SessionRetentionDays int `yaml:"session_retention_days"`

	// EventRetention is the maximum age of Event rows before deletion.
	// Events are a live-streaming backlog, not an audit log; the
	// interaction tables keep the durable record.
	EventRetention time.Duration `yaml:"event_retention"`

	// EventCleanupInterval is how often the event cleanup pass runs.
	EventCleanupInterval time.Duration `yaml:"event_cleanup_interval"`

	// SessionCleanupInterval is how often the session retention pass runs.
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		SessionRetentionDays:   90,
		EventRetention:         24 * time.Hour,
		EventCleanupInterval:   1 * time.Hour,
		SessionCleanupInterval: 24 * time.Hour,
	}
}

type rawRetentionConfig struct {
	SessionRetentionDays   int    `yaml:"session_retention_days"`
	EventRetention         string `yaml:"event_retention"`
	EventCleanupInterval   string `yaml:"event_cleanup_interval"`
	SessionCleanupInterval string `yaml:"session_cleanup_interval"`
}

// UnmarshalYAML decodes durations from Go duration strings.
func (r *RetentionConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw rawRetentionConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*r = RetentionConfig{SessionRetentionDays: raw.SessionRetentionDays}
	for _, d := range []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"event_retention", raw.EventRetention, &r.EventRetention},
		{"event_cleanup_interval", raw.EventCleanupInterval, &r.EventCleanupInterval},
		{"session_cleanup_interval", raw.SessionCleanupInterval, &r.SessionCleanupInterval},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// applyRetentionEnvOverrides applies TARSY_* environment overrides on top
// of the merged retention configuration. Env vars win over YAML.
func applyRetentionEnvOverrides(r *RetentionConfig) error {
	if raw, ok := os.LookupEnv("TARSY_SESSION_RETENTION_DAYS"); ok && raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid TARSY_SESSION_RETENTION_DAYS: %w", err)
		}
		r.SessionRetentionDays = parsed
	}

	for _, o := range []struct {
		env string
		dst *time.Duration
	}{
		{"TARSY_EVENT_RETENTION", &r.EventRetention},
		{"TARSY_EVENT_CLEANUP_INTERVAL", &r.EventCleanupInterval},
		{"TARSY_SESSION_CLEANUP_INTERVAL", &r.SessionCleanupInterval},
	} {
		raw, ok := os.LookupEnv(o.env)
		if !ok || raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", o.env, err)
		}
		*o.dst = parsed
	}
	return nil
}
