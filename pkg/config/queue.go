package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// QueueConfig contains queue and worker pool configuration.
// These values control how sessions are queued, claimed, and processed.
// Resolution order: built-in defaults < YAML queue section < TARSY_* env vars.
type QueueConfig struct {
	// MaxQueueSize caps the number of queued-or-active sessions accepted
	// through the alert endpoint. 0 disables the limit.
	MaxQueueSize int `yaml:"max_queue_size"`

	// WorkerCount is the number of worker goroutines per replica/pod.
	// Each worker independently polls and processes sessions.
	WorkerCount int `yaml:"worker_count"`

	// MaxConcurrentSessions is the global limit of concurrent sessions being
	// processed across ALL replicas/pods. Enforced by database COUNT(*) check.
	MaxConcurrentSessions int `yaml:"max_concurrent_sessions"`

	// PollInterval is the base interval for checking pending sessions.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollIntervalJitter is the random jitter added to PollInterval.
	// Actual interval: PollInterval ± PollIntervalJitter.
	PollIntervalJitter time.Duration `yaml:"poll_interval_jitter"`

	// HeartbeatInterval is how often a worker refreshes its session's
	// last_interaction_at while processing. Must be well under OrphanThreshold.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// SessionTimeout is the maximum time a session can be processed.
	SessionTimeout time.Duration `yaml:"session_timeout"`

	// GracefulShutdownTimeout is the max time to wait for active sessions
	// to complete during shutdown. Should match SessionTimeout.
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	// OrphanDetectionInterval is how often to scan for orphaned sessions.
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`

	// OrphanThreshold is how long a session can go without a heartbeat
	// before it is considered orphaned.
	OrphanThreshold time.Duration `yaml:"orphan_threshold"`

	// Tracks whether the YAML explicitly set max_queue_size, so an
	// explicit 0 (disable) survives the defaults merge.
	maxQueueSizeSet bool
}

// DefaultQueueConfig returns the built-in queue defaults.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		MaxQueueSize:            100,
		WorkerCount:             5,
		MaxConcurrentSessions:   10,
		PollInterval:            3 * time.Second,
		PollIntervalJitter:      1 * time.Second,
		HeartbeatInterval:       30 * time.Second,
		SessionTimeout:          1 * time.Hour,
		GracefulShutdownTimeout: 1 * time.Hour,
		OrphanDetectionInterval: 60 * time.Second,
		OrphanThreshold:         30 * time.Minute,
	}
}

// rawQueueConfig mirrors QueueConfig with string durations so YAML can
// use human-friendly values like "3s" and "15m".
type rawQueueConfig struct {
	MaxQueueSize            *int   `yaml:"max_queue_size"`
	WorkerCount             int    `yaml:"worker_count"`
	MaxConcurrentSessions   int    `yaml:"max_concurrent_sessions"`
	PollInterval            string `yaml:"poll_interval"`
	PollIntervalJitter      string `yaml:"poll_interval_jitter"`
	HeartbeatInterval       string `yaml:"heartbeat_interval"`
	SessionTimeout          string `yaml:"session_timeout"`
	GracefulShutdownTimeout string `yaml:"graceful_shutdown_timeout"`
	OrphanDetectionInterval string `yaml:"orphan_detection_interval"`
	OrphanThreshold         string `yaml:"orphan_threshold"`
}

// UnmarshalYAML decodes durations from Go duration strings.
func (q *QueueConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw rawQueueConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*q = QueueConfig{
		WorkerCount:           raw.WorkerCount,
		MaxConcurrentSessions: raw.MaxConcurrentSessions,
	}
	if raw.MaxQueueSize != nil {
		q.MaxQueueSize = *raw.MaxQueueSize
		q.maxQueueSizeSet = true
	}

	for _, d := range []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &q.PollInterval},
		{"poll_interval_jitter", raw.PollIntervalJitter, &q.PollIntervalJitter},
		{"heartbeat_interval", raw.HeartbeatInterval, &q.HeartbeatInterval},
		{"session_timeout", raw.SessionTimeout, &q.SessionTimeout},
		{"graceful_shutdown_timeout", raw.GracefulShutdownTimeout, &q.GracefulShutdownTimeout},
		{"orphan_detection_interval", raw.OrphanDetectionInterval, &q.OrphanDetectionInterval},
		{"orphan_threshold", raw.OrphanThreshold, &q.OrphanThreshold},
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

// MaxQueueSizeSet reports whether the YAML explicitly set max_queue_size.
func (q *QueueConfig) MaxQueueSizeSet() bool {
	return q.maxQueueSizeSet
}

// applyQueueEnvOverrides applies TARSY_* environment overrides on top of
// the merged queue configuration. Env vars win over YAML.
func applyQueueEnvOverrides(q *QueueConfig) error {
	for _, o := range []struct {
		env string
		dst *int
	}{
		{"TARSY_MAX_QUEUE_SIZE", &q.MaxQueueSize},
		{"TARSY_WORKER_COUNT", &q.WorkerCount},
		{"TARSY_MAX_CONCURRENT_SESSIONS", &q.MaxConcurrentSessions},
	} {
		raw, ok := os.LookupEnv(o.env)
		if !ok || raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", o.env, err)
		}
		*o.dst = parsed
	}

	for _, o := range []struct {
		env string
		dst *time.Duration
	}{
		{"TARSY_POLL_INTERVAL", &q.PollInterval},
		{"TARSY_POLL_INTERVAL_JITTER", &q.PollIntervalJitter},
		{"TARSY_HEARTBEAT_INTERVAL", &q.HeartbeatInterval},
		{"TARSY_SESSION_TIMEOUT", &q.SessionTimeout},
		{"TARSY_GRACEFUL_SHUTDOWN_TIMEOUT", &q.GracefulShutdownTimeout},
		{"TARSY_ORPHAN_DETECTION_INTERVAL", &q.OrphanDetectionInterval},
		{"TARSY_ORPHAN_THRESHOLD", &q.OrphanThreshold},
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
