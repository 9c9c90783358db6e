package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultQueueConfig(t *testing.T) {
	cfg := DefaultQueueConfig()

	assert.Equal(t, 100, cfg.MaxQueueSize)
	assert.Equal(t, 5, cfg.WorkerCount)
	assert.Equal(t, 10, cfg.MaxConcurrentSessions)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 1*time.Second, cfg.PollIntervalJitter)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 1*time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 1*time.Hour, cfg.GracefulShutdownTimeout)
	assert.Equal(t, 60*time.Second, cfg.OrphanDetectionInterval)
	assert.Equal(t, 30*time.Minute, cfg.OrphanThreshold)
}

func TestQueueConfigUnmarshalYAML(t *testing.T) {
	t.Run("durations parsed from strings", func(t *testing.T) {
		yamlData := `
worker_count: 3
max_concurrent_sessions: 7
poll_interval: 5s
poll_interval_jitter: 2s
heartbeat_interval: 10s
session_timeout: 30m
graceful_shutdown_timeout: 45m
orphan_detection_interval: 90s
orphan_threshold: 10m
`
		var q QueueConfig
		require.NoError(t, yaml.Unmarshal([]byte(yamlData), &q))

		assert.Equal(t, 3, q.WorkerCount)
		assert.Equal(t, 7, q.MaxConcurrentSessions)
		assert.Equal(t, 5*time.Second, q.PollInterval)
		assert.Equal(t, 2*time.Second, q.PollIntervalJitter)
		assert.Equal(t, 10*time.Second, q.HeartbeatInterval)
		assert.Equal(t, 30*time.Minute, q.SessionTimeout)
		assert.Equal(t, 45*time.Minute, q.GracefulShutdownTimeout)
		assert.Equal(t, 90*time.Second, q.OrphanDetectionInterval)
		assert.Equal(t, 10*time.Minute, q.OrphanThreshold)
	})

	t.Run("explicit zero max_queue_size is remembered", func(t *testing.T) {
		var q QueueConfig
		require.NoError(t, yaml.Unmarshal([]byte("max_queue_size: 0"), &q))

		assert.Equal(t, 0, q.MaxQueueSize)
		assert.True(t, q.MaxQueueSizeSet())
	})

	t.Run("omitted max_queue_size is not marked set", func(t *testing.T) {
		var q QueueConfig
		require.NoError(t, yaml.Unmarshal([]byte("worker_count: 3"), &q))

		assert.False(t, q.MaxQueueSizeSet())
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		var q QueueConfig
		err := yaml.Unmarshal([]byte("poll_interval: not-a-duration"), &q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid poll_interval")
	})
}

func TestApplyQueueEnvOverrides(t *testing.T) {
	t.Run("integer overrides", func(t *testing.T) {
		t.Setenv("TARSY_MAX_QUEUE_SIZE", "0")
		t.Setenv("TARSY_WORKER_COUNT", "2")
		t.Setenv("TARSY_MAX_CONCURRENT_SESSIONS", "20")

		q := DefaultQueueConfig()
		require.NoError(t, applyQueueEnvOverrides(q))

		assert.Equal(t, 0, q.MaxQueueSize)
		assert.Equal(t, 2, q.WorkerCount)
		assert.Equal(t, 20, q.MaxConcurrentSessions)
	})

	t.Run("duration overrides", func(t *testing.T) {
		t.Setenv("TARSY_POLL_INTERVAL", "10s")
		t.Setenv("TARSY_ORPHAN_THRESHOLD", "45m")

		q := DefaultQueueConfig()
		require.NoError(t, applyQueueEnvOverrides(q))

		assert.Equal(t, 10*time.Second, q.PollInterval)
		assert.Equal(t, 45*time.Minute, q.OrphanThreshold)
	})

	t.Run("empty env var is ignored", func(t *testing.T) {
		t.Setenv("TARSY_WORKER_COUNT", "")

		q := DefaultQueueConfig()
		require.NoError(t, applyQueueEnvOverrides(q))

		assert.Equal(t, 5, q.WorkerCount)
	})

	t.Run("invalid integer rejected", func(t *testing.T) {
		t.Setenv("TARSY_WORKER_COUNT", "many")

		q := DefaultQueueConfig()
		err := applyQueueEnvOverrides(q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TARSY_WORKER_COUNT")
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		t.Setenv("TARSY_SESSION_TIMEOUT", "soon")

		q := DefaultQueueConfig()
		err := applyQueueEnvOverrides(q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TARSY_SESSION_TIMEOUT")
	})
}

func TestValidateQueue(t *testing.T) {
	tests := []struct {
		name    string
		queue   *QueueConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid defaults",
			queue:   DefaultQueueConfig(),
			wantErr: false,
		},
		{
			name:    "nil queue",
			queue:   nil,
			wantErr: true,
			errMsg:  "queue configuration is nil",
		},
		{
			name: "negative max queue size",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.MaxQueueSize = -1
				return q
			}(),
			wantErr: true,
			errMsg:  "max_queue_size must be non-negative",
		},
		{
			name: "zero max queue size disables the limit",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.MaxQueueSize = 0
				return q
			}(),
			wantErr: false,
		},
		{
			name: "worker count too low",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.WorkerCount = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "worker_count must be between 1 and 50",
		},
		{
			name: "worker count too high",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.WorkerCount = 51
				return q
			}(),
			wantErr: true,
			errMsg:  "worker_count must be between 1 and 50",
		},
		{
			name: "max concurrent sessions zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.MaxConcurrentSessions = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "max_concurrent_sessions must be at least 1",
		},
		{
			name: "poll interval zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollInterval = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "poll_interval must be positive",
		},
		{
			name: "negative jitter",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollIntervalJitter = -1 * time.Second
				return q
			}(),
			wantErr: true,
			errMsg:  "poll_interval_jitter must be non-negative",
		},
		{
			name: "session timeout zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.SessionTimeout = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "session_timeout must be positive",
		},
		{
			name: "graceful shutdown timeout zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.GracefulShutdownTimeout = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "graceful_shutdown_timeout must be positive",
		},
		{
			name: "orphan detection interval zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.OrphanDetectionInterval = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "orphan_detection_interval must be positive",
		},
		{
			name: "orphan threshold zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.OrphanThreshold = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "orphan_threshold must be positive",
		},
		{
			name: "zero jitter is valid",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollIntervalJitter = 0
				return q
			}(),
			wantErr: false,
		},
		{
			name: "jitter equal to poll interval",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollInterval = 1 * time.Second
				q.PollIntervalJitter = 1 * time.Second
				return q
			}(),
			wantErr: true,
			errMsg:  "poll_interval_jitter must be less than poll_interval",
		},
		{
			name: "jitter greater than poll interval",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollInterval = 500 * time.Millisecond
				q.PollIntervalJitter = 1 * time.Second
				return q
			}(),
			wantErr: true,
			errMsg:  "poll_interval_jitter must be less than poll_interval",
		},
		{
			name: "jitter slightly less than poll interval is valid",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.PollInterval = 1 * time.Second
				q.PollIntervalJitter = 999 * time.Millisecond
				return q
			}(),
			wantErr: false,
		},
		{
			name: "heartbeat interval zero",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.HeartbeatInterval = 0
				return q
			}(),
			wantErr: true,
			errMsg:  "heartbeat_interval must be positive",
		},
		{
			name: "heartbeat interval equal to orphan threshold",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.OrphanThreshold = 1 * time.Minute
				q.HeartbeatInterval = 1 * time.Minute
				return q
			}(),
			wantErr: true,
			errMsg:  "heartbeat_interval must be less than orphan_threshold",
		},
		{
			name: "heartbeat interval greater than orphan threshold",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.OrphanThreshold = 1 * time.Minute
				q.HeartbeatInterval = 2 * time.Minute
				return q
			}(),
			wantErr: true,
			errMsg:  "heartbeat_interval must be less than orphan_threshold",
		},
		{
			name: "heartbeat interval slightly less than orphan threshold is valid",
			queue: func() *QueueConfig {
				q := DefaultQueueConfig()
				q.OrphanThreshold = 5 * time.Minute
				q.HeartbeatInterval = 30 * time.Second
				return q
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Queue: tt.queue}
			v := NewValidator(cfg)
			err := v.validateQueue()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateRetention(t *testing.T) {
	tests := []struct {
		name      string
		retention *RetentionConfig
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid defaults",
			retention: DefaultRetentionConfig(),
			wantErr:   false,
		},
		{
			name:      "nil retention",
			retention: nil,
			wantErr:   true,
			errMsg:    "retention configuration is nil",
		},
		{
			name: "session retention days zero",
			retention: func() *RetentionConfig {
				r := DefaultRetentionConfig()
				r.SessionRetentionDays = 0
				return r
			}(),
			wantErr: true,
			errMsg:  "session_retention_days must be at least 1",
		},
		{
			name: "event retention zero",
			retention: func() *RetentionConfig {
				r := DefaultRetentionConfig()
				r.EventRetention = 0
				return r
			}(),
			wantErr: true,
			errMsg:  "event_retention must be positive",
		},
		{
			name: "event cleanup interval zero",
			retention: func() *RetentionConfig {
				r := DefaultRetentionConfig()
				r.EventCleanupInterval = 0
				return r
			}(),
			wantErr: true,
			errMsg:  "event_cleanup_interval must be positive",
		},
		{
			name: "session cleanup interval zero",
			retention: func() *RetentionConfig {
				r := DefaultRetentionConfig()
				r.SessionCleanupInterval = 0
				return r
			}(),
			wantErr: true,
			errMsg:  "session_cleanup_interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Retention: tt.retention}
			v := NewValidator(cfg)
			err := v.validateRetention()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
