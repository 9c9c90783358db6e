package events

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateIfNeeded(t *testing.T) {
	t.Run("passes through normal payload", func(t *testing.T) {
		payload, _ := json.Marshal(SessionStatusPayload{
			Type:      EventTypeSessionStarted,
			SessionID: "abc-123",
			Status:    "in_progress",
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, EventTypeSessionStarted)
		assert.Contains(t, result, "abc-123")
		assert.NotContains(t, result, "truncated")
	})

	t.Run("truncates oversized payload", func(t *testing.T) {
		payload, _ := json.Marshal(StreamChunkPayload{
			Type:      EventTypeStreamChunk,
			SessionID: "abc-123",
			Content:   strings.Repeat("a", 8000),
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, `"truncated":true`)
		assert.Less(t, len(result), 8000)
	})

	t.Run("truncated payload preserves routing fields", func(t *testing.T) {
		payload, _ := json.Marshal(SessionStatusPayload{
			Type:         EventTypeSessionFailed,
			SessionID:    "sess-789",
			Status:       "failed",
			ErrorMessage: strings.Repeat("x", 8000),
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)

		var envelope map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &envelope))
		assert.Equal(t, EventTypeSessionFailed, envelope["type"])
		assert.Equal(t, "sess-789", envelope["session_id"])
		assert.Equal(t, true, envelope["truncated"])
	})
}

func TestInjectDBEventIDAndTruncate(t *testing.T) {
	t.Run("injects db_event_id into payload", func(t *testing.T) {
		payload, _ := json.Marshal(SessionStatusPayload{
			Type:      EventTypeSessionCreated,
			SessionID: "abc-123",
			Status:    "pending",
		})

		result, err := injectDBEventIDAndTruncate(payload, 42)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &m))
		assert.Equal(t, float64(42), m["db_event_id"])
		assert.Equal(t, "abc-123", m["session_id"])
	})

	t.Run("oversized payload keeps db_event_id in envelope", func(t *testing.T) {
		payload, _ := json.Marshal(StageStatusPayload{
			Type:         EventTypeStageCompleted,
			SessionID:    "sess-1",
			ExecutionID:  "exec-1",
			ErrorMessage: strings.Repeat("y", 8000),
		})

		result, err := injectDBEventIDAndTruncate(payload, 7)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(result), &m))
		assert.Equal(t, true, m["truncated"])
		assert.Equal(t, float64(7), m["db_event_id"])
		assert.Equal(t, "sess-1", m["session_id"])
	})

	t.Run("rejects non-JSON payload", func(t *testing.T) {
		_, err := injectDBEventIDAndTruncate([]byte("not json"), 1)
		assert.Error(t, err)
	})
}
