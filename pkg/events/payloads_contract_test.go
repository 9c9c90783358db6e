package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionChannelPayloads_ContainSessionID is a contract test between the
// backend and the dashboard WebSocket client.
//
// The frontend routes incoming WS events by inspecting `data.session_id` in
// the JSON payload. ANY payload that is broadcast on a session-specific
// channel (session:{id}) MUST include a non-empty `session_id` field —
// otherwise the frontend silently drops it.
//
// If you add a new payload that goes through a session channel, add it here —
// the test will fail if session_id is missing.
func TestSessionChannelPayloads_ContainSessionID(t *testing.T) {
	const testSessionID = "sess-contract-test"

	tests := []struct {
		name    string
		payload any
	}{
		{
			name: "SessionStatusPayload",
			payload: SessionStatusPayload{
				Type:      EventTypeSessionStarted,
				SessionID: testSessionID,
				Status:    "in_progress",
				Timestamp: "2026-01-01T00:00:00Z",
			},
		},
		{
			name: "StageStatusPayload",
			payload: StageStatusPayload{
				Type:        EventTypeStageStarted,
				SessionID:   testSessionID,
				ExecutionID: "exec-1",
				StageID:     "investigate",
				StageName:   "Investigate",
				Status:      "active",
				Timestamp:   "2026-01-01T00:00:00Z",
			},
		},
		{
			name: "LLMInteractionPayload",
			payload: LLMInteractionPayload{
				Type:            EventTypeLLMInteraction,
				SessionID:       testSessionID,
				InteractionID:   "int-1",
				InteractionType: "investigation",
				Success:         true,
				Timestamp:       "2026-01-01T00:00:00Z",
			},
		},
		{
			name: "MCPInteractionPayload",
			payload: MCPInteractionPayload{
				Type:       EventTypeMCPToolCall,
				SessionID:  testSessionID,
				RequestID:  "req-1",
				ServerName: "kubernetes-server",
				Success:    true,
				Timestamp:  "2026-01-01T00:00:00Z",
			},
		},
		{
			name: "StreamChunkPayload",
			payload: StreamChunkPayload{
				Type:       EventTypeStreamChunk,
				SessionID:  testSessionID,
				StreamType: StreamTypeThought,
				Content:    "Thinking about the alert...",
				Timestamp:  "2026-01-01T00:00:00Z",
			},
		},
		{
			name: "CancelRequestedPayload",
			payload: CancelRequestedPayload{
				Type:      EventTypeCancelRequested,
				SessionID: testSessionID,
				Timestamp: "2026-01-01T00:00:00Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			var m map[string]any
			require.NoError(t, json.Unmarshal(data, &m))

			sessionID, ok := m["session_id"].(string)
			assert.True(t, ok, "payload must have a string session_id field")
			assert.Equal(t, testSessionID, sessionID)

			typ, ok := m["type"].(string)
			assert.True(t, ok, "payload must have a string type field")
			assert.NotEmpty(t, typ)
		})
	}
}

// Stream chunks carry accumulated content plus the stream type so clients can
// render thought vs final-answer text differently without parsing.
func TestStreamChunkPayload_ParallelMetadata(t *testing.T) {
	payload := StreamChunkPayload{
		Type:       EventTypeStreamChunk,
		SessionID:  "sess-1",
		StreamType: StreamTypeNativeThinking,
		Content:    "partial reasoning",
		Parallel: &ParallelMetadata{
			ParentExecutionID: "exec-parent",
			ParallelIndex:     2,
			AgentName:         "LogAgent",
		},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, StreamTypeNativeThinking, m["stream_type"])

	parallel, ok := m["parallel"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "exec-parent", parallel["parent_execution_id"])
	assert.Equal(t, float64(2), parallel["parallel_index"])
	assert.Equal(t, "LogAgent", parallel["agent_name"])
}
