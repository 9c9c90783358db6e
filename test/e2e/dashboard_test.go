package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
)

const wsWait = 15 * time.Second

// TestDashboardLifecycleEvents watches the global sessions channel through a
// live WebSocket while a session runs end to end.
func TestDashboardLifecycleEvents(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Chunks: []agent.Chunk{
		&agent.ToolCallChunk{CallID: "call-1", Name: "test-mcp__get_pods", Arguments: `{}`},
		&agent.UsageChunk{TotalTokens: 10},
	}})
	llm.AddSequential(LLMScriptEntry{Text: "Dashboard-visible conclusion."})
	llm.AddSequential(LLMScriptEntry{Text: "Conclusion summary."})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	ws, err := WSConnect(context.Background(), app.WSURL)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	require.NoError(t, ws.Subscribe("sessions"))
	_, err = ws.WaitForEventType("subscription.confirmed", wsWait)
	require.NoError(t, err)

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"dashboard"}`)

	created, err := ws.WaitForSessionEvent("session.created", sessionID, wsWait)
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Parsed["status"])
	assert.Equal(t, "test-alert", created.Parsed["alert_type"])

	started, err := ws.WaitForSessionEvent("session.started", sessionID, wsWait)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", started.Parsed["status"])

	completed, err := ws.WaitForSessionEvent("session.completed", sessionID, wsWait)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Parsed["status"])
	assert.True(t, started.Received.Before(completed.Received))
}

// TestDashboardSessionChannelCatchup subscribes to the per-session channel
// after the run finished: the auto catch-up must replay the stage and
// interaction history with database event ids attached.
func TestDashboardSessionChannelCatchup(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Chunks: []agent.Chunk{
		&agent.ToolCallChunk{CallID: "call-1", Name: "test-mcp__get_pods", Arguments: `{}`},
		&agent.UsageChunk{TotalTokens: 10},
	}})
	llm.AddSequential(LLMScriptEntry{Text: "Catchup conclusion."})
	llm.AddSequential(LLMScriptEntry{Text: "Catchup summary."})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"late subscriber"}`)
	app.WaitForSessionStatus(t, sessionID, "completed")

	ws, err := WSConnect(context.Background(), app.WSURL)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	require.NoError(t, ws.Subscribe("session:"+sessionID))

	// Auto catch-up replays the persisted history for the channel.
	stageStarted, err := ws.WaitForEventType("stage.started", wsWait)
	require.NoError(t, err)
	assert.Equal(t, sessionID, stageStarted.Parsed["session_id"])
	assert.Equal(t, "investigation", stageStarted.Parsed["stage_name"])
	assert.NotNil(t, stageStarted.Parsed["db_event_id"], "catchup events carry their row id")

	stageCompleted, err := ws.WaitForEventType("stage.completed", wsWait)
	require.NoError(t, err)
	assert.Equal(t, "completed", stageCompleted.Parsed["status"])

	toolCall, err := ws.WaitForEventType("mcp.tool_call", wsWait)
	require.NoError(t, err)
	assert.Equal(t, "get_pods", toolCall.Parsed["tool_name"])

	llmEvt, err := ws.WaitForEventType("llm.interaction", wsWait)
	require.NoError(t, err)
	assert.Equal(t, sessionID, llmEvt.Parsed["session_id"])

	// An explicit catchup from before the stage start replays later events.
	sinceID := int64(stageStarted.Parsed["db_event_id"].(float64))
	before := len(ws.EventsByType("stage.completed"))
	require.NoError(t, ws.Send(map[string]interface{}{
		"action":        "catchup",
		"channel":       "session:" + sessionID,
		"last_event_id": sinceID,
	}))
	_, err = ws.CollectUntil(func(evts []WSEvent) bool {
		count := 0
		for _, e := range evts {
			if e.Type == "stage.completed" {
				count++
			}
		}
		return count > before
	}, wsWait)
	require.NoError(t, err)

	// Protocol housekeeping answers in-band.
	require.NoError(t, ws.Send(map[string]string{"action": "ping"}))
	_, err = ws.WaitForEventType("pong", wsWait)
	require.NoError(t, err)
}
