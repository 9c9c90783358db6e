package controller

import (
	"encoding/json"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationToMaps(t *testing.T) {
	t.Run("basic roles and content", func(t *testing.T) {
		rows := conversationToMaps([]agent.ConversationMessage{
			{Role: agent.RoleSystem, Content: "system prompt"},
			{Role: agent.RoleUser, Content: "question"},
			{Role: agent.RoleAssistant, Content: "answer"},
		})

		require.Len(t, rows, 3)
		assert.Equal(t, map[string]any{"role": "system", "content": "system prompt"}, rows[0])
		assert.Equal(t, map[string]any{"role": "user", "content": "question"}, rows[1])
		assert.Equal(t, map[string]any{"role": "assistant", "content": "answer"}, rows[2])
	})

	t.Run("tool calls serialized on assistant messages", func(t *testing.T) {
		rows := conversationToMaps([]agent.ConversationMessage{
			{
				Role:    agent.RoleAssistant,
				Content: "checking pods",
				ToolCalls: []agent.ToolCall{
					{ID: "tc-1", Name: "k8s.get_pods", Arguments: `{"ns":"default"}`},
				},
			},
		})

		require.Len(t, rows, 1)
		calls, ok := rows[0]["tool_calls"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, calls, 1)
		assert.Equal(t, "tc-1", calls[0]["id"])
		assert.Equal(t, "k8s.get_pods", calls[0]["name"])
		assert.Equal(t, `{"ns":"default"}`, calls[0]["arguments"])
	})

	t.Run("tool message fields included only when set", func(t *testing.T) {
		rows := conversationToMaps([]agent.ConversationMessage{
			{Role: agent.RoleTool, Content: "result", ToolCallID: "tc-1", ToolName: "k8s.get_pods"},
			{Role: agent.RoleUser, Content: "plain"},
		})

		assert.Equal(t, "tc-1", rows[0]["tool_call_id"])
		assert.Equal(t, "k8s.get_pods", rows[0]["tool_name"])
		assert.NotContains(t, rows[1], "tool_call_id")
		assert.NotContains(t, rows[1], "tool_name")
		assert.NotContains(t, rows[1], "tool_calls")
	})
}

func TestConversationFromMaps(t *testing.T) {
	t.Run("rebuilds messages including tool linkage", func(t *testing.T) {
		messages := conversationFromMaps([]map[string]any{
			{"role": "system", "content": "sys"},
			{"role": "assistant", "content": "", "tool_calls": []any{
				map[string]any{"id": "tc-1", "name": "k8s.get_pods", "arguments": "{}"},
			}},
			{"role": "tool", "content": "pod-1 Running", "tool_call_id": "tc-1", "tool_name": "k8s.get_pods"},
		})

		require.Len(t, messages, 3)
		assert.Equal(t, agent.RoleSystem, messages[0].Role)
		require.Len(t, messages[1].ToolCalls, 1)
		assert.Equal(t, "tc-1", messages[1].ToolCalls[0].ID)
		assert.Equal(t, "k8s.get_pods", messages[1].ToolCalls[0].Name)
		assert.Equal(t, "tc-1", messages[2].ToolCallID)
		assert.Equal(t, "k8s.get_pods", messages[2].ToolName)
	})

	t.Run("mistyped fields are skipped not fatal", func(t *testing.T) {
		messages := conversationFromMaps([]map[string]any{
			{"role": 42, "content": "still here"},
			{"role": "assistant", "content": "ok", "tool_calls": "not-a-list"},
		})

		require.Len(t, messages, 2)
		assert.Empty(t, messages[0].Role)
		assert.Equal(t, "still here", messages[0].Content)
		assert.Empty(t, messages[1].ToolCalls)
	})
}

func TestConversationRoundTrip(t *testing.T) {
	original := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: "sys"},
		{Role: agent.RoleUser, Content: "investigate"},
		{
			Role:    agent.RoleAssistant,
			Content: "calling tool",
			ToolCalls: []agent.ToolCall{
				{ID: "tc-1", Name: "k8s.get_pods", Arguments: `{"ns":"prod"}`},
			},
		},
		{Role: agent.RoleTool, Content: "pod-1 Running", ToolCallID: "tc-1", ToolName: "k8s.get_pods"},
	}

	t.Run("in-memory snapshot", func(t *testing.T) {
		rebuilt := conversationFromMaps(conversationToMaps(original))
		assert.Equal(t, original, rebuilt)
	})

	t.Run("through JSON as stored in pause_metadata", func(t *testing.T) {
		raw, err := json.Marshal(conversationToMaps(original))
		require.NoError(t, err)
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))

		rebuilt := conversationFromMaps(decoded)
		assert.Equal(t, original, rebuilt)
	})
}

func TestConversationWithReply(t *testing.T) {
	messages := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: "sys"},
		{Role: agent.RoleUser, Content: "question"},
	}

	t.Run("appends assistant reply", func(t *testing.T) {
		out := conversationWithReply(messages, &LLMResponse{
			Text:      "reply text",
			ToolCalls: []agent.ToolCall{{ID: "tc-1", Name: "k8s.get_pods", Arguments: "{}"}},
		})

		require.Len(t, out, 3)
		assert.Equal(t, "assistant", out[2]["role"])
		assert.Equal(t, "reply text", out[2]["content"])
		assert.Contains(t, out[2], "tool_calls")

		// Input slice untouched.
		assert.Len(t, messages, 2)
	})

	t.Run("nil response records input unchanged", func(t *testing.T) {
		out := conversationWithReply(messages, nil)
		require.Len(t, out, 2)
		assert.Equal(t, "user", out[1]["role"])
	})
}
