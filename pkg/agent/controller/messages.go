package controller

import (
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
)

// conversationToMaps serializes a conversation into the JSON shape stored on
// llm_interactions.conversation and in pause snapshots. Optional fields are
// omitted when empty so stored rows stay compact.
func conversationToMaps(messages []agent.ConversationMessage) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		row := map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if len(msg.ToolCalls) > 0 {
			calls := make([]map[string]any, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				calls = append(calls, map[string]any{
					"id":        tc.ID,
					"name":      tc.Name,
					"arguments": tc.Arguments,
				})
			}
			row["tool_calls"] = calls
		}
		if msg.ToolCallID != "" {
			row["tool_call_id"] = msg.ToolCallID
		}
		if msg.ToolName != "" {
			row["tool_name"] = msg.ToolName
		}
		out = append(out, row)
	}
	return out
}

// conversationFromMaps rebuilds a conversation from a stored snapshot.
// Used on resume to rehydrate the paused execution's messages. Unknown or
// mistyped fields are skipped rather than failing the resume.
func conversationFromMaps(rows []map[string]any) []agent.ConversationMessage {
	out := make([]agent.ConversationMessage, 0, len(rows))
	for _, row := range rows {
		msg := agent.ConversationMessage{
			Role:       stringField(row, "role"),
			Content:    stringField(row, "content"),
			ToolCallID: stringField(row, "tool_call_id"),
			ToolName:   stringField(row, "tool_name"),
		}
		// tool_calls is []any after a JSON round trip, []map[string]any when
		// the snapshot never left memory.
		switch calls := row["tool_calls"].(type) {
		case []map[string]any:
			for _, call := range calls {
				msg.ToolCalls = append(msg.ToolCalls, toolCallFromMap(call))
			}
		case []any:
			for _, rawCall := range calls {
				if call, ok := rawCall.(map[string]any); ok {
					msg.ToolCalls = append(msg.ToolCalls, toolCallFromMap(call))
				}
			}
		}
		out = append(out, msg)
	}
	return out
}

func stringField(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

func toolCallFromMap(call map[string]any) agent.ToolCall {
	return agent.ToolCall{
		ID:        stringField(call, "id"),
		Name:      stringField(call, "name"),
		Arguments: stringField(call, "arguments"),
	}
}

// conversationWithReply appends the assistant's reply to the input messages,
// producing the full conversation snapshot recorded on the interaction.
// A nil response (failed call) records the input messages unchanged.
func conversationWithReply(messages []agent.ConversationMessage, resp *LLMResponse) []map[string]any {
	if resp == nil {
		return conversationToMaps(messages)
	}
	reply := agent.ConversationMessage{
		Role:      agent.RoleAssistant,
		Content:   resp.Text,
		ToolCalls: resp.ToolCalls,
	}
	return conversationToMaps(append(messages[:len(messages):len(messages)], reply))
}
