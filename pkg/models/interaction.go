package models

import (
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
)

// CreateLLMInteractionRequest contains fields for recording an LLM interaction
type CreateLLMInteractionRequest struct {
	InteractionID    string           `json:"interaction_id"`
	SessionID        string           `json:"session_id"`
	StageExecutionID *string          `json:"stage_execution_id,omitempty"`
	TimestampUs      int64            `json:"timestamp_us"`
	DurationMs       int64            `json:"duration_ms"`
	InteractionType  string           `json:"interaction_type"`
	ModelName        string           `json:"model_name"`
	Provider         string           `json:"provider"`
	StepDescription  string           `json:"step_description,omitempty"`
	Conversation     []map[string]any `json:"conversation,omitempty"`
	ThinkingContent  string           `json:"thinking_content,omitempty"`
	ResponseMetadata map[string]any   `json:"response_metadata,omitempty"`
	MCPEventID       string           `json:"mcp_event_id,omitempty"`
	NativeToolsCfg   map[string]any   `json:"native_tools_config,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
}

// CreateMCPInteractionRequest contains fields for recording an MCP interaction
type CreateMCPInteractionRequest struct {
	RequestID         string         `json:"request_id"`
	SessionID         string         `json:"session_id"`
	StageExecutionID  *string        `json:"stage_execution_id,omitempty"`
	TimestampUs       int64          `json:"timestamp_us"`
	DurationMs        int64          `json:"duration_ms"`
	CommunicationType string         `json:"communication_type"`
	ServerName        string         `json:"server_name"`
	ToolName          string         `json:"tool_name,omitempty"`
	ToolArguments     map[string]any `json:"tool_arguments,omitempty"`
	ToolResult        map[string]any `json:"tool_result,omitempty"`
	AvailableTools    []any          `json:"available_tools,omitempty"`
	Success           bool           `json:"success"`
	ErrorMessage      string         `json:"error_message,omitempty"`
}

// InteractionListItem is one entry in a session's merged interaction
// timeline. Type is "llm" or "mcp" and exactly one of LLM or MCP is set.
type InteractionListItem struct {
	Type        string              `json:"type"`
	TimestampUs int64               `json:"timestamp_us"`
	LLM         *ent.LLMInteraction `json:"llm,omitempty"`
	MCP         *ent.MCPInteraction `json:"mcp,omitempty"`
}
