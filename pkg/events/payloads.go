package events

import "time"

// ParallelMetadata identifies which branch of a parallel stage produced an
// event. Threaded through stream chunks so dashboards can route concurrent
// agent output to the right panel.
type ParallelMetadata struct {
	ParentExecutionID string `json:"parent_execution_id"`
	ParallelIndex     int    `json:"parallel_index"` // 1..N
	AgentName         string `json:"agent_name"`
}

// SessionStatusPayload is the payload for all session.* lifecycle events.
// Type discriminates the transition (session.created, session.started, ...).
type SessionStatusPayload struct {
	Type         string `json:"type"`
	SessionID    string `json:"session_id"`
	Status       string `json:"status"` // pending, in_progress, paused, canceling, completed, failed, cancelled, timed_out
	AlertType    string `json:"alert_type,omitempty"`
	ChainID      string `json:"chain_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Timestamp    string `json:"timestamp"` // RFC3339Nano
}

// StageStatusPayload is the payload for stage.started / stage.completed
// events. Completed covers every terminal stage outcome; Status carries the
// actual one.
type StageStatusPayload struct {
	Type          string `json:"type"`
	SessionID     string `json:"session_id"`
	ExecutionID   string `json:"execution_id"`
	StageID       string `json:"stage_id"`
	StageName     string `json:"stage_name"`
	StageIndex    int    `json:"stage_index"`
	ParallelIndex *int   `json:"parallel_index,omitempty"` // set on branch records only
	AgentName     string `json:"agent_name,omitempty"`
	Status        string `json:"status"` // active, completed, partial, failed, cancelled, timed_out, paused
	ErrorMessage  string `json:"error_message,omitempty"`
	Timestamp     string `json:"timestamp"` // RFC3339Nano
}

// LLMInteractionPayload is the payload for llm.interaction events,
// published after an LLM call is persisted. Detail views refetch the full
// conversation over REST; the payload carries routing fields only.
type LLMInteractionPayload struct {
	Type             string `json:"type"`
	SessionID        string `json:"session_id"`
	StageExecutionID string `json:"stage_execution_id,omitempty"`
	InteractionID    string `json:"interaction_id"`
	InteractionType  string `json:"interaction_type"`
	StepDescription  string `json:"step_description,omitempty"`
	ModelName        string `json:"model_name,omitempty"`
	Success          bool   `json:"success"`
	ErrorMessage     string `json:"error_message,omitempty"`
	Timestamp        string `json:"timestamp"` // RFC3339Nano
}

// MCPInteractionPayload is the payload for mcp.tool_call and mcp.tool_list
// events, published after an MCP interaction is persisted.
type MCPInteractionPayload struct {
	Type             string `json:"type"`
	SessionID        string `json:"session_id"`
	StageExecutionID string `json:"stage_execution_id,omitempty"`
	RequestID        string `json:"request_id"`
	ServerName       string `json:"server_name"`
	ToolName         string `json:"tool_name,omitempty"`
	Success          bool   `json:"success"`
	ErrorMessage     string `json:"error_message,omitempty"`
	Timestamp        string `json:"timestamp"` // RFC3339Nano
}

// StreamChunkPayload is the payload for llm.stream.chunk transient events.
// Content is the accumulated text so far, not a delta.
type StreamChunkPayload struct {
	Type             string            `json:"type"`
	SessionID        string            `json:"session_id"`
	StageExecutionID string            `json:"stage_execution_id,omitempty"`
	InteractionID    string            `json:"interaction_id,omitempty"`
	StreamType       string            `json:"stream_type"` // thought, final_answer, native_thinking, summarization
	Content          string            `json:"content"`
	Parallel         *ParallelMetadata `json:"parallel,omitempty"`
	Timestamp        string            `json:"timestamp"` // RFC3339Nano
}

// CancelRequestedPayload is the payload for session.cancel_requested events
// on the cancellations channel.
type CancelRequestedPayload struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

// TerminalSessionEventType maps a terminal session status to its lifecycle
// event type. Unknown statuses produce "session.<status>".
func TerminalSessionEventType(status string) string {
	switch status {
	case "completed":
		return EventTypeSessionCompleted
	case "failed":
		return EventTypeSessionFailed
	case "cancelled":
		return EventTypeSessionCancelled
	case "timed_out":
		return EventTypeSessionTimedOut
	default:
		return "session." + status
	}
}

// EventTimestamp formats the current time the way event payloads carry it.
func EventTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
