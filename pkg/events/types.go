// Package events provides real-time event delivery via WebSocket and
// PostgreSQL NOTIFY/LISTEN for cross-pod distribution.
//
// Every durable event is one row in the events table: (id, channel,
// payload). The row id is the ordering and catch-up cursor for its
// channel. Publishing inserts the row and fires pg_notify in the same
// transaction, so subscribers never observe a notification whose row is
// not yet visible. Transient events (LLM streaming chunks) skip the
// table and go out via pg_notify alone; reconnecting clients lose them
// but recover the final content from the persisted interaction events.
//
// Channels:
//
//	sessions          session lifecycle for the list page
//	session:<id>      per-session detail: stages, interactions, chunks
//	cancellations     cross-replica cancel requests
//
// Stores without NOTIFY support use PollingListener, which tails each
// subscribed channel by id at a short interval. Ordering and durability
// are identical; only latency differs.
package events

// Session lifecycle event types, published on the global sessions channel
// (durable) with a transient copy on the session's own channel.
const (
	EventTypeSessionCreated   = "session.created"
	EventTypeSessionStarted   = "session.started"
	EventTypeSessionCompleted = "session.completed"
	EventTypeSessionFailed    = "session.failed"
	EventTypeSessionPaused    = "session.paused"
	EventTypeSessionResumed   = "session.resumed"
	EventTypeSessionCancelled = "session.cancelled"
	EventTypeSessionTimedOut  = "session.timed_out"
)

// Stage and interaction event types, published on the session detail channel.
const (
	EventTypeStageStarted   = "stage.started"
	EventTypeStageCompleted = "stage.completed"

	EventTypeLLMInteraction = "llm.interaction"
	EventTypeMCPToolCall    = "mcp.tool_call"
	EventTypeMCPToolList    = "mcp.tool_list"
)

// Cross-replica control event types, published on the cancellations channel.
const (
	EventTypeCancelRequested = "session.cancel_requested"
)

// Transient event types (NOTIFY only, no DB persistence).
const (
	// LLM streaming chunks carry accumulated content, not deltas, so a
	// dropped chunk never corrupts the client's view.
	EventTypeStreamChunk = "llm.stream.chunk"
)

// Stream types carried by llm.stream.chunk events.
const (
	StreamTypeThought        = "thought"
	StreamTypeFinalAnswer    = "final_answer"
	StreamTypeNativeThinking = "native_thinking"
	StreamTypeSummarization  = "summarization"
)

// GlobalSessionsChannel is the channel for session-level lifecycle events.
// The session list page subscribes to this for real-time updates.
const GlobalSessionsChannel = "sessions"

// CancellationsChannel carries cancel requests across replicas. Each worker
// pool subscribes and flips the in-process cancellation flag for sessions
// it owns.
const CancellationsChannel = "cancellations"

// SessionChannel returns the channel name for a specific session's events.
// Format: "session:{session_id}"
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action      string `json:"action"`                  // "subscribe", "unsubscribe", "catchup", "ping"
	Channel     string `json:"channel,omitempty"`       // Channel name (e.g., "session:abc-123")
	LastEventID *int64 `json:"last_event_id,omitempty"` // For catchup
}
