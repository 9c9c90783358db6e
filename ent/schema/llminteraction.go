package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMInteraction holds the schema definition for the LLMInteraction entity.
// One row per LLM call, success or failure, with the full conversation inline.
type LLMInteraction struct {
	ent.Schema
}

// Fields of the LLMInteraction.
func (LLMInteraction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("interaction_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),
		field.String("stage_execution_id").
			Optional().
			Nillable().
			Immutable().
			Comment("Null for session-level calls (executive summary)"),

		// Timing
		field.Int64("timestamp_us").
			Immutable().
			Comment("Microseconds since epoch"),
		field.Int("duration_ms").
			Optional().
			Nillable(),

		// Interaction details
		field.Enum("interaction_type").
			Values("investigation", "summarization", "final_analysis_summary", "tool_selection"),
		field.String("model_name"),
		field.String("provider"),
		field.String("step_description").
			Optional().
			Nillable(),
		field.String("mcp_event_id").
			Optional().
			Nillable().
			Comment("request_id of the tool call a summarization row condensed"),
		field.JSON("native_tools_config", map[string]interface{}{}).
			Optional().
			Comment("Provider-native tools enabled for this call"),

		// Full conversation including the appended assistant message
		field.JSON("conversation", []map[string]interface{}{}),
		field.Text("thinking_content").
			Optional().
			Nillable().
			Comment("Native reasoning stream, when the provider exposes it"),
		field.JSON("response_metadata", map[string]interface{}{}).
			Optional().
			Comment("Token usage, finish reason"),

		field.String("error_message").
			Optional().
			Nillable().
			Comment("null = success, not-null = failed"),
	}
}

// Edges of the LLMInteraction.
func (LLMInteraction) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", AlertSession.Type).
			Ref("llm_interactions").
			Field("session_id").
			Unique().
			Required().
			Immutable(),
		edge.From("stage_execution", StageExecution.Type).
			Ref("llm_interactions").
			Field("stage_execution_id").
			Unique().
			Immutable(),
	}
}

// Indexes of the LLMInteraction.
func (LLMInteraction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "timestamp_us"),
		index.Fields("stage_execution_id", "timestamp_us"),
	}
}
