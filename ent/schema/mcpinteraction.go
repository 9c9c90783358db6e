package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MCPInteraction holds the schema definition for the MCPInteraction entity.
// One row per MCP server call: tool invocations and tool listings.
type MCPInteraction struct {
	ent.Schema
}

// Fields of the MCPInteraction.
func (MCPInteraction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("request_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),
		field.String("stage_execution_id").
			Optional().
			Nillable().
			Immutable(),

		// Timing
		field.Int64("timestamp_us").
			Immutable().
			Comment("Microseconds since epoch"),
		field.Int("duration_ms").
			Optional().
			Nillable(),

		// Interaction details
		field.Enum("communication_type").
			Values("tool_call", "tool_list", "result"),
		field.String("server_name"),
		field.String("tool_name").
			Optional().
			Nillable(),

		field.JSON("tool_arguments", map[string]interface{}{}).
			Optional(),
		field.JSON("tool_result", map[string]interface{}{}).
			Optional().
			Comment("Masked and truncated before storage"),
		field.JSON("available_tools", []interface{}{}).
			Optional().
			Comment("For tool_list rows"),

		field.Bool("success").
			Default(true),
		field.String("error_message").
			Optional().
			Nillable(),
	}
}

// Edges of the MCPInteraction.
func (MCPInteraction) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", AlertSession.Type).
			Ref("mcp_interactions").
			Field("session_id").
			Unique().
			Required().
			Immutable(),
		edge.From("stage_execution", StageExecution.Type).
			Ref("mcp_interactions").
			Field("stage_execution_id").
			Unique().
			Immutable(),
	}
}

// Indexes of the MCPInteraction.
func (MCPInteraction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "timestamp_us"),
		index.Fields("stage_execution_id", "timestamp_us"),
	}
}
