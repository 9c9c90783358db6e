package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AlertSession holds the schema definition for the AlertSession entity.
// One row per submitted alert, carrying the full processing lifecycle.
type AlertSession struct {
	ent.Schema
}

// Fields of the AlertSession.
func (AlertSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("session_id").
			Unique().
			Immutable(),
		field.String("alert_id").
			Unique().
			Immutable().
			Comment("Deduplication key: hash of normalized alert payload + alert_type"),
		field.Text("alert_data").
			Comment("Original alert payload (full-text searchable)"),
		field.String("agent_type").
			Comment("Agent type of the chain's first stage"),
		field.String("alert_type").
			Optional().
			Comment("Alert classification used for chain selection"),
		field.String("chain_id").
			Comment("Chain identifier"),
		field.JSON("chain_definition", map[string]interface{}{}).
			Optional().
			Comment("Snapshot of the chain config at submission time"),
		field.Enum("status").
			Values("pending", "in_progress", "paused", "canceling", "completed", "failed", "cancelled", "timed_out").
			Default("pending"),
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Comment("When the session was submitted"),
		field.Int64("started_at_us").
			Optional().
			Nillable().
			Comment("Microseconds since epoch; set when a worker claims the session"),
		field.Int64("completed_at_us").
			Optional().
			Nillable().
			Comment("Microseconds since epoch; set exactly when the session reaches a terminal status"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Text("final_analysis").
			Optional().
			Nillable().
			Comment("Investigation result (full-text searchable)"),
		field.Text("final_analysis_summary").
			Optional().
			Nillable().
			Comment("Executive summary of the final analysis"),
		field.String("executive_summary_error").
			Optional().
			Nillable().
			Comment("Set when executive summary generation failed (fail-open)"),
		field.String("author").
			Optional().
			Nillable(),
		field.String("runbook_url").
			Optional().
			Nillable(),
		field.JSON("mcp_selection", map[string]interface{}{}).
			Optional().
			Comment("Per-session MCP override (replace semantics)"),
		field.JSON("pause_metadata", map[string]interface{}{}).
			Optional().
			Comment("Captured conversation state keyed by execution_id; present only between pause and resume rehydration"),
		field.Int("current_stage_index").
			Optional().
			Nillable(),
		field.String("current_stage_id").
			Optional().
			Nillable(),
		field.String("pod_id").
			Optional().
			Nillable().
			Comment("For multi-replica coordination"),
		field.Time("last_interaction_at").
			Optional().
			Nillable().
			Comment("Heartbeat for orphan detection"),
		field.String("slack_message_fingerprint").
			Optional().
			Nillable().
			Comment("For Slack threading"),
	}
}

// Edges of the AlertSession.
func (AlertSession) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("stage_executions", StageExecution.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("llm_interactions", LLMInteraction.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("mcp_interactions", MCPInteraction.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the AlertSession.
func (AlertSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("agent_type"),
		index.Fields("alert_type"),
		index.Fields("chain_id"),

		// Claim scan and orphan detection
		index.Fields("status", "created_at"),
		index.Fields("status", "last_interaction_at"),
	}
}

// Annotations for PostgreSQL-specific features.
// GIN indexes for full-text search are created via migration hooks
// in pkg/database/migrations.go
func (AlertSession) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
