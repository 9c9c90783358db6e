package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// StageExecution holds the schema definition for the StageExecution entity.
// One record per agent run. Single-agent stages produce one record with
// parallel_type "single". Parallel stages produce a parent record
// (parallel_index 0) plus one child record per branch (parallel_index 1..N)
// pointing back at the parent via parent_stage_execution_id.
type StageExecution struct {
	ent.Schema
}

// Fields of the StageExecution.
func (StageExecution) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("execution_id").
			Unique().
			Immutable(),
		field.String("session_id").
			Immutable(),

		// Stage identity within the chain
		field.String("stage_id").
			Comment("Stage identifier from the chain definition"),
		field.Int("stage_index").
			Comment("Position in chain: 0, 1, 2..."),
		field.String("stage_name"),
		field.String("agent").
			Comment("Agent display name; replicas get '{Agent}-{i}'"),
		field.Enum("iteration_strategy").
			Values("react", "native-thinking", "synthesis", "synthesis-native-thinking").
			Optional().
			Nillable().
			Comment("Resolved strategy; null on parent records of parallel stages"),

		// Parallel topology
		field.String("parent_stage_execution_id").
			Optional().
			Nillable().
			Immutable(),
		field.Int("parallel_index").
			Optional().
			Nillable().
			Comment("0 on parent records, 1..N on branches; null on single records"),
		field.Enum("parallel_type").
			Values("single", "multi_agent", "replica").
			Default("single"),

		// Status & timing
		field.Enum("status").
			Values("pending", "active", "paused", "completed", "partial", "failed", "cancelled", "timed_out").
			Default("pending"),
		field.Int64("started_at_us").
			Optional().
			Nillable(),
		field.Int64("completed_at_us").
			Optional().
			Nillable(),
		field.Int64("paused_at_us").
			Optional().
			Nillable(),
		field.Int("duration_ms").
			Optional().
			Nillable(),
		field.Int("current_iteration").
			Default(0).
			Comment("Loop progress; preserved across pause/resume"),

		// Output
		field.JSON("stage_output", map[string]interface{}{}).
			Optional().
			Comment("Structured result passed to later stages"),
		field.String("error_message").
			Optional().
			Nillable(),
	}
}

// Edges of the StageExecution.
func (StageExecution) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", AlertSession.Type).
			Ref("stage_executions").
			Field("session_id").
			Unique().
			Required().
			Immutable(),
		edge.To("branches", StageExecution.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)).
			From("parent").
			Field("parent_stage_execution_id").
			Unique().
			Immutable(),
		edge.To("llm_interactions", LLMInteraction.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("mcp_interactions", MCPInteraction.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the StageExecution.
func (StageExecution) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "stage_index", "parallel_index").
			Unique(),
		index.Fields("session_id", "stage_index"),
		index.Fields("parent_stage_execution_id"),
		index.Fields("status"),
	}
}
