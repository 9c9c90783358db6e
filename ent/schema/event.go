package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Event holds the schema definition for the Event entity: the durable
// event-bus log. The auto-increment id doubles as the catch-up cursor,
// so rows must never be updated, only appended and aged out.
type Event struct {
	ent.Schema
}

// Fields of the Event.
func (Event) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Positive().
			Immutable(),
		field.String("channel").
			Immutable().
			Comment("'sessions', 'session:{id}' or 'cancellations'"),
		field.JSON("payload", map[string]interface{}{}).
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the Event.
func (Event) Indexes() []ent.Index {
	return []ent.Index{
		// Catch-up reads: WHERE channel = ? AND id > ? ORDER BY id
		index.Fields("channel", "id"),
		// Retention sweeps
		index.Fields("created_at"),
	}
}
