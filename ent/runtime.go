// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/event"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/mcpinteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/schema"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	alertsessionFields := schema.AlertSession{}.Fields()
	_ = alertsessionFields
	// alertsessionDescCreatedAt is the schema descriptor for created_at field.
	alertsessionDescCreatedAt := alertsessionFields[8].Descriptor()
	// alertsession.DefaultCreatedAt holds the default value on creation for the created_at field.
	alertsession.DefaultCreatedAt = alertsessionDescCreatedAt.Default.(func() time.Time)
	eventFields := schema.Event{}.Fields()
	_ = eventFields
	// eventDescCreatedAt is the schema descriptor for created_at field.
	eventDescCreatedAt := eventFields[3].Descriptor()
	// event.DefaultCreatedAt holds the default value on creation for the created_at field.
	event.DefaultCreatedAt = eventDescCreatedAt.Default.(func() time.Time)
	// eventDescID is the schema descriptor for id field.
	eventDescID := eventFields[0].Descriptor()
	// event.IDValidator is a validator for the "id" field. It is called by the builders before save.
	event.IDValidator = eventDescID.Validators[0].(func(int64) error)
	mcpinteractionFields := schema.MCPInteraction{}.Fields()
	_ = mcpinteractionFields
	// mcpinteractionDescSuccess is the schema descriptor for success field.
	mcpinteractionDescSuccess := mcpinteractionFields[11].Descriptor()
	// mcpinteraction.DefaultSuccess holds the default value on creation for the success field.
	mcpinteraction.DefaultSuccess = mcpinteractionDescSuccess.Default.(bool)
	stageexecutionFields := schema.StageExecution{}.Fields()
	_ = stageexecutionFields
	// stageexecutionDescCurrentIteration is the schema descriptor for current_iteration field.
	stageexecutionDescCurrentIteration := stageexecutionFields[15].Descriptor()
	// stageexecution.DefaultCurrentIteration holds the default value on creation for the current_iteration field.
	stageexecution.DefaultCurrentIteration = stageexecutionDescCurrentIteration.Default.(int)
}
