package models

import (
	"encoding/json"
	"fmt"
)

// PauseReasonMaxIterations is the only pause reason today: the iteration
// cap was hit with force_conclusion_at_max_iterations disabled.
const PauseReasonMaxIterations = "max_iterations_reached"

// PausedExecutionState captures what a paused stage execution needs to resume:
// the conversation so far and where in the iteration loop it stopped.
type PausedExecutionState struct {
	ExecutionID      string           `json:"execution_id"`
	StageID          string           `json:"stage_id"`
	StageIndex       int              `json:"stage_index"`
	Reason           string           `json:"reason"`
	CurrentIteration int              `json:"current_iteration"`
	Conversation     []map[string]any `json:"conversation,omitempty"`
	PausedAtUs       int64            `json:"paused_at_us"`
}

// PauseMetadata maps execution IDs to their paused state. Stored on the
// session between pause and resume rehydration, cleared afterwards.
type PauseMetadata map[string]PausedExecutionState

// ParsePauseMetadata converts the raw JSON map stored on a session into
// typed pause metadata. Returns nil for absent or empty input.
func ParsePauseMetadata(raw map[string]interface{}) (PauseMetadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pause metadata: %w", err)
	}

	var meta PauseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse pause metadata: %w", err)
	}
	return meta, nil
}

// ToMap converts pause metadata back to the raw JSON map shape stored on sessions
func (m PauseMetadata) ToMap() (map[string]interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pause metadata: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert pause metadata: %w", err)
	}
	return out, nil
}
