package models

import (
	"encoding/json"
	"fmt"
)

// CreateStageExecutionRequest contains fields for creating a stage execution record.
// Parent records for parallel stages leave IterationStrategy nil and carry the
// ParallelType; branch records set ParentStageExecutionID and ParallelIndex.
type CreateStageExecutionRequest struct {
	ExecutionID            string  `json:"execution_id"`
	SessionID              string  `json:"session_id"`
	StageID                string  `json:"stage_id"`
	StageIndex             int     `json:"stage_index"`
	StageName              string  `json:"stage_name"`
	Agent                  string  `json:"agent"`
	IterationStrategy      *string `json:"iteration_strategy,omitempty"`
	ParentStageExecutionID *string `json:"parent_stage_execution_id,omitempty"`
	ParallelIndex          *int    `json:"parallel_index,omitempty"`
	ParallelType           string  `json:"parallel_type,omitempty"`
}

// StageOutput is the structured result a completed stage stores for
// downstream stages to consume.
type StageOutput struct {
	Status       string `json:"status"`
	FinalAnswer  string `json:"final_answer,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Iterations   int    `json:"iterations,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
}

// ToMap converts the output to the raw JSON map shape stored on stage executions
func (o StageOutput) ToMap() (map[string]any, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stage output: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert stage output: %w", err)
	}
	return out, nil
}

// ParseStageOutput converts a stored stage_output map back into typed form.
// Returns the zero value for absent input; unknown keys are ignored.
func ParseStageOutput(raw map[string]any) (StageOutput, error) {
	var out StageOutput
	if len(raw) == 0 {
		return out, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("failed to marshal stage output: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse stage output: %w", err)
	}
	return out, nil
}
