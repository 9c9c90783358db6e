package config

import "time"

// DefaultMaxIterations is the system-wide LLM/MCP iteration cap applied
// when no level of the hierarchy overrides max_iterations.
const DefaultMaxIterations = 30

// DefaultLLMIterationTimeout bounds a single LLM call when
// llm_iteration_timeout is not configured.
const DefaultLLMIterationTimeout = 5 * time.Minute

// Defaults contains system-wide default configurations.
// These values form the lowest-precedence level of hierarchical resolution.
type Defaults struct {
	// LLM provider default for all agents/chains
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// System-wide LLM/MCP iteration cap (default 30)
	MaxIterations *int `yaml:"max_llm_mcp_iterations,omitempty" validate:"omitempty,min=1"`

	// When true (the default), agents conclude with a final no-tools call
	// at the iteration cap. Explicit false pauses for operator review instead.
	ForceConclusionAtMaxIterations *bool `yaml:"force_conclusion_at_max_iterations,omitempty"`

	// Upper bound for a single LLM call, in seconds (0 = built-in default)
	LLMIterationTimeout int `yaml:"llm_iteration_timeout,omitempty"`

	// Iteration strategy default
	IterationStrategy IterationStrategy `yaml:"iteration_strategy,omitempty"`

	// Success policy default for parallel stages
	SuccessPolicy SuccessPolicy `yaml:"success_policy,omitempty"`

	// Default alert type for new sessions (application state default)
	AlertType string `yaml:"alert_type,omitempty"`

	// Default runbook content for new sessions (application state default)
	Runbook string `yaml:"runbook,omitempty"`

	// Alert data masking configuration
	AlertMasking *AlertMaskingDefaults `yaml:"alert_masking,omitempty"`
}

// LLMIterationTimeoutDuration returns the configured per-call timeout,
// falling back to the built-in default when unset.
func (d *Defaults) LLMIterationTimeoutDuration() time.Duration {
	if d.LLMIterationTimeout > 0 {
		return time.Duration(d.LLMIterationTimeout) * time.Second
	}
	return DefaultLLMIterationTimeout
}

// AlertMaskingDefaults holds alert payload masking settings.
// Applied system-wide to all alert data before DB storage.
type AlertMaskingDefaults struct {
	Enabled      bool   `yaml:"enabled"`
	PatternGroup string `yaml:"pattern_group"`
}
