package config

import "strings"

// Shared types used across configuration structs

// TransportConfig defines MCP server transport configuration
type TransportConfig struct {
	Type TransportType `yaml:"type" validate:"required"`

	// For stdio transport
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"` // Environment overrides for stdio subprocess

	// For http/sse transport
	URL         string            `yaml:"url,omitempty"`
	BearerToken string            `yaml:"bearer_token,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"` // Extra HTTP headers; must not include Authorization
	VerifySSL   *bool             `yaml:"verify_ssl,omitempty"`
	Timeout     int               `yaml:"timeout,omitempty"` // In seconds
}

// HasAuthorizationHeader reports whether Headers carries an Authorization
// entry (any casing). Bearer tokens must use the dedicated field instead.
func (t *TransportConfig) HasAuthorizationHeader() bool {
	for name := range t.Headers {
		if strings.EqualFold(name, "Authorization") {
			return true
		}
	}
	return false
}

// MaskingConfig defines data masking configuration for MCP servers
type MaskingConfig struct {
	Enabled        bool             `yaml:"enabled"`
	PatternGroups  []string         `yaml:"pattern_groups,omitempty"`
	Patterns       []string         `yaml:"patterns,omitempty"`
	CustomPatterns []MaskingPattern `yaml:"custom_patterns,omitempty"`
}

// MaskingPattern defines a regex-based masking pattern
type MaskingPattern struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Replacement string `yaml:"replacement" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// DefaultSizeThresholdTokens is the default token count above which MCP
// responses are summarized (when summarization is enabled).
const DefaultSizeThresholdTokens = 5000

// SummarizationConfig defines when and how to summarize large MCP responses.
// Enabled is a *bool: nil means "use default" (enabled), explicit false disables.
type SummarizationConfig struct {
	Enabled              *bool `yaml:"enabled,omitempty"`
	SizeThresholdTokens  int   `yaml:"size_threshold_tokens,omitempty" validate:"omitempty,min=100"`
	SummaryMaxTokenLimit int   `yaml:"summary_max_token_limit,omitempty" validate:"omitempty,min=50"`
}

// SummarizationDisabled returns true only when Enabled is explicitly set to false.
func (c *SummarizationConfig) SummarizationDisabled() bool {
	return c.Enabled != nil && !*c.Enabled
}

// BoolPtr returns a pointer to b. Convenience for *bool struct fields.
func BoolPtr(b bool) *bool { return &b }

// StageAgentConfig represents an agent reference with per-entry overrides.
// Used in stage.agents[] array (even for single-agent stages).
// Parallel execution occurs when: len(agents) > 1 OR replicas > 1.
// Override fields participate in hierarchical resolution at the
// parallel-agent level (highest precedence).
type StageAgentConfig struct {
	Name                           string            `yaml:"name" validate:"required"`
	IterationStrategy              IterationStrategy `yaml:"iteration_strategy,omitempty"`
	LLMProvider                    string            `yaml:"llm_provider,omitempty"`
	MaxIterations                  *int              `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`
	ForceConclusionAtMaxIterations *bool             `yaml:"force_conclusion_at_max_iterations,omitempty"`
	MCPServers                     []string          `yaml:"mcp_servers,omitempty"`
}

// SynthesisConfig defines the synthesis step of a parallel stage
type SynthesisConfig struct {
	Agent             string            `yaml:"agent,omitempty"`
	IterationStrategy IterationStrategy `yaml:"iteration_strategy,omitempty"`
	LLMProvider       string            `yaml:"llm_provider,omitempty"`
	MaxIterations     *int              `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`
}

// ChatConfig marks whether follow-up chat is available for a chain's
// sessions. Kept minimal: the legacy chat_enabled key rewrites into it.
type ChatConfig struct {
	Enabled bool `yaml:"enabled"`
}
