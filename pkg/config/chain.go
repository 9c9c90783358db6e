package config

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ChainConfig defines a multi-stage agent chain configuration
type ChainConfig struct {
	// Chain ID, populated from the agent_chains map key at load time
	ID string `yaml:"-"`

	// Alert types this chain handles (required, min 1)
	AlertTypes []string `yaml:"alert_types" validate:"required,min=1"`

	// Human-readable description
	Description string `yaml:"description,omitempty"`

	// Stages to execute (required, min 1)
	Stages []StageConfig `yaml:"stages" validate:"required,min=1,dive"`

	// Optional chat configuration
	Chat *ChatConfig `yaml:"chat,omitempty"`

	// Chain-level LLM provider override
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// LLM provider for executive summary generation (overrides LLMProvider for this purpose)
	ExecutiveSummaryProvider string `yaml:"executive_summary_provider,omitempty"`

	// Chain-level iteration strategy override
	IterationStrategy IterationStrategy `yaml:"iteration_strategy,omitempty"`

	// Chain-level max iterations override
	MaxIterations *int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// Chain-level force-conclusion override
	ForceConclusionAtMaxIterations *bool `yaml:"force_conclusion_at_max_iterations,omitempty"`

	// Chain-level MCP servers override
	MCPServers []string `yaml:"mcp_servers,omitempty"`

	// Set when the deprecated chat_enabled key was rewritten; the loader
	// surfaces it as a system warning.
	usedLegacyChatEnabled bool
}

// chainAllowedKeys are the YAML keys accepted in a chain mapping.
// Kept in sync with the struct tags on ChainConfig; chat_enabled is the
// deprecated spelling of chat.enabled.
var chainAllowedKeys = map[string]bool{
	"alert_types":                        true,
	"description":                        true,
	"stages":                             true,
	"chat":                               true,
	"chat_enabled":                       true,
	"llm_provider":                       true,
	"executive_summary_provider":         true,
	"iteration_strategy":                 true,
	"max_iterations":                     true,
	"force_conclusion_at_max_iterations": true,
	"mcp_servers":                        true,
}

// UnmarshalYAML implements strict chain parsing: unknown keys are rejected,
// and the legacy chat_enabled bool is rewritten to chat: {enabled: bool}
// unless the new form is already present.
func (c *ChainConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("chain config must be a mapping, got %v", value.Tag)
	}

	hasChat := false
	var legacyChatEnabled *bool
	for j := 0; j < len(value.Content)-1; j += 2 {
		key := value.Content[j].Value
		if !chainAllowedKeys[key] {
			return fmt.Errorf("unknown field %q in chain config", key)
		}
		switch key {
		case "chat":
			hasChat = true
		case "chat_enabled":
			var enabled bool
			if err := value.Content[j+1].Decode(&enabled); err != nil {
				return fmt.Errorf("chat_enabled: %w", err)
			}
			legacyChatEnabled = &enabled
		}
	}

	// Decode through an alias type to avoid recursion; chat_enabled has no
	// struct tag so the typed decode ignores it.
	type plainChain ChainConfig
	var plain plainChain
	if err := value.Decode(&plain); err != nil {
		return err
	}
	*c = ChainConfig(plain)

	if legacyChatEnabled != nil && !hasChat {
		c.Chat = &ChatConfig{Enabled: *legacyChatEnabled}
		c.usedLegacyChatEnabled = true
	}
	return nil
}

// UsedLegacyChatEnabled reports whether this chain was configured with the
// deprecated chat_enabled key.
func (c *ChainConfig) UsedLegacyChatEnabled() bool {
	return c.usedLegacyChatEnabled
}

// StageConfig defines a single stage in a chain
type StageConfig struct {
	// Stage name (required)
	Name string `yaml:"name" validate:"required"`

	// Agents to execute (always use array, min 1)
	// Single agent: [{name: "AgentName"}]
	// Multiple agents: [{name: "Agent1"}, {name: "Agent2"}]
	Agents []StageAgentConfig `yaml:"agents" validate:"required,min=1,dive"`

	// Replicas for simple redundancy (default: 1)
	// Runs the single agent entry N times with the same config
	Replicas int `yaml:"replicas,omitempty" validate:"omitempty,min=1"`

	// Success policy for parallel execution ("all" or "any")
	SuccessPolicy SuccessPolicy `yaml:"success_policy,omitempty"`

	// Stage-level iteration strategy override
	IterationStrategy IterationStrategy `yaml:"iteration_strategy,omitempty"`

	// Stage-level LLM provider override
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// Stage-level max iterations override
	MaxIterations *int `yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// Stage-level force-conclusion override
	ForceConclusionAtMaxIterations *bool `yaml:"force_conclusion_at_max_iterations,omitempty"`

	// Stage-level MCP servers override
	MCPServers []string `yaml:"mcp_servers,omitempty"`

	// Optional synthesis configuration (for parallel execution)
	Synthesis *SynthesisConfig `yaml:"synthesis,omitempty"`
}

// IsParallel reports whether the stage fans out into parallel branches.
func (s *StageConfig) IsParallel() bool {
	return len(s.Agents) > 1 || s.Replicas > 1
}

// ChainRegistry stores chain configurations in memory with thread-safe access
type ChainRegistry struct {
	chains map[string]*ChainConfig
	mu     sync.RWMutex
}

// NewChainRegistry creates a new chain registry
func NewChainRegistry(chains map[string]*ChainConfig) *ChainRegistry {
	// Defensive copy to prevent external mutation
	copied := make(map[string]*ChainConfig, len(chains))
	for k, v := range chains {
		copied[k] = v
	}
	return &ChainRegistry{
		chains: copied,
	}
}

// Get retrieves a chain configuration by ID (thread-safe)
func (r *ChainRegistry) Get(chainID string) (*ChainConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, exists := r.chains[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}
	return chain, nil
}

// GetByAlertType retrieves the chain that handles the given alert type (thread-safe)
func (r *ChainRegistry) GetByAlertType(alertType string) (*ChainConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chainID := r.findChainIDByAlertType(alertType)
	if chainID == "" {
		return nil, fmt.Errorf("%w for alert type: %s", ErrChainNotFound, alertType)
	}
	return r.chains[chainID], nil
}

// GetIDByAlertType retrieves the chain ID that handles the given alert type (thread-safe)
func (r *ChainRegistry) GetIDByAlertType(alertType string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chainID := r.findChainIDByAlertType(alertType)
	if chainID == "" {
		return "", fmt.Errorf("%w for alert type: %s", ErrChainNotFound, alertType)
	}
	return chainID, nil
}

// findChainIDByAlertType is an unexported helper that assumes the lock is held
func (r *ChainRegistry) findChainIDByAlertType(alertType string) string {
	for chainID, chain := range r.chains {
		for _, at := range chain.AlertTypes {
			if at == alertType {
				return chainID
			}
		}
	}
	return ""
}

// AlertTypes returns a sorted list of every alert type claimed by any chain.
// Used for "unknown alert type" API errors that list the known types.
func (r *ChainRegistry) AlertTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, chain := range r.chains {
		for _, at := range chain.AlertTypes {
			seen[at] = true
		}
	}
	types := make([]string, 0, len(seen))
	for at := range seen {
		types = append(types, at)
	}
	sort.Strings(types)
	return types
}

// GetAll returns all chain configurations (thread-safe, returns copy)
func (r *ChainRegistry) GetAll() map[string]*ChainConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Return a copy to prevent external modification
	result := make(map[string]*ChainConfig, len(r.chains))
	for k, v := range r.chains {
		result[k] = v
	}
	return result
}

// Has checks if a chain exists in the registry (thread-safe)
func (r *ChainRegistry) Has(chainID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.chains[chainID]
	return exists
}

// Len returns the number of chains in the registry (thread-safe)
func (r *ChainRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}
