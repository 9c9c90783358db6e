package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Warning categories surfaced through the system warnings API.
const (
	WarningCategoryLLMProvider = "llm_provider" // Provider disabled (missing credential env)
	WarningCategoryConfig      = "config"       // Non-fatal config issues (deprecated keys)
)

// Warning is a non-fatal configuration issue detected at startup.
type Warning struct {
	Category string
	Message  string
	Details  string
	ServerID string
}

// ConfigValidator validates configuration comprehensively with clear error messages
type ConfigValidator struct {
	cfg      *Config
	warnings []Warning
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error).
// Soft issues (e.g. a provider credential env var that is not set) are
// collected as warnings instead of failing startup.
func (v *ConfigValidator) ValidateAll() error {
	// Validate in dependency order: agents and servers and providers
	// before the chains that reference them.

	if err := v.validateAgents(); err != nil {
		return fmt.Errorf("agent validation failed: %w", err)
	}

	if err := v.validateMCPServers(); err != nil {
		return fmt.Errorf("MCP server validation failed: %w", err)
	}

	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}

	if err := v.validateChains(); err != nil {
		return fmt.Errorf("chain validation failed: %w", err)
	}

	if err := v.validateQueue(); err != nil {
		return fmt.Errorf("queue validation failed: %w", err)
	}

	if err := v.validateRetention(); err != nil {
		return fmt.Errorf("retention validation failed: %w", err)
	}

	return nil
}

// Warnings returns the soft issues collected during validation.
func (v *ConfigValidator) Warnings() []Warning {
	return v.warnings
}

func (v *ConfigValidator) addWarning(category, message, details, serverID string) {
	v.warnings = append(v.warnings, Warning{
		Category: category,
		Message:  message,
		Details:  details,
		ServerID: serverID,
	})
}

func (v *ConfigValidator) validateAgents() error {
	for name, agent := range v.cfg.AgentRegistry.GetAll() {
		// Validate MCP servers exist
		if len(agent.MCPServers) == 0 {
			return NewValidationError("agent", name, "mcp_servers", fmt.Errorf("at least one MCP server required"))
		}

		for _, serverID := range agent.MCPServers {
			if !v.cfg.MCPServerRegistry.Has(serverID) {
				return NewValidationError("agent", name, "mcp_servers", fmt.Errorf("MCP server '%s' not found", serverID))
			}
		}

		// Validate iteration strategy if specified
		if agent.IterationStrategy != "" && !agent.IterationStrategy.IsValid() {
			return NewValidationError("agent", name, "iteration_strategy", fmt.Errorf("invalid strategy: %s", agent.IterationStrategy))
		}

		// Validate LLM provider if specified
		if agent.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(agent.LLMProvider) {
			return NewValidationError("agent", name, "llm_provider", fmt.Errorf("LLM provider '%s' not found", agent.LLMProvider))
		}

		// Validate max iterations if specified
		if agent.MaxIterations != nil && *agent.MaxIterations < 1 {
			return NewValidationError("agent", name, "max_iterations", fmt.Errorf("must be at least 1"))
		}
	}

	return nil
}

func (v *ConfigValidator) validateChains() error {
	chains := v.cfg.ChainRegistry.GetAll()

	// Each alert type must map to exactly one chain
	claimedBy := make(map[string]string)
	chainIDs := make([]string, 0, len(chains))
	for chainID := range chains {
		chainIDs = append(chainIDs, chainID)
	}
	sort.Strings(chainIDs)
	for _, chainID := range chainIDs {
		for _, at := range chains[chainID].AlertTypes {
			if owner, claimed := claimedBy[at]; claimed {
				return NewValidationError("chain", chainID, "alert_types",
					fmt.Errorf("alert type '%s' already claimed by chain '%s'", at, owner))
			}
			claimedBy[at] = chainID
		}
	}

	for chainID, chain := range chains {
		// Validate alert_types is not empty
		if len(chain.AlertTypes) == 0 {
			return NewValidationError("chain", chainID, "alert_types", fmt.Errorf("at least one alert type required"))
		}

		// Validate stages
		if len(chain.Stages) == 0 {
			return NewValidationError("chain", chainID, "stages", fmt.Errorf("at least one stage required"))
		}

		for i, stage := range chain.Stages {
			if err := v.validateStage(chainID, i, &stage); err != nil {
				return err
			}
		}

		// Validate chain-level iteration strategy if specified
		if chain.IterationStrategy != "" && !chain.IterationStrategy.IsValid() {
			return NewValidationError("chain", chainID, "iteration_strategy", fmt.Errorf("invalid strategy: %s", chain.IterationStrategy))
		}

		// Validate chain-level LLM provider if specified
		if chain.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(chain.LLMProvider) {
			return NewValidationError("chain", chainID, "llm_provider", fmt.Errorf("LLM provider '%s' not found", chain.LLMProvider))
		}

		// Validate executive summary provider if specified
		if chain.ExecutiveSummaryProvider != "" && !v.cfg.LLMProviderRegistry.Has(chain.ExecutiveSummaryProvider) {
			return NewValidationError("chain", chainID, "executive_summary_provider", fmt.Errorf("LLM provider '%s' not found", chain.ExecutiveSummaryProvider))
		}

		// Validate chain-level max iterations if specified
		if chain.MaxIterations != nil && *chain.MaxIterations < 1 {
			return NewValidationError("chain", chainID, "max_iterations", fmt.Errorf("must be at least 1"))
		}

		// Validate chain-level MCP servers if specified
		for _, serverID := range chain.MCPServers {
			if !v.cfg.MCPServerRegistry.Has(serverID) {
				return NewValidationError("chain", chainID, "mcp_servers", fmt.Errorf("MCP server '%s' not found", serverID))
			}
		}
	}

	return nil
}

func (v *ConfigValidator) validateStage(chainID string, stageIndex int, stage *StageConfig) error {
	stageRef := fmt.Sprintf("chain '%s' stage %d", chainID, stageIndex)

	// Validate stage name
	if stage.Name == "" {
		return fmt.Errorf("%s: stage name required", stageRef)
	}

	// Validate agents field (must have at least 1 agent)
	if len(stage.Agents) == 0 {
		return fmt.Errorf("%s: must specify at least one agent in 'agents' array", stageRef)
	}

	// Validate all agent references
	for _, agentConfig := range stage.Agents {
		if !v.cfg.AgentRegistry.Has(agentConfig.Name) {
			return fmt.Errorf("%s: agent '%s' not found", stageRef, agentConfig.Name)
		}

		// Validate agent-level iteration strategy if specified
		if agentConfig.IterationStrategy != "" && !agentConfig.IterationStrategy.IsValid() {
			return fmt.Errorf("%s: agent '%s' has invalid iteration_strategy: %s", stageRef, agentConfig.Name, agentConfig.IterationStrategy)
		}

		// Validate agent-level LLM provider if specified
		if agentConfig.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(agentConfig.LLMProvider) {
			return fmt.Errorf("%s: agent '%s' specifies LLM provider '%s' which is not found", stageRef, agentConfig.Name, agentConfig.LLMProvider)
		}

		// Validate agent-level max iterations if specified
		if agentConfig.MaxIterations != nil && *agentConfig.MaxIterations < 1 {
			return fmt.Errorf("%s: agent '%s' max_iterations must be at least 1", stageRef, agentConfig.Name)
		}

		// Validate agent-level MCP servers if specified
		for _, serverID := range agentConfig.MCPServers {
			if !v.cfg.MCPServerRegistry.Has(serverID) {
				return fmt.Errorf("%s: agent '%s' specifies MCP server '%s' which is not found", stageRef, agentConfig.Name, serverID)
			}
		}
	}

	// Validate replicas if specified
	if stage.Replicas < 0 {
		return fmt.Errorf("%s: replicas must be at least 1", stageRef)
	}

	// Replicas fan out a single agent entry; combining with a multi-agent
	// list would make branch identity ambiguous
	if stage.Replicas > 1 && len(stage.Agents) > 1 {
		return fmt.Errorf("%s: replicas > 1 requires a single agent entry", stageRef)
	}

	// Validate success policy if specified
	if stage.SuccessPolicy != "" && !stage.SuccessPolicy.IsValid() {
		return fmt.Errorf("%s: invalid success_policy: %s", stageRef, stage.SuccessPolicy)
	}

	// Validate stage-level iteration strategy if specified
	if stage.IterationStrategy != "" && !stage.IterationStrategy.IsValid() {
		return fmt.Errorf("%s: invalid iteration_strategy: %s", stageRef, stage.IterationStrategy)
	}

	// Validate stage-level LLM provider if specified
	if stage.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(stage.LLMProvider) {
		return fmt.Errorf("%s: LLM provider '%s' not found", stageRef, stage.LLMProvider)
	}

	// Validate stage-level max iterations if specified
	if stage.MaxIterations != nil && *stage.MaxIterations < 1 {
		return fmt.Errorf("%s: max_iterations must be at least 1", stageRef)
	}

	// Validate stage-level MCP servers if specified
	for _, serverID := range stage.MCPServers {
		if !v.cfg.MCPServerRegistry.Has(serverID) {
			return fmt.Errorf("%s: MCP server '%s' not found", stageRef, serverID)
		}
	}

	// Validate synthesis agent if specified
	if stage.Synthesis != nil {
		if stage.Synthesis.Agent != "" && !v.cfg.AgentRegistry.Has(stage.Synthesis.Agent) {
			return fmt.Errorf("%s: synthesis agent '%s' not found", stageRef, stage.Synthesis.Agent)
		}

		// Validate synthesis iteration strategy if specified
		if stage.Synthesis.IterationStrategy != "" && !stage.Synthesis.IterationStrategy.IsValid() {
			return fmt.Errorf("%s: synthesis has invalid iteration_strategy: %s", stageRef, stage.Synthesis.IterationStrategy)
		}

		// Validate synthesis LLM provider if specified
		if stage.Synthesis.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(stage.Synthesis.LLMProvider) {
			return fmt.Errorf("%s: synthesis specifies LLM provider '%s' which is not found", stageRef, stage.Synthesis.LLMProvider)
		}

		// Validate synthesis max iterations if specified
		if stage.Synthesis.MaxIterations != nil && *stage.Synthesis.MaxIterations < 1 {
			return fmt.Errorf("%s: synthesis max_iterations must be at least 1", stageRef)
		}
	}

	return nil
}

func (v *ConfigValidator) validateMCPServers() error {
	builtin := GetBuiltinConfig()

	for serverID, server := range v.cfg.MCPServerRegistry.GetAll() {
		// Validate transport type
		if !server.Transport.Type.IsValid() {
			return NewValidationError("mcp_server", serverID, "transport.type", fmt.Errorf("invalid transport type: %s", server.Transport.Type))
		}

		// Validate transport-specific fields
		switch server.Transport.Type {
		case TransportTypeStdio:
			if server.Transport.Command == "" {
				return NewValidationError("mcp_server", serverID, "transport.command", fmt.Errorf("command required for stdio transport"))
			}

		case TransportTypeHTTP, TransportTypeSSE:
			if server.Transport.URL == "" {
				return NewValidationError("mcp_server", serverID, "transport.url", fmt.Errorf("url required for %s transport", server.Transport.Type))
			}
		}

		// Bearer tokens must use the dedicated field so they cannot collide
		// with a manually supplied Authorization header
		if server.Transport.BearerToken != "" && server.Transport.HasAuthorizationHeader() {
			return NewValidationError("mcp_server", serverID, "transport.headers", fmt.Errorf("Authorization header conflicts with bearer_token; use bearer_token only"))
		}

		// Validate data masking configuration
		if server.DataMasking != nil && server.DataMasking.Enabled {
			// Validate pattern groups reference built-in patterns
			for _, groupName := range server.DataMasking.PatternGroups {
				if _, exists := builtin.PatternGroups[groupName]; !exists {
					return NewValidationError("mcp_server", serverID, "data_masking.pattern_groups", fmt.Errorf("pattern group '%s' not found", groupName))
				}
			}

			// Validate individual patterns reference built-in patterns
			for _, patternName := range server.DataMasking.Patterns {
				if _, exists := builtin.MaskingPatterns[patternName]; !exists {
					return NewValidationError("mcp_server", serverID, "data_masking.patterns", fmt.Errorf("pattern '%s' not found", patternName))
				}
			}

			// Validate custom patterns have required fields and compile
			for i, pattern := range server.DataMasking.CustomPatterns {
				if pattern.Pattern == "" {
					return NewValidationError("mcp_server", serverID, fmt.Sprintf("data_masking.custom_patterns[%d].pattern", i), fmt.Errorf("pattern required"))
				}
				if pattern.Replacement == "" {
					return NewValidationError("mcp_server", serverID, fmt.Sprintf("data_masking.custom_patterns[%d].replacement", i), fmt.Errorf("replacement required"))
				}
				if _, err := regexp.Compile(pattern.Pattern); err != nil {
					return NewValidationError("mcp_server", serverID, fmt.Sprintf("data_masking.custom_patterns[%d].pattern", i), fmt.Errorf("invalid regex: %v", err))
				}
			}
		}

		// Validate summarization configuration
		if server.Summarization != nil && !server.Summarization.SummarizationDisabled() {
			if server.Summarization.SizeThresholdTokens < 100 {
				return NewValidationError("mcp_server", serverID, "summarization.size_threshold_tokens", fmt.Errorf("must be at least 100"))
			}
			if server.Summarization.SummaryMaxTokenLimit > 0 && server.Summarization.SummaryMaxTokenLimit < 50 {
				return NewValidationError("mcp_server", serverID, "summarization.summary_max_token_limit", fmt.Errorf("must be at least 50 if specified"))
			}
		}
	}

	return nil
}

func (v *ConfigValidator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		// Validate provider type
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}

		// Validate model is not empty
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", fmt.Errorf("model required"))
		}

		// A missing credential env var disables the provider instead of
		// failing startup; selecting a disabled provider fails at call time
		missing := v.missingCredentialEnvs(provider)
		if len(missing) > 0 {
			provider.Disabled = true
			v.addWarning(WarningCategoryLLMProvider,
				fmt.Sprintf("LLM provider '%s' disabled", name),
				fmt.Sprintf("environment variable(s) not set: %s", strings.Join(missing, ", ")),
				"")
		}

		// Validate max tool result tokens
		if provider.MaxToolResultTokens < 1000 {
			return NewValidationError("llm_provider", name, "max_tool_result_tokens", fmt.Errorf("must be at least 1000"))
		}

		// Validate sampling settings if specified
		if provider.MaxTokens < 0 {
			return NewValidationError("llm_provider", name, "max_tokens", fmt.Errorf("must be non-negative"))
		}
		if provider.Temperature != nil && (*provider.Temperature < 0 || *provider.Temperature > 2) {
			return NewValidationError("llm_provider", name, "temperature", fmt.Errorf("must be between 0 and 2"))
		}
		if provider.ThinkingBudget != nil && *provider.ThinkingBudget < 0 {
			return NewValidationError("llm_provider", name, "thinking_budget", fmt.Errorf("must be non-negative"))
		}

		// Validate native tools (Google-specific)
		if provider.Type == LLMProviderTypeGoogle && provider.NativeTools != nil {
			for tool := range provider.NativeTools {
				if !tool.IsValid() {
					return NewValidationError("llm_provider", name, "native_tools", fmt.Errorf("invalid native tool: %s", tool))
				}
			}
		}
	}

	return nil
}

// missingCredentialEnvs returns the credential env var names a provider
// references that are not set in the environment.
func (v *ConfigValidator) missingCredentialEnvs(provider *LLMProviderConfig) []string {
	var missing []string
	check := func(envName string) {
		if envName == "" {
			return
		}
		if _, ok := os.LookupEnv(envName); !ok {
			missing = append(missing, envName)
		}
	}

	check(provider.APIKeyEnv)
	if provider.Type == LLMProviderTypeVertexAI {
		check(provider.ProjectEnv)
		check(provider.LocationEnv)
	}
	return missing
}

func (v *ConfigValidator) validateQueue() error {
	q := v.cfg.Queue
	if q == nil {
		return fmt.Errorf("queue configuration is nil")
	}

	if q.MaxQueueSize < 0 {
		return fmt.Errorf("max_queue_size must be non-negative (0 disables the limit), got %d", q.MaxQueueSize)
	}
	if q.WorkerCount < 1 || q.WorkerCount > 50 {
		return fmt.Errorf("worker_count must be between 1 and 50, got %d", q.WorkerCount)
	}
	if q.MaxConcurrentSessions < 1 {
		return fmt.Errorf("max_concurrent_sessions must be at least 1, got %d", q.MaxConcurrentSessions)
	}
	if q.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", q.PollInterval)
	}
	if q.PollIntervalJitter < 0 {
		return fmt.Errorf("poll_interval_jitter must be non-negative, got %v", q.PollIntervalJitter)
	}
	if q.PollIntervalJitter >= q.PollInterval {
		return fmt.Errorf("poll_interval_jitter must be less than poll_interval (%v >= %v)", q.PollIntervalJitter, q.PollInterval)
	}
	if q.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive, got %v", q.HeartbeatInterval)
	}
	if q.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive, got %v", q.SessionTimeout)
	}
	if q.GracefulShutdownTimeout <= 0 {
		return fmt.Errorf("graceful_shutdown_timeout must be positive, got %v", q.GracefulShutdownTimeout)
	}
	if q.OrphanDetectionInterval <= 0 {
		return fmt.Errorf("orphan_detection_interval must be positive, got %v", q.OrphanDetectionInterval)
	}
	if q.OrphanThreshold <= 0 {
		return fmt.Errorf("orphan_threshold must be positive, got %v", q.OrphanThreshold)
	}
	if q.HeartbeatInterval >= q.OrphanThreshold {
		return fmt.Errorf("heartbeat_interval must be less than orphan_threshold (%v >= %v)", q.HeartbeatInterval, q.OrphanThreshold)
	}

	return nil
}

func (v *ConfigValidator) validateRetention() error {
	r := v.cfg.Retention
	if r == nil {
		return fmt.Errorf("retention configuration is nil")
	}

	if r.SessionRetentionDays < 1 {
		return fmt.Errorf("session_retention_days must be at least 1, got %d", r.SessionRetentionDays)
	}
	if r.EventRetention <= 0 {
		return fmt.Errorf("event_retention must be positive, got %v", r.EventRetention)
	}
	if r.EventCleanupInterval <= 0 {
		return fmt.Errorf("event_cleanup_interval must be positive, got %v", r.EventCleanupInterval)
	}
	if r.SessionCleanupInterval <= 0 {
		return fmt.Errorf("session_cleanup_interval must be positive, got %v", r.SessionCleanupInterval)
	}

	return nil
}
