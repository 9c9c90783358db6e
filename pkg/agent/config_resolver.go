package agent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// DefaultIterationTimeout is the default per-iteration timeout.
// Each iteration (LLM call + tool execution) gets its own context.WithTimeout
// derived from the parent session context. This prevents a single stuck
// iteration from consuming the entire session budget.
const DefaultIterationTimeout = 120 * time.Second

// ResolveAgentConfig builds the final agent configuration by applying the
// hierarchy, lowest to highest precedence:
// system defaults → agent definition → chain → stage → stage-agent entry.
// Each non-null field overrides the accumulator.
func ResolveAgentConfig(
	cfg *config.Config,
	chain *config.ChainConfig,
	stageConfig config.StageConfig,
	agentConfig config.StageAgentConfig,
) (*ResolvedAgentConfig, error) {
	// Guard against nil chain to prevent nil pointer dereference
	// when accessing chain.LLMProvider and chain.MaxIterations
	if chain == nil {
		return nil, fmt.Errorf("chain configuration cannot be nil")
	}

	defaults := cfg.Defaults

	// Get agent definition (built-in or user-defined)
	agentDef, err := cfg.GetAgent(agentConfig.Name)
	if err != nil {
		return nil, fmt.Errorf("agent %q not found: %w", agentConfig.Name, err)
	}

	strategy := defaults.IterationStrategy
	if agentDef.IterationStrategy != "" {
		strategy = agentDef.IterationStrategy
	}
	if chain.IterationStrategy != "" {
		strategy = chain.IterationStrategy
	}
	if stageConfig.IterationStrategy != "" {
		strategy = stageConfig.IterationStrategy
	}
	if agentConfig.IterationStrategy != "" {
		strategy = agentConfig.IterationStrategy
	}

	providerName := defaults.LLMProvider
	if agentDef.LLMProvider != "" {
		providerName = agentDef.LLMProvider
	}
	if chain.LLMProvider != "" {
		providerName = chain.LLMProvider
	}
	if stageConfig.LLMProvider != "" {
		providerName = stageConfig.LLMProvider
	}
	if agentConfig.LLMProvider != "" {
		providerName = agentConfig.LLMProvider
	}
	provider, err := cfg.GetLLMProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("LLM provider %q not found: %w", providerName, err)
	}

	maxIter := config.DefaultMaxIterations
	if defaults.MaxIterations != nil {
		maxIter = *defaults.MaxIterations
	}
	if agentDef.MaxIterations != nil {
		maxIter = *agentDef.MaxIterations
	}
	if chain.MaxIterations != nil {
		maxIter = *chain.MaxIterations
	}
	if stageConfig.MaxIterations != nil {
		maxIter = *stageConfig.MaxIterations
	}
	if agentConfig.MaxIterations != nil {
		maxIter = *agentConfig.MaxIterations
	}

	forceConclusion := true
	if defaults.ForceConclusionAtMaxIterations != nil {
		forceConclusion = *defaults.ForceConclusionAtMaxIterations
	}
	if agentDef.ForceConclusionAtMaxIterations != nil {
		forceConclusion = *agentDef.ForceConclusionAtMaxIterations
	}
	if chain.ForceConclusionAtMaxIterations != nil {
		forceConclusion = *chain.ForceConclusionAtMaxIterations
	}
	if stageConfig.ForceConclusionAtMaxIterations != nil {
		forceConclusion = *stageConfig.ForceConclusionAtMaxIterations
	}
	if agentConfig.ForceConclusionAtMaxIterations != nil {
		forceConclusion = *agentConfig.ForceConclusionAtMaxIterations
	}

	var mcpServers []string
	if len(agentDef.MCPServers) > 0 {
		mcpServers = agentDef.MCPServers
	}
	if len(chain.MCPServers) > 0 {
		mcpServers = chain.MCPServers
	}
	if len(stageConfig.MCPServers) > 0 {
		mcpServers = stageConfig.MCPServers
	}
	if len(agentConfig.MCPServers) > 0 {
		mcpServers = agentConfig.MCPServers
	}

	resolved := &ResolvedAgentConfig{
		AgentName:          agentConfig.Name,
		IterationStrategy:  strategy,
		LLMProvider:        provider,
		LLMProviderName:    providerName,
		MaxIterations:      maxIter,
		IterationTimeout:   defaults.LLMIterationTimeoutDuration(),
		ForceConclusion:    forceConclusion,
		MCPServers:         mcpServers,
		CustomInstructions: agentDef.CustomInstructions,
	}
	if len(agentDef.NativeTools) > 0 {
		resolved.NativeToolsOverride = nativeToolsFromMap(agentDef.NativeTools)
	}
	return resolved, nil
}

// nativeToolsFromMap converts the per-agent native tool map into the
// override shape shared with alert-level selection.
func nativeToolsFromMap(m map[config.GoogleNativeTool]bool) *models.NativeToolsConfig {
	out := &models.NativeToolsConfig{}
	for tool, enabled := range m {
		v := enabled
		switch tool {
		case config.GoogleNativeToolGoogleSearch:
			out.GoogleSearch = &v
		case config.GoogleNativeToolCodeExecution:
			out.CodeExecution = &v
		case config.GoogleNativeToolURLContext:
			out.URLContext = &v
		}
	}
	return out
}

// ResolveSynthesisConfig builds the agent configuration for the synthesis
// step that follows a parallel stage. Hierarchy: defaults → synthesis agent
// definition → chain → stage synthesis block. Synthesis runs tool-less, so
// MCP servers are not resolved.
func ResolveSynthesisConfig(
	cfg *config.Config,
	chain *config.ChainConfig,
	stageConfig config.StageConfig,
) (*ResolvedAgentConfig, error) {
	if chain == nil {
		return nil, fmt.Errorf("chain configuration cannot be nil")
	}

	defaults := cfg.Defaults
	synthCfg := stageConfig.Synthesis

	agentName := "SynthesisAgent"
	if synthCfg != nil && synthCfg.Agent != "" {
		agentName = synthCfg.Agent
	}
	agentDef, err := cfg.GetAgent(agentName)
	if err != nil {
		return nil, fmt.Errorf("synthesis agent %q not found: %w", agentName, err)
	}

	strategy := config.IterationStrategySynthesis
	if agentDef.IterationStrategy.IsSynthesis() {
		strategy = agentDef.IterationStrategy
	}
	if synthCfg != nil && synthCfg.IterationStrategy != "" {
		strategy = synthCfg.IterationStrategy
	}

	providerName := defaults.LLMProvider
	if agentDef.LLMProvider != "" {
		providerName = agentDef.LLMProvider
	}
	if chain.LLMProvider != "" {
		providerName = chain.LLMProvider
	}
	if synthCfg != nil && synthCfg.LLMProvider != "" {
		providerName = synthCfg.LLMProvider
	}
	provider, err := cfg.GetLLMProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("LLM provider %q not found: %w", providerName, err)
	}

	maxIter := config.DefaultMaxIterations
	if defaults.MaxIterations != nil {
		maxIter = *defaults.MaxIterations
	}
	if synthCfg != nil && synthCfg.MaxIterations != nil {
		maxIter = *synthCfg.MaxIterations
	}

	return &ResolvedAgentConfig{
		AgentName:          agentName,
		IterationStrategy:  strategy,
		LLMProvider:        provider,
		LLMProviderName:    providerName,
		MaxIterations:      maxIter,
		IterationTimeout:   defaults.LLMIterationTimeoutDuration(),
		ForceConclusion:    true,
		CustomInstructions: agentDef.CustomInstructions,
	}, nil
}

// AggregateChainMCPServers collects the union of all MCP servers used by the
// chain's investigation stages. It checks stage-level overrides, stage-agent
// overrides, and the agent definitions from the registry. The union feeds
// chain-wide prompt context; each agent still only gets its own servers as
// callable tools.
func AggregateChainMCPServers(cfg *config.Config, chain *config.ChainConfig) []string {
	seen := make(map[string]struct{})
	var servers []string
	add := func(ids []string) {
		for _, s := range ids {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				servers = append(servers, s)
			}
		}
	}
	for _, stage := range chain.Stages {
		add(stage.MCPServers)
		for _, ag := range stage.Agents {
			add(ag.MCPServers)
			// Also resolve the agent definition to pick up its MCP servers.
			agentDef, err := cfg.GetAgent(ag.Name)
			if err != nil {
				slog.Warn("AggregateChainMCPServers: failed to resolve agent definition",
					"agent", ag.Name, "error", err)
				continue
			}
			add(agentDef.MCPServers)
		}
	}
	return servers
}
