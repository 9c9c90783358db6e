// Package configs provides programmatic chain configurations for e2e tests.
// Configs are built in code (not YAML) for type safety and to avoid file path issues.
package configs

import (
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

// investigator is the standard native-thinking agent most scenarios use.
func investigator(maxIterations int) *config.AgentConfig {
	return &config.AgentConfig{
		IterationStrategy: config.IterationStrategyNativeThinking,
		MaxIterations:     intPtr(maxIterations),
		MCPServers:        []string{"test-mcp"},
	}
}

// baseConfig assembles the parts every test chain shares: a single
// Google test provider, a single stdio MCP server, and one "test-chain"
// handling "test-alert".
func baseConfig(defaults *config.Defaults, agents map[string]*config.AgentConfig, stages []config.StageConfig) *config.Config {
	return &config.Config{
		Defaults:      defaults,
		AgentRegistry: config.NewAgentRegistry(agents),
		LLMProviderRegistry: config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
			"test-provider": {Type: config.LLMProviderTypeGoogle, Model: "test-model"},
		}),
		ChainRegistry: config.NewChainRegistry(map[string]*config.ChainConfig{
			"test-chain": {
				AlertTypes: []string{"test-alert"},
				Stages:     stages,
			},
		}),
		MCPServerRegistry: config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
			"test-mcp": {Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "mock"}},
		}),
	}
}

func defaultsWith(maxIterations int) *config.Defaults {
	return &config.Defaults{
		LLMProvider:       "test-provider",
		IterationStrategy: config.IterationStrategyNativeThinking,
		MaxIterations:     intPtr(maxIterations),
	}
}

// SingleStageConfig creates a minimal 1-stage, 1-agent config with MCP tools.
func SingleStageConfig() *config.Config {
	return baseConfig(
		defaultsWith(3),
		map[string]*config.AgentConfig{"DataCollector": investigator(3)},
		[]config.StageConfig{
			{Name: "investigation", Agents: []config.StageAgentConfig{
				{Name: "DataCollector"},
			}},
		},
	)
}

// FullFlowConfig creates a multi-stage chain with parallel agents and
// mixed iteration strategies.
func FullFlowConfig() *config.Config {
	return &config.Config{
		Defaults: &config.Defaults{
			LLMProvider:       "google-test",
			IterationStrategy: config.IterationStrategyNativeThinking,
			MaxIterations:     intPtr(3),
		},
		AgentRegistry: config.NewAgentRegistry(map[string]*config.AgentConfig{
			"DataCollector": {
				IterationStrategy:  config.IterationStrategyNativeThinking,
				MaxIterations:      intPtr(3),
				MCPServers:         []string{"test-mcp"},
				CustomInstructions: "You are DataCollector, gathering system metrics and logs.",
			},
			"Investigator": {
				MaxIterations:      intPtr(3),
				MCPServers:         []string{"test-mcp"},
				CustomInstructions: "You are Investigator, analyzing incidents in depth.",
			},
			"Diagnostician": {
				IterationStrategy:  config.IterationStrategyNativeThinking,
				MaxIterations:      intPtr(3),
				CustomInstructions: "You are Diagnostician, providing final root cause analysis.",
			},
			"SynthesisAgent": {
				IterationStrategy: config.IterationStrategySynthesis,
				MCPServers:        []string{"test-mcp"},
			},
		}),
		LLMProviderRegistry: config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
			"google-test": {Type: config.LLMProviderTypeGoogle, Model: "gemini-test"},
			"openai-test": {Type: config.LLMProviderTypeOpenAI, Model: "gpt-test"},
		}),
		ChainRegistry: config.NewChainRegistry(map[string]*config.ChainConfig{
			"kubernetes-oom": {
				AlertTypes: []string{"kubernetes-oom"},
				Stages: []config.StageConfig{
					{Name: "data-collection", Agents: []config.StageAgentConfig{
						{Name: "DataCollector"},
					}},
					{Name: "parallel-investigation", Agents: []config.StageAgentConfig{
						{Name: "Investigator", LLMProvider: "google-test", IterationStrategy: config.IterationStrategyNativeThinking},
						{Name: "Investigator", LLMProvider: "openai-test", IterationStrategy: config.IterationStrategyReact},
					}, SuccessPolicy: config.SuccessPolicyAny},
					{Name: "final-diagnosis", Agents: []config.StageAgentConfig{
						{Name: "Diagnostician"},
					}},
				},
			},
		}),
		MCPServerRegistry: config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
			"test-mcp": {Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "mock"}},
		}),
	}
}

// TwoStageFailFastConfig creates a 2-stage chain where stage 1 failure prevents stage 2.
func TwoStageFailFastConfig() *config.Config {
	return baseConfig(
		defaultsWith(3),
		map[string]*config.AgentConfig{"Investigator": investigator(3)},
		[]config.StageConfig{
			{Name: "stage-1", Agents: []config.StageAgentConfig{{Name: "Investigator"}}},
			{Name: "stage-2", Agents: []config.StageAgentConfig{{Name: "Investigator"}}},
		},
	)
}

// ParallelConfig creates a single-stage chain with 2 parallel agents.
func ParallelConfig(policy config.SuccessPolicy) *config.Config {
	return baseConfig(
		defaultsWith(3),
		map[string]*config.AgentConfig{
			"Agent1": {
				IterationStrategy:  config.IterationStrategyNativeThinking,
				MaxIterations:      intPtr(3),
				MCPServers:         []string{"test-mcp"},
				CustomInstructions: "You are Agent1, specializing in infrastructure analysis.",
			},
			"Agent2": {
				IterationStrategy:  config.IterationStrategyNativeThinking,
				MaxIterations:      intPtr(3),
				MCPServers:         []string{"test-mcp"},
				CustomInstructions: "You are Agent2, specializing in application analysis.",
			},
			"SynthesisAgent": {
				IterationStrategy:  config.IterationStrategySynthesis,
				MCPServers:         []string{"test-mcp"},
				CustomInstructions: "You are SynthesisAgent, synthesizing parallel investigation results.",
			},
		},
		[]config.StageConfig{
			{Name: "parallel-stage", Agents: []config.StageAgentConfig{
				{Name: "Agent1"},
				{Name: "Agent2"},
			}, SuccessPolicy: policy},
		},
	)
}

// ReplicaConfig creates a single-stage chain with replicas.
func ReplicaConfig(replicaCount int) *config.Config {
	return baseConfig(
		defaultsWith(3),
		map[string]*config.AgentConfig{
			"Investigator": investigator(3),
			"SynthesisAgent": {
				IterationStrategy: config.IterationStrategySynthesis,
				MCPServers:        []string{"test-mcp"},
			},
		},
		[]config.StageConfig{
			{Name: "replicated-stage", Agents: []config.StageAgentConfig{
				{Name: "Investigator"},
			}, Replicas: replicaCount},
		},
	)
}

// PausableConfig creates a single-stage chain that pauses at the iteration
// cap instead of forcing a conclusion. MaxIterations=1 so a single tool
// call exhausts the budget.
func PausableConfig() *config.Config {
	defaults := defaultsWith(1)
	defaults.ForceConclusionAtMaxIterations = boolPtr(false)
	return baseConfig(
		defaults,
		map[string]*config.AgentConfig{"Investigator": investigator(1)},
		[]config.StageConfig{
			{Name: "investigation", Agents: []config.StageAgentConfig{
				{Name: "Investigator"},
			}},
		},
	)
}

// ReactConfig creates a single-stage chain running the ReAct strategy.
func ReactConfig() *config.Config {
	cfg := SingleStageConfig()
	cfg.Defaults.IterationStrategy = config.IterationStrategyReact
	cfg.AgentRegistry = config.NewAgentRegistry(map[string]*config.AgentConfig{
		"DataCollector": {
			IterationStrategy: config.IterationStrategyReact,
			MaxIterations:     intPtr(3),
			MCPServers:        []string{"test-mcp"},
		},
	})
	return cfg
}

// ForcedConclusionConfig creates a chain with MaxIterations=2 for forced conclusion testing.
func ForcedConclusionConfig() *config.Config {
	return baseConfig(
		defaultsWith(2),
		map[string]*config.AgentConfig{"Investigator": investigator(2)},
		[]config.StageConfig{
			{Name: "investigation", Agents: []config.StageAgentConfig{
				{Name: "Investigator"},
			}},
		},
	)
}
