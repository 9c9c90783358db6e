package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAgents(t *testing.T) {
	tests := []struct {
		name      string
		agents    map[string]*AgentConfig
		servers   map[string]*MCPServerConfig
		providers map[string]*LLMProviderConfig
		wantErr   bool
		errMsg    string
	}{
		{
			name: "valid agent",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers: []string{"test-server"},
				},
			},
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{Type: TransportTypeStdio, Command: "test"},
				},
			},
			wantErr: false,
		},
		{
			name: "agent with no MCP servers",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers: []string{},
				},
			},
			servers: map[string]*MCPServerConfig{},
			wantErr: true,
			errMsg:  "at least one MCP server required",
		},
		{
			name: "agent with invalid MCP server reference",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers: []string{"nonexistent-server"},
				},
			},
			servers: map[string]*MCPServerConfig{},
			wantErr: true,
			errMsg:  "MCP server 'nonexistent-server' not found",
		},
		{
			name: "agent with invalid iteration strategy",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers:        []string{"test-server"},
					IterationStrategy: "invalid-strategy",
				},
			},
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{Type: TransportTypeStdio, Command: "test"},
				},
			},
			wantErr: true,
			errMsg:  "invalid strategy",
		},
		{
			name: "agent with unknown LLM provider",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers:  []string{"test-server"},
					LLMProvider: "nonexistent-provider",
				},
			},
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{Type: TransportTypeStdio, Command: "test"},
				},
			},
			wantErr: true,
			errMsg:  "LLM provider 'nonexistent-provider' not found",
		},
		{
			name: "agent with zero max iterations",
			agents: map[string]*AgentConfig{
				"test-agent": {
					MCPServers:    []string{"test-server"},
					MaxIterations: intPtr(0),
				},
			},
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{Type: TransportTypeStdio, Command: "test"},
				},
			},
			wantErr: true,
			errMsg:  "must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				AgentRegistry:       NewAgentRegistry(tt.agents),
				MCPServerRegistry:   NewMCPServerRegistry(tt.servers),
				LLMProviderRegistry: NewLLMProviderRegistry(tt.providers),
			}

			validator := NewValidator(cfg)
			err := validator.validateAgents()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChains(t *testing.T) {
	tests := []struct {
		name      string
		chains    map[string]*ChainConfig
		agents    map[string]*AgentConfig
		providers map[string]*LLMProviderConfig
		servers   map[string]*MCPServerConfig
		wantErr   bool
		errMsg    string
	}{
		{
			name: "valid chain",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name: "stage1",
							Agents: []StageAgentConfig{
								{Name: "test-agent"},
							},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   false,
		},
		{
			name: "chain with no alert types",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{},
					Stages: []StageConfig{
						{
							Name:   "stage1",
							Agents: []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents:    map[string]*AgentConfig{},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "at least one alert type required",
		},
		{
			name: "chain with no stages",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages:     []StageConfig{},
				},
			},
			agents:    map[string]*AgentConfig{},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "at least one stage required",
		},
		{
			name: "chain with invalid agent reference",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name: "stage1",
							Agents: []StageAgentConfig{
								{Name: "nonexistent-agent"},
							},
						},
					},
				},
			},
			agents:    map[string]*AgentConfig{},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "agent 'nonexistent-agent' not found",
		},
		{
			name: "chain with invalid LLM provider",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes:  []string{"test"},
					LLMProvider: "invalid-provider",
					Stages: []StageConfig{
						{
							Name:   "stage1",
							Agents: []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "LLM provider 'invalid-provider' not found",
		},
		{
			name: "chain with invalid executive summary provider",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes:               []string{"test"},
					ExecutiveSummaryProvider: "invalid-provider",
					Stages: []StageConfig{
						{
							Name:   "stage1",
							Agents: []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "LLM provider 'invalid-provider' not found",
		},
		{
			name: "two chains claim the same alert type",
			chains: map[string]*ChainConfig{
				"chain-a": {
					AlertTypes: []string{"kubernetes"},
					Stages: []StageConfig{
						{Name: "stage1", Agents: []StageAgentConfig{{Name: "test-agent"}}},
					},
				},
				"chain-b": {
					AlertTypes: []string{"kubernetes"},
					Stages: []StageConfig{
						{Name: "stage1", Agents: []StageAgentConfig{{Name: "test-agent"}}},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "alert type 'kubernetes' already claimed by chain 'chain-a'",
		},
		{
			name: "replicas with multiple agents",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name:     "stage1",
							Replicas: 3,
							Agents: []StageAgentConfig{
								{Name: "test-agent"},
								{Name: "other-agent"},
							},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent":  {MCPServers: []string{"test"}},
				"other-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "replicas > 1 requires a single agent entry",
		},
		{
			name: "replicas with single agent is valid",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name:     "stage1",
							Replicas: 3,
							Agents:   []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   false,
		},
		{
			name: "negative replicas",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name:     "stage1",
							Replicas: -1,
							Agents:   []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "replicas must be at least 1",
		},
		{
			name: "synthesis with unknown agent",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name: "stage1",
							Agents: []StageAgentConfig{
								{Name: "test-agent"},
								{Name: "test-agent"},
							},
							Synthesis: &SynthesisConfig{Agent: "missing-agent"},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "synthesis agent 'missing-agent' not found",
		},
		{
			name: "invalid success policy",
			chains: map[string]*ChainConfig{
				"test-chain": {
					AlertTypes: []string{"test"},
					Stages: []StageConfig{
						{
							Name:          "stage1",
							SuccessPolicy: "most",
							Agents:        []StageAgentConfig{{Name: "test-agent"}},
						},
					},
				},
			},
			agents: map[string]*AgentConfig{
				"test-agent": {MCPServers: []string{"test"}},
			},
			providers: map[string]*LLMProviderConfig{},
			wantErr:   true,
			errMsg:    "invalid success_policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				ChainRegistry:       NewChainRegistry(tt.chains),
				AgentRegistry:       NewAgentRegistry(tt.agents),
				LLMProviderRegistry: NewLLMProviderRegistry(tt.providers),
				MCPServerRegistry:   NewMCPServerRegistry(tt.servers),
			}

			validator := NewValidator(cfg)
			err := validator.validateChains()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMCPServers(t *testing.T) {
	builtin := GetBuiltinConfig()

	tests := []struct {
		name    string
		servers map[string]*MCPServerConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid stdio server",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test-command",
					},
				},
			},
			wantErr: false,
		},
		{
			name: "valid http server",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type: TransportTypeHTTP,
						URL:  "http://example.com",
					},
				},
			},
			wantErr: false,
		},
		{
			name: "invalid transport type",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type: "invalid",
					},
				},
			},
			wantErr: true,
			errMsg:  "invalid transport type",
		},
		{
			name: "stdio server missing command",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type: TransportTypeStdio,
					},
				},
			},
			wantErr: true,
			errMsg:  "command required for stdio transport",
		},
		{
			name: "http server missing url",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type: TransportTypeHTTP,
					},
				},
			},
			wantErr: true,
			errMsg:  "url required for http transport",
		},
		{
			name: "sse server missing url",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type: TransportTypeSSE,
					},
				},
			},
			wantErr: true,
			errMsg:  "url required for sse transport",
		},
		{
			name: "bearer token with manual Authorization header",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:        TransportTypeHTTP,
						URL:         "http://example.com",
						BearerToken: "secret",
						Headers:     map[string]string{"authorization": "Bearer other"},
					},
				},
			},
			wantErr: true,
			errMsg:  "Authorization header conflicts with bearer_token",
		},
		{
			name: "bearer token alone is valid",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:        TransportTypeHTTP,
						URL:         "http://example.com",
						BearerToken: "secret",
						Headers:     map[string]string{"X-Custom": "value"},
					},
				},
			},
			wantErr: false,
		},
		{
			name: "invalid pattern group",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test",
					},
					DataMasking: &MaskingConfig{
						Enabled:       true,
						PatternGroups: []string{"nonexistent-group"},
					},
				},
			},
			wantErr: true,
			errMsg:  "pattern group 'nonexistent-group' not found",
		},
		{
			name: "invalid individual pattern",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test",
					},
					DataMasking: &MaskingConfig{
						Enabled:  true,
						Patterns: []string{"nonexistent-pattern"},
					},
				},
			},
			wantErr: true,
			errMsg:  "pattern 'nonexistent-pattern' not found",
		},
		{
			name: "custom pattern with invalid regex",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test",
					},
					DataMasking: &MaskingConfig{
						Enabled: true,
						CustomPatterns: []MaskingPattern{
							{Pattern: "([unclosed", Replacement: "MASKED"},
						},
					},
				},
			},
			wantErr: true,
			errMsg:  "invalid regex",
		},
		{
			name: "summarization threshold too low",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test",
					},
					Summarization: &SummarizationConfig{
						SizeThresholdTokens: 50,
					},
				},
			},
			wantErr: true,
			errMsg:  "must be at least 100",
		},
		{
			name: "disabled summarization skips threshold checks",
			servers: map[string]*MCPServerConfig{
				"test-server": {
					Transport: TransportConfig{
						Type:    TransportTypeStdio,
						Command: "test",
					},
					Summarization: &SummarizationConfig{
						Enabled:             BoolPtr(false),
						SizeThresholdTokens: 50,
					},
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				MCPServerRegistry: NewMCPServerRegistry(tt.servers),
			}

			// Need to ensure builtin config is available for pattern validation
			_ = builtin

			validator := NewValidator(cfg)
			err := validator.validateMCPServers()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLLMProviders(t *testing.T) {
	tests := []struct {
		name      string
		providers map[string]*LLMProviderConfig
		env       map[string]string
		wantErr   bool
		errMsg    string
	}{
		{
			name: "valid provider with API key set",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeGoogle,
					Model:               "test-model",
					APIKeyEnv:           "TEST_API_KEY",
					MaxToolResultTokens: 100000,
				},
			},
			env:     map[string]string{"TEST_API_KEY": "test-key"},
			wantErr: false,
		},
		{
			name: "provider with invalid type",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                "invalid",
					Model:               "test-model",
					MaxToolResultTokens: 100000,
				},
			},
			env:     map[string]string{},
			wantErr: true,
			errMsg:  "invalid provider type",
		},
		{
			name: "provider with empty model",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeGoogle,
					Model:               "",
					MaxToolResultTokens: 100000,
				},
			},
			env:     map[string]string{},
			wantErr: true,
			errMsg:  "model required",
		},
		{
			name: "provider with low max tokens",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeGoogle,
					Model:               "test-model",
					APIKeyEnv:           "TEST_API_KEY",
					MaxToolResultTokens: 500, // Less than 1000
				},
			},
			env:     map[string]string{"TEST_API_KEY": "test-key"},
			wantErr: true,
			errMsg:  "must be at least 1000",
		},
		{
			name: "provider with out-of-range temperature",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeOpenAI,
					Model:               "test-model",
					APIKeyEnv:           "TEST_API_KEY",
					MaxToolResultTokens: 100000,
					Temperature:         float32Ptr(3.5),
				},
			},
			env:     map[string]string{"TEST_API_KEY": "test-key"},
			wantErr: true,
			errMsg:  "must be between 0 and 2",
		},
		{
			name: "provider with negative thinking budget",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeGoogle,
					Model:               "test-model",
					APIKeyEnv:           "TEST_API_KEY",
					MaxToolResultTokens: 100000,
					ThinkingBudget:      int32Ptr(-1),
				},
			},
			env:     map[string]string{"TEST_API_KEY": "test-key"},
			wantErr: true,
			errMsg:  "must be non-negative",
		},
		{
			name: "google provider with invalid native tool",
			providers: map[string]*LLMProviderConfig{
				"test-provider": {
					Type:                LLMProviderTypeGoogle,
					Model:               "test-model",
					APIKeyEnv:           "TEST_API_KEY",
					MaxToolResultTokens: 100000,
					NativeTools:         map[GoogleNativeTool]bool{"telepathy": true},
				},
			},
			env:     map[string]string{"TEST_API_KEY": "test-key"},
			wantErr: true,
			errMsg:  "invalid native tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := &Config{
				LLMProviderRegistry: NewLLMProviderRegistry(tt.providers),
			}

			validator := NewValidator(cfg)
			err := validator.validateLLMProviders()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// A provider whose credential env vars are absent is disabled with a
// warning rather than failing startup.
func TestMissingCredentialDisablesProvider(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		providers := map[string]*LLMProviderConfig{
			"test-provider": {
				Type:                LLMProviderTypeGoogle,
				Model:               "test-model",
				APIKeyEnv:           "DEFINITELY_NOT_SET_API_KEY",
				MaxToolResultTokens: 100000,
			},
		}
		cfg := &Config{LLMProviderRegistry: NewLLMProviderRegistry(providers)}

		validator := NewValidator(cfg)
		require.NoError(t, validator.validateLLMProviders())

		provider, err := cfg.LLMProviderRegistry.Get("test-provider")
		require.NoError(t, err)
		assert.True(t, provider.Disabled)

		warnings := validator.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, WarningCategoryLLMProvider, warnings[0].Category)
		assert.Contains(t, warnings[0].Message, "test-provider")
		assert.Contains(t, warnings[0].Details, "DEFINITELY_NOT_SET_API_KEY")
	})

	t.Run("vertexai reports all missing envs", func(t *testing.T) {
		providers := map[string]*LLMProviderConfig{
			"vertex-provider": {
				Type:                LLMProviderTypeVertexAI,
				Model:               "test-model",
				ProjectEnv:          "NOT_SET_PROJECT",
				LocationEnv:         "NOT_SET_LOCATION",
				MaxToolResultTokens: 100000,
			},
		}
		cfg := &Config{LLMProviderRegistry: NewLLMProviderRegistry(providers)}

		validator := NewValidator(cfg)
		require.NoError(t, validator.validateLLMProviders())

		warnings := validator.Warnings()
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Details, "NOT_SET_PROJECT")
		assert.Contains(t, warnings[0].Details, "NOT_SET_LOCATION")
	})

	t.Run("set credential leaves provider enabled", func(t *testing.T) {
		t.Setenv("SET_API_KEY", "value")

		providers := map[string]*LLMProviderConfig{
			"test-provider": {
				Type:                LLMProviderTypeGoogle,
				Model:               "test-model",
				APIKeyEnv:           "SET_API_KEY",
				MaxToolResultTokens: 100000,
			},
		}
		cfg := &Config{LLMProviderRegistry: NewLLMProviderRegistry(providers)}

		validator := NewValidator(cfg)
		require.NoError(t, validator.validateLLMProviders())

		provider, err := cfg.LLMProviderRegistry.Get("test-provider")
		require.NoError(t, err)
		assert.False(t, provider.Disabled)
		assert.Empty(t, validator.Warnings())
	})
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("agent", "test-agent", "mcp_servers", assert.AnError)

	assert.Equal(t, "agent", err.Component)
	assert.Equal(t, "test-agent", err.ID)
	assert.Equal(t, "mcp_servers", err.Field)
	assert.Contains(t, err.Error(), "agent 'test-agent'")
	assert.Contains(t, err.Error(), "mcp_servers")
	assert.Same(t, assert.AnError, err.Unwrap())
}

func float32Ptr(f float32) *float32 { return &f }

func int32Ptr(i int32) *int32 { return &i }
