package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	// Create temporary config directory with valid config files
	configDir := setupTestConfigDir(t)

	// Set required environment variables for all built-in providers
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("XAI_API_KEY", "test-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "us-central1")

	ctx := context.Background()
	cfg, err := Initialize(ctx, configDir)

	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify registries are populated
	assert.NotNil(t, cfg.AgentRegistry)
	assert.NotNil(t, cfg.ChainRegistry)
	assert.NotNil(t, cfg.MCPServerRegistry)
	assert.NotNil(t, cfg.LLMProviderRegistry)
	assert.NotNil(t, cfg.Defaults)

	// Verify built-in configs are loaded
	assert.True(t, cfg.AgentRegistry.Has("KubernetesAgent"))
	assert.True(t, cfg.ChainRegistry.Has("kubernetes-agent-chain"))
	assert.True(t, cfg.MCPServerRegistry.Has("kubernetes-server"))
	assert.True(t, cfg.LLMProviderRegistry.Has("google-default"))

	// Verify stats
	stats := cfg.Stats()
	assert.Greater(t, stats.Agents, 0)
	assert.Greater(t, stats.Chains, 0)
	assert.Greater(t, stats.MCPServers, 0)
	assert.Greater(t, stats.LLMProviders, 0)

	// All provider credentials are set, so no warnings
	assert.Empty(t, cfg.Warnings)

	// Queue, retention, Slack, and dashboard settings resolve to defaults
	require.NotNil(t, cfg.Queue)
	assert.Equal(t, 100, cfg.Queue.MaxQueueSize)
	assert.Equal(t, 5, cfg.Queue.WorkerCount)
	require.NotNil(t, cfg.Retention)
	assert.Equal(t, 90, cfg.Retention.SessionRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.Retention.EventRetention)
	require.NotNil(t, cfg.Slack)
	assert.False(t, cfg.Slack.Enabled)
	assert.Equal(t, "SLACK_BOT_TOKEN", cfg.Slack.TokenEnv)
	assert.Equal(t, "http://localhost:5173", cfg.DashboardURL)

	// Alert types are aggregated across chains
	assert.Contains(t, cfg.ChainRegistry.AlertTypes(), "kubernetes")
}

// A provider whose credential env var is missing must not fail startup;
// it is disabled and surfaced as a warning.
func TestInitializeMissingProviderCredentials(t *testing.T) {
	configDir := setupTestConfigDir(t)

	llmYAML := `
llm_providers:
  broken-provider:
    type: openai
    model: test-model
    api_key_env: TARSY_TEST_UNSET_CREDENTIAL
    max_tool_result_tokens: 100000
`
	err := os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte(llmYAML), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	cfg, err := Initialize(ctx, configDir)

	require.NoError(t, err)

	provider, err := cfg.LLMProviderRegistry.Get("broken-provider")
	require.NoError(t, err)
	assert.True(t, provider.Disabled)

	found := false
	for _, w := range cfg.Warnings {
		if w.Category == WarningCategoryLLMProvider && w.Message == "LLM provider 'broken-provider' disabled" {
			found = true
			assert.Contains(t, w.Details, "TARSY_TEST_UNSET_CREDENTIAL")
		}
	}
	assert.True(t, found, "expected a warning for the disabled provider")
}

// The deprecated chat_enabled chain key still works but produces a warning.
func TestInitializeChatEnabledDeprecationWarning(t *testing.T) {
	configDir := t.TempDir()

	tarsyYAML := `
agent_chains:
  legacy-chain:
    alert_types: ["legacy"]
    chat_enabled: true
    stages:
      - name: "analysis"
        agents:
          - name: "KubernetesAgent"
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	cfg, err := Initialize(ctx, configDir)

	require.NoError(t, err)

	chain, err := cfg.ChainRegistry.Get("legacy-chain")
	require.NoError(t, err)
	require.NotNil(t, chain.Chat)
	assert.True(t, chain.Chat.Enabled)

	found := false
	for _, w := range cfg.Warnings {
		if w.Category == WarningCategoryConfig && w.Message == "chain 'legacy-chain' uses deprecated chat_enabled key" {
			found = true
			assert.Contains(t, w.Details, "chat: {enabled: bool}")
		}
	}
	assert.True(t, found, "expected a deprecation warning for chat_enabled")
}

func TestInitializeConfigNotFound(t *testing.T) {
	ctx := context.Background()
	_, err := Initialize(ctx, "/nonexistent/directory")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestInitializeInvalidYAML(t *testing.T) {
	configDir := t.TempDir()

	// Write invalid YAML
	invalidYAML := `{{{`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(invalidYAML), 0644)
	require.NoError(t, err)

	// Create empty llm-providers.yaml
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = Initialize(ctx, configDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

// Templates referencing unset env vars must fail startup, listing every
// missing variable name.
func TestInitializeMissingTemplateVariable(t *testing.T) {
	configDir := t.TempDir()

	tarsyYAML := `
mcp_servers:
  test-server:
    transport:
      type: "http"
      url: "{{.TARSY_TEST_UNSET_URL}}"
      bearer_token: "{{.TARSY_TEST_UNSET_TOKEN}}"
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = Initialize(ctx, configDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing environment variables")
	assert.Contains(t, err.Error(), "TARSY_TEST_UNSET_TOKEN")
	assert.Contains(t, err.Error(), "TARSY_TEST_UNSET_URL")
}

func TestInitializeValidationFailure(t *testing.T) {
	configDir := t.TempDir()

	// Write YAML with invalid references
	invalidConfig := `
agent_chains:
  test-chain:
    alert_types: ["test"]
    stages:
      - name: "stage1"
        agents:
          - name: "NonexistentAgent"  # Invalid agent reference
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(invalidConfig), 0644)
	require.NoError(t, err)

	// Create empty llm-providers.yaml
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = Initialize(ctx, configDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "NonexistentAgent")
}

// Two chains claiming the same alert type is a startup error, not a
// silent first-wins resolution.
func TestInitializeDuplicateAlertTypes(t *testing.T) {
	configDir := t.TempDir()

	tarsyYAML := `
agent_chains:
  chain-a:
    alert_types: ["duplicated"]
    stages:
      - name: "stage1"
        agents:
          - name: "KubernetesAgent"
  chain-b:
    alert_types: ["duplicated"]
    stages:
      - name: "stage1"
        agents:
          - name: "KubernetesAgent"
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = Initialize(ctx, configDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "alert type 'duplicated' already claimed by chain 'chain-a'")
}

func TestLoadTarsyYAML(t *testing.T) {
	configDir := t.TempDir()

	config := `
defaults:
  llm_provider: "test-provider"
  max_llm_mcp_iterations: 25

agents:
  test-agent:
    mcp_servers:
      - "test-server"
    custom_instructions: "Test instructions"

mcp_servers:
  test-server:
    transport:
      type: "stdio"
      command: "test-command"

agent_chains:
  test-chain:
    alert_types: ["test"]
    stages:
      - name: "stage1"
        agents:
          - name: "test-agent"
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(config), 0644)
	require.NoError(t, err)

	loader := &configLoader{configDir: configDir}
	tarsyConfig, err := loader.loadTarsyYAML()

	require.NoError(t, err)
	assert.NotNil(t, tarsyConfig.Defaults)
	assert.Equal(t, "test-provider", tarsyConfig.Defaults.LLMProvider)
	assert.Equal(t, 25, *tarsyConfig.Defaults.MaxIterations)
	assert.Len(t, tarsyConfig.Agents, 1)
	assert.Len(t, tarsyConfig.MCPServers, 1)
	assert.Len(t, tarsyConfig.AgentChains, 1)
}

func TestLoadLLMProvidersYAML(t *testing.T) {
	configDir := t.TempDir()

	config := `
llm_providers:
  test-provider:
    type: google
    model: test-model
    api_key_env: TEST_API_KEY
    max_tool_result_tokens: 100000
`
	err := os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte(config), 0644)
	require.NoError(t, err)

	loader := &configLoader{configDir: configDir}
	providers, err := loader.loadLLMProvidersYAML()

	require.NoError(t, err)
	assert.Len(t, providers, 1)
	provider := providers["test-provider"]
	assert.Equal(t, LLMProviderTypeGoogle, provider.Type)
	assert.Equal(t, "test-model", provider.Model)
	assert.Equal(t, "TEST_API_KEY", provider.APIKeyEnv)
}

func TestEnvironmentVariableInterpolationInConfig(t *testing.T) {
	configDir := t.TempDir()

	config := `
mcp_servers:
  test-server:
    transport:
      type: "stdio"
      command: "{{.TEST_COMMAND}}"
      args:
        - "{{.TEST_ARG1}}"
        - "{{.TEST_ARG2}}"
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(config), 0644)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	// Set environment variables
	t.Setenv("TEST_COMMAND", "test-cmd")
	t.Setenv("TEST_ARG1", "arg1-value")
	t.Setenv("TEST_ARG2", "arg2-value")

	ctx := context.Background()
	cfg, err := Initialize(ctx, configDir)

	require.NoError(t, err)
	server, err := cfg.MCPServerRegistry.Get("test-server")
	require.NoError(t, err)
	assert.Equal(t, "test-cmd", server.Transport.Command)
	assert.Equal(t, []string{"arg1-value", "arg2-value"}, server.Transport.Args)
}

func TestInitializeQueueConfiguration(t *testing.T) {
	t.Run("YAML queue section merges over defaults", func(t *testing.T) {
		configDir := t.TempDir()

		tarsyYAML := `
queue:
  worker_count: 2
  poll_interval: 10s
`
		err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
		require.NoError(t, err)

		cfg, err := Initialize(context.Background(), configDir)
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.Queue.WorkerCount)
		assert.Equal(t, 10*time.Second, cfg.Queue.PollInterval)
		// Unset values keep their defaults
		assert.Equal(t, 100, cfg.Queue.MaxQueueSize)
		assert.Equal(t, 10, cfg.Queue.MaxConcurrentSessions)
		assert.Equal(t, 30*time.Second, cfg.Queue.HeartbeatInterval)
	})

	t.Run("explicit zero max_queue_size disables the limit", func(t *testing.T) {
		configDir := t.TempDir()

		tarsyYAML := `
queue:
  max_queue_size: 0
`
		err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
		require.NoError(t, err)

		cfg, err := Initialize(context.Background(), configDir)
		require.NoError(t, err)

		assert.Equal(t, 0, cfg.Queue.MaxQueueSize)
	})

	t.Run("env vars override YAML", func(t *testing.T) {
		configDir := t.TempDir()

		tarsyYAML := `
queue:
  worker_count: 2
`
		err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
		require.NoError(t, err)

		t.Setenv("TARSY_WORKER_COUNT", "7")
		t.Setenv("TARSY_MAX_CONCURRENT_SESSIONS", "3")

		cfg, err := Initialize(context.Background(), configDir)
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Queue.WorkerCount)
		assert.Equal(t, 3, cfg.Queue.MaxConcurrentSessions)
	})
}

func TestInitializeSystemSection(t *testing.T) {
	configDir := t.TempDir()

	tarsyYAML := `
system:
  dashboard_url: "https://tarsy.example.com"
  allowed_ws_origins:
    - "*.apps.example.com"
  slack:
    enabled: true
    token_env: "MY_SLACK_TOKEN"
    channel: "C12345678"
  retention:
    session_retention_days: 30
    event_retention: 12h
`
	err := os.WriteFile(filepath.Join(configDir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(configDir, "llm-providers.yaml"), []byte("llm_providers: {}"), 0644)
	require.NoError(t, err)

	cfg, err := Initialize(context.Background(), configDir)
	require.NoError(t, err)

	assert.Equal(t, "https://tarsy.example.com", cfg.DashboardURL)
	assert.Equal(t, []string{"*.apps.example.com"}, cfg.AllowedWSOrigins)

	require.NotNil(t, cfg.Slack)
	assert.True(t, cfg.Slack.Enabled)
	assert.Equal(t, "MY_SLACK_TOKEN", cfg.Slack.TokenEnv)
	assert.Equal(t, "C12345678", cfg.Slack.Channel)

	require.NotNil(t, cfg.Retention)
	assert.Equal(t, 30, cfg.Retention.SessionRetentionDays)
	assert.Equal(t, 12*time.Hour, cfg.Retention.EventRetention)
	// Unset retention values keep their defaults
	assert.Equal(t, 1*time.Hour, cfg.Retention.EventCleanupInterval)
}

// Helper function to set up test config directory
func setupTestConfigDir(t *testing.T) string {
	dir := t.TempDir()

	// Create minimal valid tarsy.yaml
	tarsyYAML := `
defaults:
  llm_provider: "google-default"
  max_llm_mcp_iterations: 20

agents: {}
mcp_servers: {}
agent_chains: {}
`
	err := os.WriteFile(filepath.Join(dir, "tarsy.yaml"), []byte(tarsyYAML), 0644)
	require.NoError(t, err)

	// Create minimal valid llm-providers.yaml
	llmYAML := `
llm_providers: {}
`
	err = os.WriteFile(filepath.Join(dir, "llm-providers.yaml"), []byte(llmYAML), 0644)
	require.NoError(t, err)

	return dir
}
