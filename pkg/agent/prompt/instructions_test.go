package prompt

import (
	"strings"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/stretchr/testify/assert"
)

func newTestMCPRegistry(servers map[string]*config.MCPServerConfig) *config.MCPServerRegistry {
	if servers == nil {
		servers = map[string]*config.MCPServerConfig{}
	}
	return config.NewMCPServerRegistry(servers)
}

func newTestExecCtx() *agent.ExecutionContext {
	return &agent.ExecutionContext{
		Config: &agent.ResolvedAgentConfig{
			MCPServers:         []string{"kubernetes-server"},
			CustomInstructions: "Custom test instructions.",
		},
	}
}

func compose(servers map[string]*config.MCPServerConfig, execCtx *agent.ExecutionContext) string {
	return NewPromptBuilder(newTestMCPRegistry(servers)).ComposeInstructions(execCtx)
}

func TestComposeInstructions(t *testing.T) {
	t.Run("all three tiers present", func(t *testing.T) {
		result := compose(map[string]*config.MCPServerConfig{
			"kubernetes-server": {Instructions: "Always check node status first."},
		}, newTestExecCtx())

		// general tier
		assert.Contains(t, result, "General SRE Agent Instructions")
		assert.Contains(t, result, "Site Reliability Engineer")

		// per-server tier
		assert.Contains(t, result, "kubernetes-server Instructions")
		assert.Contains(t, result, "Always check node status first.")

		// custom tier
		assert.Contains(t, result, "Agent-Specific Instructions")
		assert.Contains(t, result, "Custom test instructions.")
	})

	t.Run("empty server instructions omit the section", func(t *testing.T) {
		result := compose(map[string]*config.MCPServerConfig{
			"kubernetes-server": {Instructions: ""},
		}, newTestExecCtx())

		assert.NotContains(t, result, "kubernetes-server Instructions")
	})

	t.Run("no custom instructions omit the section", func(t *testing.T) {
		result := compose(nil, &agent.ExecutionContext{
			Config: &agent.ResolvedAgentConfig{CustomInstructions: ""},
		})

		assert.Contains(t, result, "General SRE Agent Instructions")
		assert.NotContains(t, result, "Agent-Specific Instructions")
	})

	t.Run("server missing from registry is skipped", func(t *testing.T) {
		result := compose(nil, newTestExecCtx())

		assert.Contains(t, result, "General SRE Agent Instructions")
		assert.NotContains(t, result, "kubernetes-server Instructions")
	})
}

func TestComposeInstructions_FailedServers(t *testing.T) {
	t.Run("listed with their errors", func(t *testing.T) {
		result := compose(nil, &agent.ExecutionContext{
			Config: &agent.ResolvedAgentConfig{},
			FailedServers: map[string]string{
				"kubernetes-server": "connection refused",
				"github-server":     "timeout after 30s",
			},
		})

		assert.Contains(t, result, "Unavailable MCP Servers")
		assert.Contains(t, result, "kubernetes-server")
		assert.Contains(t, result, "connection refused")
		assert.Contains(t, result, "github-server")
		assert.Contains(t, result, "timeout after 30s")
		assert.Contains(t, result, "Do not attempt to use tools from these servers")
	})

	t.Run("sorted alphabetically", func(t *testing.T) {
		result := compose(nil, &agent.ExecutionContext{
			Config: &agent.ResolvedAgentConfig{},
			FailedServers: map[string]string{
				"zeta-server":  "EOF",
				"alpha-server": "connection refused",
			},
		})

		idxAlpha := strings.Index(result, "alpha-server")
		idxZeta := strings.Index(result, "zeta-server")
		assert.Greater(t, idxAlpha, 0)
		assert.Greater(t, idxZeta, idxAlpha, "failed servers should be listed alphabetically")
	})

	t.Run("section absent when nothing failed", func(t *testing.T) {
		result := compose(nil, &agent.ExecutionContext{
			Config: &agent.ResolvedAgentConfig{},
		})

		assert.NotContains(t, result, "Unavailable MCP Servers")
	})
}

func TestComposeInstructions_OrderingPreserved(t *testing.T) {
	result := compose(map[string]*config.MCPServerConfig{
		"kubernetes-server": {Instructions: "MCP_TIER2_MARKER"},
	}, &agent.ExecutionContext{
		Config: &agent.ResolvedAgentConfig{
			MCPServers:         []string{"kubernetes-server"},
			CustomInstructions: "CUSTOM_TIER3_MARKER",
		},
		FailedServers: map[string]string{
			"broken-server": "FAILED_SERVER_MARKER",
		},
	})

	// general < server instructions < unavailable warnings < custom
	idxT1 := strings.Index(result, "General SRE Agent Instructions")
	idxT2 := strings.Index(result, "MCP_TIER2_MARKER")
	idxWarn := strings.Index(result, "FAILED_SERVER_MARKER")
	idxT3 := strings.Index(result, "CUSTOM_TIER3_MARKER")
	assert.Greater(t, idxT2, idxT1, "server instructions should come after general instructions")
	assert.Greater(t, idxWarn, idxT2, "unavailable warnings should come after server instructions")
	assert.Greater(t, idxT3, idxWarn, "custom instructions should come last")
}
