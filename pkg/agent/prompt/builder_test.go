package prompt

import (
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilderForTest() *PromptBuilder {
	registry := newTestMCPRegistry(map[string]*config.MCPServerConfig{
		"kubernetes-server": {Instructions: "K8s server instructions."},
	})
	return NewPromptBuilder(registry)
}

func newFullExecCtx() *agent.ExecutionContext {
	return &agent.ExecutionContext{
		SessionID:      "test-session",
		AgentName:      "TestAgent",
		AlertData:      `{"alert":"test-alert","severity":"critical"}`,
		AlertType:      "kubernetes",
		RunbookContent: "# Test Runbook\n\nStep 1: Check pods",
		Config: &agent.ResolvedAgentConfig{
			AgentName:          "TestAgent",
			IterationStrategy:  config.IterationStrategyReact,
			MCPServers:         []string{"kubernetes-server"},
			CustomInstructions: "Be thorough.",
		},
	}
}

func assertSystemUserPair(t *testing.T, messages []agent.ConversationMessage) {
	t.Helper()
	require.Len(t, messages, 2, "Should have system + user message")
	assert.Equal(t, agent.RoleSystem, messages[0].Role)
	assert.Equal(t, agent.RoleUser, messages[1].Role)
}

func TestBuildReActMessages(t *testing.T) {
	builder := newBuilderForTest()

	t.Run("system plus user message", func(t *testing.T) {
		tools := []agent.ToolDefinition{
			{Name: "k8s.pods_list", Description: "List pods", ParametersSchema: `{"properties":{"ns":{"type":"string"}}}`},
		}
		messages := builder.BuildReActMessages(newFullExecCtx(), "", tools)
		assertSystemUserPair(t, messages)
	})

	t.Run("system message content", func(t *testing.T) {
		messages := builder.BuildReActMessages(newFullExecCtx(), "", nil)
		systemMsg := messages[0].Content

		for _, want := range []string{
			"General SRE Agent Instructions",
			"ReAct",
			"Thought:",
			"Final Answer:",
			"Focus on investigation",
		} {
			assert.Contains(t, systemMsg, want)
		}
	})

	t.Run("user message content", func(t *testing.T) {
		tools := []agent.ToolDefinition{
			{Name: "k8s.pods_list", Description: "List pods"},
		}
		messages := builder.BuildReActMessages(newFullExecCtx(), "Previous stage context.", tools)
		userMsg := messages[1].Content

		for _, want := range []string{
			"Available tools",
			"k8s.pods_list",
			"Alert Details",
			"test-alert",
			"Runbook Content",
			"Test Runbook",
			"Previous Stage Data",
			"Previous stage context.",
			"Your Task",
		} {
			assert.Contains(t, userMsg, want)
		}
	})

	t.Run("no tools omits tool section", func(t *testing.T) {
		messages := builder.BuildReActMessages(newFullExecCtx(), "", nil)
		assert.NotContains(t, messages[1].Content, "Available tools")
	})

	t.Run("no previous stage context", func(t *testing.T) {
		messages := builder.BuildReActMessages(newFullExecCtx(), "", nil)
		assert.Contains(t, messages[1].Content, "first stage of analysis")
	})

	t.Run("failed servers surfaced to the agent", func(t *testing.T) {
		execCtx := newFullExecCtx()
		execCtx.FailedServers = map[string]string{
			"github-server": "npx exited with code 1",
		}

		messages := builder.BuildReActMessages(execCtx, "", nil)

		assert.Contains(t, messages[0].Content, "Unavailable MCP Servers")
		assert.Contains(t, messages[0].Content, "github-server")
	})
}

func TestBuildNativeThinkingMessages(t *testing.T) {
	builder := newBuilderForTest()
	messages := builder.BuildNativeThinkingMessages(newFullExecCtx(), "")

	assertSystemUserPair(t, messages)

	// The model drives tools natively, so neither the ReAct format nor
	// textual tool descriptions belong in the prompt.
	assert.NotContains(t, messages[0].Content, "Action Input:")
	assert.NotContains(t, messages[0].Content, "REQUIRED FORMAT")
	assert.NotContains(t, messages[1].Content, "Available tools")
}

func TestBuildSynthesisMessages(t *testing.T) {
	builder := newBuilderForTest()

	messages := builder.BuildSynthesisMessages(newFullExecCtx(), "Agent 1: memory leak. Agent 2: disk full.")
	require.Len(t, messages, 2)
	userMsg := messages[1].Content

	assert.Contains(t, userMsg, "Synthesize")
	assert.Contains(t, userMsg, "Agent 1: memory leak. Agent 2: disk full.")
	assert.Contains(t, userMsg, "Alert Details")
}

func TestBuildForcedConclusionPrompt(t *testing.T) {
	builder := newBuilderForTest()

	t.Run("react", func(t *testing.T) {
		result := builder.BuildForcedConclusionPrompt(5, config.IterationStrategyReact)

		assert.Contains(t, result, "5 iterations")
		assert.Contains(t, result, "Final Answer:")
		assert.Contains(t, result, "CRITICAL")
	})

	t.Run("native thinking", func(t *testing.T) {
		result := builder.BuildForcedConclusionPrompt(3, config.IterationStrategyNativeThinking)

		assert.Contains(t, result, "3 iterations")
		assert.Contains(t, result, "structured conclusion")
		assert.NotContains(t, result, "Final Answer:")
	})

	t.Run("unknown strategy falls back to native format", func(t *testing.T) {
		result := builder.BuildForcedConclusionPrompt(2, config.IterationStrategy("unknown"))

		assert.Contains(t, result, "2 iterations")
		assert.Contains(t, result, "structured conclusion")
	})
}

func TestBuildMCPSummarizationPrompts(t *testing.T) {
	builder := newBuilderForTest()

	systemPrompt := builder.BuildMCPSummarizationSystemPrompt("kubernetes-server", "pods_list", 500)
	assert.Contains(t, systemPrompt, "kubernetes-server.pods_list")
	assert.Contains(t, systemPrompt, "500")

	userPrompt := builder.BuildMCPSummarizationUserPrompt("context here", "kubernetes-server", "pods_list", "big output")
	for _, want := range []string{"context here", "kubernetes-server", "pods_list", "big output"} {
		assert.Contains(t, userPrompt, want)
	}
}

func TestBuildExecutiveSummaryPrompts(t *testing.T) {
	builder := newBuilderForTest()

	assert.Contains(t, builder.BuildExecutiveSummarySystemPrompt(), "executive summaries")
	assert.Contains(t, builder.BuildExecutiveSummaryUserPrompt("The root cause was OOM."), "The root cause was OOM.")
}
