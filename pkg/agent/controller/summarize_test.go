package controller

import (
	"strings"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/llminteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent/prompt"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConversationContext(t *testing.T) {
	tests := map[string]struct {
		messages []agent.ConversationMessage
		expected string
	}{
		"empty messages returns empty string": {
			messages: nil,
			expected: "",
		},
		"excludes system messages": {
			messages: []agent.ConversationMessage{
				{Role: agent.RoleSystem, Content: "You are a helpful assistant"},
				{Role: agent.RoleUser, Content: "What pods are failing?"},
				{Role: agent.RoleAssistant, Content: "Let me check the pods."},
			},
			expected: "[user]: What pods are failing?\n\n[assistant]: Let me check the pods.\n\n",
		},
		"multi-turn conversation": {
			messages: []agent.ConversationMessage{
				{Role: agent.RoleSystem, Content: "system prompt"},
				{Role: agent.RoleUser, Content: "question 1"},
				{Role: agent.RoleAssistant, Content: "answer 1"},
				{Role: agent.RoleUser, Content: "Observation: tool output"},
				{Role: agent.RoleAssistant, Content: "answer 2"},
			},
			expected: "[user]: question 1\n\n" +
				"[assistant]: answer 1\n\n" +
				"[user]: Observation: tool output\n\n" +
				"[assistant]: answer 2\n\n",
		},
		"includes tool role messages": {
			messages: []agent.ConversationMessage{
				{Role: agent.RoleTool, Content: "tool result content"},
			},
			expected: "[tool]: tool result content\n\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildConversationContext(tt.messages))
		})
	}
}

// summarizeRegistry builds a registry with one "test-server" carrying
// the given summarization config.
func summarizeRegistry(sum *config.SummarizationConfig) *config.MCPServerRegistry {
	return config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"test-server": {Summarization: sum},
	})
}

// passthroughExecCtx is enough context for the paths that never reach
// the LLM.
func passthroughExecCtx(registry *config.MCPServerRegistry) *agent.ExecutionContext {
	return &agent.ExecutionContext{
		PromptBuilder: prompt.NewPromptBuilder(registry),
		Config: &agent.ResolvedAgentConfig{
			LLMProvider: &config.LLMProviderConfig{Model: "test-model"},
		},
	}
}

// Configurations under which maybeSummarize must hand the raw content
// back without calling the LLM.
func TestMaybeSummarize_PassThrough(t *testing.T) {
	ctx := t.Context()

	tests := map[string]struct {
		execCtx  *agent.ExecutionContext
		serverID string
		content  string
	}{
		// nil Summarization means enabled with default threshold.
		"below default threshold with nil config": {
			execCtx:  passthroughExecCtx(summarizeRegistry(nil)),
			serverID: "test-server",
			content:  "small output",
		},
		"below explicit threshold": {
			execCtx: passthroughExecCtx(summarizeRegistry(&config.SummarizationConfig{
				Enabled:             config.BoolPtr(true),
				SizeThresholdTokens: 5000,
			})),
			serverID: "test-server",
			content:  "short",
		},
		"explicitly disabled": {
			execCtx: passthroughExecCtx(summarizeRegistry(&config.SummarizationConfig{
				Enabled:             config.BoolPtr(false),
				SizeThresholdTokens: 100,
			})),
			serverID: "test-server",
			content:  strings.Repeat("x", 1000), // way above 100 tokens
		},
		"server not found": {
			execCtx:  passthroughExecCtx(config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{})),
			serverID: "unknown-server",
			content:  "content",
		},
		"nil PromptBuilder": {
			execCtx:  &agent.ExecutionContext{PromptBuilder: nil},
			serverID: "test-server",
			content:  "content",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := maybeSummarize(ctx, tt.execCtx, "req-1", tt.serverID, "get_pods", tt.content, "")
			require.NoError(t, err)
			assert.Equal(t, tt.content, result.Content)
			assert.False(t, result.WasSummarized)
		})
	}
}

// summarizingExecCtx wires a full execution context whose LLM returns
// the given response, against the given summarization config.
func summarizingExecCtx(t *testing.T, sum *config.SummarizationConfig, response mockLLMResponse) (*agent.ExecutionContext, *ent.Client) {
	t.Helper()

	mockLLM := &mockLLMClient{responses: []mockLLMResponse{response}}
	execCtx, entClient := newTestExecCtx(t, mockLLM, agent.NewStubToolExecutor(nil))
	execCtx.PromptBuilder = prompt.NewPromptBuilder(summarizeRegistry(sum))
	return execCtx, entClient
}

func TestMaybeSummarize_NilConfigAboveDefaultThreshold(t *testing.T) {
	ctx := t.Context()

	execCtx, _ := summarizingExecCtx(t, nil, mockLLMResponse{
		chunks: []agent.Chunk{&agent.TextChunk{Content: "Summarized output"}},
	})

	// Default threshold is 5000 tokens, roughly 20000 chars.
	largeContent := strings.Repeat("event-data ", 2500) // ~27500 chars ≈ 6875 tokens
	result, err := maybeSummarize(ctx, execCtx, "req-1", "test-server", "get_events",
		largeContent, "[user]: check events")
	require.NoError(t, err)
	assert.True(t, result.WasSummarized)
	assert.Contains(t, result.Content, "Summarized output")
	assert.Contains(t, result.Content, "[NOTE: The output from test-server.get_events was")
}

func TestMaybeSummarize_AboveThreshold(t *testing.T) {
	ctx := t.Context()

	execCtx, _ := summarizingExecCtx(t, &config.SummarizationConfig{
		SizeThresholdTokens:  100,
		SummaryMaxTokenLimit: 500,
	}, mockLLMResponse{
		chunks: []agent.Chunk{&agent.TextChunk{Content: "Summarized: 3 pods found, 1 failing"}},
	})

	largeContent := strings.Repeat("pod-info ", 100) // 900 chars = 225 tokens > 100
	result, err := maybeSummarize(ctx, execCtx, "req-1", "test-server", "get_pods",
		largeContent, "[user]: check pods")
	require.NoError(t, err)
	assert.True(t, result.WasSummarized)

	want := "[NOTE: The output from test-server.get_pods was 225 tokens (estimated) " +
		"and has been summarized to preserve context window. " +
		"The full output is available in the session audit trail.]\n\n" +
		"Summarized: 3 pods found, 1 failing"
	assert.Equal(t, want, result.Content)
}

func TestMaybeSummarize_AuditRecord(t *testing.T) {
	ctx := t.Context()

	execCtx, entClient := summarizingExecCtx(t, &config.SummarizationConfig{
		SizeThresholdTokens:  100,
		SummaryMaxTokenLimit: 500,
	}, mockLLMResponse{
		chunks: []agent.Chunk{&agent.TextChunk{Content: "Summary result"}},
	})

	largeContent := strings.Repeat("pod-info ", 100)
	result, err := maybeSummarize(ctx, execCtx, "mcp-req-123", "test-server", "get_pods",
		largeContent, "[user]: check pods")
	require.NoError(t, err)
	assert.True(t, result.WasSummarized)

	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "summarization", row.InteractionType.String())
	assert.Equal(t, "Summarize test-server.get_pods result", row.StepDescription)
	assert.Equal(t, "mcp-req-123", row.McpEventID)

	// Self-contained conversation: system + user + assistant reply.
	require.Len(t, row.Conversation, 3)
	assert.Equal(t, "system", row.Conversation[0]["role"])
	assert.Equal(t, "user", row.Conversation[1]["role"])
	assert.Equal(t, "assistant", row.Conversation[2]["role"])
	assert.Equal(t, "Summary result", row.Conversation[2]["content"])
}

func TestMaybeSummarize_FailOpenOnLLMError(t *testing.T) {
	ctx := t.Context()

	execCtx, entClient := summarizingExecCtx(t, &config.SummarizationConfig{
		SizeThresholdTokens: 100,
	}, mockLLMResponse{err: assert.AnError})

	largeContent := strings.Repeat("data ", 200)
	result, err := maybeSummarize(ctx, execCtx, "req-1", "test-server", "get_pods",
		largeContent, "")
	require.NoError(t, err)
	assert.False(t, result.WasSummarized)
	assert.Equal(t, largeContent, result.Content)

	// The failed attempt is still audited with its error.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ErrorMessage)
}

func TestMaybeSummarize_FailOpenOnEmptySummary(t *testing.T) {
	ctx := t.Context()

	execCtx, _ := summarizingExecCtx(t, &config.SummarizationConfig{
		SizeThresholdTokens: 100,
	}, mockLLMResponse{
		chunks: []agent.Chunk{&agent.TextChunk{Content: "   "}}, // whitespace-only
	})

	largeContent := strings.Repeat("data ", 200)
	result, err := maybeSummarize(ctx, execCtx, "req-1", "test-server", "get_pods",
		largeContent, "")
	require.NoError(t, err)
	assert.False(t, result.WasSummarized)
	assert.Equal(t, largeContent, result.Content)
}
