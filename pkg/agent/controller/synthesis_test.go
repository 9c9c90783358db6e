package controller

import (
	"context"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/llminteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesisController_HappyPath(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Based on both agents' findings, the root cause is OOM on web-1."},
				&agent.UsageChunk{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesis
	ctrl := NewSynthesisController()

	prevContext := "Agent 1: Pods show high memory.\nAgent 2: Logs show OOMKilled."
	result, err := ctrl.Run(context.Background(), execCtx, prevContext)
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Contains(t, result.FinalAnalysis, "OOM on web-1")
	require.Equal(t, 150, result.TokensUsed.TotalTokens)
	require.Equal(t, 1, llm.callCount)

	// The single call is audited as an investigation interaction.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "investigation", rows[0].InteractionType.String())
	assert.Equal(t, "Synthesis", rows[0].StepDescription)
}

func TestSynthesisController_WithThinking(t *testing.T) {
	// synthesis-native-thinking may produce thinking content
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ThinkingChunk{Content: "Let me analyze both agents' findings carefully."},
				&agent.TextChunk{Content: "Comprehensive analysis: the system is healthy."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesisNativeThinking
	ctrl := NewSynthesisController()

	result, err := ctrl.Run(context.Background(), execCtx, "Agent 1 found no issues.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Comprehensive analysis: the system is healthy.", result.FinalAnalysis)
}

func TestSynthesisController_ThinkingOnlyFallback(t *testing.T) {
	// Some thinking models put the entire answer in thinking content. The
	// controller falls back to it rather than failing the stage.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ThinkingChunk{Content: "The combined findings point to a memory leak in web-1."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesisNativeThinking
	ctrl := NewSynthesisController()

	result, err := ctrl.Run(context.Background(), execCtx, "Agent 1 found leaks.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "The combined findings point to a memory leak in web-1.", result.FinalAnalysis)

	// The persisted conversation carries the fallback text as the assistant
	// reply so the audit trail is not empty.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	conv := rows[0].Conversation
	require.NotEmpty(t, conv)
	last := conv[len(conv)-1]
	assert.Equal(t, "assistant", last["role"])
	assert.Equal(t, "The combined findings point to a memory leak in web-1.", last["content"])
}

func TestSynthesisController_EmptyAnalysis(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesis
	ctrl := NewSynthesisController()

	_, err := ctrl.Run(context.Background(), execCtx, "Agent 1 found nothing.")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty analysis")
}

func TestSynthesisController_LLMError(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{err: context.DeadlineExceeded},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesis
	ctrl := NewSynthesisController()

	_, err := ctrl.Run(context.Background(), execCtx, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "synthesis LLM call failed")
}

func TestSynthesisController_PromptBuilderIntegration(t *testing.T) {
	// Verify the prompt builder produces synthesis-specific messages:
	// system msg with analysis instructions, user msg with synthesis task,
	// alert data, runbook, and previous stage context.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Synthesized analysis: OOM on web-1."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.AlertType = "kubernetes"
	execCtx.RunbookContent = "# Synthesis Runbook\nReview agent findings."
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesis
	execCtx.Config.CustomInstructions = "Custom synthesis instructions."
	ctrl := NewSynthesisController()

	prevContext := "Agent 1: Pods show high memory.\nAgent 2: Logs show OOMKilled."
	result, err := ctrl.Run(context.Background(), execCtx, prevContext)
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	require.NotNil(t, llm.lastInput)
	require.GreaterOrEqual(t, len(llm.lastInput.Messages), 2)

	systemMsg := llm.lastInput.Messages[0]
	userMsg := llm.lastInput.Messages[1]

	// System message: analysis instructions + custom instructions (no ReAct format, no taskFocus)
	require.Equal(t, agent.RoleSystem, systemMsg.Role)
	require.Contains(t, systemMsg.Content, "General SRE Analysis Instructions")
	require.Contains(t, systemMsg.Content, "Custom synthesis instructions.")
	require.NotContains(t, systemMsg.Content, "Focus on investigation") // synthesis has its own focus in custom instructions
	require.NotContains(t, systemMsg.Content, "Action Input:")

	// User message: synthesis-specific structure
	require.Equal(t, agent.RoleUser, userMsg.Role)
	require.Contains(t, userMsg.Content, "Synthesize")
	require.Contains(t, userMsg.Content, "Alert Details")
	require.Contains(t, userMsg.Content, "Runbook Content")
	require.Contains(t, userMsg.Content, "Synthesis Runbook")
	require.Contains(t, userMsg.Content, "Previous Stage Data")
	require.Contains(t, userMsg.Content, "Agent 1: Pods show high memory.")
	require.Contains(t, userMsg.Content, "Agent 2: Logs show OOMKilled.")

	// Synthesis should NOT pass tools
	require.Nil(t, llm.lastInput.Tools)
}

func TestSynthesisController_NativeToolMetadataRecorded(t *testing.T) {
	// Grounding and code execution results from native tools land in the
	// interaction's response_metadata.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "The analysis shows OOM is the root cause."},
				&agent.GroundingChunk{
					WebSearchQueries: []string{"kubernetes OOM troubleshooting"},
					Sources:          []agent.GroundingSource{{URI: "https://k8s.io/docs/oom", Title: "K8s OOM"}},
				},
				&agent.CodeExecutionChunk{Code: "avg = sum(values) / len(values)", Result: "42.5"},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategySynthesisNativeThinking
	ctrl := NewSynthesisController()

	result, err := ctrl.Run(context.Background(), execCtx, "Agent 1 found OOM.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	meta := rows[0].ResponseMetadata
	require.NotNil(t, meta)
	require.Contains(t, meta, "groundings")
	require.Contains(t, meta, "code_executions")

	codeExecs, ok := meta["code_executions"].([]any)
	require.True(t, ok, "code_executions should round-trip as a JSON array")
	require.Len(t, codeExecs, 1)
	first, ok := codeExecs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "avg = sum(values) / len(values)", first["code"])
	assert.Equal(t, "42.5", first["result"])
}
