package controller

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/llminteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/mcpinteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeThinkingController_HappyPath(t *testing.T) {
	// LLM calls: 1) tool call 2) final answer (no tools)
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ThinkingChunk{Content: "Let me check the pods."},
				&agent.TextChunk{Content: "I'll check the pods."},
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s.get_pods", Arguments: "{}"},
				&agent.UsageChunk{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
			}},
			{chunks: []agent.Chunk{
				&agent.ThinkingChunk{Content: "Pods look healthy."},
				&agent.TextChunk{Content: "The pods are all running. Everything is healthy."},
				&agent.UsageChunk{InputTokens: 15, OutputTokens: 25, TotalTokens: 40},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running\npod-2 Running"},
		},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "The pods are all running. Everything is healthy.", result.FinalAnalysis)
	require.Equal(t, 70, result.TokensUsed.TotalTokens)
	require.Equal(t, 2, llm.callCount)

	// Both calls audited with step descriptions and thinking content.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Native thinking iteration 1", rows[0].StepDescription)
	assert.Equal(t, "Let me check the pods.", rows[0].ThinkingContent)
	assert.Equal(t, "Native thinking iteration 2", rows[1].StepDescription)

	// The tool-calling round is a tool_selection; the text-only final
	// round is the investigation answer.
	assert.Equal(t, "tool_selection", rows[0].InteractionType.String())
	assert.Equal(t, "investigation", rows[1].InteractionType.String())

	// The second call's snapshot carries the whole exchange: system, user,
	// assistant with tool calls, tool result, and the final assistant reply.
	conv := rows[1].Conversation
	require.Len(t, conv, 5)
	assert.Equal(t, "assistant", conv[2]["role"])
	assert.NotNil(t, conv[2]["tool_calls"])
	assert.Equal(t, "tool", conv[3]["role"])
	assert.Equal(t, "assistant", conv[4]["role"])
}

func TestNativeThinkingController_MultipleToolCalls(t *testing.T) {
	// Single LLM response with multiple tool calls
	llm := &mockLLMClient{
		capture: true,
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Let me check pods and logs simultaneously."},
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s.get_pods", Arguments: "{}"},
				&agent.ToolCallChunk{CallID: "call-2", Name: "k8s.get_logs", Arguments: "{\"pod\": \"web-1\"}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "The web-1 pod has OOM issues."},
			}},
		},
	}

	tools := []agent.ToolDefinition{
		{Name: "k8s.get_pods", Description: "Get pods"},
		{Name: "k8s.get_logs", Description: "Get logs"},
	}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "web-1 Running"},
			"k8s.get_logs": {Content: "OOMKilled"},
		},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "The web-1 pod has OOM issues.", result.FinalAnalysis)

	// The second call sees one tool message per call, in order, each linked
	// to its originating call ID.
	require.Len(t, llm.capturedInputs, 2)
	msgs := llm.capturedInputs[1].Messages
	require.GreaterOrEqual(t, len(msgs), 4)
	toolMsgs := msgs[len(msgs)-2:]
	assert.Equal(t, agent.RoleTool, toolMsgs[0].Role)
	assert.Equal(t, "call-1", toolMsgs[0].ToolCallID)
	assert.Equal(t, "web-1 Running", toolMsgs[0].Content)
	assert.Equal(t, agent.RoleTool, toolMsgs[1].Role)
	assert.Equal(t, "call-2", toolMsgs[1].ToolCallID)
	assert.Equal(t, "OOMKilled", toolMsgs[1].Content)
}

func TestNativeThinkingController_EncodedToolNames(t *testing.T) {
	// Function names bound to the provider must not contain dots. The
	// controller encodes "server.tool" as "server__tool" for binding and the
	// audit trail records the canonical name.
	llm := &mockLLMClient{
		capture: true,
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s__get_pods", Arguments: "{}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "All pods running."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	// The real executor normalizes names itself; the mock is keyed by the
	// name it receives, which is the provider's encoded form.
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s__get_pods": {Content: "pod-1 Running"},
		},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// Bound tools carry the encoded name; the caller's slice is untouched.
	require.NotEmpty(t, llm.capturedInputs)
	require.Len(t, llm.capturedInputs[0].Tools, 1)
	assert.Equal(t, "k8s__get_pods", llm.capturedInputs[0].Tools[0].Name)
	assert.Equal(t, "k8s.get_pods", tools[0].Name)

	// The audit row stores the canonical server/tool split.
	rows, err := entClient.MCPInteraction.Query().
		Where(
			mcpinteraction.SessionID(execCtx.SessionID),
			mcpinteraction.CommunicationTypeEQ("tool_call"),
		).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "k8s", rows[0].ServerName)
	assert.Equal(t, "get_pods", rows[0].ToolName)
}

func TestNativeThinkingController_ForcedConclusion(t *testing.T) {
	// LLM keeps calling tools, never produces text-only response
	llm := &mockLLMClient{capture: true}
	for i := 0; i < 3; i++ {
		llm.responses = append(llm.responses, mockLLMResponse{
			chunks: []agent.Chunk{
				&agent.ToolCallChunk{CallID: fmt.Sprintf("call-%d", i), Name: "k8s.get_pods", Arguments: "{}"},
			},
		})
	}
	// Forced conclusion response (no tools)
	llm.responses = append(llm.responses, mockLLMResponse{
		chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Based on investigation: system is healthy."},
		},
	})

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running"},
		},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 3
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Contains(t, result.FinalAnalysis, "system is healthy")

	// The conclusion call binds no tools so the model must answer in text.
	require.Len(t, llm.capturedInputs, 4)
	assert.NotEmpty(t, llm.capturedInputs[2].Tools)
	assert.Nil(t, llm.capturedInputs[3].Tools)
	lastMsg := llm.capturedInputs[3].Messages[len(llm.capturedInputs[3].Messages)-1]
	assert.Equal(t, agent.RoleUser, lastMsg.Role)
	assert.Contains(t, lastMsg.Content, "iteration limit")
}

func TestNativeThinkingController_PauseAtMaxIterations(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s.get_pods", Arguments: "{}"},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{"k8s.get_pods": {Content: "pod-1 Running"}},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 1
	execCtx.Config.ForceConclusion = false
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusPaused, result.Status)
	require.Equal(t, 1, llm.callCount)

	require.NotNil(t, result.PauseState)
	assert.Equal(t, models.PauseReasonMaxIterations, result.PauseState.Reason)
	assert.Equal(t, 1, result.PauseState.CurrentIteration)

	// Snapshot preserves structured tool calls and tool results so the
	// resumed conversation is valid for the provider.
	conv := result.PauseState.Conversation
	require.NotEmpty(t, conv)
	last := conv[len(conv)-1]
	assert.Equal(t, "tool", last["role"])
	assert.Equal(t, "call-1", last["tool_call_id"])
}

func TestNativeThinkingController_ResumeFromPause(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Resuming: the system is healthy."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 3
	execCtx.Config.ForceConclusion = false
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	execCtx.ResumeState = &models.PausedExecutionState{
		ExecutionID:      execCtx.ExecutionID,
		Reason:           models.PauseReasonMaxIterations,
		CurrentIteration: 1,
		Conversation: []map[string]any{
			{"role": "system", "content": "You are a test agent."},
			{"role": "user", "content": "Investigate the alert."},
			{"role": "assistant", "content": "", "tool_calls": []any{
				map[string]any{"id": "call-1", "name": "k8s.get_pods", "arguments": "{}"},
			}},
			{"role": "tool", "content": "pod-1 Running", "tool_call_id": "call-1", "tool_name": "k8s.get_pods"},
		},
	}
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Resuming: the system is healthy.", result.FinalAnalysis)
	require.Equal(t, 1, llm.callCount)

	// Rehydrated conversation includes the structured tool call and result.
	require.Len(t, llm.lastInput.Messages, 4)
	assert.Len(t, llm.lastInput.Messages[2].ToolCalls, 1)
	assert.Equal(t, "call-1", llm.lastInput.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, "call-1", llm.lastInput.Messages[3].ToolCallID)
}

func TestNativeThinkingController_ThinkingContent(t *testing.T) {
	// Verify thinking content is recorded
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ThinkingChunk{Content: "I need to analyze this carefully."},
				&agent.TextChunk{Content: "The system appears to be functioning normally."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "I need to analyze this carefully.", rows[0].ThinkingContent)
}

func TestNativeThinkingController_ToolExecutionError(t *testing.T) {
	// Tool fails, LLM recovers
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s.get_pods", Arguments: "{}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Despite the tool error, I can conclude the system is healthy."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{},
		// get_pods will return error because it's not in results
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// The error is fed back as the tool message so the model can react.
	require.NotNil(t, llm.lastInput)
	msgs := llm.lastInput.Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, agent.RoleTool, last.Role)
	assert.Contains(t, last.Content, "Error executing tool")
}

func TestNativeThinkingController_ConsecutiveTimeouts(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{err: context.DeadlineExceeded},
			{err: context.DeadlineExceeded},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusFailed, result.Status)
	require.Equal(t, 2, llm.callCount)
}

func TestNativeThinkingController_PrevStageContext(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Based on previous context, the system is healthy."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "Agent 1 found high CPU usage on node-3.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// Verify prev stage context was included in messages sent to LLM
	require.NotNil(t, llm.lastInput)
	found := false
	for _, msg := range llm.lastInput.Messages {
		if strings.Contains(msg.Content, "Agent 1 found high CPU usage on node-3") {
			found = true
			break
		}
	}
	require.True(t, found, "previous stage context not found in LLM messages")
}

func TestNativeThinkingController_ForcedConclusionWithFailedLast(t *testing.T) {
	// Tool calls succeed but last LLM call errors — forced conclusion should fail
	var responses []mockLLMResponse
	for i := 0; i < 2; i++ {
		responses = append(responses, mockLLMResponse{
			chunks: []agent.Chunk{
				&agent.ToolCallChunk{CallID: fmt.Sprintf("call-%d", i), Name: "k8s.get_pods", Arguments: "{}"},
			},
		})
	}
	// 3rd iteration (last): LLM error
	responses = append(responses, mockLLMResponse{
		err: fmt.Errorf("connection reset"),
	})

	llm := &mockLLMClient{responses: responses}
	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running"},
		},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 3
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusFailed, result.Status)
	require.NotNil(t, result.Error)
	require.Contains(t, result.Error.Error(), "max iterations")
	require.Contains(t, result.Error.Error(), "connection reset")
}

func TestNativeThinkingController_LLMErrorRecovery(t *testing.T) {
	// First call errors, second succeeds with a final answer
	llm := &mockLLMClient{
		capture: true,
		responses: []mockLLMResponse{
			{err: fmt.Errorf("temporary failure")},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "All systems operational."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "All systems operational.", result.FinalAnalysis)

	// The failure is surfaced to the model as an explicit retry prompt.
	require.Len(t, llm.capturedInputs, 2)
	msgs := llm.capturedInputs[1].Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, agent.RoleUser, last.Role)
	assert.Contains(t, last.Content, "Error from previous attempt: temporary failure")
}

func TestNativeThinkingController_TextAlongsideToolCalls(t *testing.T) {
	// LLM returns text AND tool calls — the text rides along in the
	// assistant message, not as a final answer.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "I'll check the cluster status."},
				&agent.ToolCallChunk{CallID: "call-1", Name: "k8s.get_pods", Arguments: "{}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Everything is running fine."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running"},
		},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	ctrl := NewNativeThinkingController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Everything is running fine.", result.FinalAnalysis)
}

func TestNativeThinkingController_NativeToolsOverride(t *testing.T) {
	// The per-alert native tools override rides along on every generate call.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Done."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.IterationStrategy = config.IterationStrategyNativeThinking
	override := &models.NativeToolsConfig{GoogleSearch: config.BoolPtr(false)}
	execCtx.Config.NativeToolsOverride = override
	ctrl := NewNativeThinkingController()

	_, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Same(t, override, llm.lastInput.NativeToolsOverride)
}
