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
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReActController_HappyPath(t *testing.T) {
	// LLM calls: 1) tool call 2) final answer
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: I need to check pods.\nAction: k8s.get_pods\nAction Input: {}"},
				&agent.UsageChunk{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Pods look good.\nFinal Answer: Everything is healthy."},
				&agent.UsageChunk{InputTokens: 15, OutputTokens: 25, TotalTokens: 40},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running", IsError: false},
		},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Everything is healthy.", result.FinalAnalysis)
	require.Equal(t, 70, result.TokensUsed.TotalTokens)
	require.Equal(t, 2, llm.callCount)

	// Both iterations persisted as investigation interactions with the
	// conversation snapshot including the assistant reply.
	ctx := context.Background()
	llmRows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, llmRows, 2)
	assert.Equal(t, "investigation", llmRows[0].InteractionType.String())
	assert.Equal(t, "ReAct iteration 1", llmRows[0].StepDescription)
	assert.Equal(t, "ReAct iteration 2", llmRows[1].StepDescription)

	// One tool_call MCP interaction (plus one tool_list per server).
	toolCalls, err := entClient.MCPInteraction.Query().
		Where(
			mcpinteraction.SessionID(execCtx.SessionID),
			mcpinteraction.CommunicationTypeEQ("tool_call"),
		).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, toolCalls, 1)
	assert.Equal(t, "k8s", toolCalls[0].ServerName)
	assert.Equal(t, "get_pods", toolCalls[0].ToolName)
	assert.True(t, toolCalls[0].Success)
}

func TestReActController_MultipleIterations(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check pods.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check logs.\nAction: k8s.get_logs\nAction Input: {\"pod\": \"web-1\"}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Found issue.\nFinal Answer: OOM kill on web-1."},
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
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, 3, llm.callCount)
}

func TestReActController_UnknownTool(t *testing.T) {
	// LLM calls unknown tool (bad format), then self-corrects
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check pods.\nAction: bad_tool\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Let me use the right tool.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: Pods are fine."},
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
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, 3, llm.callCount)
}

func TestReActController_MalformedResponse(t *testing.T) {
	// LLM produces malformed response, then self-corrects
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "I'm not sure what to do..."},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Let me try again.\nFinal Answer: The system is healthy."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{{Name: "k8s.get_pods"}}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
}

func TestReActController_MaxIterationsForceConclusion(t *testing.T) {
	// 5 tool-call responses consumed by the main loop (iterations 0-4)
	// + 1 forced-conclusion response consumed by forceConclusion after the loop.
	var responses []mockLLMResponse
	for i := 0; i < 5; i++ {
		responses = append(responses, mockLLMResponse{
			chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check more.\nAction: k8s.get_pods\nAction Input: {}"},
			},
		})
	}
	// Forced conclusion response (consumed by forceConclusion after the loop ends)
	responses = append(responses, mockLLMResponse{
		chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Thought: Based on what I know.\nFinal Answer: System appears healthy."},
		},
	})

	llm := &mockLLMClient{responses: responses}
	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools: tools,
		results: map[string]*agent.ToolResult{
			"k8s.get_pods": {Content: "pod-1 Running"},
		},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 5
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Contains(t, result.FinalAnalysis, "System appears healthy")

	// The conclusion call is recorded with a step description naming the cap.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Forced conclusion after 5 iterations", rows[5].StepDescription)
}

func TestReActController_PauseAtMaxIterations(t *testing.T) {
	// Two tool-call responses, no Final Answer. With ForceConclusion off the
	// controller pauses instead of concluding.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check again.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{"k8s.get_pods": {Content: "pod-1 Running"}},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 2
	execCtx.Config.ForceConclusion = false
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusPaused, result.Status)
	require.Nil(t, result.Error)
	require.Equal(t, 2, llm.callCount, "no conclusion call on pause")

	require.NotNil(t, result.PauseState)
	assert.Equal(t, execCtx.ExecutionID, result.PauseState.ExecutionID)
	assert.Equal(t, models.PauseReasonMaxIterations, result.PauseState.Reason)
	assert.Equal(t, 2, result.PauseState.CurrentIteration)
	assert.NotEmpty(t, result.PauseState.Conversation)

	// Snapshot captures the full exchange: system+user, then per iteration
	// one assistant message and one observation.
	last := result.PauseState.Conversation[len(result.PauseState.Conversation)-1]
	assert.Equal(t, "user", last["role"])
	assert.Contains(t, last["content"], "Observation:")
}

func TestReActController_ResumeFromPause(t *testing.T) {
	// Resumed conversation already carries two iterations; cap of 3 leaves
	// one more, which produces the final answer.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Now I can conclude.\nFinal Answer: Resumed and done."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 3
	execCtx.Config.ForceConclusion = false
	execCtx.ResumeState = &models.PausedExecutionState{
		ExecutionID:      execCtx.ExecutionID,
		StageID:          execCtx.StageID,
		Reason:           models.PauseReasonMaxIterations,
		CurrentIteration: 2,
		Conversation: []map[string]any{
			{"role": "system", "content": "You are a test agent."},
			{"role": "user", "content": "Investigate the alert."},
			{"role": "assistant", "content": "Thought: Check.\nAction: k8s.get_pods\nAction Input: {}"},
			{"role": "user", "content": "Observation: pod-1 Running"},
		},
	}
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Resumed and done.", result.FinalAnalysis)
	require.Equal(t, 1, llm.callCount)

	// The rehydrated conversation was sent, not a fresh prompt.
	require.NotNil(t, llm.lastInput)
	require.Len(t, llm.lastInput.Messages, 4)
	assert.Equal(t, "Observation: pod-1 Running", llm.lastInput.Messages[3].Content)
}

func TestReActController_ResumeAtCapForcesConclusion(t *testing.T) {
	// A resumed execution already at the iteration cap cannot loop again;
	// it goes straight to the forced conclusion instead of re-pausing.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Wrapping up.\nFinal Answer: Conclusion from resume."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 2
	execCtx.Config.ForceConclusion = false
	execCtx.ResumeState = &models.PausedExecutionState{
		ExecutionID:      execCtx.ExecutionID,
		Reason:           models.PauseReasonMaxIterations,
		CurrentIteration: 2,
		Conversation: []map[string]any{
			{"role": "system", "content": "You are a test agent."},
			{"role": "user", "content": "Investigate the alert."},
			{"role": "assistant", "content": "Thought: Check.\nAction: k8s.get_pods\nAction Input: {}"},
			{"role": "user", "content": "Observation: pod-1 Running"},
		},
	}
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "Conclusion from resume.", result.FinalAnalysis)
	require.Equal(t, 1, llm.callCount)
	require.Nil(t, result.PauseState)
}

func TestReActController_ConsecutiveTimeouts(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{err: context.DeadlineExceeded},
			{err: context.DeadlineExceeded},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusFailed, result.Status)
	require.NotNil(t, result.Error)
	require.Equal(t, 2, llm.callCount)
}

func TestReActController_LLMErrorRecovery(t *testing.T) {
	// First call errors, second succeeds
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{err: fmt.Errorf("connection error")},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: The system is fine."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// The failed call is still audited, with its error message.
	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "connection error", rows[0].ErrorMessage)
	assert.Empty(t, rows[1].ErrorMessage)
}

func TestReActController_SessionCancelUnwinds(t *testing.T) {
	// When the outer context is cancelled the controller returns the context
	// error instead of feeding it back into the conversation.
	ctx, cancel := context.WithCancel(context.Background())

	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{err: context.Canceled},
		},
		onGenerate: func(int) { cancel() },
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(ctx, execCtx, "")
	require.Nil(t, result)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, llm.callCount, "no retry after session cancel")
}

func TestReActController_PrevStageContext(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Using context.\nFinal Answer: Based on previous analysis."},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, _ := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "Previous agent found OOM issues.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// Verify prev stage context was included in messages
	require.NotNil(t, llm.lastInput)
	found := false
	for _, msg := range llm.lastInput.Messages {
		if strings.Contains(msg.Content, "Previous agent found OOM issues") {
			found = true
			break
		}
	}
	require.True(t, found, "previous stage context not found in LLM messages")
}

func TestReActController_ToolExecutionError(t *testing.T) {
	// Tool fails on first call, LLM retries with a different approach and succeeds
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check pods.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Tool failed. Let me try logs.\nAction: k8s.get_logs\nAction Input: {\"pod\": \"web-1\"}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Got the data.\nFinal Answer: Pod web-1 is crashing due to OOM."},
			}},
		},
	}

	tools := []agent.ToolDefinition{
		{Name: "k8s.get_pods", Description: "Get pods"},
		{Name: "k8s.get_logs", Description: "Get logs"},
	}

	callCount := 0
	executor := &mockToolExecutorFunc{
		tools: tools,
		executeFn: func(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
			callCount++
			if call.Name == "k8s.get_pods" {
				return nil, fmt.Errorf("connection refused to cluster API")
			}
			return &agent.ToolResult{Content: "OOMKilled at 14:32"}, nil
		},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Contains(t, result.FinalAnalysis, "OOM")
	require.Equal(t, 2, callCount, "both tool calls should have been attempted")

	// The failed tool call is audited with success=false.
	rows, err := entClient.MCPInteraction.Query().
		Where(
			mcpinteraction.SessionID(execCtx.SessionID),
			mcpinteraction.CommunicationTypeEQ("tool_call"),
		).
		Order(ent.Asc(mcpinteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Success)
	assert.Contains(t, rows[0].ErrorMessage, "connection refused")
	assert.True(t, rows[1].Success)
}

func TestReActController_ForcedConclusionWithFailedLast(t *testing.T) {
	// 4 tool-call responses consumed by iterations 0-3, then iteration 4 errors.
	// After the loop, forceConclusion sees LastInteractionFailed=true and returns
	// a failed result wrapping the original error in a "max iterations" message.
	var responses []mockLLMResponse
	for i := 0; i < 4; i++ {
		responses = append(responses, mockLLMResponse{
			chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check.\nAction: k8s.get_pods\nAction Input: {}"},
			},
		})
	}
	// 5th iteration: LLM error
	responses = append(responses, mockLLMResponse{
		err: fmt.Errorf("service unavailable"),
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
	execCtx.Config.MaxIterations = 5
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusFailed, result.Status)
	require.NotNil(t, result.Error)
	// Verify the error indicates iteration exhaustion and propagates the original cause.
	errMsg := result.Error.Error()
	require.Contains(t, errMsg, "max iterations")
	require.Contains(t, errMsg, "service unavailable")
}

func TestReActController_ToolNotInAvailableList(t *testing.T) {
	// LLM calls a tool that passes format validation (has dot) but isn't in the tool list
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check.\nAction: nonexistent.tool\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: Fixed."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
}

func TestReActController_NativeToolMetadataRecorded(t *testing.T) {
	// Code execution and grounding data in a ReAct response are not part of
	// the protocol, but they are preserved in the interaction's
	// response_metadata for debugging.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: The system is healthy."},
				&agent.CodeExecutionChunk{Code: "print(1)", Result: "1"},
				&agent.GroundingChunk{
					WebSearchQueries: []string{"k8s health"},
					Sources:          []agent.GroundingSource{{URI: "https://k8s.io", Title: "K8s"}},
				},
			}},
		},
	}

	executor := &mockToolExecutor{tools: []agent.ToolDefinition{}}
	execCtx, entClient := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)
	require.Equal(t, "The system is healthy.", result.FinalAnalysis)

	rows, err := entClient.LLMInteraction.Query().
		Where(llminteraction.SessionID(execCtx.SessionID)).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ResponseMetadata)
	assert.Contains(t, rows[0].ResponseMetadata, "code_executions")
	assert.Contains(t, rows[0].ResponseMetadata, "groundings")
}

func TestReActController_PublishesEvents(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check pods.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: All healthy."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{"k8s.get_pods": {Content: "pod-1 Running"}},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// One llm.interaction per call.
	require.Len(t, pub.llmInteractions, 2)
	assert.Equal(t, events.EventTypeLLMInteraction, pub.llmInteractions[0].Type)
	assert.Equal(t, "ReAct iteration 1", pub.llmInteractions[0].StepDescription)
	assert.True(t, pub.llmInteractions[0].Success)

	// tool_list for the server plus the executed tool_call.
	require.Len(t, pub.mcpInteractions, 2)
	assert.Equal(t, events.EventTypeMCPToolList, pub.mcpInteractions[0].Type)
	assert.Equal(t, events.EventTypeMCPToolCall, pub.mcpInteractions[1].Type)
	assert.Equal(t, "k8s", pub.mcpInteractions[1].ServerName)
	assert.Equal(t, "get_pods", pub.mcpInteractions[1].ToolName)

	// Stream chunks carry accumulated text; the conclusion stream is
	// promoted from thought to final_answer once the marker appears.
	require.NotEmpty(t, pub.streamChunks)
	first := pub.streamChunks[0]
	assert.Equal(t, events.EventTypeStreamChunk, first.Type)
	assert.Equal(t, events.StreamTypeThought, first.StreamType)
	last := pub.streamChunks[len(pub.streamChunks)-1]
	assert.Equal(t, events.StreamTypeFinalAnswer, last.StreamType)
	assert.Contains(t, last.Content, "Final Answer:")
}

func TestReActController_PromptBuilderIntegration(t *testing.T) {
	// Verify the prompt builder produces the expected message structure
	// in the ReAct controller: system msg with three-tier instructions + ReAct format,
	// user msg with tools, alert data, runbook, and analysis task.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: All clear."},
			}},
		},
	}

	tools := []agent.ToolDefinition{
		{Name: "k8s.get_pods", Description: "List pods", ParametersSchema: `{"properties":{"ns":{"type":"string","description":"Namespace"}},"required":["ns"]}`},
	}
	executor := &mockToolExecutor{tools: tools, results: map[string]*agent.ToolResult{}}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.AlertType = "kubernetes"
	execCtx.RunbookContent = "# Test Runbook\nStep 1: Check pods"
	execCtx.Config.CustomInstructions = "Custom agent instructions for test."
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "Previous agent found high CPU.")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// Inspect messages sent to LLM
	require.NotNil(t, llm.lastInput)
	require.GreaterOrEqual(t, len(llm.lastInput.Messages), 2)

	systemMsg := llm.lastInput.Messages[0]
	userMsg := llm.lastInput.Messages[1]

	// System message should have: Tier 1 (SRE instructions), ReAct format, task focus
	require.Equal(t, "system", systemMsg.Role)
	require.Contains(t, systemMsg.Content, "General SRE Agent Instructions")
	require.Contains(t, systemMsg.Content, "ReAct")
	require.Contains(t, systemMsg.Content, "Thought:")
	require.Contains(t, systemMsg.Content, "Action:")
	require.Contains(t, systemMsg.Content, "Final Answer:")
	require.Contains(t, systemMsg.Content, "Focus on investigation")

	// Custom instructions (Tier 3) in system
	require.Contains(t, systemMsg.Content, "Custom agent instructions for test.")

	// User message should have: tool descriptions, alert data, runbook, chain context, task
	require.Equal(t, "user", userMsg.Role)
	require.Contains(t, userMsg.Content, "Available tools")
	require.Contains(t, userMsg.Content, "k8s.get_pods")
	require.Contains(t, userMsg.Content, "ns (required, string): Namespace")
	require.Contains(t, userMsg.Content, "Alert Details")
	require.Contains(t, userMsg.Content, "CPU high on prod-server-1") // from execCtx.AlertData
	require.Contains(t, userMsg.Content, "Alert Type")
	require.Contains(t, userMsg.Content, "Runbook Content")
	require.Contains(t, userMsg.Content, "Test Runbook")
	require.Contains(t, userMsg.Content, "Previous Stage Data")
	require.Contains(t, userMsg.Content, "Previous agent found high CPU.")
	require.Contains(t, userMsg.Content, "Your Task")

	// ReAct should NOT pass tools natively — they're described in text
	require.Nil(t, llm.lastInput.Tools)
}

func TestReActController_ForcedConclusionUsesReActFormat(t *testing.T) {
	// Verify the forced conclusion prompt specifically uses the ReAct format
	// (requires "Final Answer:" marker)
	var responses []mockLLMResponse
	for i := 0; i < 3; i++ {
		responses = append(responses, mockLLMResponse{
			chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: More investigation.\nAction: k8s.get_pods\nAction Input: {}"},
			},
		})
	}
	// Forced conclusion response
	responses = append(responses, mockLLMResponse{
		chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Thought: Concluded.\nFinal Answer: System healthy."},
		},
	})

	llm := &mockLLMClient{responses: responses}
	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{"k8s.get_pods": {Content: "pod-1 Running"}},
	}

	execCtx, _ := newTestExecCtx(t, llm, executor)
	execCtx.Config.MaxIterations = 3
	ctrl := NewReActController()

	result, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)
	require.Equal(t, agent.ExecutionStatusCompleted, result.Status)

	// The forced conclusion call's messages should contain ReAct-specific format instructions
	require.NotNil(t, llm.lastInput)
	lastUserMsg := ""
	for i := len(llm.lastInput.Messages) - 1; i >= 0; i-- {
		if llm.lastInput.Messages[i].Role == "user" {
			lastUserMsg = llm.lastInput.Messages[i].Content
			break
		}
	}
	require.Contains(t, lastUserMsg, "iteration limit")
	require.Contains(t, lastUserMsg, "Final Answer:")
	require.Contains(t, lastUserMsg, "CRITICAL")
}

func TestReActController_UpdatesCurrentIteration(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Check.\nAction: k8s.get_pods\nAction Input: {}"},
			}},
			{chunks: []agent.Chunk{
				&agent.TextChunk{Content: "Thought: Done.\nFinal Answer: OK."},
			}},
		},
	}

	tools := []agent.ToolDefinition{{Name: "k8s.get_pods", Description: "Get pods"}}
	executor := &mockToolExecutor{
		tools:   tools,
		results: map[string]*agent.ToolResult{"k8s.get_pods": {Content: "pod-1 Running"}},
	}

	execCtx, entClient := newTestExecCtx(t, llm, executor)
	ctrl := NewReActController()

	_, err := ctrl.Run(context.Background(), execCtx, "")
	require.NoError(t, err)

	row, err := entClient.StageExecution.Get(context.Background(), execCtx.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.CurrentIteration)
}
