package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
)

// NativeThinkingController implements the native function calling loop for
// providers with structured tool calls (Gemini). Tool calls arrive as
// ToolCallChunk values, not parsed from text. Completion signal: a response
// without any ToolCalls.
type NativeThinkingController struct{}

// NewNativeThinkingController creates a new native thinking controller.
func NewNativeThinkingController() *NativeThinkingController {
	return &NativeThinkingController{}
}

// encodeFunctionTools rewrites canonical "server.tool" names to
// "server__tool" for native binding. Gemini function names must not contain
// dots; NormalizeToolName reverses the encoding when the call comes back.
func encodeFunctionTools(tools []agent.ToolDefinition) []agent.ToolDefinition {
	encoded := make([]agent.ToolDefinition, len(tools))
	for i, t := range tools {
		encoded[i] = t
		encoded[i].Name = strings.Replace(t.Name, ".", "__", 1)
	}
	return encoded
}

// Run executes the native thinking iteration loop. On resume the
// conversation is rehydrated from the pause snapshot and the loop continues
// from the recorded iteration.
func (c *NativeThinkingController) Run(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) (*agent.ExecutionResult, error) {
	maxIter := execCtx.Config.MaxIterations
	totalUsage := agent.TokenUsage{}
	state := &agent.IterationState{MaxIterations: maxIter}

	if execCtx.PromptBuilder == nil {
		return nil, fmt.Errorf("PromptBuilder is nil: cannot build native thinking messages")
	}

	// 1. Get available tools and record tool_list interactions.
	tools, err := execCtx.ToolExecutor.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	recordToolListInteractions(ctx, execCtx, tools)
	boundTools := encodeFunctionTools(tools)

	// 2. Build the conversation: fresh, or rehydrated from the pause
	//    snapshot when resuming.
	resumed := execCtx.ResumeState != nil
	startIteration := 0
	var messages []agent.ConversationMessage
	if resumed {
		messages = conversationFromMaps(execCtx.ResumeState.Conversation)
		startIteration = execCtx.ResumeState.CurrentIteration
	}
	if len(messages) == 0 {
		messages = execCtx.PromptBuilder.BuildNativeThinkingMessages(execCtx, prevStageContext)
	}

	// Main iteration loop
	for iteration := startIteration; iteration < maxIter; iteration++ {
		state.CurrentIteration = iteration + 1
		updateCurrentIteration(ctx, execCtx, state.CurrentIteration)

		if state.ShouldAbortOnTimeouts() {
			return failedResult(state, totalUsage), nil
		}

		iterCtx, iterCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)

		startTime := time.Now()
		interactionID := generateInteractionID()
		stepDescription := fmt.Sprintf("Native thinking iteration %d", state.CurrentIteration)

		// Call LLM WITH tools bound for native function calling
		resp, err := callLLMWithStreaming(iterCtx, execCtx, &agent.GenerateInput{
			SessionID:           execCtx.SessionID,
			ExecutionID:         execCtx.ExecutionID,
			Messages:            messages,
			Provider:            execCtx.Config.LLMProviderName,
			Config:              execCtx.Config.LLMProvider,
			Tools:               boundTools,
			NativeToolsOverride: execCtx.Config.NativeToolsOverride,
		}, streamOptions{
			InteractionID: interactionID,
			TextType:      events.StreamTypeFinalAnswer,
			ThinkingType:  events.StreamTypeNativeThinking,
		})
		if err != nil {
			iterCancel()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			recordLLMInteraction(ctx, execCtx, interactionID, "investigation", stepDescription, messages, nil, startTime, err)
			state.RecordFailure(err.Error(), isTimeoutError(err))

			// Add error context as user message
			errMsg := fmt.Sprintf("Error from previous attempt: %s. Please try again.", err.Error())
			messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: errMsg})
			continue
		}

		accumulateUsage(&totalUsage, resp)
		// A round that picks tools is audited as tool_selection; only the
		// final text-only round is an investigation answer.
		interactionType := "investigation"
		if len(resp.ToolCalls) > 0 {
			interactionType = "tool_selection"
		}
		recordLLMInteraction(ctx, execCtx, interactionID, interactionType, stepDescription, messages, resp, startTime, nil)
		state.RecordSuccess()

		// No tool calls means the model is done: the text is the final answer.
		if len(resp.ToolCalls) == 0 {
			iterCancel()
			return &agent.ExecutionResult{
				Status:        agent.ExecutionStatusCompleted,
				FinalAnalysis: resp.Text,
				TokensUsed:    totalUsage,
			}, nil
		}

		// Append assistant message WITH tool calls
		messages = append(messages, agent.ConversationMessage{
			Role:      agent.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		// Execute each tool call and append results as tool messages
		for _, tc := range resp.ToolCalls {
			result := executeToolCall(iterCtx, execCtx, tc, messages)
			if result.Err != nil {
				state.RecordFailure(result.Err.Error(), isTimeoutError(result.Err))
			} else if result.Usage != nil {
				accumulateTokenUsage(&totalUsage, result.Usage)
			}
			messages = append(messages, agent.ConversationMessage{
				Role:       agent.RoleTool,
				Content:    result.Content,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}

		iterCancel()
	}

	// Iteration cap reached. Pause for operator review unless the agent is
	// configured to conclude on its own. A resumed run that hits the cap
	// again concludes rather than re-pausing.
	if !execCtx.Config.ForceConclusion && !resumed {
		return pausedResult(execCtx, messages, state, totalUsage), nil
	}
	return c.forceConclusion(ctx, execCtx, messages, &totalUsage, state)
}

// forceConclusion forces a final answer by calling the LLM without tools.
func (c *NativeThinkingController) forceConclusion(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	messages []agent.ConversationMessage,
	totalUsage *agent.TokenUsage,
	state *agent.IterationState,
) (*agent.ExecutionResult, error) {
	if state.LastInteractionFailed {
		return &agent.ExecutionResult{
			Status: agent.ExecutionStatusFailed,
			Error: fmt.Errorf("max iterations (%d) reached with last interaction failed: %s",
				state.MaxIterations, state.LastErrorMessage),
			TokensUsed: *totalUsage,
		}, nil
	}

	conclusionPrompt := execCtx.PromptBuilder.BuildForcedConclusionPrompt(state.CurrentIteration, config.IterationStrategyNativeThinking)
	messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: conclusionPrompt})

	startTime := time.Now()
	interactionID := generateInteractionID()
	stepDescription := fmt.Sprintf("Forced conclusion after %d iterations", state.CurrentIteration)

	conclusionCtx, conclusionCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)
	defer conclusionCancel()

	// No tools bound — forces a text-only response
	resp, err := callLLMWithStreaming(conclusionCtx, execCtx, &agent.GenerateInput{
		SessionID:           execCtx.SessionID,
		ExecutionID:         execCtx.ExecutionID,
		Messages:            messages,
		Provider:            execCtx.Config.LLMProviderName,
		Config:              execCtx.Config.LLMProvider,
		NativeToolsOverride: execCtx.Config.NativeToolsOverride,
	}, streamOptions{
		InteractionID: interactionID,
		TextType:      events.StreamTypeFinalAnswer,
		ThinkingType:  events.StreamTypeNativeThinking,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		recordLLMInteraction(ctx, execCtx, interactionID, "investigation", stepDescription, messages, nil, startTime, err)
		return &agent.ExecutionResult{
			Status:     agent.ExecutionStatusFailed,
			Error:      fmt.Errorf("forced conclusion LLM call failed: %w", err),
			TokensUsed: *totalUsage,
		}, nil
	}

	accumulateUsage(totalUsage, resp)
	recordLLMInteraction(ctx, execCtx, interactionID, "investigation", stepDescription, messages, resp, startTime, nil)

	return &agent.ExecutionResult{
		Status:        agent.ExecutionStatusCompleted,
		FinalAnalysis: resp.Text,
		TokensUsed:    *totalUsage,
	}, nil
}
