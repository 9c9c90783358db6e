package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
)

// ReActController implements the standard Reason + Act loop with text-based
// tool calling. This is the primary investigation strategy and works with
// every LLM provider since tools are described in the system prompt, not
// bound natively.
type ReActController struct{}

// NewReActController creates a new ReAct controller.
func NewReActController() *ReActController {
	return &ReActController{}
}

// Run executes the ReAct iteration loop. On resume the conversation is
// rehydrated from the pause snapshot and the loop continues from the
// recorded iteration.
func (c *ReActController) Run(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) (*agent.ExecutionResult, error) {
	maxIter := execCtx.Config.MaxIterations
	totalUsage := agent.TokenUsage{}
	state := &agent.IterationState{MaxIterations: maxIter}

	// 1. Get available tools (needed for prompt and validation); one
	//    tool_list interaction per server goes into the audit trail.
	tools, err := execCtx.ToolExecutor.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	recordToolListInteractions(ctx, execCtx, tools)

	if execCtx.PromptBuilder == nil {
		return nil, fmt.Errorf("PromptBuilder is nil: cannot build ReAct messages")
	}

	// 2. Build the conversation: fresh from the prompt builder, or
	//    rehydrated from the pause snapshot when resuming.
	resumed := execCtx.ResumeState != nil
	startIteration := 0
	var messages []agent.ConversationMessage
	if resumed {
		messages = conversationFromMaps(execCtx.ResumeState.Conversation)
		startIteration = execCtx.ResumeState.CurrentIteration
	}
	if len(messages) == 0 {
		messages = execCtx.PromptBuilder.BuildReActMessages(execCtx, prevStageContext, tools)
	}

	// 3. Tool name set for validating LLM-requested actions.
	toolNames := buildToolNameSet(tools)

	// Main iteration loop
	for iteration := startIteration; iteration < maxIter; iteration++ {
		state.CurrentIteration = iteration + 1
		updateCurrentIteration(ctx, execCtx, state.CurrentIteration)

		// Check consecutive timeout threshold
		if state.ShouldAbortOnTimeouts() {
			return failedResult(state, totalUsage), nil
		}

		// Per-iteration timeout
		iterCtx, iterCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)

		startTime := time.Now()
		interactionID := generateInteractionID()
		stepDescription := fmt.Sprintf("ReAct iteration %d", state.CurrentIteration)

		// Call LLM with streaming (no bound tools — ReAct is text-based)
		resp, err := callLLMWithStreaming(iterCtx, execCtx, &agent.GenerateInput{
			SessionID:   execCtx.SessionID,
			ExecutionID: execCtx.ExecutionID,
			Messages:    messages,
			Provider:    execCtx.Config.LLMProviderName,
			Config:      execCtx.Config.LLMProvider,
		}, streamOptions{
			InteractionID:      interactionID,
			TextType:           events.StreamTypeThought,
			ThinkingType:       events.StreamTypeNativeThinking,
			PromoteFinalAnswer: true,
		})
		if err != nil {
			iterCancel()
			// Session-level cancellation or timeout unwinds to the agent,
			// which maps it to cancelled/timed_out. Iteration-level failures
			// are fed back into the conversation and the loop continues.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			recordLLMInteraction(ctx, execCtx, interactionID, "investigation", stepDescription, messages, nil, startTime, err)
			state.RecordFailure(err.Error(), isTimeoutError(err))
			observation := FormatErrorObservation(err)
			messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: observation})
			continue
		}

		accumulateUsage(&totalUsage, resp)
		recordLLMInteraction(ctx, execCtx, interactionID, "investigation", stepDescription, messages, resp, startTime, nil)

		// Append assistant response to conversation
		messages = append(messages, agent.ConversationMessage{
			Role:    agent.RoleAssistant,
			Content: resp.Text,
		})

		// Parse ReAct response
		parsed := ParseReActResponse(resp.Text)
		state.RecordSuccess()

		switch {
		case parsed.IsFinalAnswer:
			iterCancel()
			return &agent.ExecutionResult{
				Status:        agent.ExecutionStatusCompleted,
				FinalAnalysis: parsed.FinalAnswer,
				TokensUsed:    totalUsage,
			}, nil

		case parsed.HasAction && !parsed.IsUnknownTool:
			// Valid tool call — check against available tools
			if !toolNames[parsed.Action] {
				observation := FormatUnknownToolError(parsed.Action,
					fmt.Sprintf("Unknown tool '%s'", parsed.Action), tools)
				messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: observation})
			} else {
				result := executeToolCall(iterCtx, execCtx, agent.ToolCall{
					ID:        generateCallID(),
					Name:      parsed.Action,
					Arguments: parsed.ActionInput,
				}, messages)

				var observation string
				if result.Err != nil {
					state.RecordFailure(result.Err.Error(), isTimeoutError(result.Err))
					observation = FormatToolErrorObservation(result.Err)
				} else {
					if result.Usage != nil {
						accumulateTokenUsage(&totalUsage, result.Usage)
					}
					observation = FormatObservation(&agent.ToolResult{
						Name:    parsed.Action,
						Content: result.Content,
						IsError: result.IsError,
					})
				}
				messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: observation})
			}

		case parsed.IsUnknownTool:
			observation := FormatUnknownToolError(parsed.Action, parsed.ErrorMessage, tools)
			messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: observation})

		default:
			// Malformed response — keep it, add format feedback
			feedback := GetFormatErrorFeedback(parsed)
			messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: feedback})
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

// forceConclusion makes one final tool-less LLM call demanding a conclusion
// from the conversation so far.
func (c *ReActController) forceConclusion(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	messages []agent.ConversationMessage,
	totalUsage *agent.TokenUsage,
	state *agent.IterationState,
) (*agent.ExecutionResult, error) {
	// If the last interaction failed, return failed status
	if state.LastInteractionFailed {
		return &agent.ExecutionResult{
			Status: agent.ExecutionStatusFailed,
			Error: fmt.Errorf("max iterations (%d) reached with last interaction failed: %s",
				state.MaxIterations, state.LastErrorMessage),
			TokensUsed: *totalUsage,
		}, nil
	}

	conclusionPrompt := execCtx.PromptBuilder.BuildForcedConclusionPrompt(state.CurrentIteration, config.IterationStrategyReact)
	messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: conclusionPrompt})

	startTime := time.Now()
	interactionID := generateInteractionID()
	stepDescription := fmt.Sprintf("Forced conclusion after %d iterations", state.CurrentIteration)

	// Apply same iteration timeout as the main loop to prevent indefinite hangs
	conclusionCtx, conclusionCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)
	defer conclusionCancel()

	resp, err := callLLMWithStreaming(conclusionCtx, execCtx, &agent.GenerateInput{
		SessionID:   execCtx.SessionID,
		ExecutionID: execCtx.ExecutionID,
		Messages:    messages,
		Provider:    execCtx.Config.LLMProviderName,
		Config:      execCtx.Config.LLMProvider,
	}, streamOptions{
		InteractionID:      interactionID,
		TextType:           events.StreamTypeThought,
		ThinkingType:       events.StreamTypeNativeThinking,
		PromoteFinalAnswer: true,
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

	// Parse forced conclusion — may or may not have ReAct format
	parsed := ParseReActResponse(resp.Text)
	finalAnswer := ExtractForcedConclusionAnswer(parsed)
	if finalAnswer == "" {
		// If the parser couldn't extract anything, use the raw text
		finalAnswer = resp.Text
	}

	return &agent.ExecutionResult{
		Status:        agent.ExecutionStatusCompleted,
		FinalAnalysis: finalAnswer,
		TokensUsed:    *totalUsage,
	}, nil
}
