package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// accumulateUsage adds token counts from an LLM response to the running total.
func accumulateUsage(total *agent.TokenUsage, resp *LLMResponse) {
	if resp != nil {
		accumulateTokenUsage(total, resp.Usage)
	}
}

// accumulateTokenUsage adds token counts from a TokenUsage to the running total.
// Accepts *agent.TokenUsage directly, avoiding the need to wrap usage in a
// throwaway LLMResponse (e.g., when accumulating summarization usage).
func accumulateTokenUsage(total *agent.TokenUsage, usage *agent.TokenUsage) {
	if usage == nil {
		return
	}
	total.InputTokens += usage.InputTokens
	total.OutputTokens += usage.OutputTokens
	total.TotalTokens += usage.TotalTokens
	total.ThinkingTokens += usage.ThinkingTokens
}

// generateInteractionID creates the interaction ID before the LLM call so
// streaming chunks can reference the record the call will produce.
func generateInteractionID() string {
	return uuid.New().String()
}

// recordLLMInteraction persists one LLM call (successful or failed) and
// publishes the llm.interaction event. Logs on failure but does not abort —
// the in-memory conversation is authoritative during execution.
//
// conversation is the input message list; the assistant reply from resp is
// appended to the stored snapshot. callErr is non-nil for failed calls.
func recordLLMInteraction(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	interactionID string,
	interactionType string,
	stepDescription string,
	conversation []agent.ConversationMessage,
	resp *LLMResponse,
	startTime time.Time,
	callErr error,
) {
	req := models.CreateLLMInteractionRequest{
		InteractionID:    interactionID,
		SessionID:        execCtx.SessionID,
		StageExecutionID: &execCtx.ExecutionID,
		TimestampUs:      startTime.UnixMicro(),
		DurationMs:       time.Since(startTime).Milliseconds(),
		InteractionType:  interactionType,
		ModelName:        execCtx.Config.LLMProvider.Model,
		Provider:         execCtx.Config.LLMProviderName,
		StepDescription:  stepDescription,
		Conversation:     conversationWithReply(conversation, resp),
		ResponseMetadata: buildResponseMetadata(resp),
		NativeToolsCfg:   nativeToolsConfigMap(execCtx.Config.NativeToolsOverride),
	}
	if resp != nil {
		req.ThinkingContent = resp.ThinkingText
	}
	if callErr != nil {
		req.ErrorMessage = callErr.Error()
	}

	if _, err := execCtx.Services.Interaction.CreateLLMInteraction(ctx, req); err != nil {
		slog.Error("Failed to record LLM interaction",
			"session_id", execCtx.SessionID, "type", interactionType, "error", err)
		return
	}

	publishLLMInteraction(ctx, execCtx, interactionID, interactionType, stepDescription, callErr)
}

// publishLLMInteraction emits the llm.interaction event for a persisted
// record. Publish failures are logged and swallowed; clients catch up from
// the events table on reconnect.
func publishLLMInteraction(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	interactionID, interactionType, stepDescription string,
	callErr error,
) {
	if execCtx.EventPublisher == nil {
		return
	}
	payload := events.LLMInteractionPayload{
		Type:             events.EventTypeLLMInteraction,
		SessionID:        execCtx.SessionID,
		StageExecutionID: execCtx.ExecutionID,
		InteractionID:    interactionID,
		InteractionType:  interactionType,
		StepDescription:  stepDescription,
		ModelName:        execCtx.Config.LLMProvider.Model,
		Success:          callErr == nil,
		Timestamp:        time.Now().Format(time.RFC3339Nano),
	}
	if callErr != nil {
		payload.ErrorMessage = callErr.Error()
	}
	if err := execCtx.EventPublisher.PublishLLMInteraction(ctx, execCtx.SessionID, payload); err != nil {
		slog.Warn("Failed to publish LLM interaction event",
			"session_id", execCtx.SessionID, "interaction_id", interactionID, "error", err)
	}
}

// buildResponseMetadata constructs the response_metadata map from token usage,
// code execution and grounding data in the LLM response. Returns nil when
// there is nothing to store, so the optional DB field remains NULL.
func buildResponseMetadata(resp *LLMResponse) map[string]any {
	if resp == nil {
		return nil
	}

	meta := map[string]any{}

	if resp.Usage != nil {
		meta["token_usage"] = map[string]any{
			"input_tokens":    resp.Usage.InputTokens,
			"output_tokens":   resp.Usage.OutputTokens,
			"total_tokens":    resp.Usage.TotalTokens,
			"thinking_tokens": resp.Usage.ThinkingTokens,
		}
	}

	if len(resp.CodeExecutions) > 0 {
		codeExecs := make([]map[string]string, 0, len(resp.CodeExecutions))
		for _, ce := range resp.CodeExecutions {
			codeExecs = append(codeExecs, map[string]string{
				"code":   ce.Code,
				"result": ce.Result,
			})
		}
		meta["code_executions"] = codeExecs
	}

	if len(resp.Groundings) > 0 {
		groundings := make([]map[string]any, 0, len(resp.Groundings))
		for _, g := range resp.Groundings {
			entry := map[string]any{}

			// Classify as google_search or url_context based on whether
			// WebSearchQueries is populated.
			if len(g.WebSearchQueries) > 0 {
				entry["type"] = "google_search"
				entry["queries"] = g.WebSearchQueries
			} else {
				entry["type"] = "url_context"
			}

			if len(g.Sources) > 0 {
				sources := make([]map[string]string, len(g.Sources))
				for i, s := range g.Sources {
					sources[i] = map[string]string{"uri": s.URI, "title": s.Title}
				}
				entry["sources"] = sources
			}

			if len(g.Supports) > 0 {
				supports := make([]map[string]any, len(g.Supports))
				for i, s := range g.Supports {
					supports[i] = map[string]any{
						"start_index":    s.StartIndex,
						"end_index":      s.EndIndex,
						"text":           s.Text,
						"source_indices": s.GroundingChunkIndices,
					}
				}
				entry["supports"] = supports
			}

			groundings = append(groundings, entry)
		}
		meta["groundings"] = groundings
	}

	if len(meta) == 0 {
		return nil
	}
	return meta
}

// nativeToolsConfigMap converts the resolved native tools override to the
// JSON shape stored on the interaction. Nil when no override is active.
func nativeToolsConfigMap(override *models.NativeToolsConfig) map[string]any {
	if override == nil {
		return nil
	}
	out := map[string]any{}
	if override.GoogleSearch != nil {
		out["google_search"] = *override.GoogleSearch
	}
	if override.CodeExecution != nil {
		out["code_execution"] = *override.CodeExecution
	}
	if override.URLContext != nil {
		out["url_context"] = *override.URLContext
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// updateCurrentIteration persists loop progress for the dashboard and pause
// snapshots. Logs on failure but does not abort.
func updateCurrentIteration(ctx context.Context, execCtx *agent.ExecutionContext, iteration int) {
	if err := execCtx.Services.Stage.SetCurrentIteration(ctx, execCtx.ExecutionID, iteration); err != nil {
		slog.Warn("Failed to update current iteration",
			"execution_id", execCtx.ExecutionID, "iteration", iteration, "error", err)
	}
}

// isTimeoutError checks if an error is a context deadline timeout.
// Used for consecutive timeout tracking. Only matches errors that wrap
// context.DeadlineExceeded — string-based matching is intentionally avoided
// because callers propagate the original error with its full chain.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// generateCallID creates a unique ID for a tool call.
func generateCallID() string {
	return uuid.New().String()
}

// buildToolNameSet creates a set of available tool names for quick lookup.
func buildToolNameSet(tools []agent.ToolDefinition) map[string]bool {
	set := make(map[string]bool, len(tools))
	for _, t := range tools {
		set[t.Name] = true
	}
	return set
}

// failedResult creates a failed ExecutionResult from iteration state.
// state must not be nil — callers always pass the locally-created IterationState
// from the top of their Run() method.
func failedResult(state *agent.IterationState, totalUsage agent.TokenUsage) *agent.ExecutionResult {
	return &agent.ExecutionResult{
		Status: agent.ExecutionStatusFailed,
		Error: fmt.Errorf("aborted after %d consecutive timeouts (iteration %d/%d): %s",
			state.ConsecutiveTimeoutFailures, state.CurrentIteration, state.MaxIterations, state.LastErrorMessage),
		TokensUsed: totalUsage,
	}
}

// pausedResult snapshots the conversation and loop position into a paused
// ExecutionResult. The executor folds the snapshot into the session's
// pause_metadata keyed by execution ID.
func pausedResult(
	execCtx *agent.ExecutionContext,
	messages []agent.ConversationMessage,
	state *agent.IterationState,
	totalUsage agent.TokenUsage,
) *agent.ExecutionResult {
	return &agent.ExecutionResult{
		Status:     agent.ExecutionStatusPaused,
		TokensUsed: totalUsage,
		PauseState: &models.PausedExecutionState{
			ExecutionID:      execCtx.ExecutionID,
			StageID:          execCtx.StageID,
			StageIndex:       execCtx.StageIndex,
			Reason:           models.PauseReasonMaxIterations,
			CurrentIteration: state.CurrentIteration,
			Conversation:     conversationToMaps(messages),
			PausedAtUs:       time.Now().UnixMicro(),
		},
	}
}

// tokenUsageFromResp extracts token usage from an LLM response.
func tokenUsageFromResp(resp *LLMResponse) agent.TokenUsage {
	if resp == nil || resp.Usage == nil {
		return agent.TokenUsage{}
	}
	return *resp.Usage
}
