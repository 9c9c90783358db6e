package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// SummarizationResult holds the outcome of a summarization attempt.
type SummarizationResult struct {
	Content       string            // Summary text (or original if not summarized)
	WasSummarized bool              // Whether summarization was performed
	Usage         *agent.TokenUsage // Token usage from summarization LLM call (nil if not summarized)
}

// maybeSummarize checks if a tool result needs summarization and performs it
// if so. Returns the (possibly summarized) content and metadata about the
// summarization. Fail-open: on summarization failure the truncated original
// is returned so the investigation can continue.
//
// mcpRequestID is the request_id of the tool_call interaction whose result is
// being summarized; the summarization interaction links back to it.
func maybeSummarize(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	mcpRequestID string,
	serverID, toolName string,
	rawContent string,
	conversationContext string,
) (*SummarizationResult, error) {
	// 1. Look up summarization config for this server
	if execCtx.PromptBuilder == nil {
		return &SummarizationResult{Content: rawContent}, nil
	}

	registry := execCtx.PromptBuilder.MCPServerRegistry()
	if registry == nil {
		return &SummarizationResult{Content: rawContent}, nil
	}

	serverConfig, err := registry.Get(serverID)
	if err != nil {
		return &SummarizationResult{Content: rawContent}, nil
	}

	// Summarization is enabled by default; only skip if explicitly disabled
	if serverConfig.Summarization != nil && serverConfig.Summarization.SummarizationDisabled() {
		return &SummarizationResult{Content: rawContent}, nil
	}

	// 2. Estimate token count and resolve effective config (defaults for nil)
	estimatedTokens := mcp.EstimateTokens(rawContent)
	threshold := config.DefaultSizeThresholdTokens
	maxSummaryTokens := 1000
	if serverConfig.Summarization != nil {
		if serverConfig.Summarization.SizeThresholdTokens > 0 {
			threshold = serverConfig.Summarization.SizeThresholdTokens
		}
		if serverConfig.Summarization.SummaryMaxTokenLimit > 0 {
			maxSummaryTokens = serverConfig.Summarization.SummaryMaxTokenLimit
		}
	}

	if estimatedTokens <= threshold {
		return &SummarizationResult{Content: rawContent}, nil
	}

	// 3. Summarization needed
	slog.Info("Tool result exceeds summarization threshold",
		"server", serverID, "tool", toolName,
		"estimated_tokens", estimatedTokens, "threshold", threshold)

	// 4. Safety-net truncate for summarization input
	truncatedForLLM := mcp.TruncateForSummarization(rawContent)

	// 5. Build summarization prompts
	systemPrompt := execCtx.PromptBuilder.BuildMCPSummarizationSystemPrompt(serverID, toolName, maxSummaryTokens)
	userPrompt := execCtx.PromptBuilder.BuildMCPSummarizationUserPrompt(conversationContext, serverID, toolName, truncatedForLLM)

	// 6. Perform summarization LLM call with streaming
	summary, usage, err := callSummarizationLLM(ctx, execCtx, mcpRequestID, systemPrompt, userPrompt, serverID, toolName)
	if err != nil {
		slog.Warn("Summarization LLM call failed, using truncated raw result",
			"server", serverID, "tool", toolName, "error", err)
		return &SummarizationResult{Content: truncatedForLLM}, nil
	}

	// 7. Wrap summary with context note
	wrappedSummary := fmt.Sprintf(
		"[NOTE: The output from %s.%s was %d tokens (estimated) and has been summarized to preserve context window. "+
			"The full output is available in the session audit trail.]\n\n%s",
		serverID, toolName, estimatedTokens, summary)

	return &SummarizationResult{
		Content:       wrappedSummary,
		WasSummarized: true,
		Usage:         usage,
	}, nil
}

// callSummarizationLLM performs the summarization LLM call, streaming the
// summary to WebSocket clients and recording a summarization LLMInteraction
// linked to the originating tool call.
func callSummarizationLLM(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	mcpRequestID string,
	systemPrompt, userPrompt string,
	serverID, toolName string,
) (string, *agent.TokenUsage, error) {
	startTime := time.Now()
	interactionID := generateInteractionID()

	messages := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: systemPrompt},
		{Role: agent.RoleUser, Content: userPrompt},
	}

	resp, err := callLLMWithStreaming(ctx, execCtx, &agent.GenerateInput{
		SessionID:   execCtx.SessionID,
		ExecutionID: execCtx.ExecutionID,
		Messages:    messages,
		Provider:    execCtx.Config.LLMProviderName,
		Config:      execCtx.Config.LLMProvider,
		Tools:       nil, // No tools for summarization
	}, streamOptions{
		InteractionID: interactionID,
		TextType:      events.StreamTypeSummarization,
	})
	if err != nil {
		recordSummarizationInteraction(ctx, execCtx, interactionID, mcpRequestID, serverID, toolName, messages, nil, startTime, err)
		return "", nil, fmt.Errorf("summarization LLM call failed: %w", err)
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		emptyErr := fmt.Errorf("summarization produced empty result")
		recordSummarizationInteraction(ctx, execCtx, interactionID, mcpRequestID, serverID, toolName, messages, resp, startTime, emptyErr)
		return "", nil, emptyErr
	}

	recordSummarizationInteraction(ctx, execCtx, interactionID, mcpRequestID, serverID, toolName, messages, resp, startTime, nil)

	return summary, resp.Usage, nil
}

// recordSummarizationInteraction persists the summarization LLM call.
// Summarization conversations are self-contained (system + user + assistant)
// and separate from the iteration's message sequence. The mcp_event_id links
// the summary to the tool call it condensed.
func recordSummarizationInteraction(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	interactionID string,
	mcpRequestID string,
	serverID, toolName string,
	messages []agent.ConversationMessage,
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
		InteractionType:  "summarization",
		ModelName:        execCtx.Config.LLMProvider.Model,
		Provider:         execCtx.Config.LLMProviderName,
		StepDescription:  fmt.Sprintf("Summarize %s.%s result", serverID, toolName),
		Conversation:     conversationWithReply(messages, resp),
		ResponseMetadata: buildResponseMetadata(resp),
		MCPEventID:       mcpRequestID,
	}
	if callErr != nil {
		req.ErrorMessage = callErr.Error()
	}

	if _, err := execCtx.Services.Interaction.CreateLLMInteraction(ctx, req); err != nil {
		slog.Error("Failed to record summarization interaction",
			"session_id", execCtx.SessionID, "server", serverID, "tool", toolName, "error", err)
		return
	}

	publishLLMInteraction(ctx, execCtx, interactionID, "summarization", req.StepDescription, callErr)
}

// buildConversationContext formats the current conversation for summarization
// context. Includes assistant thoughts and observations (not the system
// prompt) to give the summarizer investigation context.
func buildConversationContext(messages []agent.ConversationMessage) string {
	var sb strings.Builder
	for _, msg := range messages {
		if msg.Role == agent.RoleSystem {
			continue // Skip system prompt (too long, not needed for context)
		}
		sb.WriteByte('[')
		sb.WriteString(msg.Role)
		sb.WriteString("]: ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
