package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// toolCallResult holds the outcome of executeToolCall for the caller to
// integrate into its conversation format (ReAct observation vs NativeThinking
// tool message).
type toolCallResult struct {
	// Content is the tool result content to feed back to the LLM.
	// May be summarized if summarization was triggered.
	Content string
	// IsError is true if the tool execution itself failed.
	IsError bool
	// Err is the original error from tool execution (non-nil only when
	// ToolExecutor.Execute returned an error). Callers that need to inspect
	// the error type (e.g. context.DeadlineExceeded) should use this field
	// instead of parsing Content.
	Err error
	// Usage is non-nil when summarization produced token usage to accumulate.
	Usage *agent.TokenUsage
}

// executeToolCall runs a single tool call through the full lifecycle:
//  1. Normalize and split the tool name for the audit record
//  2. Execute the tool via ToolExecutor (allowlist, masking inside)
//  3. Record the MCPInteraction and publish mcp.tool_call
//  4. Optionally summarize large non-error results
//
// Returns the result content (possibly summarized) and whether the call
// failed. Callers append the result to their conversation and record state
// changes (RecordFailure, usage accumulation).
func executeToolCall(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	call agent.ToolCall,
	messages []agent.ConversationMessage,
) toolCallResult {
	normalizedName := mcp.NormalizeToolName(call.Name)
	serverID, toolName, splitErr := mcp.SplitToolName(normalizedName)
	if splitErr != nil {
		serverID = ""
		toolName = call.Name
	}

	requestID := generateCallID()
	startTime := time.Now()

	result, toolErr := execCtx.ToolExecutor.Execute(ctx, call)
	if toolErr != nil {
		errContent := "Error executing tool: " + toolErr.Error()
		recordToolCallInteraction(ctx, execCtx, requestID, serverID, toolName, call.Arguments, nil, startTime, toolErr)
		return toolCallResult{Content: errContent, IsError: true, Err: toolErr}
	}

	recordToolCallInteraction(ctx, execCtx, requestID, serverID, toolName, call.Arguments, result, startTime, nil)

	// Summarize large non-error results. The summarization interaction links
	// back to this tool call via the request ID.
	content := result.Content
	var usage *agent.TokenUsage
	if !result.IsError {
		convContext := buildConversationContext(messages)
		sumResult, sumErr := maybeSummarize(ctx, execCtx, requestID, serverID, toolName, result.Content, convContext)
		if sumErr == nil && sumResult.WasSummarized {
			content = sumResult.Content
			usage = sumResult.Usage
		}
	}

	return toolCallResult{Content: content, IsError: result.IsError, Usage: usage}
}

// recordToolCallInteraction persists a tool_call MCPInteraction and publishes
// the mcp.tool_call event. Logs on failure but does not abort — mirrors
// recordLLMInteraction.
func recordToolCallInteraction(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	requestID string,
	serverID string,
	toolName string,
	arguments string,
	result *agent.ToolResult,
	startTime time.Time,
	toolErr error,
) {
	// Parse arguments from JSON string into a map for structured storage.
	var toolArgs map[string]any
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &toolArgs); err != nil {
			// Fall back to storing as raw string.
			toolArgs = map[string]any{"raw": arguments}
		}
	}

	var toolResult map[string]any
	if result != nil {
		toolResult = map[string]any{
			"content":  mcp.TruncateForStorage(result.Content),
			"is_error": result.IsError,
		}
	}

	req := models.CreateMCPInteractionRequest{
		RequestID:         requestID,
		SessionID:         execCtx.SessionID,
		StageExecutionID:  &execCtx.ExecutionID,
		TimestampUs:       startTime.UnixMicro(),
		DurationMs:        time.Since(startTime).Milliseconds(),
		CommunicationType: "tool_call",
		ServerName:        serverID,
		ToolName:          toolName,
		ToolArguments:     toolArgs,
		ToolResult:        toolResult,
		Success:           toolErr == nil && (result == nil || !result.IsError),
	}
	if toolErr != nil {
		req.ErrorMessage = toolErr.Error()
	} else if result != nil && result.IsError {
		req.ErrorMessage = mcp.TruncateForStorage(result.Content)
	}

	if _, err := execCtx.Services.Interaction.CreateMCPInteraction(ctx, req); err != nil {
		slog.Error("Failed to record MCP interaction",
			"session_id", execCtx.SessionID, "server", serverID, "tool", toolName, "error", err)
		return
	}

	publishMCPInteraction(ctx, execCtx, events.EventTypeMCPToolCall, requestID, serverID, toolName, req.Success, req.ErrorMessage)
}

// recordToolListInteractions persists one tool_list MCPInteraction per MCP
// server at loop start, capturing what the agent could see. Logs on failure
// but never aborts the investigation.
func recordToolListInteractions(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	tools []agent.ToolDefinition,
) {
	if len(tools) == 0 {
		return
	}

	// Group canonical server.tool names by server.
	byServer := map[string][]any{}
	var order []string
	for _, t := range tools {
		serverID, toolName, err := mcp.SplitToolName(mcp.NormalizeToolName(t.Name))
		if err != nil {
			continue
		}
		if _, seen := byServer[serverID]; !seen {
			order = append(order, serverID)
		}
		byServer[serverID] = append(byServer[serverID], map[string]any{
			"name":        toolName,
			"description": t.Description,
		})
	}

	now := time.Now()
	for _, serverID := range order {
		requestID := generateCallID()
		req := models.CreateMCPInteractionRequest{
			RequestID:         requestID,
			SessionID:         execCtx.SessionID,
			StageExecutionID:  &execCtx.ExecutionID,
			TimestampUs:       now.UnixMicro(),
			CommunicationType: "tool_list",
			ServerName:        serverID,
			AvailableTools:    byServer[serverID],
			Success:           true,
		}
		if _, err := execCtx.Services.Interaction.CreateMCPInteraction(ctx, req); err != nil {
			slog.Error("Failed to record tool list interaction",
				"session_id", execCtx.SessionID, "server", serverID, "error", err)
			continue
		}
		publishMCPInteraction(ctx, execCtx, events.EventTypeMCPToolList, requestID, serverID, "", true, "")
	}
}

// publishMCPInteraction emits an mcp.tool_call or mcp.tool_list event for
// a persisted record. Publish failures are logged and swallowed.
func publishMCPInteraction(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	eventType string,
	requestID, serverID, toolName string,
	success bool,
	errorMessage string,
) {
	if execCtx.EventPublisher == nil {
		return
	}
	if err := execCtx.EventPublisher.PublishMCPInteraction(ctx, execCtx.SessionID, events.MCPInteractionPayload{
		Type:             eventType,
		SessionID:        execCtx.SessionID,
		StageExecutionID: execCtx.ExecutionID,
		RequestID:        requestID,
		ServerName:       serverID,
		ToolName:         toolName,
		Success:          success,
		ErrorMessage:     errorMessage,
		Timestamp:        time.Now().Format(time.RFC3339Nano),
	}); err != nil {
		slog.Warn("Failed to publish MCP interaction event",
			"session_id", execCtx.SessionID, "request_id", requestID, "error", err)
	}
}
