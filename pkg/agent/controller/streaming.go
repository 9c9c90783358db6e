package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
)

// LLMResponse holds the fully-collected response from a streaming LLM call.
type LLMResponse struct {
	Text           string
	ThinkingText   string
	ToolCalls      []agent.ToolCall
	CodeExecutions []agent.CodeExecutionChunk
	Groundings     []agent.GroundingChunk
	Usage          *agent.TokenUsage
}

// collectStream drains an LLM chunk channel into a complete LLMResponse.
// Returns an error if an ErrorChunk is received.
// Delegates to collectStreamWithCallback with a nil callback.
func collectStream(stream <-chan agent.Chunk) (*LLMResponse, error) {
	return collectStreamWithCallback(stream, nil)
}

// callLLM performs a single LLM call with context cancellation support.
// Returns the complete collected response.
func callLLM(
	ctx context.Context,
	llmClient agent.LLMClient,
	input *agent.GenerateInput,
) (*LLMResponse, error) {
	// Derive a cancellable context so the producer goroutine in Generate
	// is always cleaned up when we return.
	llmCtx, llmCancel := context.WithCancel(ctx)
	defer llmCancel()

	stream, err := llmClient.Generate(llmCtx, input)
	if err != nil {
		return nil, fmt.Errorf("LLM generate failed: %w", err)
	}

	return collectStream(stream)
}

// StreamCallback is called for each text or thinking chunk during stream
// collection. accumulated is the full content buffered so far, not the
// delta — a dropped chunk then never corrupts the client's view, and
// reconnecting clients recover from the next chunk alone.
type StreamCallback func(chunkType string, accumulated string)

// ChunkTypeText identifies text content in stream callbacks.
const ChunkTypeText = "text"

// ChunkTypeThinking identifies thinking content in stream callbacks.
const ChunkTypeThinking = "thinking"

// collectStreamWithCallback collects a stream while calling back for real-time
// delivery. The callback is optional (nil = buffered mode, same as collectStream).
func collectStreamWithCallback(
	stream <-chan agent.Chunk,
	callback StreamCallback,
) (*LLMResponse, error) {
	resp := &LLMResponse{}
	var textBuf, thinkingBuf strings.Builder

	for chunk := range stream {
		switch c := chunk.(type) {
		case *agent.TextChunk:
			textBuf.WriteString(c.Content)
			if callback != nil && c.Content != "" {
				callback(ChunkTypeText, textBuf.String())
			}
		case *agent.ThinkingChunk:
			thinkingBuf.WriteString(c.Content)
			if callback != nil && c.Content != "" {
				callback(ChunkTypeThinking, thinkingBuf.String())
			}
		case *agent.ToolCallChunk:
			resp.ToolCalls = append(resp.ToolCalls, agent.ToolCall{
				ID:        c.CallID,
				Name:      c.Name,
				Arguments: c.Arguments,
			})
		case *agent.CodeExecutionChunk:
			resp.CodeExecutions = append(resp.CodeExecutions, agent.CodeExecutionChunk{
				Code:   c.Code,
				Result: c.Result,
			})
		case *agent.GroundingChunk:
			resp.Groundings = append(resp.Groundings, *c)
		case *agent.UsageChunk:
			resp.Usage = &agent.TokenUsage{
				InputTokens:    c.InputTokens,
				OutputTokens:   c.OutputTokens,
				TotalTokens:    c.TotalTokens,
				ThinkingTokens: c.ThinkingTokens,
			}
		case *agent.ErrorChunk:
			return nil, fmt.Errorf("LLM error: %s (code: %s, retryable: %v)",
				c.Message, c.Code, c.Retryable)
		}
	}

	resp.Text = textBuf.String()
	resp.ThinkingText = thinkingBuf.String()
	return resp, nil
}

// streamOptions selects how collected chunks are republished as transient
// llm.stream.chunk events. The interaction ID is generated before the call
// so chunks reference the record the call will produce.
type streamOptions struct {
	InteractionID string
	TextType      string // stream_type for text chunks
	ThinkingType  string // stream_type for thinking chunks ("" = not published)

	// PromoteFinalAnswer switches the text stream type to final_answer once
	// the accumulated text contains a Final Answer section. Used by ReAct,
	// where early text is thought and the conclusion arrives mid-stream.
	PromoteFinalAnswer bool
}

// callLLMWithStreaming performs an LLM call while republishing text and
// thinking chunks to WebSocket clients via transient events. When
// EventPublisher is nil it behaves identically to callLLM. Publish failures
// are logged and swallowed — streaming is best-effort; the persisted
// interaction is the durable record.
func callLLMWithStreaming(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	input *agent.GenerateInput,
	opts streamOptions,
) (*LLMResponse, error) {
	llmCtx, llmCancel := context.WithCancel(ctx)
	defer llmCancel()

	stream, err := execCtx.LLMClient.Generate(llmCtx, input)
	if err != nil {
		return nil, fmt.Errorf("LLM generate failed: %w", err)
	}

	if execCtx.EventPublisher == nil {
		return collectStream(stream)
	}

	parallel := execCtx.ParallelMetadata()
	promoted := false

	callback := func(chunkType string, accumulated string) {
		var streamType string
		switch chunkType {
		case ChunkTypeText:
			streamType = opts.TextType
			if opts.PromoteFinalAnswer {
				if promoted || strings.Contains(accumulated, "Final Answer:") {
					promoted = true
					streamType = events.StreamTypeFinalAnswer
				}
			}
		case ChunkTypeThinking:
			if opts.ThinkingType == "" {
				return
			}
			streamType = opts.ThinkingType
		default:
			return
		}

		if err := execCtx.EventPublisher.PublishStreamChunk(ctx, execCtx.SessionID, events.StreamChunkPayload{
			Type:             events.EventTypeStreamChunk,
			SessionID:        execCtx.SessionID,
			StageExecutionID: execCtx.ExecutionID,
			InteractionID:    opts.InteractionID,
			StreamType:       streamType,
			Content:          accumulated,
			Parallel:         parallel,
			Timestamp:        time.Now().Format(time.RFC3339Nano),
		}); err != nil {
			slog.Warn("Failed to publish stream chunk",
				"session_id", execCtx.SessionID, "stream_type", streamType, "error", err)
		}
	}

	return collectStreamWithCallback(stream, callback)
}
