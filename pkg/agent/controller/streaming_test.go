package controller

import (
	"context"
	"fmt"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// collectStream tests
// ============================================================================

func TestCollectStream(t *testing.T) {
	t.Run("text chunks concatenated", func(t *testing.T) {
		ch := make(chan agent.Chunk, 3)
		ch <- &agent.TextChunk{Content: "Hello "}
		ch <- &agent.TextChunk{Content: "world"}
		ch <- &agent.TextChunk{Content: "!"}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		assert.Equal(t, "Hello world!", resp.Text)
	})

	t.Run("thinking chunks concatenated", func(t *testing.T) {
		ch := make(chan agent.Chunk, 2)
		ch <- &agent.ThinkingChunk{Content: "Let me think "}
		ch <- &agent.ThinkingChunk{Content: "about this."}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		assert.Equal(t, "Let me think about this.", resp.ThinkingText)
	})

	t.Run("tool call chunks collected", func(t *testing.T) {
		ch := make(chan agent.Chunk, 2)
		ch <- &agent.ToolCallChunk{CallID: "c1", Name: "k8s.pods", Arguments: "{}"}
		ch <- &agent.ToolCallChunk{CallID: "c2", Name: "k8s.logs", Arguments: "{\"pod\": \"web\"}"}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		require.Len(t, resp.ToolCalls, 2)
		assert.Equal(t, "c1", resp.ToolCalls[0].ID)
		assert.Equal(t, "k8s.pods", resp.ToolCalls[0].Name)
		assert.Equal(t, "c2", resp.ToolCalls[1].ID)
	})

	t.Run("usage chunk captured", func(t *testing.T) {
		ch := make(chan agent.Chunk, 1)
		ch <- &agent.UsageChunk{InputTokens: 10, OutputTokens: 20, TotalTokens: 30, ThinkingTokens: 5}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		require.NotNil(t, resp.Usage)
		assert.Equal(t, 10, resp.Usage.InputTokens)
		assert.Equal(t, 20, resp.Usage.OutputTokens)
		assert.Equal(t, 30, resp.Usage.TotalTokens)
		assert.Equal(t, 5, resp.Usage.ThinkingTokens)
	})

	t.Run("code execution chunks collected", func(t *testing.T) {
		ch := make(chan agent.Chunk, 1)
		ch <- &agent.CodeExecutionChunk{Code: "print('hi')", Result: "hi"}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		require.Len(t, resp.CodeExecutions, 1)
		assert.Equal(t, "print('hi')", resp.CodeExecutions[0].Code)
		assert.Equal(t, "hi", resp.CodeExecutions[0].Result)
	})

	t.Run("grounding chunks collected", func(t *testing.T) {
		ch := make(chan agent.Chunk, 2)
		ch <- &agent.GroundingChunk{
			WebSearchQueries: []string{"query1"},
			Sources: []agent.GroundingSource{
				{URI: "https://example.com", Title: "Example"},
			},
		}
		ch <- &agent.GroundingChunk{
			Sources: []agent.GroundingSource{
				{URI: "https://docs.k8s.io", Title: "K8s Docs"},
			},
		}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		require.Len(t, resp.Groundings, 2)
		assert.Equal(t, []string{"query1"}, resp.Groundings[0].WebSearchQueries)
		assert.Equal(t, "https://example.com", resp.Groundings[0].Sources[0].URI)
		assert.Empty(t, resp.Groundings[1].WebSearchQueries)
		assert.Equal(t, "https://docs.k8s.io", resp.Groundings[1].Sources[0].URI)
	})

	t.Run("empty stream has no groundings", func(t *testing.T) {
		ch := make(chan agent.Chunk, 1)
		ch <- &agent.TextChunk{Content: "hello"}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		assert.Nil(t, resp.Groundings)
	})

	t.Run("error chunk returns error", func(t *testing.T) {
		ch := make(chan agent.Chunk, 2)
		ch <- &agent.TextChunk{Content: "partial"}
		ch <- &agent.ErrorChunk{Message: "rate limited", Code: "429", Retryable: true}
		close(ch)

		resp, err := collectStream(ch)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "retryable: true")
	})

	t.Run("empty stream returns empty response", func(t *testing.T) {
		ch := make(chan agent.Chunk)
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		assert.Empty(t, resp.Text)
		assert.Empty(t, resp.ThinkingText)
		assert.Empty(t, resp.ToolCalls)
		assert.Nil(t, resp.Usage)
	})

	t.Run("mixed chunks collected correctly", func(t *testing.T) {
		ch := make(chan agent.Chunk, 6)
		ch <- &agent.ThinkingChunk{Content: "Thinking..."}
		ch <- &agent.TextChunk{Content: "I'll check pods."}
		ch <- &agent.ToolCallChunk{CallID: "c1", Name: "k8s.pods", Arguments: "{}"}
		ch <- &agent.UsageChunk{InputTokens: 50, OutputTokens: 100, TotalTokens: 150}
		close(ch)

		resp, err := collectStream(ch)
		require.NoError(t, err)
		assert.Equal(t, "Thinking...", resp.ThinkingText)
		assert.Equal(t, "I'll check pods.", resp.Text)
		require.Len(t, resp.ToolCalls, 1)
		require.NotNil(t, resp.Usage)
		assert.Equal(t, 150, resp.Usage.TotalTokens)
	})
}

// ============================================================================
// callLLM tests
// ============================================================================

func TestCallLLM(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		llm := &mockLLMClient{
			responses: []mockLLMResponse{
				{chunks: []agent.Chunk{
					&agent.TextChunk{Content: "Hello"},
					&agent.UsageChunk{InputTokens: 5, OutputTokens: 10, TotalTokens: 15},
				}},
			},
		}

		resp, err := callLLM(context.Background(), llm, &agent.GenerateInput{})
		require.NoError(t, err)
		assert.Equal(t, "Hello", resp.Text)
		assert.Equal(t, 15, resp.Usage.TotalTokens)
	})

	t.Run("generate error", func(t *testing.T) {
		llm := &mockLLMClient{
			responses: []mockLLMResponse{
				{err: fmt.Errorf("connection refused")},
			},
		}

		resp, err := callLLM(context.Background(), llm, &agent.GenerateInput{})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "LLM generate failed")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

// ============================================================================
// collectStreamWithCallback tests
// ============================================================================

type recordedCallback struct {
	chunkType string
	content   string
}

func TestCollectStreamWithCallback_NilCallback(t *testing.T) {
	// nil callback should behave like collectStream
	ch := make(chan agent.Chunk, 3)
	ch <- &agent.TextChunk{Content: "Hello "}
	ch <- &agent.TextChunk{Content: "world"}
	ch <- &agent.UsageChunk{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	close(ch)

	resp, err := collectStreamWithCallback(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", resp.Text)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCollectStreamWithCallback_TextCallback(t *testing.T) {
	var callbacks []recordedCallback
	callback := func(chunkType string, accumulated string) {
		callbacks = append(callbacks, recordedCallback{chunkType, accumulated})
	}

	ch := make(chan agent.Chunk, 3)
	ch <- &agent.TextChunk{Content: "Hello "}
	ch <- &agent.TextChunk{Content: "world"}
	ch <- &agent.UsageChunk{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	close(ch)

	resp, err := collectStreamWithCallback(ch, callback)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", resp.Text)

	// Each callback carries the full accumulated text so far, not the delta.
	require.Len(t, callbacks, 2)
	assert.Equal(t, ChunkTypeText, callbacks[0].chunkType)
	assert.Equal(t, "Hello ", callbacks[0].content)
	assert.Equal(t, ChunkTypeText, callbacks[1].chunkType)
	assert.Equal(t, "Hello world", callbacks[1].content)
}

func TestCollectStreamWithCallback_ThinkingAndTextCallbacks(t *testing.T) {
	var callbacks []recordedCallback
	callback := func(chunkType string, accumulated string) {
		callbacks = append(callbacks, recordedCallback{chunkType, accumulated})
	}

	ch := make(chan agent.Chunk, 4)
	ch <- &agent.ThinkingChunk{Content: "Let me "}
	ch <- &agent.ThinkingChunk{Content: "think..."}
	ch <- &agent.TextChunk{Content: "The answer is 42."}
	close(ch)

	resp, err := collectStreamWithCallback(ch, callback)
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", resp.Text)
	assert.Equal(t, "Let me think...", resp.ThinkingText)

	// Text and thinking accumulate independently.
	require.Len(t, callbacks, 3)
	assert.Equal(t, ChunkTypeThinking, callbacks[0].chunkType)
	assert.Equal(t, "Let me ", callbacks[0].content)
	assert.Equal(t, ChunkTypeThinking, callbacks[1].chunkType)
	assert.Equal(t, "Let me think...", callbacks[1].content)
	assert.Equal(t, ChunkTypeText, callbacks[2].chunkType)
	assert.Equal(t, "The answer is 42.", callbacks[2].content)
}

func TestCollectStreamWithCallback_EmptyContentSkipsCallback(t *testing.T) {
	var callbacks []recordedCallback
	callback := func(chunkType string, accumulated string) {
		callbacks = append(callbacks, recordedCallback{chunkType, accumulated})
	}

	ch := make(chan agent.Chunk, 4)
	ch <- &agent.TextChunk{Content: ""}
	ch <- &agent.ThinkingChunk{Content: ""}
	ch <- &agent.TextChunk{Content: "real content"}
	close(ch)

	resp, err := collectStreamWithCallback(ch, callback)
	require.NoError(t, err)
	assert.Equal(t, "real content", resp.Text)

	require.Len(t, callbacks, 1)
	assert.Equal(t, "real content", callbacks[0].content)
}

func TestCollectStreamWithCallback_ErrorChunk(t *testing.T) {
	ch := make(chan agent.Chunk, 3)
	ch <- &agent.TextChunk{Content: "partial "}
	ch <- &agent.ErrorChunk{Message: "rate limit exceeded", Code: "429", Retryable: true}
	close(ch)

	callbackCount := 0
	callback := func(chunkType string, content string) {
		callbackCount++
	}

	resp, err := collectStreamWithCallback(ch, callback)
	assert.Nil(t, resp)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Equal(t, 1, callbackCount) // Only the first text chunk callback fired
}

func TestCollectStreamWithCallback_ToolCalls(t *testing.T) {
	ch := make(chan agent.Chunk, 3)
	ch <- &agent.TextChunk{Content: "Let me check that."}
	ch <- &agent.ToolCallChunk{CallID: "tc-1", Name: "get_pods", Arguments: `{"namespace":"default"}`}
	close(ch)

	resp, err := collectStreamWithCallback(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "Let me check that.", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_pods", resp.ToolCalls[0].Name)
}

func TestCollectStreamWithCallback_EmptyStream(t *testing.T) {
	ch := make(chan agent.Chunk)
	close(ch) // Immediately closed — no chunks

	resp, err := collectStreamWithCallback(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "", resp.Text)
	assert.Equal(t, "", resp.ThinkingText)
	assert.Nil(t, resp.ToolCalls)
	assert.Nil(t, resp.Usage)
	assert.Nil(t, resp.Groundings)
	assert.Nil(t, resp.CodeExecutions)
}

func TestCollectStreamWithCallback_GroundingChunks(t *testing.T) {
	ch := make(chan agent.Chunk, 2)
	ch <- &agent.GroundingChunk{
		Sources: []agent.GroundingSource{
			{URI: "https://example.com", Title: "Example"},
		},
		WebSearchQueries: []string{"test query"},
	}
	ch <- &agent.TextChunk{Content: "Based on search results..."}
	close(ch)

	resp, err := collectStreamWithCallback(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "Based on search results...", resp.Text)
	require.Len(t, resp.Groundings, 1)
	assert.Equal(t, "https://example.com", resp.Groundings[0].Sources[0].URI)
	assert.Equal(t, []string{"test query"}, resp.Groundings[0].WebSearchQueries)
}

func TestCollectStreamWithCallback_CodeExecutionChunks(t *testing.T) {
	ch := make(chan agent.Chunk, 3)
	ch <- &agent.CodeExecutionChunk{Code: "print('hello')", Result: ""}
	ch <- &agent.CodeExecutionChunk{Code: "", Result: "hello"}
	ch <- &agent.TextChunk{Content: "Executed successfully."}
	close(ch)

	resp, err := collectStreamWithCallback(ch, nil)
	require.NoError(t, err)
	assert.Equal(t, "Executed successfully.", resp.Text)
	require.Len(t, resp.CodeExecutions, 2)
	assert.Equal(t, "print('hello')", resp.CodeExecutions[0].Code)
	assert.Equal(t, "hello", resp.CodeExecutions[1].Result)
}

func TestCollectStreamWithCallback_AllChunkTypes(t *testing.T) {
	// Comprehensive test: all chunk types in one stream
	var callbacks []string

	callback := func(chunkType string, _ string) {
		callbacks = append(callbacks, chunkType)
	}

	ch := make(chan agent.Chunk, 10)
	ch <- &agent.ThinkingChunk{Content: "Hmm..."}
	ch <- &agent.TextChunk{Content: "Answer: "}
	ch <- &agent.TextChunk{Content: "42"}
	ch <- &agent.ToolCallChunk{CallID: "tc-1", Name: "get_info", Arguments: "{}"}
	ch <- &agent.CodeExecutionChunk{Code: "x = 1", Result: "1"}
	ch <- &agent.GroundingChunk{
		Sources: []agent.GroundingSource{{URI: "http://example.com"}},
	}
	ch <- &agent.UsageChunk{InputTokens: 100, OutputTokens: 50, TotalTokens: 150, ThinkingTokens: 20}
	close(ch)

	resp, err := collectStreamWithCallback(ch, callback)
	require.NoError(t, err)
	assert.Equal(t, "Answer: 42", resp.Text)
	assert.Equal(t, "Hmm...", resp.ThinkingText)
	require.Len(t, resp.ToolCalls, 1)
	require.Len(t, resp.CodeExecutions, 1)
	require.Len(t, resp.Groundings, 1)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 150, resp.Usage.TotalTokens)
	assert.Equal(t, 20, resp.Usage.ThinkingTokens)

	// Callback should fire for thinking (1) + text (2) = 3 times
	// (Tool calls, code executions, groundings, usage don't trigger callback)
	assert.Equal(t, []string{ChunkTypeThinking, ChunkTypeText, ChunkTypeText}, callbacks)
}

// ============================================================================
// callLLMWithStreaming tests
// ============================================================================

func TestCallLLMWithStreaming_PublishesAccumulatedText(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Thought: checking "},
			&agent.TextChunk{Content: "pods"},
			&agent.UsageChunk{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thought: checking pods", resp.Text)

	require.Len(t, pub.streamChunks, 2)
	first := pub.streamChunks[0]
	assert.Equal(t, events.EventTypeStreamChunk, first.Type)
	assert.Equal(t, execCtx.SessionID, first.SessionID)
	assert.Equal(t, execCtx.ExecutionID, first.StageExecutionID)
	assert.Equal(t, "int-1", first.InteractionID)
	assert.Equal(t, events.StreamTypeThought, first.StreamType)
	assert.Equal(t, "Thought: checking ", first.Content)
	assert.NotEmpty(t, first.Timestamp)
	assert.Nil(t, first.Parallel)

	// Second chunk carries the accumulated text, not the delta.
	assert.Equal(t, "Thought: checking pods", pub.streamChunks[1].Content)
	assert.Equal(t, events.StreamTypeThought, pub.streamChunks[1].StreamType)
}

func TestCallLLMWithStreaming_PromotesFinalAnswer(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Thought: the issue is clear.\n"},
			&agent.TextChunk{Content: "Final Answer: pod is "},
			&agent.TextChunk{Content: "OOMKilled"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	_, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID:      "int-1",
		TextType:           events.StreamTypeThought,
		PromoteFinalAnswer: true,
	})
	require.NoError(t, err)

	// Thought until the Final Answer marker arrives, final_answer from then on.
	require.Len(t, pub.streamChunks, 3)
	assert.Equal(t, events.StreamTypeThought, pub.streamChunks[0].StreamType)
	assert.Equal(t, events.StreamTypeFinalAnswer, pub.streamChunks[1].StreamType)
	assert.Equal(t, events.StreamTypeFinalAnswer, pub.streamChunks[2].StreamType)
	assert.Contains(t, pub.streamChunks[2].Content, "Final Answer: pod is OOMKilled")
}

func TestCallLLMWithStreaming_PromotionStaysLatched(t *testing.T) {
	// Once promoted, later chunks keep the final_answer type even though
	// each individual delta no longer contains the marker.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Final Answer: all"},
			&agent.TextChunk{Content: " pods"},
			&agent.TextChunk{Content: " healthy"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	_, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID:      "int-1",
		TextType:           events.StreamTypeThought,
		PromoteFinalAnswer: true,
	})
	require.NoError(t, err)

	require.Len(t, pub.streamChunks, 3)
	for i, chunk := range pub.streamChunks {
		assert.Equal(t, events.StreamTypeFinalAnswer, chunk.StreamType, "chunk %d", i)
	}
}

func TestCallLLMWithStreaming_MarkerSplitAcrossChunks(t *testing.T) {
	// The marker only matches against accumulated text, so a split
	// "Final Answer:" still promotes once the second half lands.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "Final Ans"},
			&agent.TextChunk{Content: "wer: done"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	_, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID:      "int-1",
		TextType:           events.StreamTypeThought,
		PromoteFinalAnswer: true,
	})
	require.NoError(t, err)

	require.Len(t, pub.streamChunks, 2)
	assert.Equal(t, events.StreamTypeThought, pub.streamChunks[0].StreamType)
	assert.Equal(t, events.StreamTypeFinalAnswer, pub.streamChunks[1].StreamType)
}

func TestCallLLMWithStreaming_ThinkingChunks(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.ThinkingChunk{Content: "Analyzing the namespace."},
			&agent.TextChunk{Content: "The namespace is stuck."},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
		ThinkingType:  events.StreamTypeNativeThinking,
	})
	require.NoError(t, err)
	assert.Equal(t, "Analyzing the namespace.", resp.ThinkingText)

	require.Len(t, pub.streamChunks, 2)
	assert.Equal(t, events.StreamTypeNativeThinking, pub.streamChunks[0].StreamType)
	assert.Equal(t, "Analyzing the namespace.", pub.streamChunks[0].Content)
	assert.Equal(t, events.StreamTypeThought, pub.streamChunks[1].StreamType)
}

func TestCallLLMWithStreaming_ThinkingSuppressedWithoutType(t *testing.T) {
	// Empty ThinkingType drops thinking chunks from the event stream while
	// still collecting them into the response.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.ThinkingChunk{Content: "private reasoning"},
			&agent.TextChunk{Content: "visible text"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeSummarization,
	})
	require.NoError(t, err)
	assert.Equal(t, "private reasoning", resp.ThinkingText)

	require.Len(t, pub.streamChunks, 1)
	assert.Equal(t, events.StreamTypeSummarization, pub.streamChunks[0].StreamType)
	assert.Equal(t, "visible text", pub.streamChunks[0].Content)
}

func TestCallLLMWithStreaming_NilPublisherCollectsOnly(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "no listeners"},
			&agent.UsageChunk{TotalTokens: 5},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	execCtx.EventPublisher = nil

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.NoError(t, err)
	assert.Equal(t, "no listeners", resp.Text)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestCallLLMWithStreaming_PublishFailureSwallowed(t *testing.T) {
	// Streaming is best-effort. A broken publisher must not fail the call.
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "still "},
			&agent.TextChunk{Content: "collected"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{publishErr: fmt.Errorf("websocket gone")}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.NoError(t, err)
	assert.Equal(t, "still collected", resp.Text)
	assert.Len(t, pub.streamChunks, 2)
}

func TestCallLLMWithStreaming_GenerateError(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{err: fmt.Errorf("connection refused")}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "LLM generate failed")
	assert.Empty(t, pub.streamChunks)
}

func TestCallLLMWithStreaming_ErrorChunkStopsPublishing(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "partial"},
			&agent.ErrorChunk{Message: "stream aborted", Code: "500", Retryable: false},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	resp, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "stream aborted")

	// The chunk published before the error stays published.
	require.Len(t, pub.streamChunks, 1)
	assert.Equal(t, "partial", pub.streamChunks[0].Content)
}

func TestCallLLMWithStreaming_ParallelMetadataAttached(t *testing.T) {
	llm := &mockLLMClient{
		responses: []mockLLMResponse{{chunks: []agent.Chunk{
			&agent.TextChunk{Content: "branch output"},
		}}},
	}
	execCtx, _ := newTestExecCtx(t, llm, &mockToolExecutor{})
	execCtx.ParentExecutionID = "parent-exec-1"
	execCtx.ParallelIndex = 2
	pub := &mockEventPublisher{}
	execCtx.EventPublisher = pub

	_, err := callLLMWithStreaming(context.Background(), execCtx, &agent.GenerateInput{}, streamOptions{
		InteractionID: "int-1",
		TextType:      events.StreamTypeThought,
	})
	require.NoError(t, err)

	require.Len(t, pub.streamChunks, 1)
	parallel := pub.streamChunks[0].Parallel
	require.NotNil(t, parallel)
	assert.Equal(t, "parent-exec-1", parallel.ParentExecutionID)
	assert.Equal(t, 2, parallel.ParallelIndex)
	assert.Equal(t, "TestAgent", parallel.AgentName)
}
