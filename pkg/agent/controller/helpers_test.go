package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// accumulateUsage tests
// ============================================================================

func TestAccumulateUsage(t *testing.T) {
	t.Run("accumulates from response with usage", func(t *testing.T) {
		total := &agent.TokenUsage{}
		resp := &LLMResponse{Usage: &agent.TokenUsage{
			InputTokens: 10, OutputTokens: 20, TotalTokens: 30, ThinkingTokens: 5,
		}}

		accumulateUsage(total, resp)
		assert.Equal(t, 10, total.InputTokens)
		assert.Equal(t, 20, total.OutputTokens)
		assert.Equal(t, 30, total.TotalTokens)
		assert.Equal(t, 5, total.ThinkingTokens)

		// Accumulate again
		accumulateUsage(total, resp)
		assert.Equal(t, 20, total.InputTokens)
		assert.Equal(t, 60, total.TotalTokens)
	})

	t.Run("nil usage is no-op", func(t *testing.T) {
		total := &agent.TokenUsage{InputTokens: 100}
		resp := &LLMResponse{Usage: nil}

		accumulateUsage(total, resp)
		assert.Equal(t, 100, total.InputTokens)
	})

	t.Run("nil resp is no-op", func(t *testing.T) {
		total := &agent.TokenUsage{InputTokens: 100}
		accumulateUsage(total, nil)
		assert.Equal(t, 100, total.InputTokens)
	})
}

// ============================================================================
// accumulateTokenUsage tests
// ============================================================================

func TestAccumulateTokenUsage(t *testing.T) {
	t.Run("adds usage to total", func(t *testing.T) {
		total := &agent.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
		usage := &agent.TokenUsage{InputTokens: 20, OutputTokens: 30, TotalTokens: 50, ThinkingTokens: 8}

		accumulateTokenUsage(total, usage)
		assert.Equal(t, 30, total.InputTokens)
		assert.Equal(t, 35, total.OutputTokens)
		assert.Equal(t, 65, total.TotalTokens)
		assert.Equal(t, 8, total.ThinkingTokens)
	})

	t.Run("nil usage is no-op", func(t *testing.T) {
		total := &agent.TokenUsage{InputTokens: 42}
		accumulateTokenUsage(total, nil)
		assert.Equal(t, 42, total.InputTokens)
	})
}

// ============================================================================
// isTimeoutError tests
// ============================================================================

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "context.DeadlineExceeded",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "wrapped DeadlineExceeded",
			err:  fmt.Errorf("operation failed: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "timeout only in message text",
			err:  errors.New("request timeout after 30s"),
			want: false,
		},
		{
			name: "regular error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "context.Canceled is not timeout",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error returns false",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTimeoutError(tt.err))
		})
	}
}

// ============================================================================
// buildToolNameSet tests
// ============================================================================

func TestBuildToolNameSet(t *testing.T) {
	t.Run("builds set from tools", func(t *testing.T) {
		tools := []agent.ToolDefinition{
			{Name: "k8s.get_pods"},
			{Name: "k8s.get_logs"},
			{Name: "prom.query"},
		}
		set := buildToolNameSet(tools)
		assert.True(t, set["k8s.get_pods"])
		assert.True(t, set["k8s.get_logs"])
		assert.True(t, set["prom.query"])
		assert.False(t, set["nonexistent"])
	})

	t.Run("empty tools returns empty set", func(t *testing.T) {
		set := buildToolNameSet(nil)
		assert.Empty(t, set)
	})
}

// ============================================================================
// failedResult / pausedResult tests
// ============================================================================

func TestFailedResult(t *testing.T) {
	state := &agent.IterationState{
		MaxIterations:              20,
		CurrentIteration:           7,
		ConsecutiveTimeoutFailures: 2,
		LastErrorMessage:           "context deadline exceeded",
	}
	result := failedResult(state, agent.TokenUsage{TotalTokens: 123})

	assert.Equal(t, agent.ExecutionStatusFailed, result.Status)
	assert.Equal(t, 123, result.TokensUsed.TotalTokens)
	assert.EqualError(t, result.Error,
		"aborted after 2 consecutive timeouts (iteration 7/20): context deadline exceeded")
}

func TestPausedResult(t *testing.T) {
	execCtx := &agent.ExecutionContext{
		ExecutionID: "exec-1",
		StageID:     "investigate",
		StageIndex:  2,
	}
	state := &agent.IterationState{CurrentIteration: 5}
	messages := []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: "sys"},
		{Role: agent.RoleUser, Content: "user"},
	}

	result := pausedResult(execCtx, messages, state, agent.TokenUsage{TotalTokens: 9})

	assert.Equal(t, agent.ExecutionStatusPaused, result.Status)
	assert.Nil(t, result.Error)
	require.NotNil(t, result.PauseState)
	assert.Equal(t, "exec-1", result.PauseState.ExecutionID)
	assert.Equal(t, "investigate", result.PauseState.StageID)
	assert.Equal(t, 2, result.PauseState.StageIndex)
	assert.Equal(t, models.PauseReasonMaxIterations, result.PauseState.Reason)
	assert.Equal(t, 5, result.PauseState.CurrentIteration)
	assert.Len(t, result.PauseState.Conversation, 2)
	assert.Positive(t, result.PauseState.PausedAtUs)
}

// ============================================================================
// buildResponseMetadata / nativeToolsConfigMap tests
// ============================================================================

func TestBuildResponseMetadata(t *testing.T) {
	t.Run("nil resp returns nil", func(t *testing.T) {
		assert.Nil(t, buildResponseMetadata(nil))
	})

	t.Run("empty resp returns nil", func(t *testing.T) {
		assert.Nil(t, buildResponseMetadata(&LLMResponse{}))
	})

	t.Run("usage only", func(t *testing.T) {
		meta := buildResponseMetadata(&LLMResponse{
			Usage: &agent.TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3},
		})
		require.Contains(t, meta, "token_usage")
		usage := meta["token_usage"].(map[string]any)
		assert.Equal(t, 3, usage["total_tokens"])
	})

	t.Run("grounding with queries classified as google_search", func(t *testing.T) {
		meta := buildResponseMetadata(&LLMResponse{
			Groundings: []agent.GroundingChunk{{
				WebSearchQueries: []string{"k8s oom"},
				Sources:          []agent.GroundingSource{{URI: "https://k8s.io", Title: "K8s"}},
			}},
		})
		require.Contains(t, meta, "groundings")
		groundings := meta["groundings"].([]map[string]any)
		require.Len(t, groundings, 1)
		assert.Equal(t, "google_search", groundings[0]["type"])
	})

	t.Run("grounding without queries classified as url_context", func(t *testing.T) {
		meta := buildResponseMetadata(&LLMResponse{
			Groundings: []agent.GroundingChunk{{
				Sources: []agent.GroundingSource{{URI: "https://example.com"}},
			}},
		})
		groundings := meta["groundings"].([]map[string]any)
		assert.Equal(t, "url_context", groundings[0]["type"])
	})
}

func TestNativeToolsConfigMap(t *testing.T) {
	t.Run("nil override returns nil", func(t *testing.T) {
		assert.Nil(t, nativeToolsConfigMap(nil))
	})

	t.Run("empty override returns nil", func(t *testing.T) {
		assert.Nil(t, nativeToolsConfigMap(&models.NativeToolsConfig{}))
	})

	t.Run("set fields only", func(t *testing.T) {
		out := nativeToolsConfigMap(&models.NativeToolsConfig{
			GoogleSearch:  config.BoolPtr(true),
			CodeExecution: config.BoolPtr(false),
		})
		assert.Equal(t, map[string]any{
			"google_search":  true,
			"code_execution": false,
		}, out)
	})
}

// ============================================================================
// tokenUsageFromResp tests
// ============================================================================

func TestTokenUsageFromResp(t *testing.T) {
	t.Run("with usage", func(t *testing.T) {
		resp := &LLMResponse{Usage: &agent.TokenUsage{
			InputTokens: 10, OutputTokens: 20, TotalTokens: 30,
		}}
		usage := tokenUsageFromResp(resp)
		assert.Equal(t, 30, usage.TotalTokens)
	})

	t.Run("nil usage returns zero", func(t *testing.T) {
		resp := &LLMResponse{}
		usage := tokenUsageFromResp(resp)
		assert.Equal(t, 0, usage.TotalTokens)
	})

	t.Run("nil resp returns zero", func(t *testing.T) {
		usage := tokenUsageFromResp(nil)
		assert.Equal(t, 0, usage.TotalTokens)
	})
}
