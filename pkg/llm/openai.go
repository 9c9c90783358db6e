package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// xaiDefaultBaseURL is the OpenAI-compatible endpoint for xAI Grok models.
const xaiDefaultBaseURL = "https://api.x.ai/v1"

// openAIAdapter speaks the OpenAI chat completions API. It also serves xAI
// providers, whose API is OpenAI-compatible.
type openAIAdapter struct {
	client *openai.Client
}

func newOpenAIAdapter(cfg *config.LLMProviderConfig) (*openAIAdapter, error) {
	key, err := apiKeyFromEnv(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(key)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	case cfg.Type == config.LLMProviderTypeXAI:
		clientCfg.BaseURL = xaiDefaultBaseURL
	}
	if hc := httpClientFor(cfg); hc != nil {
		clientCfg.HTTPClient = hc
	}

	return &openAIAdapter{client: openai.NewClientWithConfig(clientCfg)}, nil
}

func (a *openAIAdapter) generate(ctx context.Context, cfg *config.LLMProviderConfig, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model:         cfg.Model,
		Messages:      toOpenAIMessages(input.Messages),
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	}
	if max := resolveMaxTokens(cfg, input); max > 0 {
		req.MaxCompletionTokens = max
	}
	if cfg.Temperature != nil {
		req.Temperature = *cfg.Temperature
	}
	if len(input.Tools) > 0 {
		req.Tools = toOpenAITools(input.Tools)
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm: openai stream: %w", err)
	}

	out := make(chan agent.Chunk)
	go pumpOpenAIStream(ctx, stream, out)
	return out, nil
}

func pumpOpenAIStream(ctx context.Context, stream *openai.ChatCompletionStream, out chan<- agent.Chunk) {
	defer close(out)
	defer stream.Close()

	// Tool call fragments arrive interleaved across deltas, keyed by index.
	pending := make(map[int]*agent.ToolCallChunk)
	var order []int
	var usage *agent.UsageChunk

	flush := func() bool {
		for _, idx := range order {
			tc := pending[idx]
			if tc == nil || tc.Name == "" {
				continue
			}
			if tc.Arguments == "" {
				tc.Arguments = "{}"
			}
			if !emit(ctx, out, tc) {
				return false
			}
			delete(pending, idx)
		}
		order = order[:0]
		return true
	}

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if !flush() {
				return
			}
			if usage != nil {
				emit(ctx, out, usage)
			}
			return
		}
		if err != nil {
			emit(ctx, out, &agent.ErrorChunk{
				Message:   err.Error(),
				Code:      "provider_error",
				Retryable: isRetryableOpenAI(err),
			})
			return
		}

		// Usage arrives on the final chunk when stream_options requests it.
		if resp.Usage != nil {
			usage = &agent.UsageChunk{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				TotalTokens:  resp.Usage.TotalTokens,
			}
			if d := resp.Usage.CompletionTokensDetails; d != nil {
				usage.ThinkingTokens = d.ReasoningTokens
			}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]

		if choice.Delta.Content != "" {
			if !emit(ctx, out, &agent.TextChunk{Content: choice.Delta.Content}) {
				return
			}
		}
		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			cur := pending[idx]
			if cur == nil {
				cur = &agent.ToolCallChunk{}
				pending[idx] = cur
				order = append(order, idx)
			}
			if tc.ID != "" {
				cur.CallID = tc.ID
			}
			if tc.Function.Name != "" {
				cur.Name = tc.Function.Name
			}
			cur.Arguments += tc.Function.Arguments
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			if !flush() {
				return
			}
		}
	}
}

func toOpenAIMessages(messages []agent.ConversationMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Content: m.Content}
		switch m.Role {
		case "system":
			msg.Role = openai.ChatMessageRoleSystem
		case "assistant":
			msg.Role = openai.ChatMessageRoleAssistant
		case "tool":
			msg.Role = openai.ChatMessageRoleTool
			msg.ToolCallID = m.ToolCallID
		default:
			msg.Role = openai.ChatMessageRoleUser
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []agent.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(schemaOrEmpty(t.ParametersSchema)),
			},
		})
	}
	return out
}

func isRetryableOpenAI(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	return false
}
