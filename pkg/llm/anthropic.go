package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/anthropics/anthropic-sdk-go/vertex"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

const (
	// anthropicDefaultMaxTokens applies when neither the provider config nor
	// the call sets a cap. The Messages API requires max_tokens.
	anthropicDefaultMaxTokens = 4096

	// anthropicMinThinkingBudget is the API's floor for thinking budgets.
	anthropicMinThinkingBudget = 1024
)

// anthropicAdapter speaks the Anthropic Messages API, either directly or
// through a Vertex AI endpoint for claude models.
type anthropicAdapter struct {
	client anthropic.Client
}

func newAnthropicAdapter(cfg *config.LLMProviderConfig) (*anthropicAdapter, error) {
	var opts []option.RequestOption

	if cfg.Type == config.LLMProviderTypeVertexAI {
		project := os.Getenv(cfg.ProjectEnv)
		location := os.Getenv(cfg.LocationEnv)
		if project == "" || location == "" {
			return nil, fmt.Errorf("llm: vertexai requires %s and %s to be set", cfg.ProjectEnv, cfg.LocationEnv)
		}
		// Credential refresh outlives any single call's context.
		opts = append(opts, vertex.WithGoogleAuth(context.Background(), location, project))
	} else {
		key, err := apiKeyFromEnv(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithAPIKey(key))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}
	if hc := httpClientFor(cfg); hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}

	return &anthropicAdapter{client: anthropic.NewClient(opts...)}, nil
}

func (a *anthropicAdapter) generate(ctx context.Context, cfg *config.LLMProviderConfig, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	messages, err := toAnthropicMessages(input.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := resolveMaxTokens(cfg, input)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.Model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if system := systemText(input.Messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}
	if len(input.Tools) > 0 {
		tools, err := toAnthropicTools(input.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}
	if cfg.ThinkingBudget != nil && *cfg.ThinkingBudget > 0 {
		budget := int64(*cfg.ThinkingBudget)
		if budget < anthropicMinThinkingBudget {
			budget = anthropicMinThinkingBudget
		}
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	} else if cfg.Temperature != nil {
		// The API rejects temperature when extended thinking is enabled.
		params.Temperature = anthropic.Float(float64(*cfg.Temperature))
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("llm: anthropic stream: %w", err)
	}

	out := make(chan agent.Chunk)
	go pumpAnthropicStream(ctx, stream, out)
	return out, nil
}

// anthropicToolBuffer accumulates one tool_use block across streaming events.
type anthropicToolBuffer struct {
	id        string
	name      string
	fragments strings.Builder
}

func pumpAnthropicStream(ctx context.Context, stream *ssestream.Stream[anthropic.MessageStreamEventUnion], out chan<- agent.Chunk) {
	defer close(out)
	defer stream.Close()

	usage := &agent.UsageChunk{}
	tools := make(map[int]*anthropicToolBuffer)

	for stream.Next() {
		switch event := stream.Current().AsAny().(type) {
		case anthropic.MessageStartEvent:
			usage.InputTokens = int(event.Message.Usage.InputTokens)

		case anthropic.ContentBlockStartEvent:
			if block, ok := event.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				tools[int(event.Index)] = &anthropicToolBuffer{id: block.ID, name: block.Name}
			}

		case anthropic.ContentBlockDeltaEvent:
			switch delta := event.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text != "" && !emit(ctx, out, &agent.TextChunk{Content: delta.Text}) {
					return
				}
			case anthropic.ThinkingDelta:
				if delta.Thinking != "" && !emit(ctx, out, &agent.ThinkingChunk{Content: delta.Thinking}) {
					return
				}
			case anthropic.InputJSONDelta:
				if tb := tools[int(event.Index)]; tb != nil {
					tb.fragments.WriteString(delta.PartialJSON)
				}
			}

		case anthropic.ContentBlockStopEvent:
			if tb := tools[int(event.Index)]; tb != nil {
				delete(tools, int(event.Index))
				args := tb.fragments.String()
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				if !emit(ctx, out, &agent.ToolCallChunk{CallID: tb.id, Name: tb.name, Arguments: args}) {
					return
				}
			}

		case anthropic.MessageDeltaEvent:
			if n := int(event.Usage.InputTokens); n > 0 {
				usage.InputTokens = n
			}
			if n := int(event.Usage.OutputTokens); n > 0 {
				usage.OutputTokens = n
			}

		case anthropic.MessageStopEvent:
			usage.TotalTokens = usage.InputTokens + usage.OutputTokens
			emit(ctx, out, usage)
			return
		}
	}

	if err := stream.Err(); err != nil {
		emit(ctx, out, &agent.ErrorChunk{
			Message:   err.Error(),
			Code:      "provider_error",
			Retryable: isRetryableAnthropic(err),
		})
	}
}

// systemText concatenates system messages; the Messages API carries the
// system prompt outside the messages array.
func systemText(messages []agent.ConversationMessage) string {
	var parts []string
	for _, m := range messages {
		if m.Role == "system" && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func toAnthropicMessages(messages []agent.ConversationMessage) ([]anthropic.MessageParam, error) {
	var out []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case "system":
			continue
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				argsJSON := tc.Arguments
				if strings.TrimSpace(argsJSON) == "" {
					argsJSON = "{}"
				}
				var args map[string]any
				if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
					return nil, fmt.Errorf("llm: tool call %s has invalid arguments: %w", tc.Name, err)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, args, tc.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case "tool":
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, nil
}

func toAnthropicTools(tools []agent.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal([]byte(schemaOrEmpty(t.ParametersSchema)), &schema); err != nil {
			return nil, fmt.Errorf("llm: tool %s has invalid schema: %w", t.Name, err)
		}
		param := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if param.OfTool == nil {
			return nil, fmt.Errorf("llm: tool %s: conversion produced no tool definition", t.Name)
		}
		param.OfTool.Description = anthropic.String(t.Description)
		out = append(out, param)
	}
	return out, nil
}

func isRetryableAnthropic(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
