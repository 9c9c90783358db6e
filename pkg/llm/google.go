package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// googleAdapter speaks the Gemini API, either directly or through a
// Vertex AI project endpoint.
type googleAdapter struct {
	client *genai.Client
}

func newGoogleAdapter(cfg *config.LLMProviderConfig) (*googleAdapter, error) {
	clientCfg := &genai.ClientConfig{}

	if cfg.Type == config.LLMProviderTypeVertexAI {
		project := os.Getenv(cfg.ProjectEnv)
		location := os.Getenv(cfg.LocationEnv)
		if project == "" || location == "" {
			return nil, fmt.Errorf("llm: vertexai requires %s and %s to be set", cfg.ProjectEnv, cfg.LocationEnv)
		}
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = project
		clientCfg.Location = location
	} else {
		key, err := apiKeyFromEnv(cfg)
		if err != nil {
			return nil, err
		}
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = key
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if hc := httpClientFor(cfg); hc != nil {
		clientCfg.HTTPClient = hc
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: create google client: %w", err)
	}
	return &googleAdapter{client: client}, nil
}

func (a *googleAdapter) generate(ctx context.Context, cfg *config.LLMProviderConfig, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	contents, systemInstruction, err := toGenaiContents(input.Messages)
	if err != nil {
		return nil, err
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	}
	if cfg.Temperature != nil {
		genCfg.Temperature = genai.Ptr(*cfg.Temperature)
	}
	if max := resolveMaxTokens(cfg, input); max > 0 {
		genCfg.MaxOutputTokens = int32(max)
	}
	if cfg.ThinkingBudget != nil {
		genCfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(*cfg.ThinkingBudget),
		}
	}

	if len(input.Tools) > 0 {
		// Gemini rejects requests mixing function declarations with
		// built-in tools, so MCP tools win when both are configured.
		tools, err := toGenaiTools(input.Tools)
		if err != nil {
			return nil, err
		}
		genCfg.Tools = tools
	} else {
		genCfg.Tools = nativeGenaiTools(cfg, input.NativeToolsOverride)
	}

	out := make(chan agent.Chunk)
	go a.pump(ctx, cfg.Model, contents, genCfg, out)
	return out, nil
}

func (a *googleAdapter) pump(ctx context.Context, model string, contents []*genai.Content, genCfg *genai.GenerateContentConfig, out chan<- agent.Chunk) {
	defer close(out)

	var usage *agent.UsageChunk
	var grounding *genai.GroundingMetadata
	var urlContext *genai.URLContextMetadata
	var pendingCode string

	for resp, err := range a.client.Models.GenerateContentStream(ctx, model, contents, genCfg) {
		if err != nil {
			emit(ctx, out, &agent.ErrorChunk{
				Message:   err.Error(),
				Code:      "provider_error",
				Retryable: isRetryableGoogle(err),
			})
			return
		}
		if resp == nil {
			continue
		}
		if resp.UsageMetadata != nil {
			usage = &agent.UsageChunk{
				InputTokens:    int(resp.UsageMetadata.PromptTokenCount),
				OutputTokens:   int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:    int(resp.UsageMetadata.TotalTokenCount),
				ThinkingTokens: int(resp.UsageMetadata.ThoughtsTokenCount),
			}
		}
		for _, candidate := range resp.Candidates {
			if candidate == nil {
				continue
			}
			if candidate.GroundingMetadata != nil {
				grounding = candidate.GroundingMetadata
			}
			if candidate.URLContextMetadata != nil {
				urlContext = candidate.URLContextMetadata
			}
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				if !emitGenaiPart(ctx, out, part, &pendingCode) {
					return
				}
			}
		}
	}

	if pendingCode != "" {
		if !emit(ctx, out, &agent.CodeExecutionChunk{Code: pendingCode}) {
			return
		}
	}
	for _, g := range groundingChunks(grounding, urlContext) {
		if !emit(ctx, out, g) {
			return
		}
	}
	if usage != nil {
		emit(ctx, out, usage)
	}
}

func emitGenaiPart(ctx context.Context, out chan<- agent.Chunk, part *genai.Part, pendingCode *string) bool {
	if part.Text != "" {
		if part.Thought {
			return emit(ctx, out, &agent.ThinkingChunk{Content: part.Text})
		}
		return emit(ctx, out, &agent.TextChunk{Content: part.Text})
	}
	if part.FunctionCall != nil {
		args, err := json.Marshal(part.FunctionCall.Args)
		if err != nil {
			args = []byte("{}")
		}
		id := part.FunctionCall.ID
		if id == "" {
			id = uuid.New().String()
		}
		return emit(ctx, out, &agent.ToolCallChunk{
			CallID:    id,
			Name:      part.FunctionCall.Name,
			Arguments: string(args),
		})
	}
	if part.ExecutableCode != nil {
		// The result arrives in a later part; hold the code until then.
		if *pendingCode != "" {
			if !emit(ctx, out, &agent.CodeExecutionChunk{Code: *pendingCode}) {
				return false
			}
		}
		*pendingCode = part.ExecutableCode.Code
		return true
	}
	if part.CodeExecutionResult != nil {
		chunk := &agent.CodeExecutionChunk{Code: *pendingCode, Result: part.CodeExecutionResult.Output}
		*pendingCode = ""
		return emit(ctx, out, chunk)
	}
	return true
}

// groundingChunks converts Gemini grounding metadata into chunk values.
// Search grounding carries the query list; URL context carries sources only.
func groundingChunks(gm *genai.GroundingMetadata, ucm *genai.URLContextMetadata) []*agent.GroundingChunk {
	var out []*agent.GroundingChunk

	if gm != nil {
		g := &agent.GroundingChunk{WebSearchQueries: gm.WebSearchQueries}
		for _, c := range gm.GroundingChunks {
			if c == nil || c.Web == nil {
				continue
			}
			g.Sources = append(g.Sources, agent.GroundingSource{URI: c.Web.URI, Title: c.Web.Title})
		}
		for _, s := range gm.GroundingSupports {
			if s == nil || s.Segment == nil {
				continue
			}
			support := agent.GroundingSupport{
				StartIndex: int(s.Segment.StartIndex),
				EndIndex:   int(s.Segment.EndIndex),
				Text:       s.Segment.Text,
			}
			for _, idx := range s.GroundingChunkIndices {
				support.GroundingChunkIndices = append(support.GroundingChunkIndices, int(idx))
			}
			g.Supports = append(g.Supports, support)
		}
		if len(g.WebSearchQueries) > 0 || len(g.Sources) > 0 {
			out = append(out, g)
		}
	}

	if ucm != nil {
		g := &agent.GroundingChunk{}
		for _, u := range ucm.URLMetadata {
			if u == nil || u.RetrievedURL == "" {
				continue
			}
			g.Sources = append(g.Sources, agent.GroundingSource{URI: u.RetrievedURL})
		}
		if len(g.Sources) > 0 {
			out = append(out, g)
		}
	}

	return out
}

// nativeGenaiTools assembles Gemini built-in tools from the provider config
// merged with the per-alert override.
func nativeGenaiTools(cfg *config.LLMProviderConfig, override *models.NativeToolsConfig) []*genai.Tool {
	var tools []*genai.Tool
	if nativeToolEnabled(cfg, override, config.GoogleNativeToolGoogleSearch) {
		tools = append(tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if nativeToolEnabled(cfg, override, config.GoogleNativeToolCodeExecution) {
		tools = append(tools, &genai.Tool{CodeExecution: &genai.ToolCodeExecution{}})
	}
	if nativeToolEnabled(cfg, override, config.GoogleNativeToolURLContext) {
		tools = append(tools, &genai.Tool{URLContext: &genai.URLContext{}})
	}
	return tools
}

func nativeToolEnabled(cfg *config.LLMProviderConfig, override *models.NativeToolsConfig, tool config.GoogleNativeTool) bool {
	enabled := cfg.NativeTools[tool]
	if override == nil {
		return enabled
	}
	var o *bool
	switch tool {
	case config.GoogleNativeToolGoogleSearch:
		o = override.GoogleSearch
	case config.GoogleNativeToolCodeExecution:
		o = override.CodeExecution
	case config.GoogleNativeToolURLContext:
		o = override.URLContext
	}
	if o != nil {
		return *o
	}
	return enabled
}

func toGenaiContents(messages []agent.ConversationMessage) ([]*genai.Content, *genai.Content, error) {
	var contents []*genai.Content
	var systemParts []*genai.Part

	for _, m := range messages {
		switch m.Role {
		case "system":
			if m.Content != "" {
				systemParts = append(systemParts, &genai.Part{Text: m.Content})
			}
		case "assistant":
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if strings.TrimSpace(tc.Arguments) != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, nil, fmt.Errorf("llm: tool call %s has invalid arguments: %w", tc.Name, err)
					}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case "tool":
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: map[string]any{"result": m.Content},
					},
				}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return contents, system, nil
}

func toGenaiTools(tools []agent.ToolDefinition) ([]*genai.Tool, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		var schema map[string]any
		if err := json.Unmarshal([]byte(schemaOrEmpty(t.ParametersSchema)), &schema); err != nil {
			return nil, fmt.Errorf("llm: tool %s has invalid schema: %w", t.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGenaiSchema(schema),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

// toGenaiSchema converts a JSON schema map to the Gemini schema type.
func toGenaiSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := schema["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(propMap)
			}
		}
	}
	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			if rs, ok := r.(string); ok {
				s.Required = append(s.Required, rs)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	if enum, ok := schema["enum"].([]any); ok {
		for _, e := range enum {
			if es, ok := e.(string); ok {
				s.Enum = append(s.Enum, es)
			}
		}
	}
	return s
}

func isRetryableGoogle(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}
