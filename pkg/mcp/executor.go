package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/masking"
)

var _ agent.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor runs agent tool calls against real MCP servers. One executor
// is created per session by ClientFactory, scoped to the servers that
// session's chain may touch.
type ToolExecutor struct {
	client   *Client
	registry *config.MCPServerRegistry

	serverIDs []string

	// Per-server allow-list of tool names from the MCP selection override.
	// A nil entry means every tool on that server is allowed.
	toolFilter map[string][]string

	// When nil, tool results pass through unmasked.
	maskingService *masking.Service
}

// NewToolExecutor builds an executor for the given servers. maskingService
// may be nil to disable masking.
func NewToolExecutor(
	client *Client,
	registry *config.MCPServerRegistry,
	serverIDs []string,
	toolFilter map[string][]string,
	maskingService *masking.Service,
) *ToolExecutor {
	return &ToolExecutor{
		client:         client,
		registry:       registry,
		serverIDs:      serverIDs,
		toolFilter:     toolFilter,
		maskingService: maskingService,
	}
}

// Execute runs one tool call: normalize the name, route it to a server,
// parse the argument text, invoke the tool, then mask the result. Failures
// along the way come back as error-flagged ToolResults rather than Go
// errors, matching MCP's convention of reporting tool failures in-band so
// the model can react to them.
func (e *ToolExecutor) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	name := NormalizeToolName(call.Name)

	serverID, toolName, err := e.resolveToolCall(name)
	if err != nil {
		return errorResult(call, err.Error()), nil
	}

	params, err := ParseActionInput(call.Arguments)
	if err != nil {
		return errorResult(call, fmt.Sprintf("Failed to parse tool arguments: %s", err)), nil
	}

	result, err := e.client.CallTool(ctx, serverID, toolName, params)
	if err != nil {
		return errorResult(call, fmt.Sprintf("MCP tool execution failed: %s", err)), nil
	}

	content := extractTextContent(result)

	if e.maskingService != nil {
		content = e.maskingService.MaskToolResult(content, serverID)
	}

	// Summarization of oversized results happens at the controller level,
	// which has the LLM access and event publishing this layer lacks.
	// See pkg/agent/controller/summarize.go.

	return &agent.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: content,
		IsError: result.IsError,
	}, nil
}

func errorResult(call agent.ToolCall, content string) *agent.ToolResult {
	return &agent.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: content,
		IsError: true,
	}
}

// ListTools returns the tools of every configured server under
// server-prefixed names like "kubernetes-server.get_pods". A server that
// fails to answer is skipped; partial tools beat none.
func (e *ToolExecutor) ListTools(ctx context.Context) ([]agent.ToolDefinition, error) {
	var allTools []agent.ToolDefinition

	for _, serverID := range e.serverIDs {
		tools, err := e.client.ListTools(ctx, serverID)
		if err != nil {
			slog.Warn("Failed to list tools from MCP server",
				"server", serverID, "error", err)
			continue
		}

		for _, tool := range tools {
			if filter, ok := e.toolFilter[serverID]; ok && len(filter) > 0 {
				if !slices.Contains(filter, tool.Name) {
					continue
				}
			}

			allTools = append(allTools, agent.ToolDefinition{
				Name:             fmt.Sprintf("%s.%s", serverID, tool.Name),
				Description:      tool.Description,
				ParametersSchema: marshalSchema(tool.InputSchema),
			})
		}
	}

	if len(allTools) == 0 {
		return nil, nil
	}
	return allTools, nil
}

// Close releases the underlying MCP transports and subprocesses.
func (e *ToolExecutor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// resolveToolCall splits the name and checks it against the executor's
// server list and tool filter.
func (e *ToolExecutor) resolveToolCall(name string) (serverID, toolName string, err error) {
	serverID, toolName, err = SplitToolName(name)
	if err != nil {
		return "", "", err
	}

	if !slices.Contains(e.serverIDs, serverID) {
		return "", "", fmt.Errorf(
			"MCP server %q is not available for this execution. "+
				"Available servers: %s", serverID, strings.Join(e.serverIDs, ", "))
	}

	if filter, ok := e.toolFilter[serverID]; ok && len(filter) > 0 {
		if !slices.Contains(filter, toolName) {
			return "", "", fmt.Errorf(
				"tool %q is not available on server %q. "+
					"Available tools: %s", toolName, serverID, strings.Join(filter, ", "))
		}
	}

	return serverID, toolName, nil
}

// extractTextContent joins every TextContent item in the result. Images and
// embedded resources are skipped with a debug log.
func extractTextContent(result *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		} else {
			slog.Debug("MCP tool returned non-text content, skipping",
				"content_type", fmt.Sprintf("%T", c))
		}
	}
	return strings.Join(parts, "\n")
}

func marshalSchema(schema any) string {
	if schema == nil {
		return ""
	}
	data, err := json.Marshal(schema)
	if err != nil {
		slog.Debug("Failed to marshal tool input schema", "error", err)
		return ""
	}
	return string(data)
}
