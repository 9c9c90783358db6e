package e2e

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/mcp"
)

// emptySchema is the smallest schema the SDK accepts for a tool.
var emptySchema = json.RawMessage(`{"type":"object"}`)

// SetupInMemoryMCP returns a real *mcp.ClientFactory whose clients talk
// to in-memory MCP servers running the given scripted handlers.
//
// The factory builds fresh transports and sessions on every CreateClient
// call, so consecutive clients (investigation, then chat) never share a
// connection.
//
// servers maps serverID to its toolName-to-handler table.
func SetupInMemoryMCP(t *testing.T, servers map[string]map[string]mcpsdk.ToolHandler) *mcp.ClientFactory {
	t.Helper()

	// Stub registry entries so tool filtering resolves; the stdio command
	// is never spawned because sessions are injected below.
	mcpConfigs := make(map[string]*config.MCPServerConfig, len(servers))
	for serverID := range servers {
		mcpConfigs[serverID] = &config.MCPServerConfig{
			Transport: config.TransportConfig{
				Type:    config.TransportTypeStdio,
				Command: "mock",
			},
		}
	}
	registry := config.NewMCPServerRegistry(mcpConfigs)

	return mcp.NewTestClientFactory(registry, func(c *mcp.Client) {
		for serverID, tools := range servers {
			sdkClient, session := connectInMemoryServer(t, serverID, tools)
			c.InjectSession(serverID, sdkClient, session)
		}
	})
}

// connectInMemoryServer spins up one in-memory MCP server with the given
// tools and returns a connected client and session for it.
func connectInMemoryServer(t *testing.T, serverID string, tools map[string]mcpsdk.ToolHandler) (*mcpsdk.Client, *mcpsdk.ClientSession) {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name: serverID, Version: "test",
	}, nil)
	for toolName, handler := range tools {
		server.AddTool(&mcpsdk.Tool{
			Name:        toolName,
			Description: "test tool: " + toolName,
			InputSchema: emptySchema,
		}, handler)
	}

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = server.Run(ctx, serverTransport) }()

	sdkClient := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name: "tarsy-e2e", Version: "test",
	}, nil)
	session, err := sdkClient.Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)

	return sdkClient, session
}

// StaticToolHandler answers every call with the same text.
func StaticToolHandler(text string) mcpsdk.ToolHandler {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		}, nil
	}
}

// ErrorToolHandler fails every call with the given error.
func ErrorToolHandler(err error) mcpsdk.ToolHandler {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return nil, err
	}
}
