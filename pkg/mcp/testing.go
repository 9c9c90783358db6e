package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// InjectSession wires a pre-connected SDK session into the Client,
// bypassing Initialize's transport setup. Test infrastructure uses it
// to attach in-memory MCP servers.
func (c *Client) InjectSession(serverID string, sdkClient *mcpsdk.Client, session *mcpsdk.ClientSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[serverID] = session
	c.clients[serverID] = sdkClient
}

// NewTestClientFactory builds a ClientFactory whose clients are wired by
// injectFn instead of Initialize. Every CreateClient/CreateToolExecutor
// call gets a fresh Client passed through injectFn, so tests can attach
// new in-memory sessions each time.
func NewTestClientFactory(registry *config.MCPServerRegistry, injectFn func(c *Client)) *ClientFactory {
	return &ClientFactory{
		registry: registry,
		createClientFn: func(_ context.Context, _ []string) (*Client, error) {
			c := newClient(registry)
			injectFn(c)
			return c, nil
		},
	}
}

// SetTransportFactory swaps the transport constructor used when sessions
// are (re)created and returns the restore function. Tests use it to route
// session recreation through in-memory transports. Not safe to combine
// with t.Parallel.
func SetTransportFactory(fn func(config.TransportConfig) (mcpsdk.Transport, error)) func() {
	old := newTransportFn
	newTransportFn = fn
	return func() { newTransportFn = old }
}
