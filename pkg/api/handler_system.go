package api

import (
	"net/http"
	"sort"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// SystemWarningsResponse is the body of GET /api/v1/system/warnings.
type SystemWarningsResponse struct {
	Warnings []SystemWarningItem `json:"warnings"`
}

// SystemWarningItem is one active system warning.
type SystemWarningItem struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Details   string `json:"details"`
	ServerID  string `json:"server_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// MCPServersResponse is the body of GET /api/v1/system/mcp-servers.
type MCPServersResponse struct {
	Servers []MCPServerStatus `json:"servers"`
}

// MCPToolInfo is one tool exposed by an MCP server.
type MCPToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MCPServerStatus is one server's health plus its cached tool list.
type MCPServerStatus struct {
	ID        string        `json:"id"`
	Healthy   bool          `json:"healthy"`
	LastCheck string        `json:"last_check"`
	ToolCount int           `json:"tool_count"`
	Tools     []MCPToolInfo `json:"tools"`
	Error     *string       `json:"error"`
}

// DefaultToolsResponse is the body of GET /api/v1/system/default-tools.
type DefaultToolsResponse struct {
	AlertType   string          `json:"alert_type,omitempty"`
	MCPServers  []string        `json:"mcp_servers"`
	NativeTools map[string]bool `json:"native_tools"`
}

func (s *Server) systemWarningsHandler(c *echo.Context) error {
	response := SystemWarningsResponse{
		Warnings: []SystemWarningItem{},
	}

	if s.warningService != nil {
		for _, w := range s.warningService.GetWarnings() {
			response.Warnings = append(response.Warnings, SystemWarningItem{
				ID:        w.ID,
				Category:  w.Category,
				Message:   w.Message,
				Details:   w.Details,
				ServerID:  w.ServerID,
				CreatedAt: w.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) mcpServersHandler(c *echo.Context) error {
	response := MCPServersResponse{
		Servers: []MCPServerStatus{},
	}

	if s.healthMonitor == nil {
		return c.JSON(http.StatusOK, response)
	}

	cachedTools := s.healthMonitor.GetCachedTools()

	for serverID, status := range s.healthMonitor.GetStatuses() {
		tools := []MCPToolInfo{}
		for _, t := range cachedTools[serverID] {
			tools = append(tools, MCPToolInfo{
				Name:        t.Name,
				Description: t.Description,
			})
		}

		server := MCPServerStatus{
			ID:        serverID,
			Healthy:   status.Healthy,
			LastCheck: status.LastCheck.Format(time.RFC3339),
			ToolCount: len(tools),
			Tools:     tools,
		}
		if status.Error != "" {
			server.Error = &status.Error
		}

		response.Servers = append(response.Servers, server)
	}

	// Map iteration order is random; sort for stable output.
	sort.Slice(response.Servers, func(i, j int) bool {
		return response.Servers[i].ID < response.Servers[j].ID
	})

	return c.JSON(http.StatusOK, response)
}

// resolveNativeTools reports which Gemini native tools the effective
// provider enables: the configured default provider when set, otherwise
// the first google-type provider found.
func (s *Server) resolveNativeTools() map[string]bool {
	nativeTools := map[string]bool{
		"google_search":  false,
		"code_execution": false,
		"url_context":    false,
	}

	if s.cfg.Defaults != nil && s.cfg.Defaults.LLMProvider != "" {
		if provider, err := s.cfg.LLMProviderRegistry.Get(s.cfg.Defaults.LLMProvider); err == nil {
			for tool, enabled := range provider.NativeTools {
				nativeTools[string(tool)] = enabled
			}
		}
		return nativeTools
	}

	for _, providerCfg := range s.cfg.LLMProviderRegistry.GetAll() {
		if providerCfg.Type == config.LLMProviderTypeGoogle {
			for tool, enabled := range providerCfg.NativeTools {
				nativeTools[string(tool)] = enabled
			}
			break
		}
	}
	return nativeTools
}

// resolveDefaultServers lists the MCP servers the given alert type's
// chain would use; for an empty or unknown alert type it lists every
// configured server.
func (s *Server) resolveDefaultServers(alertType string) []string {
	mcpServers := []string{}

	if alertType != "" {
		if chain, err := s.cfg.ChainRegistry.GetByAlertType(alertType); err == nil {
			// Chain-level servers win; otherwise aggregate from the stages.
			if len(chain.MCPServers) > 0 {
				mcpServers = chain.MCPServers
			} else {
				mcpServers = agent.AggregateChainMCPServers(s.cfg, chain)
			}
		}
	}

	if len(mcpServers) == 0 && s.cfg.MCPServerRegistry != nil {
		for id := range s.cfg.MCPServerRegistry.GetAll() {
			mcpServers = append(mcpServers, id)
		}
	}

	sort.Strings(mcpServers)
	return mcpServers
}

// defaultToolsHandler answers GET /api/v1/system/default-tools.
func (s *Server) defaultToolsHandler(c *echo.Context) error {
	alertType := c.QueryParam("alert_type")

	return c.JSON(http.StatusOK, DefaultToolsResponse{
		AlertType:   alertType,
		MCPServers:  s.resolveDefaultServers(alertType),
		NativeTools: s.resolveNativeTools(),
	})
}
