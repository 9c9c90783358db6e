package models

import (
	"encoding/json"
	"fmt"
)

// MCPServerSelection represents a selected MCP server with optional tool filtering
type MCPServerSelection struct {
	Name  string   `json:"name"`            // MCP server ID
	Tools []string `json:"tools,omitempty"` // Specific tools, empty = all tools
}

// NativeToolsConfig configures native LLM provider tools
type NativeToolsConfig struct {
	GoogleSearch  *bool `json:"google_search,omitempty"`  // nil = provider default
	CodeExecution *bool `json:"code_execution,omitempty"` // nil = provider default
	URLContext    *bool `json:"url_context,omitempty"`    // nil = provider default
}

// MCPSelectionConfig is the per-alert MCP override configuration
type MCPSelectionConfig struct {
	Servers     []MCPServerSelection `json:"servers"`
	NativeTools *NativeToolsConfig   `json:"native_tools,omitempty"`
}

// ParseMCPSelectionConfig converts the raw JSON map stored on a session into
// a typed selection config. Returns nil for absent or empty input.
func ParseMCPSelectionConfig(raw map[string]interface{}) (*MCPSelectionConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal MCP selection: %w", err)
	}

	var cfg MCPSelectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP selection: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the selection is usable: at least one server, each named
func (c *MCPSelectionConfig) Validate() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("MCP selection must have at least one server")
	}
	for i, srv := range c.Servers {
		if srv.Name == "" {
			return fmt.Errorf("MCP selection server at index %d has no name", i)
		}
	}
	return nil
}

// ToMap converts the selection back to the raw JSON map shape stored on sessions
func (c *MCPSelectionConfig) ToMap() (map[string]interface{}, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal MCP selection: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to convert MCP selection: %w", err)
	}
	return out, nil
}
