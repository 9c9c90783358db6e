package config

// overlay copies every entry of src into dst as an independent pointer,
// replacing entries already present. Calling it twice, built-ins first
// and user config second, gives user entries the last word.
func overlay[T any](dst map[string]*T, src map[string]T, post func(id string, v *T)) {
	for id, v := range src {
		cp := v
		if post != nil {
			post(id, &cp)
		}
		dst[id] = &cp
	}
}

// mergeAgents combines built-in and user-defined agents; a user agent
// with the same name wins.
func mergeAgents(builtinAgents map[string]BuiltinAgentConfig, userAgents map[string]AgentConfig) map[string]*AgentConfig {
	result := make(map[string]*AgentConfig)

	for name, builtin := range builtinAgents {
		// Copy the MCPServers slice so callers can't mutate the built-in.
		mcpCopy := make([]string, len(builtin.MCPServers))
		copy(mcpCopy, builtin.MCPServers)
		result[name] = &AgentConfig{
			Description:       builtin.Description,
			IterationStrategy: builtin.IterationStrategy,
			MCPServers:        mcpCopy,
		}
	}

	overlay(result, userAgents, nil)
	return result
}

// mergeMCPServers combines built-in and user-defined MCP servers; a user
// server with the same ID wins.
func mergeMCPServers(builtinServers map[string]MCPServerConfig, userServers map[string]MCPServerConfig) map[string]*MCPServerConfig {
	result := make(map[string]*MCPServerConfig)
	overlay(result, builtinServers, nil)
	overlay(result, userServers, nil)
	return result
}

// mergeChains combines built-in and user-defined chains; a user chain
// with the same ID wins. Each chain's ID field is stamped from its map key.
func mergeChains(builtinChains map[string]ChainConfig, userChains map[string]ChainConfig) map[string]*ChainConfig {
	setID := func(id string, c *ChainConfig) { c.ID = id }

	result := make(map[string]*ChainConfig)
	overlay(result, builtinChains, setID)
	overlay(result, userChains, setID)
	return result
}

// mergeLLMProviders combines built-in and user-defined LLM providers; a
// user provider with the same name wins.
func mergeLLMProviders(builtinProviders map[string]LLMProviderConfig, userProviders map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig)
	overlay(result, builtinProviders, nil)
	overlay(result, userProviders, nil)
	return result
}
