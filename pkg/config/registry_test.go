package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRegistry(t *testing.T) {
	registry := NewAgentRegistry(map[string]*AgentConfig{
		"agent1": {MCPServers: []string{"server1"}},
		"agent2": {MCPServers: []string{"server2"}},
	})

	t.Run("Get", func(t *testing.T) {
		agent, err := registry.Get("agent1")
		require.NoError(t, err)
		assert.Equal(t, []string{"server1"}, agent.MCPServers)

		_, err = registry.Get("nonexistent")
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, registry.Has("agent1"))
		assert.False(t, registry.Has("nonexistent"))
	})

	t.Run("GetAll copies", func(t *testing.T) {
		all := registry.GetAll()
		assert.Len(t, all, 2)

		// Mutating the returned map must not leak into the registry.
		all["agent3"] = &AgentConfig{MCPServers: []string{"server3"}}
		assert.False(t, registry.Has("agent3"))
	})
}

func TestChainRegistry(t *testing.T) {
	registry := NewChainRegistry(map[string]*ChainConfig{
		"chain1": {
			AlertTypes: []string{"alert1", "alert2"},
			Stages: []StageConfig{
				{Name: "stage1", Agents: []StageAgentConfig{{Name: "agent1"}}},
			},
		},
		"chain2": {
			AlertTypes: []string{"alert3"},
			Stages: []StageConfig{
				{Name: "stage1", Agents: []StageAgentConfig{{Name: "agent2"}}},
			},
		},
	})

	t.Run("Get", func(t *testing.T) {
		chain, err := registry.Get("chain1")
		require.NoError(t, err)
		assert.Contains(t, chain.AlertTypes, "alert1")

		_, err = registry.Get("nonexistent")
		assert.ErrorIs(t, err, ErrChainNotFound)
	})

	t.Run("GetByAlertType", func(t *testing.T) {
		chain, err := registry.GetByAlertType("alert1")
		require.NoError(t, err)
		assert.Contains(t, chain.AlertTypes, "alert1")

		chain, err = registry.GetByAlertType("alert3")
		require.NoError(t, err)
		assert.Contains(t, chain.AlertTypes, "alert3")

		_, err = registry.GetByAlertType("nonexistent-alert")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "for alert type")
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, registry.Has("chain1"))
		assert.False(t, registry.Has("nonexistent"))
	})

	t.Run("GetAll copies", func(t *testing.T) {
		all := registry.GetAll()
		assert.Len(t, all, 2)

		all["chain3"] = &ChainConfig{AlertTypes: []string{"alert4"}}
		assert.False(t, registry.Has("chain3"))
	})
}

func TestMCPServerRegistry(t *testing.T) {
	registry := NewMCPServerRegistry(map[string]*MCPServerConfig{
		"server1": {
			Transport: TransportConfig{Type: TransportTypeStdio, Command: "cmd1"},
		},
		"server2": {
			Transport: TransportConfig{Type: TransportTypeHTTP, URL: "http://example.com"},
		},
	})

	t.Run("Get", func(t *testing.T) {
		server, err := registry.Get("server1")
		require.NoError(t, err)
		assert.Equal(t, "cmd1", server.Transport.Command)

		_, err = registry.Get("nonexistent")
		assert.ErrorIs(t, err, ErrMCPServerNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, registry.Has("server1"))
		assert.False(t, registry.Has("nonexistent"))
	})

	t.Run("GetAll copies", func(t *testing.T) {
		all := registry.GetAll()
		assert.Len(t, all, 2)

		all["server3"] = &MCPServerConfig{
			Transport: TransportConfig{Type: TransportTypeStdio, Command: "cmd3"},
		}
		assert.False(t, registry.Has("server3"))
	})
}

func TestLLMProviderRegistry(t *testing.T) {
	registry := NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"provider1": {
			Type:                LLMProviderTypeGoogle,
			Model:               "model1",
			MaxToolResultTokens: 100000,
		},
		"provider2": {
			Type:                LLMProviderTypeOpenAI,
			Model:               "model2",
			MaxToolResultTokens: 50000,
		},
	})

	t.Run("Get", func(t *testing.T) {
		provider, err := registry.Get("provider1")
		require.NoError(t, err)
		assert.Equal(t, "model1", provider.Model)

		_, err = registry.Get("nonexistent")
		assert.ErrorIs(t, err, ErrLLMProviderNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, registry.Has("provider1"))
		assert.False(t, registry.Has("nonexistent"))
	})

	t.Run("GetAll copies", func(t *testing.T) {
		all := registry.GetAll()
		assert.Len(t, all, 2)

		all["provider3"] = &LLMProviderConfig{
			Type:                LLMProviderTypeAnthropic,
			Model:               "model3",
			MaxToolResultTokens: 75000,
		}
		assert.False(t, registry.Has("provider3"))
	})
}

// Registries are read-only after construction; these just have to not race
// or panic under the detector.
func TestRegistryConcurrentReads(_ *testing.T) {
	agents := NewAgentRegistry(map[string]*AgentConfig{
		"agent1": {MCPServers: []string{"server1"}},
	})
	chains := NewChainRegistry(map[string]*ChainConfig{
		"chain1": {
			AlertTypes: []string{"alert1"},
			Stages: []StageConfig{
				{Name: "stage1", Agents: []StageAgentConfig{{Name: "agent1"}}},
			},
		},
	})
	servers := NewMCPServerRegistry(map[string]*MCPServerConfig{
		"server1": {Transport: TransportConfig{Type: TransportTypeStdio, Command: "cmd1"}},
	})
	providers := NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"provider1": {Type: LLMProviderTypeGoogle, Model: "model1", MaxToolResultTokens: 100000},
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = agents.Get("agent1")
			_ = agents.GetAll()
			_, _ = chains.GetByAlertType("alert1")
			_ = chains.Has("chain1")
			_, _ = servers.Get("server1")
			_ = servers.GetAll()
			_, _ = providers.Get("provider1")
			_ = providers.Has("provider1")
		}()
	}
	wg.Wait()
}
