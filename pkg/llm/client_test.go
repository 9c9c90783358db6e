package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// fakeAdapter records the config it was called with and replays canned chunks.
type fakeAdapter struct {
	gotCfg   *config.LLMProviderConfig
	gotInput *agent.GenerateInput
	chunks   []agent.Chunk
}

func (f *fakeAdapter) generate(ctx context.Context, cfg *config.LLMProviderConfig, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	f.gotCfg = cfg
	f.gotInput = input
	out := make(chan agent.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func testProviderConfig(t config.LLMProviderType, model string) *config.LLMProviderConfig {
	return &config.LLMProviderConfig{
		Type:                t,
		Model:               model,
		APIKeyEnv:           "TEST_LLM_API_KEY",
		MaxToolResultTokens: 100000,
	}
}

func TestClient_Generate_RoutesThroughAdapter(t *testing.T) {
	registry := config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
		"test-provider": testProviderConfig(config.LLMProviderTypeOpenAI, "gpt-5"),
	})
	client := NewClient(registry)

	fake := &fakeAdapter{chunks: []agent.Chunk{
		&agent.TextChunk{Content: "hello"},
		&agent.UsageChunk{InputTokens: 3, OutputTokens: 1, TotalTokens: 4},
	}}
	client.adapters["test-provider"] = fake

	stream, err := client.Generate(context.Background(), &agent.GenerateInput{
		Provider: "test-provider",
		Messages: []agent.ConversationMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	var got []agent.Chunk
	for chunk := range stream {
		got = append(got, chunk)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].(*agent.TextChunk).Content)
	assert.Equal(t, 4, got[1].(*agent.UsageChunk).TotalTokens)

	require.NotNil(t, fake.gotCfg)
	assert.Equal(t, "gpt-5", fake.gotCfg.Model)
}

func TestClient_Generate_PrefersResolvedConfig(t *testing.T) {
	registry := config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{})
	client := NewClient(registry)

	fake := &fakeAdapter{}
	client.adapters["my-provider"] = fake

	cfg := testProviderConfig(config.LLMProviderTypeOpenAI, "grok-4")
	_, err := client.Generate(context.Background(), &agent.GenerateInput{
		Provider: "my-provider",
		Config:   cfg,
	})
	require.NoError(t, err)
	assert.Same(t, cfg, fake.gotCfg)
}

func TestClient_Generate_NoProvider(t *testing.T) {
	client := NewClient(config.NewLLMProviderRegistry(nil))

	_, err := client.Generate(context.Background(), &agent.GenerateInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider specified")
}

func TestClient_Generate_UnknownProvider(t *testing.T) {
	client := NewClient(config.NewLLMProviderRegistry(nil))

	_, err := client.Generate(context.Background(), &agent.GenerateInput{Provider: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLLMProviderNotFound)
}

func TestClient_Generate_DisabledProvider(t *testing.T) {
	cfg := testProviderConfig(config.LLMProviderTypeOpenAI, "gpt-5")
	cfg.Disabled = true
	registry := config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
		"no-creds": cfg,
	})
	client := NewClient(registry)

	_, err := client.Generate(context.Background(), &agent.GenerateInput{Provider: "no-creds"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestClient_AdapterCaching(t *testing.T) {
	t.Setenv("TEST_LLM_API_KEY", "test-key")

	client := NewClient(config.NewLLMProviderRegistry(nil))
	cfg := testProviderConfig(config.LLMProviderTypeOpenAI, "gpt-5")

	first, err := client.adapterFor("cached", cfg)
	require.NoError(t, err)
	second, err := client.adapterFor("cached", cfg)
	require.NoError(t, err)
	assert.Same(t, first.(*openAIAdapter), second.(*openAIAdapter))
}

func TestNewAdapter_Dispatch(t *testing.T) {
	t.Setenv("TEST_LLM_API_KEY", "test-key")

	tests := []struct {
		name     string
		cfg      *config.LLMProviderConfig
		wantType any
	}{
		{
			name:     "openai",
			cfg:      testProviderConfig(config.LLMProviderTypeOpenAI, "gpt-5"),
			wantType: &openAIAdapter{},
		},
		{
			name:     "xai uses openai compatibility",
			cfg:      testProviderConfig(config.LLMProviderTypeXAI, "grok-4"),
			wantType: &openAIAdapter{},
		},
		{
			name:     "anthropic",
			cfg:      testProviderConfig(config.LLMProviderTypeAnthropic, "claude-sonnet-4-20250514"),
			wantType: &anthropicAdapter{},
		},
		{
			name:     "google",
			cfg:      testProviderConfig(config.LLMProviderTypeGoogle, "gemini-2.5-pro"),
			wantType: &googleAdapter{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := newAdapter(tt.cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, adapter)
		})
	}
}

func TestNewAdapter_VertexAIRequiresProjectEnvs(t *testing.T) {
	cfg := &config.LLMProviderConfig{
		Type:        config.LLMProviderTypeVertexAI,
		Model:       "claude-sonnet-4-5@20250929",
		ProjectEnv:  "TEST_MISSING_PROJECT",
		LocationEnv: "TEST_MISSING_LOCATION",
	}

	_, err := newAdapter(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_MISSING_PROJECT")

	// Gemini models on Vertex fail the same way.
	cfg.Model = "gemini-2.5-pro"
	_, err = newAdapter(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_MISSING_PROJECT")
}

func TestNewAdapter_UnsupportedType(t *testing.T) {
	_, err := newAdapter(&config.LLMProviderConfig{Type: "mystery"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Run("missing env var names the variable", func(t *testing.T) {
		cfg := &config.LLMProviderConfig{Type: config.LLMProviderTypeOpenAI, APIKeyEnv: "TEST_UNSET_KEY"}
		_, err := apiKeyFromEnv(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEST_UNSET_KEY")
	})

	t.Run("no api_key_env configured", func(t *testing.T) {
		cfg := &config.LLMProviderConfig{Type: config.LLMProviderTypeOpenAI}
		_, err := apiKeyFromEnv(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api_key_env")
	})

	t.Run("reads the key", func(t *testing.T) {
		t.Setenv("TEST_SET_KEY", "sk-value")
		cfg := &config.LLMProviderConfig{Type: config.LLMProviderTypeOpenAI, APIKeyEnv: "TEST_SET_KEY"}
		key, err := apiKeyFromEnv(cfg)
		require.NoError(t, err)
		assert.Equal(t, "sk-value", key)
	})
}

func TestHTTPClientFor(t *testing.T) {
	verify := true
	noVerify := false

	assert.Nil(t, httpClientFor(&config.LLMProviderConfig{}))
	assert.Nil(t, httpClientFor(&config.LLMProviderConfig{VerifySSL: &verify}))
	assert.NotNil(t, httpClientFor(&config.LLMProviderConfig{VerifySSL: &noVerify}))
}

func TestResolveMaxTokens(t *testing.T) {
	cfg := &config.LLMProviderConfig{MaxTokens: 8000}

	assert.Equal(t, 8000, resolveMaxTokens(cfg, &agent.GenerateInput{}))
	assert.Equal(t, 500, resolveMaxTokens(cfg, &agent.GenerateInput{MaxTokens: 500}))
	assert.Equal(t, 0, resolveMaxTokens(&config.LLMProviderConfig{}, &agent.GenerateInput{}))
}

func TestSchemaOrEmpty(t *testing.T) {
	assert.Equal(t, emptyObjectSchema, schemaOrEmpty(""))
	assert.Equal(t, emptyObjectSchema, schemaOrEmpty("  "))
	assert.Equal(t, `{"type":"object"}`, schemaOrEmpty(`{"type":"object"}`))
}

func TestEmit_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel with no reader: only cancellation can unblock.
	out := make(chan agent.Chunk)
	assert.False(t, emit(ctx, out, &agent.TextChunk{Content: "late"}))
}
