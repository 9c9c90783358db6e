// Package llm routes agent LLM calls to provider-specific SDK adapters.
//
// Each configured provider resolves to one adapter (OpenAI-compatible,
// Anthropic, or Google GenAI). Adapters stream responses back as typed
// agent.Chunk values; the routing client implements agent.LLMClient.
package llm

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// providerAdapter is one provider SDK behind the common streaming shape.
type providerAdapter interface {
	generate(ctx context.Context, cfg *config.LLMProviderConfig, input *agent.GenerateInput) (<-chan agent.Chunk, error)
}

// Client routes Generate calls to provider adapters. Adapters are created
// lazily on first use and cached per provider name, so repeated calls for
// a session reuse the same SDK client and its connection pool.
type Client struct {
	registry *config.LLMProviderRegistry

	mu       sync.Mutex
	adapters map[string]providerAdapter
}

// NewClient creates an LLM client backed by the given provider registry.
func NewClient(registry *config.LLMProviderRegistry) *Client {
	return &Client{
		registry: registry,
		adapters: make(map[string]providerAdapter),
	}
}

// Generate resolves the provider for the call and streams the completion.
// The returned channel is closed when the stream completes; provider errors
// arrive as ErrorChunk values on the channel.
func (c *Client) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	cfg := input.Config
	if cfg == nil {
		if input.Provider == "" {
			return nil, fmt.Errorf("llm: no provider specified")
		}
		resolved, err := c.registry.Get(input.Provider)
		if err != nil {
			return nil, err
		}
		cfg = resolved
	}
	if cfg.Disabled {
		return nil, fmt.Errorf("llm: provider %q is disabled: required credential environment variables are not set", input.Provider)
	}

	adapter, err := c.adapterFor(input.Provider, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("LLM call",
		"provider", input.Provider,
		"model", cfg.Model,
		"messages", len(input.Messages),
		"tools", len(input.Tools),
		"session_id", input.SessionID)

	return adapter.generate(ctx, cfg, input)
}

// Close implements agent.LLMClient. The provider SDKs hold no connections
// that need explicit teardown.
func (c *Client) Close() error { return nil }

func (c *Client) adapterFor(name string, cfg *config.LLMProviderConfig) (providerAdapter, error) {
	key := name
	if key == "" {
		key = fmt.Sprintf("%s/%s", cfg.Type, cfg.Model)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.adapters[key]; ok {
		return a, nil
	}
	a, err := newAdapter(cfg)
	if err != nil {
		return nil, err
	}
	c.adapters[key] = a
	return a, nil
}

// newAdapter selects the SDK for a provider configuration. A vertexai
// provider serves both Gemini and Claude models; the model name decides
// which SDK speaks to the endpoint.
func newAdapter(cfg *config.LLMProviderConfig) (providerAdapter, error) {
	switch cfg.Type {
	case config.LLMProviderTypeOpenAI, config.LLMProviderTypeXAI:
		return newOpenAIAdapter(cfg)
	case config.LLMProviderTypeAnthropic:
		return newAnthropicAdapter(cfg)
	case config.LLMProviderTypeGoogle:
		return newGoogleAdapter(cfg)
	case config.LLMProviderTypeVertexAI:
		if strings.HasPrefix(cfg.Model, "claude") {
			return newAnthropicAdapter(cfg)
		}
		return newGoogleAdapter(cfg)
	default:
		return nil, fmt.Errorf("llm: unsupported provider type %q", cfg.Type)
	}
}

// emit sends a chunk unless the context is done. Returns false when the
// consumer is gone and the adapter should stop pumping.
func emit(ctx context.Context, out chan<- agent.Chunk, chunk agent.Chunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// resolveMaxTokens applies the per-call override on top of the provider default.
func resolveMaxTokens(cfg *config.LLMProviderConfig, input *agent.GenerateInput) int {
	if input.MaxTokens > 0 {
		return input.MaxTokens
	}
	return cfg.MaxTokens
}

// apiKeyFromEnv reads the provider credential named by api_key_env.
func apiKeyFromEnv(cfg *config.LLMProviderConfig) (string, error) {
	if cfg.APIKeyEnv == "" {
		return "", fmt.Errorf("llm: provider type %q requires api_key_env", cfg.Type)
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("llm: environment variable %s is not set", cfg.APIKeyEnv)
	}
	return key, nil
}

// httpClientFor returns a client with TLS verification disabled when the
// provider sets verify_ssl: false, nil otherwise.
func httpClientFor(cfg *config.LLMProviderConfig) *http.Client {
	if cfg.VerifySSL == nil || *cfg.VerifySSL {
		return nil
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}

// emptyObjectSchema stands in for tools that declare no parameters.
const emptyObjectSchema = `{"type":"object","properties":{}}`

func schemaOrEmpty(schema string) string {
	if strings.TrimSpace(schema) == "" {
		return emptyObjectSchema
	}
	return schema
}
