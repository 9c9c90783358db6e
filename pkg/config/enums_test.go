package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterationStrategyIsValid(t *testing.T) {
	valid := []IterationStrategy{
		IterationStrategyReact,
		IterationStrategyNativeThinking,
		IterationStrategySynthesis,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "strategy %q", s)
	}

	assert.False(t, IterationStrategy("invalid").IsValid())
	assert.False(t, IterationStrategy("").IsValid())
}

func TestSuccessPolicyIsValid(t *testing.T) {
	assert.True(t, SuccessPolicyAll.IsValid())
	assert.True(t, SuccessPolicyAny.IsValid())
	assert.False(t, SuccessPolicy("invalid").IsValid())
	assert.False(t, SuccessPolicy("").IsValid())
}

func TestTransportTypeIsValid(t *testing.T) {
	for _, tr := range []TransportType{TransportTypeStdio, TransportTypeHTTP, TransportTypeSSE} {
		assert.True(t, tr.IsValid(), "transport %q", tr)
	}

	assert.False(t, TransportType("invalid").IsValid())
	assert.False(t, TransportType("").IsValid())
}

func TestLLMProviderTypeIsValid(t *testing.T) {
	valid := []LLMProviderType{
		LLMProviderTypeGoogle,
		LLMProviderTypeOpenAI,
		LLMProviderTypeAnthropic,
		LLMProviderTypeXAI,
		LLMProviderTypeVertexAI,
	}
	for _, p := range valid {
		assert.True(t, p.IsValid(), "provider %q", p)
	}

	assert.False(t, LLMProviderType("invalid").IsValid())
	assert.False(t, LLMProviderType("").IsValid())
}

func TestGoogleNativeToolIsValid(t *testing.T) {
	valid := []GoogleNativeTool{
		GoogleNativeToolGoogleSearch,
		GoogleNativeToolCodeExecution,
		GoogleNativeToolURLContext,
	}
	for _, tool := range valid {
		assert.True(t, tool.IsValid(), "tool %q", tool)
	}

	assert.False(t, GoogleNativeTool("invalid").IsValid())
	assert.False(t, GoogleNativeTool("").IsValid())
}
