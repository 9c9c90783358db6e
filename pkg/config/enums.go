package config

// IterationStrategy selects how an agent drives its investigation loop.
type IterationStrategy string

const (
	// IterationStrategyReact runs the textual think/act/observe loop.
	IterationStrategyReact IterationStrategy = "react"
	// IterationStrategyNativeThinking delegates tool calling and reasoning to the provider.
	IterationStrategyNativeThinking IterationStrategy = "native-thinking"
	// IterationStrategySynthesis merges the results of parallel agents.
	IterationStrategySynthesis IterationStrategy = "synthesis"
	// IterationStrategySynthesisNativeThinking merges results using provider-native reasoning.
	IterationStrategySynthesisNativeThinking IterationStrategy = "synthesis-native-thinking"
)

func (s IterationStrategy) IsValid() bool {
	switch s {
	case IterationStrategyReact,
		IterationStrategyNativeThinking,
		IterationStrategySynthesis,
		IterationStrategySynthesisNativeThinking:
		return true
	default:
		return false
	}
}

// IsSynthesis reports whether the strategy is a synthesis variant.
func (s IterationStrategy) IsSynthesis() bool {
	return s == IterationStrategySynthesis || s == IterationStrategySynthesisNativeThinking
}

// SuccessPolicy decides when a parallel stage counts as successful.
type SuccessPolicy string

const (
	// SuccessPolicyAll needs every agent in the stage to succeed.
	SuccessPolicyAll SuccessPolicy = "all"
	// SuccessPolicyAny needs one successful agent; this is the default.
	SuccessPolicyAny SuccessPolicy = "any"
)

func (p SuccessPolicy) IsValid() bool {
	return p == SuccessPolicyAll || p == SuccessPolicyAny
}

// TransportType names the supported MCP server transports.
type TransportType string

const (
	// TransportTypeStdio talks to a subprocess over stdin/stdout.
	TransportTypeStdio TransportType = "stdio"
	// TransportTypeHTTP uses Streamable HTTP JSON-RPC.
	TransportTypeHTTP TransportType = "http"
	// TransportTypeSSE uses Server-Sent Events.
	TransportTypeSSE TransportType = "sse"
)

func (t TransportType) IsValid() bool {
	return t == TransportTypeStdio || t == TransportTypeHTTP || t == TransportTypeSSE
}

// LLMProviderType names the supported LLM backends.
type LLMProviderType string

const (
	// LLMProviderTypeGoogle targets the Google Gemini API.
	LLMProviderTypeGoogle LLMProviderType = "google"
	// LLMProviderTypeOpenAI targets the OpenAI API.
	LLMProviderTypeOpenAI LLMProviderType = "openai"
	// LLMProviderTypeAnthropic targets the Anthropic Claude API.
	LLMProviderTypeAnthropic LLMProviderType = "anthropic"
	// LLMProviderTypeXAI targets the xAI Grok API.
	LLMProviderTypeXAI LLMProviderType = "xai"
	// LLMProviderTypeVertexAI targets Gemini models via Google Vertex AI.
	LLMProviderTypeVertexAI LLMProviderType = "vertexai"
)

func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeGoogle,
		LLMProviderTypeOpenAI,
		LLMProviderTypeAnthropic,
		LLMProviderTypeXAI,
		LLMProviderTypeVertexAI:
		return true
	default:
		return false
	}
}

// GoogleNativeTool names the Gemini built-in tools that can be enabled
// per provider.
type GoogleNativeTool string

const (
	// GoogleNativeToolGoogleSearch grounds responses with Google Search.
	GoogleNativeToolGoogleSearch GoogleNativeTool = "google_search"
	// GoogleNativeToolCodeExecution lets the model run code.
	GoogleNativeToolCodeExecution GoogleNativeTool = "code_execution"
	// GoogleNativeToolURLContext lets the model fetch URL contents.
	GoogleNativeToolURLContext GoogleNativeTool = "url_context"
)

func (t GoogleNativeTool) IsValid() bool {
	return t == GoogleNativeToolGoogleSearch ||
		t == GoogleNativeToolCodeExecution ||
		t == GoogleNativeToolURLContext
}
