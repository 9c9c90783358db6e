package agent

import (
	"context"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// ExecutionContext carries all dependencies and state needed by an agent
// during execution. Created by the chain executor for each agent run.
type ExecutionContext struct {
	// Identity
	SessionID   string
	StageID     string
	ExecutionID string
	AgentName   string
	StageIndex  int

	// Parallel identity. ParallelIndex is 1-based within the stage;
	// both zero-valued for single-agent stages.
	ParallelIndex     int
	ParentExecutionID string

	// Alert data (pulled from AlertSession by the executor).
	// Arbitrary text — not parsed, not assumed to be JSON.
	AlertData string

	// Alert type (from session/chain config)
	AlertType string

	// Runbook content (fetched by the executor, passed as text)
	RunbookContent string

	// Configuration (resolved from hierarchy)
	Config *ResolvedAgentConfig

	// Dependencies (injected by executor)
	LLMClient      LLMClient
	ToolExecutor   ToolExecutor
	EventPublisher EventPublisher
	Services       *ServiceBundle

	// Prompt builder (injected by executor, stateless, shared across executions).
	PromptBuilder PromptBuilder

	// ResumeState carries the pause snapshot for this execution when the
	// session was resumed. nil for a fresh run.
	ResumeState *models.PausedExecutionState

	// FailedServers maps serverID → error message for MCP servers that
	// failed to initialize. Used by the prompt builder to warn the LLM.
	// nil when all servers initialized successfully.
	FailedServers map[string]string
}

// ParallelMetadata returns the event metadata for a parallel branch,
// or nil when this execution is not a parallel child.
func (c *ExecutionContext) ParallelMetadata() *events.ParallelMetadata {
	if c.ParentExecutionID == "" {
		return nil
	}
	return &events.ParallelMetadata{
		ParentExecutionID: c.ParentExecutionID,
		ParallelIndex:     c.ParallelIndex,
		AgentName:         c.AgentName,
	}
}

// ServiceBundle groups the persistence services needed during execution.
type ServiceBundle struct {
	Interaction *services.InteractionService
	Stage       *services.StageService
}

// ResolvedAgentConfig is the fully-resolved configuration for an agent execution.
// All hierarchy levels (system defaults → agent → chain → stage → stage-agent)
// have been applied.
type ResolvedAgentConfig struct {
	AgentName         string
	IterationStrategy config.IterationStrategy
	LLMProvider       *config.LLMProviderConfig
	LLMProviderName   string // The resolved provider registry key (for DB records)

	MaxIterations    int
	IterationTimeout time.Duration // Per-iteration timeout (default: 120s)

	// ForceConclusion selects the max-iterations behavior: one final
	// tool-less call (true, the default) or pause for operator resume (false).
	ForceConclusion bool

	MCPServers         []string
	CustomInstructions string

	// NativeToolsOverride merges agent-level native tool settings with the
	// per-alert override (nil = use provider defaults).
	NativeToolsOverride *models.NativeToolsConfig
}

// ApplyAlertNativeTools overlays the alert-level native tools selection on
// top of any agent-level override. The alert wins per key; nil keys fall
// through to the agent override, then the provider default.
func (c *ResolvedAgentConfig) ApplyAlertNativeTools(alert *models.NativeToolsConfig) {
	if alert == nil {
		return
	}
	if c.NativeToolsOverride == nil {
		c.NativeToolsOverride = &models.NativeToolsConfig{}
	}
	if alert.GoogleSearch != nil {
		c.NativeToolsOverride.GoogleSearch = alert.GoogleSearch
	}
	if alert.CodeExecution != nil {
		c.NativeToolsOverride.CodeExecution = alert.CodeExecution
	}
	if alert.URLContext != nil {
		c.NativeToolsOverride.URLContext = alert.URLContext
	}
}

// PromptBuilder builds all prompt text for agent controllers.
// Implemented by prompt.PromptBuilder; defined as an interface here to
// avoid a circular import between pkg/agent and pkg/agent/prompt.
type PromptBuilder interface {
	BuildReActMessages(execCtx *ExecutionContext, prevStageContext string, tools []ToolDefinition) []ConversationMessage
	BuildNativeThinkingMessages(execCtx *ExecutionContext, prevStageContext string) []ConversationMessage
	BuildSynthesisMessages(execCtx *ExecutionContext, prevStageContext string) []ConversationMessage
	BuildForcedConclusionPrompt(iteration int, strategy config.IterationStrategy) string
	BuildMCPSummarizationSystemPrompt(serverName, toolName string, maxSummaryTokens int) string
	BuildMCPSummarizationUserPrompt(conversationContext, serverName, toolName, resultText string) string
	BuildExecutiveSummarySystemPrompt() string
	BuildExecutiveSummaryUserPrompt(finalAnalysis string) string
	MCPServerRegistry() *config.MCPServerRegistry
}

// EventPublisher publishes events for WebSocket delivery.
// Implemented by events.EventPublisher; defined as an interface here to
// enable testing with mocks. Each method accepts a typed payload struct.
type EventPublisher interface {
	PublishSessionStatus(ctx context.Context, sessionID string, payload events.SessionStatusPayload) error
	PublishStageStatus(ctx context.Context, sessionID string, payload events.StageStatusPayload) error
	PublishLLMInteraction(ctx context.Context, sessionID string, payload events.LLMInteractionPayload) error
	PublishMCPInteraction(ctx context.Context, sessionID string, payload events.MCPInteractionPayload) error
	PublishStreamChunk(ctx context.Context, sessionID string, payload events.StreamChunkPayload) error
}
