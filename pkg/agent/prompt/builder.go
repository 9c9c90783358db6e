package prompt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// PromptBuilder produces every piece of prompt text the controllers
// send: system messages, user messages, instruction hierarchies and the
// strategy-specific formats. It carries no mutable state, so a single
// instance can serve concurrent agents.
type PromptBuilder struct {
	mcpRegistry *config.MCPServerRegistry
}

// NewPromptBuilder creates a PromptBuilder over the MCP server configs.
// A nil registry is a programming error and panics.
func NewPromptBuilder(mcpRegistry *config.MCPServerRegistry) *PromptBuilder {
	if mcpRegistry == nil {
		panic("prompt.NewPromptBuilder: mcpRegistry must not be nil")
	}
	return &PromptBuilder{
		mcpRegistry: mcpRegistry,
	}
}

// MCPServerRegistry exposes the registry so summarization can look up
// per-server SummarizationConfig.
func (b *PromptBuilder) MCPServerRegistry() *config.MCPServerRegistry {
	return b.mcpRegistry
}

const taskFocus = "Focus on investigation and providing recommendations for human operators to execute."

// messagePair is the standard two-message opening of a conversation.
func messagePair(system, user string) []agent.ConversationMessage {
	return []agent.ConversationMessage{
		{Role: agent.RoleSystem, Content: system},
		{Role: agent.RoleUser, Content: user},
	}
}

// BuildReActMessages opens a ReAct investigation conversation.
func (b *PromptBuilder) BuildReActMessages(
	execCtx *agent.ExecutionContext,
	prevStageContext string,
	tools []agent.ToolDefinition,
) []agent.ConversationMessage {
	system := b.ComposeInstructions(execCtx) + "\n\n" + reactFormatInstructions + "\n\n" + taskFocus
	return messagePair(system, b.buildInvestigationUserMessage(execCtx, prevStageContext, tools))
}

// BuildNativeThinkingMessages opens a native-thinking investigation.
// Tools travel as native function declarations, so no message describes
// them in text.
func (b *PromptBuilder) BuildNativeThinkingMessages(
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) []agent.ConversationMessage {
	system := b.ComposeInstructions(execCtx) + "\n\n" + taskFocus
	return messagePair(system, b.buildInvestigationUserMessage(execCtx, prevStageContext, nil))
}

// BuildSynthesisMessages opens a synthesis conversation. Synthesis is a
// tool-less single shot over parallel results, so it gets
// synthesisGeneralInstructions (no tool references) rather than the
// standard general instructions, and no taskFocus: the synthesis agent's
// CustomInstructions already say what to focus on.
func (b *PromptBuilder) BuildSynthesisMessages(
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) []agent.ConversationMessage {
	system := b.composeSynthesisInstructions(execCtx)
	return messagePair(system, b.buildSynthesisUserMessage(execCtx, prevStageContext))
}

// BuildForcedConclusionPrompt asks the model to conclude now that the
// iteration limit is reached, in the format its strategy expects.
func (b *PromptBuilder) BuildForcedConclusionPrompt(iteration int, strategy config.IterationStrategy) string {
	var formatInstructions string
	switch strategy {
	case config.IterationStrategyReact:
		formatInstructions = reactForcedConclusionFormat
	case config.IterationStrategyNativeThinking:
		formatInstructions = nativeThinkingForcedConclusionFormat
	default:
		slog.Warn("unknown iteration strategy for forced conclusion, using native-thinking format",
			"strategy", strategy)
		formatInstructions = nativeThinkingForcedConclusionFormat
	}
	return fmt.Sprintf(forcedConclusionTemplate, iteration, formatInstructions)
}

// BuildMCPSummarizationSystemPrompt is the system prompt for condensing
// an oversized MCP tool result.
func (b *PromptBuilder) BuildMCPSummarizationSystemPrompt(serverName, toolName string, maxSummaryTokens int) string {
	return fmt.Sprintf(mcpSummarizationSystemTemplate, serverName, toolName, maxSummaryTokens)
}

// BuildMCPSummarizationUserPrompt is the matching user prompt carrying
// the conversation context and the raw result.
func (b *PromptBuilder) BuildMCPSummarizationUserPrompt(conversationContext, serverName, toolName, resultText string) string {
	return fmt.Sprintf(mcpSummarizationUserTemplate, conversationContext, serverName, toolName, resultText)
}

// BuildExecutiveSummarySystemPrompt is the system prompt for executive
// summary generation.
func (b *PromptBuilder) BuildExecutiveSummarySystemPrompt() string {
	return executiveSummarySystemPrompt
}

// BuildExecutiveSummaryUserPrompt wraps the final analysis for executive
// summary generation.
func (b *PromptBuilder) BuildExecutiveSummaryUserPrompt(finalAnalysis string) string {
	return fmt.Sprintf(executiveSummaryUserTemplate, finalAnalysis)
}

func (b *PromptBuilder) buildInvestigationUserMessage(
	execCtx *agent.ExecutionContext,
	prevStageContext string,
	tools []agent.ToolDefinition,
) string {
	var sb strings.Builder

	// Only ReAct passes tools here; native thinking declares them natively.
	if len(tools) > 0 {
		sb.WriteString("Answer the following question using the available tools.\n\n")
		sb.WriteString("Available tools:\n\n")
		sb.WriteString(FormatToolDescriptions(tools))
		sb.WriteString("\n\n")
	}

	sb.WriteString(FormatAlertSection(execCtx.AlertType, execCtx.AlertData))
	sb.WriteString("\n")
	sb.WriteString(FormatRunbookSection(execCtx.RunbookContent))
	sb.WriteString("\n")
	sb.WriteString(FormatChainContext(prevStageContext))
	sb.WriteString("\n")
	sb.WriteString(analysisTask)

	return sb.String()
}

func (b *PromptBuilder) buildSynthesisUserMessage(
	execCtx *agent.ExecutionContext,
	prevStageContext string,
) string {
	var sb strings.Builder

	sb.WriteString("Synthesize the investigation results and provide recommendations.\n\n")

	// The alert type is left out: the synthesizer combines parallel
	// results rather than re-analyzing alert metadata.
	sb.WriteString(FormatAlertSection("", execCtx.AlertData))
	sb.WriteString("\n")
	sb.WriteString(FormatRunbookSection(execCtx.RunbookContent))
	sb.WriteString("\n")

	// Previous stage results are the main content here.
	sb.WriteString(FormatChainContext(prevStageContext))
	sb.WriteString("\n")
	sb.WriteString(synthesisTask)

	return sb.String()
}
