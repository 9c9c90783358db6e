package context

import (
	"fmt"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

const investigationSeparator = "═══════════════════════════════════════════════════════════════════════════════"

// BranchInvestigation holds one parallel branch's recorded interactions for
// synthesis input. Populated by the executor from the branch's stage
// execution records.
type BranchInvestigation struct {
	AgentName   string
	ExecutionID string
	Items       []models.InteractionListItem
}

// FormatInvestigationContext formats the full reasoning of parallel branches
// into a readable context block for the synthesis prompt. Each branch keeps
// its thoughts, tool calls, and observations so the synthesis call sees the
// complete investigations, not just their conclusions.
func FormatInvestigationContext(branches []BranchInvestigation) string {
	var sb strings.Builder
	sb.WriteString(investigationSeparator + "\n")
	sb.WriteString("📋 INVESTIGATION HISTORY\n")
	sb.WriteString(investigationSeparator + "\n\n")

	for i, branch := range branches {
		sb.WriteString(fmt.Sprintf("# Investigation %d: %s\n\n", i+1, branch.AgentName))

		for _, item := range branch.Items {
			switch {
			case item.LLM != nil:
				llm := item.LLM
				if llm.ErrorMessage != nil {
					continue
				}
				if llm.ThinkingContent != nil && *llm.ThinkingContent != "" {
					sb.WriteString("**Internal Reasoning:**\n\n")
					sb.WriteString(*llm.ThinkingContent)
					sb.WriteString("\n\n")
				}
				if text := FinalAssistantText(llm.Conversation); text != "" {
					sb.WriteString("**Agent Response:**\n\n")
					sb.WriteString(text)
					sb.WriteString("\n\n")
				}
			case item.MCP != nil:
				mcp := item.MCP
				if string(mcp.CommunicationType) != "tool_call" {
					continue
				}
				name := mcp.ServerName
				if mcp.ToolName != nil {
					name = mcp.ServerName + "." + *mcp.ToolName
				}
				sb.WriteString("**Tool Call:** " + name)
				if len(mcp.ToolArguments) > 0 {
					sb.WriteString(" " + compactJSON(mcp.ToolArguments))
				}
				sb.WriteString("\n\n")
				if result := ToolResultText(mcp.ToolResult); result != "" {
					sb.WriteString("**Observation:**\n\n")
					sb.WriteString(result)
					sb.WriteString("\n\n")
				}
			}
		}
	}

	return sb.String()
}
