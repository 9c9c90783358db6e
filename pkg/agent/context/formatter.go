// Package context provides formatters for passing information between stages.
package context

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// ContextFormatter transforms the recorded interactions of one stage into
// text for consumption by the next stage.
type ContextFormatter interface {
	// Format converts a merged interaction timeline into a context string.
	Format(items []models.InteractionListItem) string
}

// SimpleContextFormatter produces a human-readable summary with
// type-aware labels and HTML comment boundaries.
type SimpleContextFormatter struct{}

// NewSimpleContextFormatter creates a new simple formatter.
func NewSimpleContextFormatter() *SimpleContextFormatter {
	return &SimpleContextFormatter{}
}

// Format converts interaction records into a formatted context string.
// Failed interactions and tool listings are skipped; they carry no
// investigation content.
func (f *SimpleContextFormatter) Format(items []models.InteractionListItem) string {
	if len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<!-- STAGE_CONTEXT_START -->\n")

	for _, item := range items {
		switch {
		case item.LLM != nil:
			llm := item.LLM
			if llm.ErrorMessage != nil {
				continue
			}
			if llm.ThinkingContent != nil && *llm.ThinkingContent != "" {
				sb.WriteString("### LLM Thinking\n\n")
				sb.WriteString(*llm.ThinkingContent)
				sb.WriteString("\n\n")
			}
			if text := FinalAssistantText(llm.Conversation); text != "" {
				sb.WriteString(fmt.Sprintf("### %s\n\n", llmLabel(string(llm.InteractionType))))
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
			sb.WriteString(fmt.Sprintf("### Tool Call: %s\n\n", name))
			if len(mcp.ToolArguments) > 0 {
				sb.WriteString("Arguments: " + compactJSON(mcp.ToolArguments) + "\n\n")
			}
			if result := ToolResultText(mcp.ToolResult); result != "" {
				sb.WriteString(result)
				sb.WriteString("\n\n")
			}
		}
	}

	sb.WriteString("<!-- STAGE_CONTEXT_END -->")
	return sb.String()
}

func llmLabel(interactionType string) string {
	switch interactionType {
	case "summarization":
		return "Tool Result Summary"
	case "final_analysis_summary":
		return "Executive Summary"
	default:
		return "LLM Response"
	}
}

// FinalAssistantText returns the content of the last assistant message in a
// recorded conversation, empty when there is none.
func FinalAssistantText(conversation []map[string]interface{}) string {
	for i := len(conversation) - 1; i >= 0; i-- {
		role, _ := conversation[i]["role"].(string)
		if role != "assistant" {
			continue
		}
		content, _ := conversation[i]["content"].(string)
		return content
	}
	return ""
}

// ToolResultText extracts the text under the structural "result" key,
// falling back to compact JSON for structured results.
func ToolResultText(result map[string]interface{}) string {
	if len(result) == 0 {
		return ""
	}
	if text, ok := result["result"].(string); ok {
		return text
	}
	return compactJSON(result)
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
