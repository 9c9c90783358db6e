package prompt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
)

// FormatToolDescriptions renders tool definitions as a numbered markdown
// list for injection into ReAct prompts, including parameter details
// pulled from each tool's JSON Schema.
func FormatToolDescriptions(tools []agent.ToolDefinition) string {
	if len(tools) == 0 {
		return "No tools available."
	}

	var sb strings.Builder
	for i, tool := range tools {
		sb.WriteString(fmt.Sprintf("%d. **%s**: %s\n", i+1, tool.Name, tool.Description))

		params := extractParameters(parseSchema(tool))
		if len(params) == 0 {
			sb.WriteString("    **Parameters**: None\n")
		} else {
			sb.WriteString("    **Parameters**:\n")
			for _, p := range params {
				sb.WriteString("    - ")
				sb.WriteString(p)
				sb.WriteString("\n")
			}
		}

		if i < len(tools)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// parseSchema decodes the tool's schema string; an empty or malformed
// schema yields nil, which formats as "Parameters: None".
func parseSchema(tool agent.ToolDefinition) map[string]any {
	if tool.ParametersSchema == "" {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(tool.ParametersSchema), &schema); err != nil {
		slog.Debug("failed to parse tool ParametersSchema",
			"tool", tool.Name, "error", err)
		return nil
	}
	return schema
}

// extractParameters turns a JSON Schema's properties into one formatted
// line per parameter, sorted by name for deterministic prompts.
func extractParameters(schema map[string]any) []string {
	if schema == nil {
		return nil
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	required := make(map[string]bool)
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []string
	for _, name := range keys {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		params = append(params, formatParameter(name, prop, required[name]))
	}

	return params
}

// formatParameter renders one parameter line:
// name (required|optional, type): description [default: X; choices: [...]]
func formatParameter(name string, prop map[string]any, isRequired bool) string {
	reqLabel := "optional"
	if isRequired {
		reqLabel = "required"
	}
	typeSuffix := ""
	if t, ok := prop["type"].(string); ok {
		typeSuffix = ", " + t
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(fmt.Sprintf(" (%s%s)", reqLabel, typeSuffix))

	if desc, ok := prop["description"].(string); ok && desc != "" {
		sb.WriteString(": " + desc)
	}

	var hints []string
	if def, ok := prop["default"]; ok {
		hints = append(hints, fmt.Sprintf("default: %v", def))
	}
	if enum, ok := prop["enum"].([]any); ok {
		vals := make([]string, 0, len(enum))
		for _, v := range enum {
			vals = append(vals, fmt.Sprintf("%q", v))
		}
		hints = append(hints, "choices: ["+strings.Join(vals, ", ")+"]")
	}
	if len(hints) > 0 {
		sb.WriteString(" [" + strings.Join(hints, "; ") + "]")
	}

	return sb.String()
}
