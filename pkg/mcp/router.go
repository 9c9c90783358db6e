package mcp

import (
	"fmt"
	"regexp"
	"strings"
)

// toolNameRegex accepts "server.tool" where each part starts with a word
// character and continues with word characters or hyphens.
var toolNameRegex = regexp.MustCompile(`^([\w][\w-]*)\.([\w][\w-]*)$`)

// NormalizeToolName maps controller-specific tool names to the canonical
// "server.tool" form. Native thinking emits "server__tool" because Gemini
// function names cannot contain dots; ReAct already emits the dotted form.
func NormalizeToolName(name string) string {
	if strings.Contains(name, "__") && !strings.Contains(name, ".") {
		return strings.Replace(name, "__", ".", 1)
	}
	return name
}

// SplitToolName breaks a canonical "server.tool" name into its server and
// tool parts, rejecting anything that fails the strict format.
func SplitToolName(name string) (serverID, toolName string, err error) {
	matches := toolNameRegex.FindStringSubmatch(name)
	if matches == nil {
		return "", "", fmt.Errorf(
			"invalid tool name %q: must be in 'server.tool' format "+
				"(e.g., 'kubernetes-server.get_pods')", name)
	}
	return matches[1], matches[2], nil
}
