package controller

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
)

// ParsedReActResponse is the structured form of an LLM response in ReAct format.
type ParsedReActResponse struct {
	// Reasoning text preceding any Action or Final Answer.
	Thought string

	// Set when the model asked for a tool call.
	HasAction   bool
	Action      string // "server.tool"
	ActionInput string // raw argument text

	// Set when the model concluded.
	IsFinalAnswer bool
	FinalAnswer   string

	IsUnknownTool bool   // tool name failed validation
	IsMalformed   bool   // response matched no usable shape
	ErrorMessage  string // feedback surfaced back to the model

	// Which headers the parser saw, for format-error feedback.
	FoundSections map[string]bool
}

var (
	// A header counts as mid-line only after a sentence boundary, optionally
	// followed by backticks or markup.
	midlineActionPattern      = regexp.MustCompile(`[.!?][\x60\s*]*Action:`)
	midlineFinalAnswerPattern = regexp.MustCompile(`[.!?][\x60\s*]*Final Answer:`)
	midlineActionInputPattern = regexp.MustCompile(`[.!?][\x60\s*]*Action Input:`)

	toolNamePattern = regexp.MustCompile(`^([\w\-]+)\.([\w\-]+)$`)

	recoverActionColonPattern = regexp.MustCompile(`(?i)\bAction:`)
	recoverActionWordPattern  = regexp.MustCompile(`(?i)\bAction(?:\s|$)`)
	recoverActionInputPattern = regexp.MustCompile(`(?i)Action Input:`)
)

// ParseReActResponse turns raw LLM text into a ParsedReActResponse. The
// parser is deliberately forgiving: models drift from the format constantly,
// so several detection strategies run before a response is called malformed.
func ParseReActResponse(text string) *ParsedReActResponse {
	if text == "" {
		return &ParsedReActResponse{
			IsMalformed: true,
			FoundSections: map[string]bool{
				"thought":      false,
				"action":       false,
				"action_input": false,
				"final_answer": false,
			},
		}
	}

	sections := extractSections(text)

	foundSections := map[string]bool{
		"thought":      sections["thought"] != nil,
		"action":       sections["action"] != nil,
		"action_input": sections["action_input"] != nil,
		"final_answer": sections["final_answer"] != nil,
	}

	action := deref(sections["action"])
	actionInput := sections["action_input"]

	// Action wins over Final Answer when both appear. Final Answer is meant
	// to be terminal, so trailing tool calls after it indicate the model
	// was not actually done.
	if action != "" && actionInput != nil {
		action = strings.TrimSpace(action)
		if action == "" {
			return &ParsedReActResponse{
				IsMalformed:   true,
				Thought:       deref(sections["thought"]),
				FoundSections: foundSections,
			}
		}

		// The dot check is looser than toolNamePattern on purpose. Names
		// like ".tool" or "a.b.c" pass here and fail at the controller's
		// tool-set lookup, which produces a better error than a generic
		// "must be server.tool format" for near-misses.
		if !strings.Contains(action, ".") {
			return &ParsedReActResponse{
				IsUnknownTool: true,
				HasAction:     true,
				Thought:       deref(sections["thought"]),
				Action:        action,
				ActionInput:   deref(actionInput),
				ErrorMessage: fmt.Sprintf(
					"Unknown tool '%s'. Tools must be in 'server.tool' format. "+
						"Please check the list of available tools provided in the prompt.", action),
				FoundSections: foundSections,
			}
		}

		return &ParsedReActResponse{
			HasAction:     true,
			Thought:       deref(sections["thought"]),
			Action:        action,
			ActionInput:   deref(actionInput),
			FoundSections: foundSections,
		}
	}

	if sections["final_answer"] != nil && deref(sections["final_answer"]) != "" {
		return &ParsedReActResponse{
			IsFinalAnswer: true,
			Thought:       deref(sections["thought"]),
			FinalAnswer:   deref(sections["final_answer"]),
			FoundSections: foundSections,
		}
	}

	return &ParsedReActResponse{
		IsMalformed:   true,
		Thought:       deref(sections["thought"]),
		FoundSections: foundSections,
	}
}

// splitAtBoundary splits text at the first sentence-boundary match of
// pattern, returning the trimmed text before the boundary (boundary
// punctuation included) and after it.
func splitAtBoundary(pattern *regexp.Regexp, text string) (before, after string, ok bool) {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return "", "", false
	}
	return strings.TrimSpace(text[:loc[0]+1]), strings.TrimSpace(text[loc[0]+1:]), true
}

// extractSections walks the response line by line, tracking which section is
// open and accumulating its content.
func extractSections(text string) map[string]*string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	parsed := map[string]*string{
		"thought":      nil,
		"action":       nil,
		"action_input": nil,
		"final_answer": nil,
	}

	var currentSection string
	var contentLines []string
	foundSections := map[string]bool{}

	for _, rawLine := range lines {
		line := strings.TrimSpace(rawLine)

		if line == "" && currentSection == "" {
			continue
		}

		// Hallucinated observations end the usable part of the response.
		if shouldStopParsing(line) {
			finalizeSection(parsed, currentSection, contentLines)
			break
		}

		switch {
		case isSectionHeader(line, "final_answer", foundSections):
			// Final Answer embedded mid-line inside a thought keeps the
			// text before the boundary as thought content.
			if currentSection == "thought" && hasMidlineFinalAnswer(line) {
				if before, _, ok := splitAtBoundary(midlineFinalAnswerPattern, line); ok && before != "" {
					contentLines = append(contentLines, before)
				}
			}

			finalizeSection(parsed, currentSection, contentLines)
			currentSection = "final_answer"
			foundSections["final_answer"] = true
			contentLines = []string{extractSectionContent(line, "Final Answer:")}

		case isSectionHeader(line, "thought", foundSections):
			finalizeSection(parsed, currentSection, contentLines)
			currentSection = "thought"
			foundSections["thought"] = true

			if !strings.HasPrefix(line, "Thought:") {
				// Bare "Thought" header; content follows on later lines.
				contentLines = []string{}
				continue
			}

			thoughtContent := extractSectionContent(line, "Thought:")

			if hasMidlineFinalAnswer(thoughtContent) {
				if before, remaining, ok := splitAtBoundary(midlineFinalAnswerPattern, thoughtContent); ok {
					setSection(parsed, "thought", before)
					if idx := strings.Index(remaining, "Final Answer:"); idx != -1 {
						fa := strings.TrimSpace(remaining[idx+len("Final Answer:"):])
						setSection(parsed, "final_answer", fa)
						foundSections["final_answer"] = true
					}
					currentSection = "final_answer"
					contentLines = []string{deref(parsed["final_answer"])}
				} else {
					contentLines = []string{thoughtContent}
				}
			} else if hasMidlineAction(thoughtContent) {
				if before, remaining, ok := splitAtBoundary(midlineActionPattern, thoughtContent); ok {
					setSection(parsed, "thought", before)
					if idx := strings.Index(remaining, "Action:"); idx != -1 {
						actionVal := strings.TrimSpace(remaining[idx+len("Action:"):])
						setSection(parsed, "action", actionVal)
						foundSections["action"] = true
					}
					currentSection = ""
					contentLines = nil
				} else {
					contentLines = []string{thoughtContent}
				}
			} else {
				contentLines = []string{thoughtContent}
			}

		case isSectionHeader(line, "action", foundSections):
			finalizeSection(parsed, currentSection, contentLines)
			currentSection = "action"
			foundSections["action"] = true
			// A fresh Action reopens the slot for its Action Input.
			delete(foundSections, "action_input")
			contentLines = []string{extractSectionContent(line, "Action:")}

		case isSectionHeader(line, "action_input", foundSections):
			finalizeSection(parsed, currentSection, contentLines)
			currentSection = "action_input"
			foundSections["action_input"] = true
			contentLines = []string{extractSectionContent(line, "Action Input:")}

		default:
			if currentSection == "" {
				continue
			}
			if currentSection == "thought" && hasMidlineFinalAnswer(line) {
				if before, remaining, ok := splitAtBoundary(midlineFinalAnswerPattern, line); ok {
					if before != "" {
						contentLines = append(contentLines, before)
					}
					finalizeSection(parsed, currentSection, contentLines)
					if idx := strings.Index(remaining, "Final Answer:"); idx != -1 {
						fa := strings.TrimSpace(remaining[idx+len("Final Answer:"):])
						setSection(parsed, "final_answer", fa)
						foundSections["final_answer"] = true
						currentSection = "final_answer"
						contentLines = []string{deref(parsed["final_answer"])}
					}
				} else {
					contentLines = append(contentLines, line)
				}
			} else {
				contentLines = append(contentLines, line)
			}
		}
	}

	finalizeSection(parsed, currentSection, contentLines)

	// Action Input without Action: look backwards through the raw text for
	// a plausible tool name the state machine missed.
	if parsed["action_input"] != nil && parsed["action"] == nil {
		if recovered := recoverMissingAction(text); recovered != "" {
			setSection(parsed, "action", recovered)
		}
	}

	return parsed
}

// isSectionHeader decides whether a line opens the given section. Detection
// runs in tiers: exact prefix, then mid-line forms.
func isSectionHeader(line string, sectionType string, foundSections map[string]bool) bool {
	if line == "" {
		return false
	}

	// First Final Answer wins; later ones are content.
	if sectionType == "final_answer" && foundSections["final_answer"] {
		return false
	}

	switch sectionType {
	case "thought":
		if strings.HasPrefix(line, "Thought:") || line == "Thought" {
			return true
		}
	case "action":
		if strings.HasPrefix(line, "Action:") {
			return true
		}
	case "action_input":
		if strings.HasPrefix(line, "Action Input:") {
			return true
		}
	case "final_answer":
		if strings.HasPrefix(line, "Final Answer:") {
			return true
		}
	}

	if sectionType == "final_answer" {
		// Lines opening another section never double as mid-line Final
		// Answers. "Thought " without a colon is included to catch lines
		// like "Thought something. Final Answer: ...".
		if strings.HasPrefix(line, "Thought:") || line == "Thought" ||
			strings.HasPrefix(line, "Thought ") ||
			strings.HasPrefix(line, "Action:") || strings.HasPrefix(line, "Action Input:") {
			return false
		}
		return strings.Contains(line, "Final Answer:") && midlineFinalAnswerPattern.MatchString(line)
	}

	if sectionType == "action" && strings.Contains(line, "Action:") &&
		midlineActionPattern.MatchString(line) {
		return true
	}

	// Mid-line Action Input only counts once an Action exists.
	if sectionType == "action_input" && strings.Contains(line, "Action Input:") &&
		foundSections["action"] && midlineActionInputPattern.MatchString(line) {
		return true
	}

	return false
}

// shouldStopParsing flags lines where the model started inventing tool
// output, which invalidates everything after them.
func shouldStopParsing(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "[Based on") {
		return true
	}
	if strings.HasPrefix(line, "Observation:") {
		// Continuation prompts echoed back by the model are not
		// hallucinated observations.
		if strings.Contains(line, "Please specify") || strings.Contains(line, "what Action you want to take") {
			return false
		}
		if strings.Contains(line, "Error in reasoning") {
			return false
		}
		return true
	}
	return false
}

func hasMidlineAction(text string) bool {
	return text != "" && strings.Contains(text, "Action:") && midlineActionPattern.MatchString(text)
}

func hasMidlineFinalAnswer(text string) bool {
	return text != "" && strings.Contains(text, "Final Answer:") && midlineFinalAnswerPattern.MatchString(text)
}

func extractSectionContent(line, prefix string) string {
	idx := strings.Index(line, prefix)
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(line[idx+len(prefix):])
}

// finalizeSection stores the accumulated lines for a section. Empty content
// never clobbers an earlier non-empty value.
func finalizeSection(parsed map[string]*string, section string, contentLines []string) {
	if section == "" || contentLines == nil {
		return
	}
	content := strings.TrimSpace(strings.Join(contentLines, "\n"))
	if content != "" || parsed[section] == nil {
		parsed[section] = &content
	}
}

func setSection(parsed map[string]*string, section, value string) {
	parsed[section] = &value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// recoverMissingAction searches backwards from "Action Input:" for an
// Action header the state machine missed. The case-insensitive regex keeps
// byte offsets in the original string; strings.ToLower can shift offsets
// when case-folding multi-byte runes.
func recoverMissingAction(response string) string {
	loc := recoverActionInputPattern.FindStringIndex(response)
	if loc == nil {
		return ""
	}
	textBefore := response[:loc[0]]

	// "Action:" is more specific, so it is tried first.
	for _, pattern := range []*regexp.Regexp{recoverActionColonPattern, recoverActionWordPattern} {
		matches := pattern.FindAllStringIndex(textBefore, -1)
		if len(matches) == 0 {
			continue
		}
		last := matches[len(matches)-1]
		if validated := validateToolName(strings.TrimSpace(textBefore[last[1]:])); validated != "" {
			return validated
		}
	}

	return ""
}

// validateToolName accepts the candidate only when its first line matches
// the strict server.tool format.
func validateToolName(text string) string {
	if text == "" {
		return ""
	}
	firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if toolNamePattern.MatchString(firstLine) {
		return firstLine
	}
	return ""
}

// GetFormatErrorFeedback builds the observation sent back when a response
// was malformed, naming what was present and what was missing so the model
// can self-correct.
func GetFormatErrorFeedback(parsed *ParsedReActResponse) string {
	found := parsed.FoundSections

	hasThought := found["thought"]
	hasAction := found["action"]
	hasActionInput := found["action_input"]
	hasFinalAnswer := found["final_answer"]

	var specificError string

	switch {
	case hasAction && !hasActionInput:
		specificError = "FORMAT ERROR: Your response has \"Action:\" but is missing \"Action Input:\".\n" +
			"Every \"Action:\" MUST be followed by \"Action Input:\" (even if empty for no-parameter tools)."
	case hasActionInput && !hasAction:
		specificError = "FORMAT ERROR: Your response has \"Action Input:\" but is missing \"Action:\".\n" +
			"\"Action Input:\" must be preceded by \"Action:\" specifying which tool to call."
	case hasThought && !hasAction && !hasFinalAnswer:
		specificError = "FORMAT ERROR: Your response only contains \"Thought:\".\n" +
			"After reasoning, you MUST either:\n" +
			"- Call a tool with \"Action:\" + \"Action Input:\", OR\n" +
			"- Conclude with \"Final Answer:\""
	case !hasThought && !hasAction && !hasFinalAnswer:
		specificError = "FORMAT ERROR: Could not detect any ReAct sections in your response.\n" +
			"Your response must use the exact format: \"Thought:\", \"Action:\", \"Action Input:\", or \"Final Answer:\""
	default:
		// Fixed key order keeps the message deterministic.
		keys := []string{"thought", "action", "action_input", "final_answer"}
		var foundList, missingList []string
		for _, k := range keys {
			if found[k] {
				foundList = append(foundList, k)
			} else {
				missingList = append(missingList, k)
			}
		}
		specificError = fmt.Sprintf("FORMAT ERROR: Incomplete ReAct format.\nFound: %s\nMissing: %s",
			strings.Join(foundList, ", "), strings.Join(missingList, ", "))
	}

	return specificError + "\n" + GetFormatCorrectionReminder()
}

// GetFormatCorrectionReminder is the general format reminder appended to
// every format-error observation.
func GetFormatCorrectionReminder() string {
	return `IMPORTANT: Please follow the exact ReAct format:

1. Use colons: "Thought:", "Action:", "Action Input:", "Final Answer:"
2. Start each section on a NEW LINE (never continue on same line as previous text)
3. Stop after Action Input - the system provides Observations
4. Your response MUST include EITHER tool calling (Action + Action Input) OR Final Answer

Required structure for investigation:
Thought: [your reasoning]
Action: [tool name]
Action Input: [parameters]

For tools with no parameters (keep Action Input empty):
Thought: [your reasoning]
Action: [tool name]
Action Input:

Required structure for conclusion:
Thought: [final reasoning]
Final Answer: [complete analysis]`
}

// FormatObservation renders a tool result as a ReAct observation.
func FormatObservation(result *agent.ToolResult) string {
	if result == nil {
		return "Observation: Error - no tool result available"
	}
	if result.IsError {
		return fmt.Sprintf("Observation: Error executing %s: %s", result.Name, result.Content)
	}
	return fmt.Sprintf("Observation: %s", result.Content)
}

// FormatToolErrorObservation renders a tool execution failure as an observation.
func FormatToolErrorObservation(err error) string {
	if err == nil {
		return "Observation: Error - Tool execution failed: unknown error"
	}
	return fmt.Sprintf("Observation: Error - Tool execution failed: %s", err.Error())
}

// FormatUnknownToolError renders an unknown-tool error, listing the tools
// that do exist so the model can pick one.
func FormatUnknownToolError(toolName string, errorMsg string, availableTools []agent.ToolDefinition) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Observation: Error - %s", errorMsg))
	if len(availableTools) > 0 {
		sb.WriteString("\n\nAvailable tools:\n")
		for _, tool := range availableTools {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", tool.Name, tool.Description))
		}
	} else {
		sb.WriteString("\n\nNo tools are currently available.")
	}
	return sb.String()
}

// FormatErrorObservation renders an LLM call failure as an observation.
func FormatErrorObservation(err error) string {
	if err == nil {
		return "Observation: Error from previous attempt: unknown error. Please try again."
	}
	return fmt.Sprintf("Observation: Error from previous attempt: %s. Please try again.", err.Error())
}

// ExtractForcedConclusionAnswer pulls the usable answer out of a forced
// conclusion response: the Final Answer when the model used the format, the
// raw thought otherwise.
func ExtractForcedConclusionAnswer(parsed *ParsedReActResponse) string {
	if parsed.IsFinalAnswer && parsed.FinalAnswer != "" {
		return parsed.FinalAnswer
	}
	if parsed.Thought != "" {
		return parsed.Thought
	}
	return ""
}
