package context

import (
	"fmt"
	"strings"
)

// StageResult carries a completed stage's output for downstream prompt
// building. The executor fills it from the in-memory execution result, so no
// DB read is involved.
type StageResult struct {
	StageName     string
	FinalAnalysis string
}

// BuildStageContext renders earlier stages into the prevStageContext string
// handed to the next stage's agent, one headed block per stage. The prompt
// builder wraps the result with FormatChainContext.
func BuildStageContext(stages []StageResult) string {
	if len(stages) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<!-- CHAIN_CONTEXT_START -->\n\n")

	for i, stage := range stages {
		sb.WriteString(fmt.Sprintf("### Stage %d: %s\n\n", i+1, stage.StageName))
		if stage.FinalAnalysis != "" {
			sb.WriteString(stage.FinalAnalysis)
		} else {
			sb.WriteString("(No final analysis produced)")
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("<!-- CHAIN_CONTEXT_END -->")
	return sb.String()
}
