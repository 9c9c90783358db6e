package e2e

import (
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/test/e2e/testdata/configs"
)

// TestParallelAllSuccessPolicyFailsSession: under all_success, one failing
// branch sinks the stage, skips synthesis and fails the session.
func TestParallelAllSuccessPolicyFailsSession(t *testing.T) {
	llm := NewScriptedLLMClient()
	for i := 0; i < 3; i++ {
		llm.AddRouted("Agent1", LLMScriptEntry{Error: errors.New("context window exceeded")})
	}
	llm.AddRouted("Agent2", LLMScriptEntry{Text: "Application side looks clean."})

	app := NewTestApp(t,
		WithConfig(configs.ParallelConfig(config.SuccessPolicyAll)),
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"strict policy"}`)
	app.WaitForSessionStatus(t, sessionID, "failed")

	sess := app.GetSessionEntity(t, sessionID)
	assert.Contains(t, strOrEmpty(sess.ErrorMessage), "Stage 'parallel-stage' failed")
	assert.Nil(t, sess.FinalAnalysis)

	// The parent aggregated to failed; synthesis never ran.
	stages := app.QueryStages(t, sessionID)
	require.Len(t, stages, 1)
	assert.Equal(t, "failed", string(stages[0].Status))
	assert.Contains(t, strOrEmpty(stages[0].ErrorMessage), "one or more agents failed")

	branches := branchRecords(app.QueryExecutions(t, sessionID))
	require.Len(t, branches, 2)
	statuses := []string{string(branches[0].Status), string(branches[1].Status)}
	assert.ElementsMatch(t, []string{"failed", "completed"}, statuses)
}

func TestSecondStageFailure(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Text: "Stage one gathered everything it needed."})
	for i := 0; i < 3; i++ {
		llm.AddSequential(LLMScriptEntry{Error: errors.New("upstream 500")})
	}

	app := NewTestApp(t,
		WithConfig(configs.TwoStageFailFastConfig()),
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"late failure"}`)
	app.WaitForSessionStatus(t, sessionID, "failed")

	stages := app.QueryStages(t, sessionID)
	require.Len(t, stages, 2)
	assert.Equal(t, "completed", string(stages[0].Status))
	assert.Equal(t, "failed", string(stages[1].Status))

	sess := app.GetSessionEntity(t, sessionID)
	assert.Contains(t, strOrEmpty(sess.ErrorMessage), "Stage 'stage-2' failed")
	assert.Nil(t, sess.FinalAnalysis, "a failed chain writes no conclusion")
}

// TestLLMErrorRetriedWithinIterationBudget: a transient LLM failure burns an
// iteration, gets fed back into the conversation and the next attempt wins.
func TestLLMErrorRetriedWithinIterationBudget(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Error: errors.New("rate limited")})
	llm.AddSequential(LLMScriptEntry{Text: "Recovered: alert traced to a noisy cron job."})
	llm.AddSequential(LLMScriptEntry{Text: "Noisy cron job."})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"flaky provider"}`)
	app.WaitForSessionStatus(t, sessionID, "completed")

	llmRows := app.QueryLLMInteractions(t, sessionID)
	require.Len(t, llmRows, 3)
	assert.Contains(t, strOrEmpty(llmRows[0].ErrorMessage), "rate limited")
	assert.Nil(t, llmRows[1].ErrorMessage)

	sess := app.GetSessionEntity(t, sessionID)
	assert.Contains(t, strOrEmpty(sess.FinalAnalysis), "noisy cron job")
}

// TestToolFailureRecordedAndTolerated: a failing MCP tool is surfaced to the
// LLM as an error result, recorded in the audit trail, and the investigation
// continues.
func TestToolFailureRecordedAndTolerated(t *testing.T) {
	servers := map[string]map[string]mcpsdk.ToolHandler{
		"test-mcp": {
			"get_pods": ErrorToolHandler(errors.New("rbac: forbidden")),
		},
	}

	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Chunks: []agent.Chunk{
		&agent.ToolCallChunk{CallID: "call-1", Name: "test-mcp__get_pods", Arguments: `{}`},
		&agent.UsageChunk{TotalTokens: 10},
	}})
	llm.AddSequential(LLMScriptEntry{Text: "Pod listing is forbidden; concluding from the alert payload alone."})
	llm.AddSequential(LLMScriptEntry{Text: "Concluded without tool access."})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(servers))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"no rbac"}`)
	app.WaitForSessionStatus(t, sessionID, "completed")

	var failedCall bool
	for _, row := range app.QueryMCPInteractions(t, sessionID) {
		if string(row.CommunicationType) == "tool_call" {
			failedCall = true
			assert.False(t, row.Success)
			assert.Contains(t, strOrEmpty(row.ErrorMessage), "forbidden")
		}
	}
	assert.True(t, failedCall, "expected a recorded failing tool call")
}

// TestExecutiveSummaryFailureFailsOpen: losing the summary call must not fail
// an otherwise successful investigation.
func TestExecutiveSummaryFailureFailsOpen(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Text: "Full analysis: disk filled by un-rotated logs."})
	llm.AddSequential(LLMScriptEntry{Error: errors.New("summary model down")})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"disk full"}`)
	app.WaitForSessionStatus(t, sessionID, "completed")

	sess := app.GetSessionEntity(t, sessionID)
	assert.Contains(t, strOrEmpty(sess.FinalAnalysis), "un-rotated logs")
	assert.Nil(t, sess.FinalAnalysisSummary)
	assert.Contains(t, strOrEmpty(sess.ExecutiveSummaryError), "summary model down")
}
