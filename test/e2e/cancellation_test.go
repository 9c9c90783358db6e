package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelInFlightSession(t *testing.T) {
	blocked := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{BlockUntilCancelled: true, OnBlock: blocked})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"stuck"}`)
	<-blocked
	app.WaitForSessionStatus(t, sessionID, "in_progress")

	resp := app.CancelSession(t, sessionID)
	assert.Equal(t, "canceling", resp["status"], "an owned session transitions through canceling")

	app.WaitForSessionStatus(t, sessionID, "cancelled")

	sess := app.GetSessionEntity(t, sessionID)
	assert.Equal(t, "Session cancelled by user", strOrEmpty(sess.ErrorMessage))
	assert.NotNil(t, sess.CompletedAtUs)

	stages := app.QueryStages(t, sessionID)
	require.Len(t, stages, 1)
	assert.Equal(t, "cancelled", string(stages[0].Status))
}

func TestCancelPendingSession(t *testing.T) {
	blocked := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{BlockUntilCancelled: true, OnBlock: blocked})

	// One worker and a concurrency cap of one keep the second session queued.
	app := NewTestApp(t,
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()),
		WithWorkerCount(1),
		WithMaxConcurrentSessions(1))

	blocker := app.SubmitAlertID(t, "test-alert", `{"alert":"hog"}`)
	<-blocked
	app.WaitForSessionStatus(t, blocker, "in_progress")

	queued := app.SubmitAlertID(t, "test-alert", `{"alert":"waiting"}`)
	app.WaitForSessionStatus(t, queued, "pending")

	// Nobody owns a pending session, so the cancel finalizes directly.
	resp := app.CancelSession(t, queued)
	assert.Equal(t, "cancelled", resp["status"])

	sess := app.GetSessionEntity(t, queued)
	assert.Equal(t, "cancelled", string(sess.Status))
	assert.NotNil(t, sess.CompletedAtUs)
	assert.Empty(t, app.QueryStages(t, queued), "never-claimed sessions have no stage records")

	// Release the worker.
	app.CancelSession(t, blocker)
	app.WaitForSessionStatus(t, blocker, "cancelled")
}

func TestCancelRejectsTerminalAndUnknownSessions(t *testing.T) {
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{Text: "Done already."})
	llm.AddSequential(LLMScriptEntry{Text: "Done."})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"quick"}`)
	app.WaitForSessionStatus(t, sessionID, "completed")

	app.CancelSessionExpect(t, sessionID, http.StatusBadRequest)
	app.CancelSessionExpect(t, "no-such-session", http.StatusNotFound)
}

func TestCancelViaStageExecution(t *testing.T) {
	blocked := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{BlockUntilCancelled: true, OnBlock: blocked})

	app := NewTestApp(t, WithLLMClient(llm), WithMCPServers(defaultMCPServers()))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"stage cancel"}`)
	<-blocked
	app.WaitForSessionStatus(t, sessionID, "in_progress")

	executions := app.QueryExecutions(t, sessionID)
	require.NotEmpty(t, executions)

	// An execution id from a different session must not cancel this one.
	app.postJSON(t, "/api/v1/history/sessions/other-session/stages/"+executions[0].ID+"/cancel",
		nil, http.StatusBadRequest)

	// Cancelling through the stage cancels the owning session run.
	resp := app.CancelStage(t, sessionID, executions[0].ID)
	assert.Equal(t, "canceling", resp["status"])

	app.WaitForSessionStatus(t, sessionID, "cancelled")
	assert.Equal(t, "cancelled", string(app.GetSessionEntity(t, sessionID).Status))
}
