package e2e

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueueFullRejection fills the intake queue and verifies the API turns
// further submissions away with 429 instead of creating sessions.
func TestQueueFullRejection(t *testing.T) {
	blocked := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{BlockUntilCancelled: true, OnBlock: blocked})
	llm.AddSequential(LLMScriptEntry{Text: "Queued session processed."})
	llm.AddSequential(LLMScriptEntry{Text: "Processed."})

	app := NewTestApp(t,
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()),
		WithWorkerCount(1),
		WithMaxConcurrentSessions(1),
		WithMaxQueueSize(1))

	// Occupy the only worker; the session leaves the pending count.
	blocker := app.SubmitAlertID(t, "test-alert", `{"alert":"hog"}`)
	<-blocked
	app.WaitForSessionStatus(t, blocker, "in_progress")

	// One pending slot fills the queue.
	queued := app.SubmitAlertID(t, "test-alert", `{"alert":"second"}`)
	app.WaitForSessionStatus(t, queued, "pending")

	resp := app.SubmitAlertExpect(t, map[string]interface{}{
		"alert_type": "test-alert",
		"data":       `{"alert":"third"}`,
	}, http.StatusTooManyRequests)
	assert.Equal(t, float64(1), resp["queue_size"])
	assert.Equal(t, float64(1), resp["max_queue_size"])

	// The rejected alert never became a session.
	require.Len(t, app.QuerySessionsByStatus(t, "pending"), 1)

	// Draining the blocker frees the slot and the queued session completes.
	app.CancelSession(t, blocker)
	app.WaitForSessionStatus(t, blocker, "cancelled")
	app.WaitForSessionStatus(t, queued, "completed")
}

// TestConcurrencyCapGatesClaims verifies the global in-flight cap: with two
// workers but max_concurrent_sessions=1, a second session stays pending until
// the first finishes.
func TestConcurrencyCapGatesClaims(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{WaitCh: release, OnBlock: started, Text: "First session conclusion."})
	llm.AddSequential(LLMScriptEntry{Text: "First summary."})
	llm.AddSequential(LLMScriptEntry{Text: "Second session conclusion."})
	llm.AddSequential(LLMScriptEntry{Text: "Second summary."})

	app := NewTestApp(t,
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()),
		WithWorkerCount(2),
		WithMaxConcurrentSessions(1))

	first := app.SubmitAlertID(t, "test-alert", `{"alert":"one"}`)
	<-started
	second := app.SubmitAlertID(t, "test-alert", `{"alert":"two"}`)

	// Give the idle worker several poll cycles to (incorrectly) claim.
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, "pending", string(app.GetSessionEntity(t, second).Status))
	assert.Equal(t, "in_progress", string(app.GetSessionEntity(t, first).Status))

	close(release)
	app.WaitForSessionStatus(t, first, "completed")
	app.WaitForSessionStatus(t, second, "completed")
}
