package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionTimeout runs a session against a short execution deadline with
// an LLM call that never returns. The run context expiring must land the
// session on timed_out, not failed or cancelled.
func TestSessionTimeout(t *testing.T) {
	blocked := make(chan struct{}, 1)
	llm := NewScriptedLLMClient()
	llm.AddSequential(LLMScriptEntry{BlockUntilCancelled: true, OnBlock: blocked})

	app := NewTestApp(t,
		WithLLMClient(llm),
		WithMCPServers(defaultMCPServers()),
		WithSessionTimeout(1500*time.Millisecond))

	sessionID := app.SubmitAlertID(t, "test-alert", `{"alert":"slow model"}`)
	<-blocked

	app.WaitForSessionStatus(t, sessionID, "timed_out")

	sess := app.GetSessionEntity(t, sessionID)
	assert.Contains(t, strOrEmpty(sess.ErrorMessage), "timed out during stage 'investigation'")
	assert.NotNil(t, sess.CompletedAtUs)

	stages := app.QueryStages(t, sessionID)
	require.Len(t, stages, 1)
	assert.Equal(t, "timed_out", string(stages[0].Status))

	// The blocked call was the only LLM activity; no conclusion was written.
	assert.Equal(t, 1, llm.CallCount())
	assert.Nil(t, sess.FinalAnalysis)
}
