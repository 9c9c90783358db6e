package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/llminteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/mcpinteraction"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/stageexecution"
)

// ────────────────────────────────────────────────────────────
// HTTP client helpers
// ────────────────────────────────────────────────────────────

func (app *TestApp) postJSON(t *testing.T, path string, body interface{}, expectedStatus int) map[string]interface{} {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, app.BaseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, resp.StatusCode, "POST %s: unexpected status, body: %s", path, raw)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &result))
	return result
}

func (app *TestApp) getJSON(t *testing.T, path string, expectedStatus int) map[string]interface{} {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, resp.StatusCode, "GET %s: unexpected status, body: %s", path, raw)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &result))
	return result
}

// ────────────────────────────────────────────────────────────
// API operations
// ────────────────────────────────────────────────────────────

// SubmitAlert posts an alert and returns the parsed 200 response
// (session_id, status "queued").
func (app *TestApp) SubmitAlert(t *testing.T, alertType, data string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/alerts", map[string]interface{}{
		"alert_type": alertType,
		"data":       data,
	}, http.StatusOK)
}

// SubmitAlertWithRunbook posts an alert with inline runbook content.
func (app *TestApp) SubmitAlertWithRunbook(t *testing.T, alertType, data, runbook string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/alerts", map[string]interface{}{
		"alert_type": alertType,
		"data":       data,
		"runbook":    runbook,
	}, http.StatusOK)
}

// SubmitAlertExpect posts a raw alert body and asserts the given status,
// returning the parsed response. Used for rejection paths (queue full,
// oversized payload).
func (app *TestApp) SubmitAlertExpect(t *testing.T, body map[string]interface{}, expectedStatus int) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/alerts", body, expectedStatus)
}

// SubmitAlertID posts an alert and returns just the session ID.
func (app *TestApp) SubmitAlertID(t *testing.T, alertType, data string) string {
	t.Helper()
	resp := app.SubmitAlert(t, alertType, data)
	id, _ := resp["session_id"].(string)
	require.NotEmpty(t, id, "submit response missing session_id")
	return id
}

// GetSession retrieves the session detail document:
// {"session": {...}, "stage_executions": [...], "interactions": [...]}.
func (app *TestApp) GetSession(t *testing.T, sessionID string) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/history/sessions/"+sessionID, http.StatusOK)
}

// GetSessionRecord returns just the session object from the detail document.
func (app *TestApp) GetSessionRecord(t *testing.T, sessionID string) map[string]interface{} {
	t.Helper()
	detail := app.GetSession(t, sessionID)
	record, ok := detail["session"].(map[string]interface{})
	require.True(t, ok, "session detail missing session object")
	return record
}

// GetSessionList calls GET /api/v1/history/sessions with an optional raw
// query string ("status=completed&limit=5").
func (app *TestApp) GetSessionList(t *testing.T, query string) map[string]interface{} {
	t.Helper()
	path := "/api/v1/history/sessions"
	if query != "" {
		path += "?" + query
	}
	return app.getJSON(t, path, http.StatusOK)
}

// CancelSession posts a cancel request for the session.
func (app *TestApp) CancelSession(t *testing.T, sessionID string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/history/sessions/"+sessionID+"/cancel", nil, http.StatusOK)
}

// CancelSessionExpect posts a cancel request asserting a specific status code.
func (app *TestApp) CancelSessionExpect(t *testing.T, sessionID string, expectedStatus int) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/history/sessions/"+sessionID+"/cancel", nil, expectedStatus)
}

// ResumeSession posts a resume request for a paused session.
func (app *TestApp) ResumeSession(t *testing.T, sessionID string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/history/sessions/"+sessionID+"/resume", nil, http.StatusOK)
}

// ResumeSessionExpect posts a resume request asserting a specific status code.
func (app *TestApp) ResumeSessionExpect(t *testing.T, sessionID string, expectedStatus int) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/history/sessions/"+sessionID+"/resume", nil, expectedStatus)
}

// CancelStage posts a cancel request for one branch of a parallel stage.
func (app *TestApp) CancelStage(t *testing.T, sessionID, executionID string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/history/sessions/"+sessionID+"/stages/"+executionID+"/cancel", nil, http.StatusOK)
}

// GetHealth calls GET /health.
func (app *TestApp) GetHealth(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/health", http.StatusOK)
}

// GetAlertTypes calls GET /api/v1/alert-types.
func (app *TestApp) GetAlertTypes(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/alert-types", http.StatusOK)
}

// GetMCPServers calls GET /api/v1/system/mcp-servers.
func (app *TestApp) GetMCPServers(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/system/mcp-servers", http.StatusOK)
}

// GetDefaultTools calls GET /api/v1/system/default-tools.
func (app *TestApp) GetDefaultTools(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/system/default-tools", http.StatusOK)
}

// GetSystemWarnings calls GET /api/v1/system/warnings.
func (app *TestApp) GetSystemWarnings(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/system/warnings", http.StatusOK)
}

// ────────────────────────────────────────────────────────────
// Database polling helpers
// ────────────────────────────────────────────────────────────

// waitTimeout is the default deadline for DB-backed condition waits. Sized
// for a loaded CI runner; normal completion is well under a second.
const waitTimeout = 20 * time.Second

// awaitDB polls the condition every 25ms until it holds or the deadline hits.
func awaitDB(t *testing.T, msg string, condition func() bool) {
	t.Helper()
	deadline := time.After(waitTimeout)
	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msg)
		case <-tick.C:
			if condition() {
				return
			}
		}
	}
}

// WaitForSessionStatus blocks until the session reaches the given status.
func (app *TestApp) WaitForSessionStatus(t *testing.T, sessionID, status string) {
	t.Helper()
	ctx := context.Background()
	awaitDB(t, fmt.Sprintf("session %s to reach %q", sessionID, status), func() bool {
		s, err := app.Ent.AlertSession.Get(ctx, sessionID)
		return err == nil && string(s.Status) == status
	})
}

// WaitForStageStatus blocks until the named stage's root execution record
// reaches the given status.
func (app *TestApp) WaitForStageStatus(t *testing.T, sessionID, stageName, status string) {
	t.Helper()
	awaitDB(t, fmt.Sprintf("stage %q of %s to reach %q", stageName, sessionID, status), func() bool {
		for _, rec := range app.QueryStages(t, sessionID) {
			if rec.StageName == stageName && string(rec.Status) == status {
				return true
			}
		}
		return false
	})
}

// WaitForNSessionsInStatus blocks until exactly n sessions are in the status.
func (app *TestApp) WaitForNSessionsInStatus(t *testing.T, n int, status string) {
	t.Helper()
	ctx := context.Background()
	awaitDB(t, fmt.Sprintf("%d sessions in %q", n, status), func() bool {
		count, err := app.Ent.AlertSession.Query().
			Where(alertsession.StatusEQ(alertsession.Status(status))).
			Count(ctx)
		return err == nil && count == n
	})
}

// ────────────────────────────────────────────────────────────
// Database query helpers
// ────────────────────────────────────────────────────────────

// QueryStages returns the stage-level execution records for a session in
// chain order: the single record per sequential stage plus the parent
// record (parallel_index 0) per parallel stage. Branches are excluded.
func (app *TestApp) QueryStages(t *testing.T, sessionID string) []*ent.StageExecution {
	t.Helper()
	records, err := app.Ent.StageExecution.Query().
		Where(
			stageexecution.SessionID(sessionID),
			stageexecution.Or(
				stageexecution.ParallelIndexIsNil(),
				stageexecution.ParallelIndexEQ(0),
			),
		).
		Order(ent.Asc(stageexecution.FieldStageIndex)).
		All(context.Background())
	require.NoError(t, err)
	return records
}

// QueryExecutions returns the agent-run records for a session: single
// records and parallel branches, excluding parallel parents.
func (app *TestApp) QueryExecutions(t *testing.T, sessionID string) []*ent.StageExecution {
	t.Helper()
	records, err := app.Ent.StageExecution.Query().
		Where(
			stageexecution.SessionID(sessionID),
			stageexecution.Or(
				stageexecution.ParallelIndexIsNil(),
				stageexecution.ParallelIndexGT(0),
			),
		).
		Order(
			ent.Asc(stageexecution.FieldStageIndex),
			ent.Asc(stageexecution.FieldParallelIndex),
		).
		All(context.Background())
	require.NoError(t, err)
	return records
}

// QueryLLMInteractions returns all LLM interactions for a session in
// timestamp order.
func (app *TestApp) QueryLLMInteractions(t *testing.T, sessionID string) []*ent.LLMInteraction {
	t.Helper()
	records, err := app.Ent.LLMInteraction.Query().
		Where(llminteraction.SessionID(sessionID)).
		Order(ent.Asc(llminteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	return records
}

// QueryMCPInteractions returns all MCP interactions for a session in
// timestamp order.
func (app *TestApp) QueryMCPInteractions(t *testing.T, sessionID string) []*ent.MCPInteraction {
	t.Helper()
	records, err := app.Ent.MCPInteraction.Query().
		Where(mcpinteraction.SessionID(sessionID)).
		Order(ent.Asc(mcpinteraction.FieldTimestampUs)).
		All(context.Background())
	require.NoError(t, err)
	return records
}

// QuerySessionsByStatus returns sessions in the given status, oldest first.
func (app *TestApp) QuerySessionsByStatus(t *testing.T, status string) []*ent.AlertSession {
	t.Helper()
	records, err := app.Ent.AlertSession.Query().
		Where(alertsession.StatusEQ(alertsession.Status(status))).
		Order(ent.Asc(alertsession.FieldCreatedAt)).
		All(context.Background())
	require.NoError(t, err)
	return records
}

// strOrEmpty dereferences optional text columns for assertions.
func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// GetSessionEntity fetches the raw session row.
func (app *TestApp) GetSessionEntity(t *testing.T, sessionID string) *ent.AlertSession {
	t.Helper()
	s, err := app.Ent.AlertSession.Get(context.Background(), sessionID)
	require.NoError(t, err)
	return s
}
