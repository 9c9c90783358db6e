package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// listSessionsHandler handles GET /api/v1/history/sessions.
func (s *Server) listSessionsHandler(c *echo.Context) error {
	filters := models.SessionFilters{
		Limit: 25,
	}

	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filters.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	if v := c.QueryParam("status"); v != "" {
		// Validate each comma-separated status against the enum.
		for _, st := range strings.Split(v, ",") {
			if err := alertsession.StatusValidator(alertsession.Status(st)); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid status: "+st)
			}
		}
		filters.Status = v
	}
	filters.AgentType = c.QueryParam("agent_type")
	filters.AlertType = c.QueryParam("alert_type")
	filters.ChainID = c.QueryParam("chain_id")
	filters.Author = c.QueryParam("author")
	if v := c.QueryParam("search"); v != "" {
		if len(v) < 3 {
			return echo.NewHTTPError(http.StatusBadRequest, "search query must be at least 3 characters")
		}
		filters.Search = v
	}

	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date: must be RFC3339")
		}
		filters.CreatedAfter = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date: must be RFC3339")
		}
		filters.CreatedBefore = &t
	}

	result, err := s.sessionService.ListSessions(c.Request().Context(), filters)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// getSessionHandler handles GET /api/v1/history/sessions/:id. The detail
// view is the session row plus its stage executions and the merged
// LLM/MCP interaction timeline.
func (s *Server) getSessionHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session id is required")
	}
	ctx := c.Request().Context()

	sess, err := s.sessionService.GetSession(ctx, sessionID)
	if err != nil {
		return mapServiceError(err)
	}
	stages, err := s.stageService.GetStageExecutions(ctx, sessionID)
	if err != nil {
		return mapServiceError(err)
	}
	interactions, err := s.interactionService.ListForSession(ctx, sessionID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &models.SessionDetailResponse{
		Session:         sess,
		StageExecutions: stages,
		Interactions:    interactions,
	})
}

// cancelSessionHandler handles POST /api/v1/history/sessions/:id/cancel.
func (s *Server) cancelSessionHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session id is required")
	}
	return s.cancelSession(c, sessionID)
}

// cancelStageHandler handles
// POST /api/v1/history/sessions/:id/stages/:execution_id/cancel.
// Stage cancellation cancels the owning session run; the execution id is
// validated against the session so a stray id cannot cancel someone
// else's session.
func (s *Server) cancelStageHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	executionID := c.Param("execution_id")
	if sessionID == "" || executionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session id and execution id are required")
	}

	exec, err := s.stageService.GetExecution(c.Request().Context(), executionID)
	if err != nil {
		return mapServiceError(err)
	}
	if exec.SessionID != sessionID {
		return echo.NewHTTPError(http.StatusBadRequest, "stage execution does not belong to this session")
	}

	return s.cancelSession(c, sessionID)
}

// cancelSession runs the shared cancel flow:
//  1. conditional DB transition (pending/paused finalize directly,
//     in_progress flips to canceling for the owning worker)
//  2. local fast-path cancel when this replica owns the run
//  3. cancel_requested broadcast for the other replicas
func (s *Server) cancelSession(c *echo.Context, sessionID string) error {
	outcome, err := s.sessionService.MarkCanceling(c.Request().Context(), sessionID)
	if err != nil {
		return mapServiceError(err)
	}

	if s.workerPool != nil {
		s.workerPool.CancelSession(sessionID)
	}

	if s.publisher != nil {
		// Publishes run on a background context: the cancel is already
		// committed, an aborted HTTP request must not lose the fan-out.
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if outcome.Finalized {
			// Nobody owned the session; announce the terminal status here.
			if err := s.publisher.PublishSessionStatus(pubCtx, sessionID, events.SessionStatusPayload{
				Type:      events.EventTypeSessionCancelled,
				SessionID: sessionID,
				Status:    string(outcome.Session.Status),
				AlertType: outcome.Session.AlertType,
				ChainID:   outcome.Session.ChainID,
			}); err != nil {
				slog.Warn("Failed to publish session.cancelled", "session_id", sessionID, "error", err)
			}
		} else if err := s.publisher.PublishCancelRequested(pubCtx, sessionID); err != nil {
			slog.Warn("Failed to publish cancel request", "session_id", sessionID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, &CancelResponse{
		SessionID: sessionID,
		Status:    string(outcome.Session.Status),
		Message:   "Session cancellation requested",
	})
}

// resumeSessionHandler handles POST /api/v1/history/sessions/:id/resume.
// The session goes back to pending; any replica's worker claims it and
// rehydrates the paused conversation from pause_metadata.
func (s *Server) resumeSessionHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session id is required")
	}

	sess, err := s.sessionService.ResumeSession(c.Request().Context(), sessionID)
	if err != nil {
		return mapServiceError(err)
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishSessionStatus(pubCtx, sessionID, events.SessionStatusPayload{
			Type:      events.EventTypeSessionResumed,
			SessionID: sessionID,
			Status:    string(sess.Status),
			AlertType: sess.AlertType,
			ChainID:   sess.ChainID,
		}); err != nil {
			slog.Warn("Failed to publish session.resumed", "session_id", sessionID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, &ResumeResponse{
		SessionID: sessionID,
		Status:    string(sess.Status),
	})
}
