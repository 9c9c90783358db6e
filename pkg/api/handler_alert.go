package api

import (
	"errors"
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// submitAlertHandler handles POST /api/v1/alerts.
// Creates a session in "pending" status and returns immediately with
// session_id; a worker on any replica picks it up from there.
func (s *Server) submitAlertHandler(c *echo.Context) error {
	var req SubmitAlertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Data == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "data field is required")
	}
	if len(req.Data) > agent.MaxAlertDataSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("alert data exceeds maximum size of %d bytes", agent.MaxAlertDataSize))
	}

	// Validate MCP selection override servers before accepting the alert;
	// an unknown server would otherwise surface mid-run as a tool failure.
	if req.MCP != nil && s.cfg.MCPServerRegistry != nil {
		for _, sel := range req.MCP.Servers {
			if !s.cfg.MCPServerRegistry.Has(sel.Name) {
				return echo.NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("MCP server %q not found in configuration", sel.Name))
			}
		}
	}

	input := services.SubmitAlertInput{
		AlertType:               req.AlertType,
		Runbook:                 req.Runbook,
		Data:                    req.Data,
		MCP:                     req.MCP,
		Author:                  extractAuthor(c),
		SlackMessageFingerprint: req.SlackMessageFingerprint,
	}

	sess, err := s.alertService.SubmitAlert(c.Request().Context(), input)
	if err != nil {
		var full *services.QueueFullError
		if errors.As(err, &full) {
			return c.JSON(http.StatusTooManyRequests, &QueueFullResponse{
				Error:        "Queue full",
				QueueSize:    full.QueueSize,
				MaxQueueSize: full.MaxQueueSize,
			})
		}
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &AlertResponse{
		SessionID: sess.ID,
		Status:    "queued",
		Message:   "Alert submitted for processing",
	})
}
