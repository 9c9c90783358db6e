package api

import "github.com/rsoaresd/tarsy-bot-sub007/pkg/models"

// SubmitAlertRequest is the HTTP request body for POST /api/v1/alerts.
// Data is the opaque alert payload; MCP optionally narrows the tool
// surface for this one session.
type SubmitAlertRequest struct {
	AlertType string                     `json:"alert_type"`
	Runbook   string                     `json:"runbook,omitempty"`
	Data      string                     `json:"data"`
	MCP       *models.MCPSelectionConfig `json:"mcp,omitempty"`

	// Set by the Slack integration so worker notifications can thread onto
	// the originating message.
	SlackMessageFingerprint string `json:"slack_message_fingerprint,omitempty"`
}
