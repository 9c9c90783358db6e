package models

import (
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
)

// CreateSessionRequest contains fields for creating a new alert session
type CreateSessionRequest struct {
	SessionID       string              `json:"session_id"`
	AlertID         string              `json:"alert_id"`
	AlertData       string              `json:"alert_data"`
	AgentType       string              `json:"agent_type"`
	AlertType       string              `json:"alert_type,omitempty"`
	ChainID         string              `json:"chain_id"`
	ChainDefinition map[string]any      `json:"chain_definition,omitempty"`
	Author          string              `json:"author,omitempty"`
	RunbookURL      string              `json:"runbook_url,omitempty"`
	MCPSelection    *MCPSelectionConfig `json:"mcp_selection,omitempty"`

	// Set for Slack-originated alerts; notifications thread onto the
	// originating message.
	SlackMessageFingerprint string `json:"slack_message_fingerprint,omitempty"`
}

// SessionFilters contains filtering options for listing sessions
type SessionFilters struct {
	Status        string     `json:"status,omitempty"`
	AgentType     string     `json:"agent_type,omitempty"`
	AlertType     string     `json:"alert_type,omitempty"`
	ChainID       string     `json:"chain_id,omitempty"`
	Author        string     `json:"author,omitempty"`
	Search        string     `json:"search,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}

// SessionListResponse contains a paginated session list
type SessionListResponse struct {
	Sessions   []*ent.AlertSession `json:"sessions"`
	TotalCount int                 `json:"total_count"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// SessionDetailResponse is the full session view: the session row, its
// stage executions in chain order, and the merged interaction timeline.
type SessionDetailResponse struct {
	Session         *ent.AlertSession     `json:"session"`
	StageExecutions []*ent.StageExecution `json:"stage_executions"`
	Interactions    []InteractionListItem `json:"interactions"`
}
