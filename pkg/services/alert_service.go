package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/masking"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// SubmitAlertInput contains the domain-level data needed to create a session.
// Transformed from the HTTP request + headers by the handler.
type SubmitAlertInput struct {
	AlertType string
	Runbook   string
	Data      string                     // Alert payload (opaque text)
	MCP       *models.MCPSelectionConfig // MCP selection config (optional)
	Author    string

	// Set for Slack-originated alerts (threading key)
	SlackMessageFingerprint string
}

// AlertService handles alert submission and session creation.
type AlertService struct {
	sessions      *SessionService
	chainRegistry *config.ChainRegistry
	defaults      *config.Defaults
	masking       *masking.Service
	maxQueueSize  int
	publisher     *events.EventPublisher
}

// NewAlertService creates a new AlertService. maskingSvc nil stores alert
// data as-is; maxQueueSize 0 disables admission control.
func NewAlertService(sessions *SessionService, chainRegistry *config.ChainRegistry, defaults *config.Defaults, maskingSvc *masking.Service, maxQueueSize int, publisher *events.EventPublisher) *AlertService {
	if sessions == nil {
		panic("NewAlertService: sessions must not be nil")
	}
	if chainRegistry == nil {
		panic("NewAlertService: chainRegistry must not be nil")
	}
	if defaults == nil {
		panic("NewAlertService: defaults must not be nil")
	}
	return &AlertService{
		sessions:      sessions,
		chainRegistry: chainRegistry,
		defaults:      defaults,
		masking:       maskingSvc,
		maxQueueSize:  maxQueueSize,
		publisher:     publisher,
	}
}

// SubmitAlert creates a new session from an alert submission.
// The session starts in "pending" status and is picked up by the worker pool.
// Duplicate submissions (same normalized payload + alert type) return
// ErrAlreadyExists; a full queue returns ErrQueueFull.
func (s *AlertService) SubmitAlert(ctx context.Context, input SubmitAlertInput) (*ent.AlertSession, error) {
	if input.Data == "" {
		return nil, NewValidationError("data", "alert data is required")
	}

	// Mask before anything touches the payload so secrets never reach
	// the database or the dedup hash
	alertData := input.Data
	if s.masking != nil {
		alertData = s.masking.MaskAlertData(alertData)
	}

	// Resolve alert type (use default if not provided)
	alertType := input.AlertType
	if alertType == "" {
		alertType = s.defaults.AlertType
	}

	chain, err := s.chainRegistry.GetByAlertType(alertType)
	if err != nil {
		known := s.chainRegistry.AlertTypes()
		return nil, NewValidationError("alert_type",
			fmt.Sprintf("no chain found for alert type '%s' (known types: %s)", alertType, strings.Join(known, ", ")))
	}

	// Queue admission: reject before creating anything. Only queued work
	// counts against the limit; in-flight sessions are bounded separately
	// by worker capacity.
	if s.maxQueueSize > 0 {
		pending, err := s.sessions.CountPendingSessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check queue depth: %w", err)
		}
		if pending >= s.maxQueueSize {
			return nil, &QueueFullError{QueueSize: pending, MaxQueueSize: s.maxQueueSize}
		}
	}

	chainDefinition, err := snapshotChain(chain)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot chain definition: %w", err)
	}

	session, err := s.sessions.CreateSession(ctx, models.CreateSessionRequest{
		SessionID:               uuid.New().String(),
		AlertID:                 ComputeAlertID(alertType, alertData),
		AlertData:               alertData,
		AgentType:               "chain:" + chain.ID,
		AlertType:               alertType,
		ChainID:                 chain.ID,
		ChainDefinition:         chainDefinition,
		Author:                  input.Author,
		RunbookURL:              input.Runbook,
		MCPSelection:            input.MCP,
		SlackMessageFingerprint: input.SlackMessageFingerprint,
	})
	if err != nil {
		return nil, err
	}

	// Fail-open: a publish failure never loses the session
	if s.publisher != nil {
		if err := s.publisher.PublishSessionStatus(ctx, session.ID, events.SessionStatusPayload{
			Type:      events.EventTypeSessionCreated,
			SessionID: session.ID,
			Status:    string(session.Status),
			AlertType: alertType,
			ChainID:   chain.ID,
		}); err != nil {
			slog.Warn("Failed to publish session.created", "session_id", session.ID, "error", err)
		}
	}

	return session, nil
}

// ComputeAlertID builds the deduplication key for an alert submission.
// JSON payloads are canonicalized (parsed and re-marshaled, which sorts
// object keys) so formatting differences do not defeat deduplication.
func ComputeAlertID(alertType, data string) string {
	normalized := strings.TrimSpace(data)
	var parsed any
	if err := json.Unmarshal([]byte(normalized), &parsed); err == nil {
		if canonical, err := json.Marshal(parsed); err == nil {
			normalized = string(canonical)
		}
	}

	sum := sha256.Sum256([]byte(alertType + "\n" + normalized))
	return hex.EncodeToString(sum[:])
}

// snapshotChain converts the chain config into the JSON map stored on the
// session, freezing the definition against later config reloads.
func snapshotChain(chain *config.ChainConfig) (map[string]any, error) {
	data, err := json.Marshal(chain)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
