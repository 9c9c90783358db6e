package services

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/models"
)

// TerminalStatuses are the statuses a session can never leave.
var TerminalStatuses = []alertsession.Status{
	alertsession.StatusCompleted,
	alertsession.StatusFailed,
	alertsession.StatusCancelled,
	alertsession.StatusTimedOut,
}

// ActiveStatuses are the non-terminal statuses counted against queue admission.
var ActiveStatuses = []alertsession.Status{
	alertsession.StatusPending,
	alertsession.StatusInProgress,
	alertsession.StatusPaused,
	alertsession.StatusCanceling,
}

// IsTerminalStatus reports whether the given status is terminal.
func IsTerminalStatus(status alertsession.Status) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CancelOutcome describes what MarkCanceling did to a session.
// Finalized is true when the session reached cancelled directly (no worker
// owned it); false means the owning worker must observe the cancel request
// and finalize the session itself.
type CancelOutcome struct {
	Session   *ent.AlertSession
	Finalized bool
}

// SessionService manages alert session lifecycle
type SessionService struct {
	client *ent.Client
}

// NewSessionService creates a new SessionService
func NewSessionService(client *ent.Client) *SessionService {
	return &SessionService{client: client}
}

// CreateSession creates a new alert session in pending status.
// Stage executions are created later by the chain executor, from the
// chain definition snapshot stored here.
func (s *SessionService) CreateSession(httpCtx context.Context, req models.CreateSessionRequest) (*ent.AlertSession, error) {
	if req.SessionID == "" {
		return nil, NewValidationError("session_id", "required")
	}
	if req.AlertID == "" {
		return nil, NewValidationError("alert_id", "required")
	}
	if req.AlertData == "" {
		return nil, NewValidationError("alert_data", "required")
	}
	if req.AgentType == "" {
		return nil, NewValidationError("agent_type", "required")
	}
	if req.ChainID == "" {
		return nil, NewValidationError("chain_id", "required")
	}

	// Use background context with timeout for critical write
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	builder := s.client.AlertSession.Create().
		SetID(req.SessionID).
		SetAlertID(req.AlertID).
		SetAlertData(req.AlertData).
		SetAgentType(req.AgentType).
		SetChainID(req.ChainID).
		SetStatus(alertsession.StatusPending)

	if req.AlertType != "" {
		builder.SetAlertType(req.AlertType)
	}
	if req.ChainDefinition != nil {
		builder.SetChainDefinition(req.ChainDefinition)
	}
	if req.Author != "" {
		builder.SetAuthor(req.Author)
	}
	if req.RunbookURL != "" {
		builder.SetRunbookURL(req.RunbookURL)
	}
	if req.MCPSelection != nil {
		mcpSelectionJSON, err := req.MCPSelection.ToMap()
		if err != nil {
			return nil, err
		}
		builder.SetMcpSelection(mcpSelectionJSON)
	}
	if req.SlackMessageFingerprint != "" {
		builder.SetSlackMessageFingerprint(req.SlackMessageFingerprint)
	}

	session, err := builder.Save(ctx)
	if err != nil {
		if ent.IsConstraintError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*ent.AlertSession, error) {
	session, err := s.client.AlertSession.Query().
		Where(alertsession.IDEQ(sessionID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// GetSessionByAlertID retrieves a session by its deduplication key
func (s *SessionService) GetSessionByAlertID(ctx context.Context, alertID string) (*ent.AlertSession, error) {
	session, err := s.client.AlertSession.Query().
		Where(alertsession.AlertIDEQ(alertID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by alert_id: %w", err)
	}

	return session, nil
}

// ListSessions lists sessions with filtering and pagination
func (s *SessionService) ListSessions(ctx context.Context, filters models.SessionFilters) (*models.SessionListResponse, error) {
	query := s.client.AlertSession.Query()

	if filters.Status != "" {
		query = query.Where(alertsession.StatusEQ(alertsession.Status(filters.Status)))
	}
	if filters.AgentType != "" {
		query = query.Where(alertsession.AgentTypeEQ(filters.AgentType))
	}
	if filters.AlertType != "" {
		query = query.Where(alertsession.AlertTypeEQ(filters.AlertType))
	}
	if filters.ChainID != "" {
		query = query.Where(alertsession.ChainIDEQ(filters.ChainID))
	}
	if filters.Author != "" {
		query = query.Where(alertsession.AuthorEQ(filters.Author))
	}
	if filters.CreatedAfter != nil {
		query = query.Where(alertsession.CreatedAtGTE(*filters.CreatedAfter))
	}
	if filters.CreatedBefore != nil {
		query = query.Where(alertsession.CreatedAtLT(*filters.CreatedBefore))
	}
	if filters.Search != "" {
		query = query.Where(searchPredicate(filters.Search))
	}

	totalCount, err := query.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	sessions, err := query.
		Limit(limit).
		Offset(offset).
		Order(ent.Desc(alertsession.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return &models.SessionListResponse{
		Sessions:   sessions,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// searchPredicate matches sessions whose alert data or final analysis
// contain the query terms, using the GIN full-text indexes.
func searchPredicate(query string) func(*sql.Selector) {
	return func(sel *sql.Selector) {
		sel.Where(sql.P(func(b *sql.Builder) {
			b.WriteString("(to_tsvector('english', alert_data) @@ plainto_tsquery('english', ")
			b.Arg(query)
			b.WriteString(") OR to_tsvector('english', COALESCE(final_analysis, '')) @@ plainto_tsquery('english', ")
			b.Arg(query)
			b.WriteString("))")
		}))
	}
}

// UpdateSessionStatus updates a session's status. Terminal statuses stamp
// completed_at_us; a non-empty errorMessage is recorded alongside.
func (s *SessionService) UpdateSessionStatus(ctx context.Context, sessionID string, status alertsession.Status, errorMessage string) error {
	// Use background context with timeout for critical write
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := s.client.AlertSession.UpdateOneID(sessionID).
		SetStatus(status).
		SetLastInteractionAt(time.Now())

	if IsTerminalStatus(status) {
		update = update.SetCompletedAtUs(time.Now().UnixMicro())
	}
	if errorMessage != "" {
		update = update.SetErrorMessage(errorMessage)
	}

	if err := update.Exec(writeCtx); err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update session status: %w", err)
	}

	return nil
}

// ClaimNextPendingSession atomically claims the oldest pending session using
// FOR UPDATE SKIP LOCKED, so replicas never contend on the same row.
// Returns (nil, nil) when no pending session exists.
func (s *SessionService) ClaimNextPendingSession(ctx context.Context, podID string) (*ent.AlertSession, error) {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Order by created_at for FIFO processing
	session, err := tx.AlertSession.Query().
		Where(alertsession.StatusEQ(alertsession.StatusPending)).
		Order(ent.Asc(alertsession.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query pending session: %w", err)
	}

	// started_at_us survives pause/resume cycles: only the first claim sets it
	now := time.Now()
	update := session.Update().
		SetStatus(alertsession.StatusInProgress).
		SetPodID(podID).
		SetLastInteractionAt(now)
	if session.StartedAtUs == nil {
		update = update.SetStartedAtUs(now.UnixMicro())
	}

	session, err = update.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return session, nil
}

// MarkCanceling transitions a session toward cancellation according to its
// current status:
//   - pending: nobody owns it, so it goes canceling then cancelled here
//   - in_progress: conditional write to canceling; the owning worker finalizes
//   - paused: nothing is running, straight to cancelled (pause state dropped)
//   - canceling: already requested, reported as not finalized
//   - terminal: ErrNotCancellable
func (s *SessionService) MarkCanceling(ctx context.Context, sessionID string) (*CancelOutcome, error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Conditional writes race with workers claiming or finishing the session;
	// re-read and retry a couple of times before giving up.
	for attempt := 0; attempt < 3; attempt++ {
		session, err := s.GetSession(writeCtx, sessionID)
		if err != nil {
			return nil, err
		}

		switch session.Status {
		case alertsession.StatusPending:
			n, err := s.client.AlertSession.Update().
				Where(
					alertsession.IDEQ(sessionID),
					alertsession.StatusEQ(alertsession.StatusPending),
				).
				SetStatus(alertsession.StatusCanceling).
				Save(writeCtx)
			if err != nil {
				return nil, fmt.Errorf("failed to mark session canceling: %w", err)
			}
			if n == 0 {
				continue // claimed or transitioned under us
			}
			session, err = s.client.AlertSession.UpdateOneID(sessionID).
				SetStatus(alertsession.StatusCancelled).
				SetCompletedAtUs(time.Now().UnixMicro()).
				Save(writeCtx)
			if err != nil {
				return nil, fmt.Errorf("failed to finalize cancelled session: %w", err)
			}
			return &CancelOutcome{Session: session, Finalized: true}, nil

		case alertsession.StatusInProgress:
			n, err := s.client.AlertSession.Update().
				Where(
					alertsession.IDEQ(sessionID),
					alertsession.StatusEQ(alertsession.StatusInProgress),
				).
				SetStatus(alertsession.StatusCanceling).
				Save(writeCtx)
			if err != nil {
				return nil, fmt.Errorf("failed to mark session canceling: %w", err)
			}
			if n == 0 {
				continue
			}
			session, err = s.GetSession(writeCtx, sessionID)
			if err != nil {
				return nil, err
			}
			return &CancelOutcome{Session: session, Finalized: false}, nil

		case alertsession.StatusPaused:
			n, err := s.client.AlertSession.Update().
				Where(
					alertsession.IDEQ(sessionID),
					alertsession.StatusEQ(alertsession.StatusPaused),
				).
				SetStatus(alertsession.StatusCancelled).
				SetCompletedAtUs(time.Now().UnixMicro()).
				ClearPauseMetadata().
				Save(writeCtx)
			if err != nil {
				return nil, fmt.Errorf("failed to cancel paused session: %w", err)
			}
			if n == 0 {
				continue
			}
			session, err = s.GetSession(writeCtx, sessionID)
			if err != nil {
				return nil, err
			}
			return &CancelOutcome{Session: session, Finalized: true}, nil

		case alertsession.StatusCanceling:
			return &CancelOutcome{Session: session, Finalized: false}, nil

		default:
			return nil, ErrNotCancellable
		}
	}

	return nil, fmt.Errorf("session %s kept changing status during cancel", sessionID)
}

// ResumeSession moves a paused session back to pending so any worker can
// claim it. Pause metadata stays put until the claiming worker rehydrates.
func (s *SessionService) ResumeSession(ctx context.Context, sessionID string) (*ent.AlertSession, error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := s.client.AlertSession.Update().
		Where(
			alertsession.IDEQ(sessionID),
			alertsession.StatusEQ(alertsession.StatusPaused),
		).
		SetStatus(alertsession.StatusPending).
		Save(writeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	if n == 0 {
		// Distinguish a missing session from one that is simply not paused
		if _, err := s.GetSession(writeCtx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrNotResumable
	}

	return s.GetSession(writeCtx, sessionID)
}

// SetPauseMetadata stores the captured conversation state for a paused session
func (s *SessionService) SetPauseMetadata(ctx context.Context, sessionID string, meta models.PauseMetadata) error {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := meta.ToMap()
	if err != nil {
		return err
	}

	err = s.client.AlertSession.UpdateOneID(sessionID).
		SetPauseMetadata(raw).
		Exec(writeCtx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to set pause metadata: %w", err)
	}
	return nil
}

// ClearPauseMetadata removes pause state after rehydration or cancel
func (s *SessionService) ClearPauseMetadata(ctx context.Context, sessionID string) error {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.client.AlertSession.UpdateOneID(sessionID).
		ClearPauseMetadata().
		Exec(writeCtx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to clear pause metadata: %w", err)
	}
	return nil
}

// Heartbeat refreshes last_interaction_at for orphan detection
func (s *SessionService) Heartbeat(ctx context.Context, sessionID string) error {
	err := s.client.AlertSession.UpdateOneID(sessionID).
		SetLastInteractionAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update heartbeat: %w", err)
	}
	return nil
}

// UpdateSessionProgress records which stage the session is currently running
func (s *SessionService) UpdateSessionProgress(ctx context.Context, sessionID string, stageIndex int, stageID string) error {
	err := s.client.AlertSession.UpdateOneID(sessionID).
		SetCurrentStageIndex(stageIndex).
		SetCurrentStageID(stageID).
		SetLastInteractionAt(time.Now()).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update session progress: %w", err)
	}
	return nil
}

// FindOrphanedSessions finds in_progress or canceling sessions whose
// heartbeat went stale (pod crashed or became unresponsive).
func (s *SessionService) FindOrphanedSessions(ctx context.Context, olderThan time.Duration) ([]*ent.AlertSession, error) {
	threshold := time.Now().Add(-olderThan)

	sessions, err := s.client.AlertSession.Query().
		Where(
			alertsession.StatusIn(alertsession.StatusInProgress, alertsession.StatusCanceling),
			alertsession.LastInteractionAtNotNil(),
			alertsession.LastInteractionAtLT(threshold),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned sessions: %w", err)
	}

	return sessions, nil
}

// ListActiveSessionsByPod finds running sessions owned by a pod. Used at
// startup to fail over sessions a previous life of this pod left behind.
func (s *SessionService) ListActiveSessionsByPod(ctx context.Context, podID string) ([]*ent.AlertSession, error) {
	sessions, err := s.client.AlertSession.Query().
		Where(
			alertsession.StatusIn(alertsession.StatusInProgress, alertsession.StatusCanceling),
			alertsession.PodIDEQ(podID),
		).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for pod: %w", err)
	}

	return sessions, nil
}

// CountSessionsByStatus counts sessions in a single status.
func (s *SessionService) CountSessionsByStatus(ctx context.Context, status alertsession.Status) (int, error) {
	count, err := s.client.AlertSession.Query().
		Where(alertsession.StatusEQ(status)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s sessions: %w", status, err)
	}
	return count, nil
}

// CountPendingSessions counts queued sessions for queue admission.
func (s *SessionService) CountPendingSessions(ctx context.Context) (int, error) {
	return s.CountSessionsByStatus(ctx, alertsession.StatusPending)
}

// CountActiveSessions counts non-terminal sessions.
func (s *SessionService) CountActiveSessions(ctx context.Context) (int, error) {
	count, err := s.client.AlertSession.Query().
		Where(alertsession.StatusIn(ActiveStatuses...)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

// DeleteSessionsOlderThan hard-deletes terminal sessions whose completion is
// older than the retention window. Child rows go with them via FK cascade.
func (s *SessionService) DeleteSessionsOlderThan(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention_days must be positive, got %d", retentionDays)
	}

	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).UnixMicro()

	deleteCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.client.AlertSession.Delete().
		Where(alertsession.CompletedAtUsLT(cutoff)).
		Exec(deleteCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sessions: %w", err)
	}

	return count, nil
}
