package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/session"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/slack"
)

const (
	// Claim backoff after DB errors: doubles from min to max, resets on
	// the next successful poll.
	claimBackoffMin = 250 * time.Millisecond
	claimBackoffMax = 2 * time.Second

	// terminalWriteTimeout bounds the background status write after an
	// execution returns.
	terminalWriteTimeout = 30 * time.Second

	// eventCleanupDelay gives WebSocket clients a catch-up window before
	// a finished session's event rows are removed.
	eventCleanupDelay = 60 * time.Second
)

// Worker is one claim loop goroutine. It polls for pending sessions,
// executes them, and writes the session-level outcome.
type Worker struct {
	id        int
	podID     string
	cfg       *config.QueueConfig
	pool      *WorkerPool
	executor  SessionExecutor
	sessions  *services.SessionService
	events    *services.EventService
	publisher agent.EventPublisher
	tracker   *session.CancellationTracker
	slack     *slack.Service
	logger    *slog.Logger

	mu                sync.Mutex
	status            WorkerStatus
	currentSessionID  string
	sessionsProcessed int64
	lastActivity      time.Time
}

func newWorker(id int, pool *WorkerPool) *Worker {
	return &Worker{
		id:           id,
		podID:        pool.podID,
		cfg:          pool.cfg,
		pool:         pool,
		executor:     pool.executor,
		sessions:     pool.sessions,
		events:       pool.eventService,
		publisher:    pool.publisher,
		tracker:      pool.tracker,
		slack:        pool.slack,
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
		logger:       slog.With("component", "worker", "worker_id", id, "pod_id", pool.podID),
	}
}

// run is the claim loop. It exits when ctx is cancelled; an in-flight
// session keeps its own context and finishes independently.
func (w *Worker) run(ctx context.Context) {
	defer w.setStatus(WorkerStatusStopped)

	backoff := claimBackoffMin
	for {
		if ctx.Err() != nil {
			return
		}
		w.setStatus(WorkerStatusPolling)

		claimed, err := w.claim(ctx)
		if err != nil {
			if errors.Is(err, ErrNoSessionsAvailable) || errors.Is(err, ErrAtCapacity) {
				w.setStatus(WorkerStatusIdle)
				backoff = claimBackoffMin
				if !w.sleep(ctx, w.jitteredPollInterval()) {
					return
				}
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("Session claim failed", "error", err, "backoff", backoff)
			if !w.sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, claimBackoffMax)
			continue
		}

		backoff = claimBackoffMin
		w.process(claimed)
	}
}

// claim checks global capacity, then pops the oldest pending session.
func (w *Worker) claim(ctx context.Context) (*ent.AlertSession, error) {
	inProgress, err := w.sessions.CountSessionsByStatus(ctx, alertsession.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("capacity check failed: %w", err)
	}
	if w.cfg.MaxConcurrentSessions > 0 && inProgress >= w.cfg.MaxConcurrentSessions {
		return nil, ErrAtCapacity
	}

	claimed, err := w.sessions.ClaimNextPendingSession(ctx, w.podID)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return nil, ErrNoSessionsAvailable
	}
	return claimed, nil
}

// process executes one claimed session through to its status write.
func (w *Worker) process(claimed *ent.AlertSession) {
	sessionID := claimed.ID
	logger := w.logger.With("session_id", sessionID)

	// The session runs on its own context so pool shutdown stops the claim
	// loop without killing in-flight work. The deadline enforces the
	// session timeout; CancelSession cancels it on operator request.
	runCtx, cancel := context.WithTimeout(context.Background(), w.cfg.SessionTimeout)
	defer cancel()
	w.pool.registerSession(sessionID, cancel)
	defer w.pool.unregisterSession(sessionID)

	// A cancel broadcast that landed between the claim commit and the
	// register above found no cancel func and was dropped. The request is
	// still on the row, so re-check it now that cancellation can land.
	w.applyMissedCancel(runCtx, sessionID)

	w.setBusy(sessionID)
	defer w.setDone()

	resumed := len(claimed.PauseMetadata) > 0
	logger.Info("Processing session",
		"alert_type", claimed.AlertType,
		"chain_id", claimed.ChainID,
		"resumed", resumed)

	w.publishSessionStatus(runCtx, claimed, events.EventTypeSessionStarted,
		string(alertsession.StatusInProgress), "")
	threadTS := w.notifySlackStart(runCtx, claimed)

	stopHeartbeat := w.startHeartbeat(runCtx, sessionID)
	result := w.executor.Execute(runCtx, claimed)
	stopHeartbeat()

	if result == nil {
		logger.Error("Executor returned nil result")
		result = &ExecutionResult{
			Status:       alertsession.StatusFailed,
			ErrorMessage: "executor returned no result",
		}
	}
	w.finalize(claimed, result, threadTS)
}

// applyMissedCancel cancels the freshly registered session when a cancel
// request arrived before the session was registered with the pool.
func (w *Worker) applyMissedCancel(ctx context.Context, sessionID string) {
	session, err := w.sessions.GetSession(ctx, sessionID)
	if err != nil {
		w.logger.Warn("Post-claim cancel check failed", "session_id", sessionID, "error", err)
		return
	}
	if session.Status == alertsession.StatusCanceling {
		w.pool.CancelSession(sessionID)
	}
}

// startHeartbeat refreshes last_interaction_at on an interval so the orphan
// sweeper can tell a live session from one owned by a dead pod. The returned
// func stops the ticker and waits for the goroutine to exit.
func (w *Worker) startHeartbeat(ctx context.Context, sessionID string) func() {
	hbCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(w.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				if err := w.sessions.Heartbeat(hbCtx, sessionID); err != nil {
					w.logger.Warn("Heartbeat failed", "session_id", sessionID, "error", err)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// finalize writes the session-level outcome. Always runs on a background
// context: the run context is usually already cancelled or expired when the
// outcome is cancelled/timed_out.
func (w *Worker) finalize(claimed *ent.AlertSession, result *ExecutionResult, threadTS string) {
	sessionID := claimed.ID
	logger := w.logger.With("session_id", sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()
	defer w.tracker.Clear(sessionID)

	if result.Paused() {
		// Non-terminal: pause_metadata is already on the session row and
		// completed_at_us stays unset. The session waits for a resume.
		if err := w.sessions.UpdateSessionStatus(ctx, sessionID, alertsession.StatusPaused, ""); err != nil {
			logger.Error("Failed to mark session paused", "error", err)
		}
		w.publishSessionStatus(ctx, claimed, events.EventTypeSessionPaused,
			string(alertsession.StatusPaused), "")
		logger.Info("Session paused at max iterations")
		return
	}

	status := result.Status
	if !services.IsTerminalStatus(status) {
		logger.Error("Executor returned non-terminal status", "status", status)
		status = alertsession.StatusFailed
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("executor returned non-terminal status %q", result.Status)
		}
	}

	if err := w.sessions.UpdateSessionStatus(ctx, sessionID, status, result.ErrorMessage); err != nil {
		logger.Error("Failed to write terminal session status", "status", status, "error", err)
	}
	w.publishSessionStatus(ctx, claimed, events.TerminalSessionEventType(string(status)),
		string(status), result.ErrorMessage)
	w.notifySlackTerminal(ctx, claimed, status, result, threadTS)
	w.scheduleEventCleanup(sessionID)

	logger.Info("Session finished", "status", status)
}

// publishSessionStatus emits a session lifecycle event on the global
// channel. Publish failures are logged and swallowed.
func (w *Worker) publishSessionStatus(ctx context.Context, claimed *ent.AlertSession, eventType, status, errMsg string) {
	if w.publisher == nil {
		return
	}
	err := w.publisher.PublishSessionStatus(ctx, claimed.ID, events.SessionStatusPayload{
		Type:         eventType,
		SessionID:    claimed.ID,
		Status:       status,
		AlertType:    claimed.AlertType,
		ChainID:      claimed.ChainID,
		ErrorMessage: errMsg,
		Timestamp:    events.EventTimestamp(),
	})
	if err != nil {
		w.logger.Warn("Failed to publish session status",
			"session_id", claimed.ID, "type", eventType, "error", err)
	}
}

// notifySlackStart posts the "processing started" notification. Returns the
// resolved thread timestamp for the terminal notification. No-op without a
// Slack fingerprint on the session.
func (w *Worker) notifySlackStart(ctx context.Context, claimed *ent.AlertSession) string {
	if w.slack == nil || claimed.SlackMessageFingerprint == nil {
		return ""
	}
	return w.slack.NotifySessionStarted(ctx, slack.SessionStartedInput{
		SessionID:               claimed.ID,
		AlertType:               claimed.AlertType,
		SlackMessageFingerprint: *claimed.SlackMessageFingerprint,
	})
}

// notifySlackTerminal posts the terminal notification into the thread opened
// by notifySlackStart.
func (w *Worker) notifySlackTerminal(ctx context.Context, claimed *ent.AlertSession, status alertsession.Status, result *ExecutionResult, threadTS string) {
	if w.slack == nil || claimed.SlackMessageFingerprint == nil {
		return
	}
	w.slack.NotifySessionCompleted(ctx, slack.SessionCompletedInput{
		SessionID:               claimed.ID,
		AlertType:               claimed.AlertType,
		Status:                  string(status),
		ExecutiveSummary:        result.ExecutiveSummary,
		FinalAnalysis:           result.FinalAnalysis,
		ErrorMessage:            result.ErrorMessage,
		SlackMessageFingerprint: *claimed.SlackMessageFingerprint,
		ThreadTS:                threadTS,
	})
}

// scheduleEventCleanup removes the finished session's event rows after a
// grace period. Live subscribers already got the terminal event; the delay
// covers clients reconnecting with a catch-up request.
func (w *Worker) scheduleEventCleanup(sessionID string) {
	if w.events == nil {
		return
	}
	time.AfterFunc(eventCleanupDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		deleted, err := w.events.DeleteEventsForChannel(ctx, events.SessionChannel(sessionID))
		if err != nil {
			w.logger.Warn("Failed to clean up session events",
				"session_id", sessionID, "error", err)
			return
		}
		if deleted > 0 {
			w.logger.Debug("Cleaned up session events",
				"session_id", sessionID, "deleted", deleted)
		}
	})
}

// jitteredPollInterval spreads worker wakeups across [base-jitter,
// base+jitter) so replicas don't poll in lockstep.
func (w *Worker) jitteredPollInterval() time.Duration {
	base, jitter := w.cfg.PollInterval, w.cfg.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	d := base - jitter + rand.N(2*jitter)
	if d <= 0 {
		return base
	}
	return d
}

// sleep waits for d or until ctx is cancelled. Reports false on cancel.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.lastActivity = time.Now()
}

func (w *Worker) setBusy(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = WorkerStatusBusy
	w.currentSessionID = sessionID
	w.lastActivity = time.Now()
}

func (w *Worker) setDone() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = WorkerStatusIdle
	w.currentSessionID = ""
	w.sessionsProcessed++
	w.lastActivity = time.Now()
}

// Health returns a snapshot of the worker's state.
func (w *Worker) Health() WorkerHealth {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WorkerHealth{
		ID:                w.id,
		Status:            w.status,
		CurrentSessionID:  w.currentSessionID,
		SessionsProcessed: w.sessionsProcessed,
		LastActivity:      w.lastActivity,
	}
}
