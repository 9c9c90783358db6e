package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsoaresd/tarsy-bot-sub007/ent"
	"github.com/rsoaresd/tarsy-bot-sub007/ent/alertsession"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/events"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

// orphanErrorMessage is the terminal error recorded on sessions recovered
// from dead pods.
const orphanErrorMessage = "Session orphaned: processing pod crashed or became unresponsive"

// runOrphanDetection periodically fails over sessions whose owning pod
// stopped heartbeating.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	interval := p.cfg.OrphanDetectionInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				p.logger.Error("Orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans scans for in_progress/canceling sessions with a
// stale heartbeat and fails them.
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	orphans, err := p.sessions.FindOrphanedSessions(ctx, p.cfg.OrphanThreshold)
	if err != nil {
		return err
	}

	recovered := 0
	for _, s := range orphans {
		// Own active sessions heartbeat; a hit here means the heartbeat is
		// stuck, not that the pod died. Leave the run alone.
		if p.ownsSession(s.ID) {
			p.logger.Warn("Skipping orphan recovery for locally active session",
				"session_id", s.ID)
			continue
		}
		if err := recoverOrphanedSession(ctx, p.sessions, p.stages, p.publisher, s); err != nil {
			p.logger.Error("Failed to recover orphaned session",
				"session_id", s.ID, "error", err)
			continue
		}
		recovered++
	}

	p.orphanMu.Lock()
	p.lastOrphanScan = time.Now()
	p.orphansRecovered += int64(recovered)
	p.orphanMu.Unlock()

	if recovered > 0 {
		p.logger.Info("Recovered orphaned sessions", "count", recovered)
	}
	return nil
}

// recoverOrphanedSession fails the session and its non-terminal stage
// executions, then publishes session.failed.
func recoverOrphanedSession(
	ctx context.Context,
	sessions *services.SessionService,
	stages *services.StageService,
	publisher agent.EventPublisher,
	s *ent.AlertSession,
) error {
	if _, err := stages.FailActiveExecutions(ctx, s.ID, orphanErrorMessage); err != nil {
		slog.Warn("Failed to fail stage executions of orphaned session",
			"session_id", s.ID, "error", err)
	}
	if err := sessions.UpdateSessionStatus(ctx, s.ID, alertsession.StatusFailed, orphanErrorMessage); err != nil {
		return fmt.Errorf("failed to fail orphaned session: %w", err)
	}

	if publisher != nil {
		err := publisher.PublishSessionStatus(ctx, s.ID, events.SessionStatusPayload{
			Type:         events.EventTypeSessionFailed,
			SessionID:    s.ID,
			Status:       string(alertsession.StatusFailed),
			AlertType:    s.AlertType,
			ChainID:      s.ChainID,
			ErrorMessage: orphanErrorMessage,
			Timestamp:    events.EventTimestamp(),
		})
		if err != nil {
			slog.Warn("Failed to publish orphan recovery event",
				"session_id", s.ID, "error", err)
		}
	}
	return nil
}

// CleanupStartupOrphans fails sessions left in_progress/canceling by a
// previous life of this pod. Runs before the pool starts so a restarted
// replica's sessions don't wait out the orphan threshold.
func CleanupStartupOrphans(ctx context.Context, client *ent.Client, podID string, publisher agent.EventPublisher) error {
	sessions := services.NewSessionService(client)
	stages := services.NewStageService(client)

	stale, err := sessions.ListActiveSessionsByPod(ctx, podID)
	if err != nil {
		return fmt.Errorf("failed to list sessions for pod %s: %w", podID, err)
	}

	for _, s := range stale {
		if err := recoverOrphanedSession(ctx, sessions, stages, publisher, s); err != nil {
			slog.Error("Failed to recover session from previous pod run",
				"session_id", s.ID, "error", err)
			continue
		}
		slog.Info("Recovered session from previous pod run",
			"session_id", s.ID, "pod_id", podID)
	}
	return nil
}
